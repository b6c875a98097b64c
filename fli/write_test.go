package fli_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/brunokim/logic-embed/fli"
)

// TestWriteGolden renders a gallery of terms in quoted form and compares
// the listing against testdata/write.golden. Regenerate with go test -update.
func TestWriteGolden(t *testing.T) {
	inputs := []string{
		`f(a, g(b))`,
		`a+b*c`,
		`(a+b)*c`,
		`a-(b-c)`,
		`a:-b,c`,
		`(a->b;c)`,
		`\+ a`,
		`a mod b`,
		`[1, 2, 3]`,
		`[a|b]`,
		`{a, b}`,
		`'hello world'`,
		`"str"`,
		`- 1`,
		`1 + -2`,
		`lib:p(x)`,
		`-7`,
		`3.14`,
		`1e+10`,
		`f([], {}, !)`,
	}
	m := fli.NewMachine()
	ref := m.NewTermRef()
	var buf bytes.Buffer
	for _, input := range inputs {
		if err := m.ReadTerm(ref, input); err != nil {
			t.Fatalf("read %q: got err: %v", input, err)
		}
		buf.WriteString(m.WriteTerm(ref, fli.WriteOpts{Quoted: true}))
		buf.WriteByte('\n')
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "write", buf.Bytes())
}

func TestWriteQuoting(t *testing.T) {
	tests := []struct {
		cell fli.Cell
		bare string
		quot string
	}{
		{fli.Atom("simple"), "simple", "simple"},
		{fli.Atom("hello world"), "hello world", "'hello world'"},
		{fli.Atom("Upper"), "Upper", "'Upper'"},
		{fli.Atom(""), "", "''"},
		{fli.Atom("+"), "+", "+"},
		{fli.Atom("a\nb"), "a\nb", `'a\nb'`},
		{fli.Str("say \"hi\""), "say \"hi\"", `"say \"hi\""`},
		{fli.Int(-3), "-3", "-3"},
	}
	for _, test := range tests {
		if got := fli.FormatCell(test.cell); got != test.bare {
			t.Errorf("FormatCell(%v) = %q != %q", test.cell, got, test.bare)
		}
	}
	m := fli.NewMachine()
	ref := m.NewTermRef()
	for _, test := range tests {
		switch c := test.cell.(type) {
		case fli.Atom:
			m.PutAtomName(ref, string(c))
		case fli.Str:
			m.PutString(ref, string(c))
		case fli.Int:
			m.PutInteger(ref, int64(c))
		}
		if got := m.WriteTerm(ref, fli.WriteOpts{Quoted: true}); got != test.quot {
			t.Errorf("quoted %v = %q != %q", test.cell, got, test.quot)
		}
	}
}

func TestWriteFloats(t *testing.T) {
	m := fli.NewMachine()
	ref := m.NewTermRef()
	tests := []struct {
		f    float64
		want string
	}{
		{1.5, "1.5"},
		{42, "42.0"},
		{-0.25, "-0.25"},
		{1e10, "1e+10"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
	}
	for _, test := range tests {
		m.PutFloat(ref, test.f)
		if got := m.WriteTerm(ref, fli.WriteOpts{}); got != test.want {
			t.Errorf("float %v = %q != %q", test.f, got, test.want)
		}
	}
}

func TestWriteCyclic(t *testing.T) {
	m := fli.NewMachine()
	// X = f(X)
	s := m.NewTermRef()
	arg := m.NewTermRef()
	m.ConsFunctor(s, m.NewFunctor(m.NewAtom("f"), 1), arg)
	hole := m.NewTermRef()
	m.GetArg(0, s, hole)
	if !m.Unify(hole, s) {
		t.Fatalf("tying the knot failed")
	}
	if got := m.WriteTerm(s, fli.WriteOpts{}); got != "f(_S1)" {
		t.Errorf("cyclic struct = %q != %q", got, "f(_S1)")
	}

	// L = [1|L]
	l := m.NewTermRef()
	one := m.NewTermRef()
	m.PutInteger(one, 1)
	tail := m.NewTermRef()
	m.ConsList(l, one, tail)
	hole2 := m.NewTermRef()
	m.GetArg(1, l, hole2)
	if !m.Unify(hole2, l) {
		t.Fatalf("tying the list knot failed")
	}
	if got := m.WriteTerm(l, fli.WriteOpts{}); got != "[1|_S1]" {
		t.Errorf("cyclic list = %q != %q", got, "[1|_S1]")
	}
}

func TestWriteShared(t *testing.T) {
	m := fli.NewMachine()
	// g(T, T) with T = h(x): sharing without a cycle prints twice.
	inner := m.NewTermRef()
	x := m.NewTermRef()
	m.PutAtomName(x, "x")
	m.ConsFunctor(inner, m.NewFunctor(m.NewAtom("h"), 1), x)
	outer := m.NewTermRef()
	m.ConsFunctor(outer, m.NewFunctor(m.NewAtom("g"), 2), inner, inner)
	if got := m.WriteTerm(outer, fli.WriteOpts{}); got != "g(h(x), h(x))" {
		t.Errorf("shared subterm = %q", got)
	}
}
