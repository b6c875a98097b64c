package prolog_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brunokim/logic-embed/prolog"
)

func TestTermRoundTrips(t *testing.T) {
	s := newTestSession(t)

	atom, err := s.TermFromAtomName("smokes")
	require.NoError(t, err)
	name, err := atom.GetAtomName()
	require.NoError(t, err)
	assert.Equal(t, "smokes", name)

	num, err := s.TermFromInteger(42)
	require.NoError(t, err)
	i, err := num.GetInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(42), i)

	flt, err := s.TermFromFloat(2.5)
	require.NoError(t, err)
	f, err := flt.GetFloat()
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)

	str, err := s.TermFromString("hello world")
	require.NoError(t, err)
	text, err := str.GetString()
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)

	yes, err := s.TermFromBool(true)
	require.NoError(t, err)
	b, err := yes.GetBool()
	require.NoError(t, err)
	assert.True(t, b)
	assert.Equal(t, "true", yes.String())

	ptr, err := s.TermFromPointer(0xbeef)
	require.NoError(t, err)
	p, err := ptr.GetPointer()
	require.NoError(t, err)
	assert.Equal(t, uintptr(0xbeef), p)
}

func TestTermType(t *testing.T) {
	s := newTestSession(t)
	tests := []struct {
		text string
		want prolog.TermType
	}{
		{"foo", prolog.AtomTerm},
		{"42", prolog.Integer},
		{"2.5", prolog.FloatTerm},
		{"f(x)", prolog.CompoundTerm},
		{"[]", prolog.Nil},
		{"[1, 2]", prolog.ListPair},
		{"X", prolog.Variable},
	}
	for _, test := range tests {
		typ, err := parse(t, s, test.text).Type()
		require.NoError(t, err)
		assert.Equal(t, test.want, typ, "type of %q", test.text)
	}
}

func TestTermTypePredicates(t *testing.T) {
	s := newTestSession(t)
	atom := parse(t, s, "foo")
	compound := parse(t, s, "f(X, g(Y))")
	list := parse(t, s, "[1, 2]")
	empty := parse(t, s, "[]")

	check := func(got bool, err error) bool {
		require.NoError(t, err)
		return got
	}
	assert.True(t, check(atom.IsAtom()))
	assert.True(t, check(atom.IsAtomic()))
	assert.True(t, check(atom.IsCallable()))
	assert.False(t, check(atom.IsCompound()))

	assert.True(t, check(compound.IsCompound()))
	assert.True(t, check(compound.IsCallable()))
	assert.False(t, check(compound.IsAtomic()))
	assert.False(t, check(compound.IsGround()))
	assert.True(t, check(compound.IsAcyclic()))
	assert.True(t, check(compound.IsFunctor(s.NewFunctor("f", 2))))
	assert.False(t, check(compound.IsFunctor(s.NewFunctor("f", 3))))

	assert.True(t, check(list.IsPair()))
	assert.True(t, check(list.IsList()))
	assert.False(t, check(list.IsNil()))
	assert.True(t, check(empty.IsNil()))
	assert.True(t, check(empty.IsList()))

	v, err := s.TermFromVariable()
	require.NoError(t, err)
	assert.True(t, check(v.IsVariable()))
}

func TestGetterTypeMismatch(t *testing.T) {
	s := newTestSession(t)
	atom := parse(t, s, "foo")
	num := parse(t, s, "42")

	_, err := num.GetAtom()
	assert.EqualError(t, err, "Term is not an atom.")
	_, err = num.GetAtomName()
	assert.EqualError(t, err, "Term is not an atom.")
	_, err = atom.GetInteger()
	assert.EqualError(t, err, "Term is not an integer or int-compatible float.")
	_, err = atom.GetFloat()
	assert.EqualError(t, err, "Term is not a float or integer.")
	_, err = atom.GetString()
	assert.EqualError(t, err, "Term is not a string.")
	_, err = num.GetBool()
	assert.EqualError(t, err, "Term is not a boolean.")
	_, _, err = atom.GetCompoundNameArity()
	assert.EqualError(t, err, "Term is not a compound term.")
	_, err = num.GetFunctor()
	assert.EqualError(t, err, "Term is not a compound term or atom.")
	err = atom.GetNil()
	assert.EqualError(t, err, "Term is not an empty list.")
	_, _, err = atom.GetListHeadTail()
	assert.EqualError(t, err, "Term is not a list.")

	var mismatch *prolog.TypeMismatchError
	_, err = atom.GetInteger()
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []string{"integer", "int-compatible float"}, mismatch.Expected)
	assert.Equal(t, "atom", mismatch.Actual)
}

func TestNumericCrossAcceptance(t *testing.T) {
	s := newTestSession(t)

	i, err := parse(t, s, "3.0").GetInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(3), i)

	_, err = parse(t, s, "3.5").GetInteger()
	assert.EqualError(t, err, "Term is not an integer or int-compatible float.")

	f, err := parse(t, s, "3").GetFloat()
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)
}

func TestGetFunctorOfAtom(t *testing.T) {
	s := newTestSession(t)

	f, err := parse(t, s, "foo").GetFunctor()
	require.NoError(t, err)
	assert.Equal(t, "foo/0", f.String())

	name, arity, err := parse(t, s, "point(1, 2)").GetNameArity()
	require.NoError(t, err)
	assert.Equal(t, "point", name.Name())
	assert.Equal(t, 2, arity)

	name, arity, err = parse(t, s, "foo").GetNameArity()
	require.NoError(t, err)
	assert.Equal(t, "foo", name.Name())
	assert.Equal(t, 0, arity)
}

func TestGetArg(t *testing.T) {
	s := newTestSession(t)
	compound := parse(t, s, "point(1, 2)")

	first, err := compound.GetArg(0)
	require.NoError(t, err)
	assert.Equal(t, "1", first.String())

	second, err := compound.GetArg(1)
	require.NoError(t, err)
	assert.Equal(t, "2", second.String())

	_, err = compound.GetArg(2)
	var indexErr *prolog.IndexError
	require.ErrorAs(t, err, &indexErr)
	assert.Equal(t, 2, indexErr.Index)
	assert.Equal(t, 2, indexErr.Len)

	_, err = parse(t, s, "foo").GetArg(0)
	assert.EqualError(t, err, "Term is not a compound term.")
}

func TestGetListParts(t *testing.T) {
	s := newTestSession(t)
	list := parse(t, s, "[1, 2, 3]")

	head, tail, err := list.GetListHeadTail()
	require.NoError(t, err)
	assert.Equal(t, "1", head.String())
	assert.Equal(t, "[2, 3]", tail.String())

	head, err = list.GetListHead()
	require.NoError(t, err)
	assert.Equal(t, "1", head.String())

	tail, err = list.GetListTail()
	require.NoError(t, err)
	assert.Equal(t, "[2, 3]", tail.String())

	require.NoError(t, parse(t, s, "[]").GetNil())
}

func TestPutConsFunctorWideCompounds(t *testing.T) {
	s := newTestSession(t)
	for _, arity := range []int{5, 8} {
		f := s.NewFunctor("wide", arity)
		args := make([]*prolog.Term, arity)
		for i := range args {
			var err error
			args[i], err = s.TermFromInteger(int64(i + 1))
			require.NoError(t, err)
		}
		term, err := s.TermFromConsFunctor(f, args...)
		require.NoError(t, err)

		name, n, err := term.GetCompoundNameArity()
		require.NoError(t, err)
		assert.Equal(t, "wide", name.Name())
		assert.Equal(t, arity, n)
		for i := 0; i < arity; i++ {
			arg, err := term.GetArg(i)
			require.NoError(t, err)
			got, err := arg.GetInteger()
			require.NoError(t, err)
			assert.Equal(t, int64(i+1), got)
		}
	}
}

func TestPutConsFunctorArityMismatch(t *testing.T) {
	s := newTestSession(t)
	pair := s.NewFunctor("pair", 2)
	one := parse(t, s, "1")

	_, err := s.TermFromConsFunctor(pair, one)
	assert.EqualError(t, err, "Functor arity (2) does not match number of arguments (1).")

	list, err := s.TermListFromTerms(one)
	require.NoError(t, err)
	_, err = s.TermFromConsFunctorList(pair, list)
	assert.EqualError(t, err, "Functor arity (2) does not match number of arguments (1).")
}

func TestEqualNeverBinds(t *testing.T) {
	s := newTestSession(t)
	x, err := s.TermFromVariable()
	require.NoError(t, err)
	one := parse(t, s, "1")

	eq, err := x.Equal(one)
	require.NoError(t, err)
	assert.False(t, eq)

	// The comparison must not have bound x.
	unbound, err := x.IsVariable()
	require.NoError(t, err)
	assert.True(t, unbound)

	ok, err := x.Unify(one)
	require.NoError(t, err)
	assert.True(t, ok)

	eq, err = x.Equal(one)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestUnifyMismatch(t *testing.T) {
	s := newTestSession(t)
	ok, err := parse(t, s, "1").Unify(parse(t, s, "2"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = parse(t, s, "f(X, b)").Unify(parse(t, s, "f(a, Y)"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnifyTyped(t *testing.T) {
	s := newTestSession(t)

	x, err := s.TermFromVariable()
	require.NoError(t, err)
	ok, err := x.UnifyAtomName("tick")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tick", x.String())

	y, err := s.TermFromVariable()
	require.NoError(t, err)
	ok, err = y.UnifyInteger(7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = y.UnifyInteger(8)
	require.NoError(t, err)
	assert.False(t, ok)

	nilTerm, err := s.TermFromVariable()
	require.NoError(t, err)
	ok, err = nilTerm.UnifyNil()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnifyListCell(t *testing.T) {
	s := newTestSession(t)
	list := parse(t, s, "[1, 2, 3]")
	head, err := s.TermFromVariable()
	require.NoError(t, err)
	tail, err := s.TermFromVariable()
	require.NoError(t, err)

	ok, err := list.UnifyList(head, tail)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", head.String())
	assert.Equal(t, "[2, 3]", tail.String())

	rebuilt, err := s.TermFromVariable()
	require.NoError(t, err)
	ok, err = rebuilt.UnifyConsList(head, tail)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[1, 2, 3]", rebuilt.String())
}

func TestUnifyArg(t *testing.T) {
	s := newTestSession(t)
	compound := parse(t, s, "point(X, Y)")

	ok, err := compound.UnifyArg(0, parse(t, s, "3"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = compound.UnifyArg(1, parse(t, s, "4"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "point(3, 4)", compound.String())
}

func TestCompareStandardOrder(t *testing.T) {
	s := newTestSession(t)
	one := parse(t, s, "1")
	two := parse(t, s, "2")
	atom := parse(t, s, "a")

	cmp, err := one.Compare(two)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = two.Compare(one)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)

	cmp, err = one.Compare(parse(t, s, "1"))
	require.NoError(t, err)
	assert.Equal(t, 0, cmp)

	// Numbers precede atoms in the standard order.
	cmp, err = one.Compare(atom)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)
}

func TestTermCopyShares(t *testing.T) {
	s := newTestSession(t)
	original := parse(t, s, "f(X)")
	copied, err := s.TermFromTermCopy(original)
	require.NoError(t, err)

	x, err := original.GetArg(0)
	require.NoError(t, err)
	ok, err := x.UnifyInteger(9)
	require.NoError(t, err)
	require.True(t, ok)

	// The copy holds a new handle on the same structure, so it sees the
	// binding.
	assert.Equal(t, "f(9)", copied.String())
}

func TestTermCall(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.ConsultText("age(bob, 7)."))

	x, err := s.TermFromVariable()
	require.NoError(t, err)
	goal, err := s.NewFunctor("age", 2).Apply(parse(t, s, "bob"), x)
	require.NoError(t, err)

	ok, err := goal.Call()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "7", x.String())

	no, err := parse(t, s, "age(bob, 8)").Call()
	require.NoError(t, err)
	assert.False(t, no)
}

func TestTermCallException(t *testing.T) {
	s := newTestSession(t)
	_, err := parse(t, s, "throw(trouble)").Call()
	var engineErr *prolog.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Contains(t, engineErr.Text, "trouble")

	snapshot, err := engineErr.Term.Get()
	require.NoError(t, err)
	assert.Equal(t, "trouble", snapshot.String())
}

func TestTermCallChecked(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.ConsultText("even(0). even(2)."))

	require.NoError(t, parse(t, s, "even(2)").CallChecked())

	err := parse(t, s, "even(1)").CallChecked()
	var callErr *prolog.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "even(1)", callErr.Goal)
}

func TestAndOrCombinators(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.ConsultText("light(red). light(green)."))

	both, err := parse(t, s, "light(red)").And(parse(t, s, "light(green)"))
	require.NoError(t, err)
	assert.Equal(t, "light(red),light(green)", both.String())
	ok, err := both.Call()
	require.NoError(t, err)
	assert.True(t, ok)

	either, err := parse(t, s, "light(blue)").Or(parse(t, s, "light(green)"))
	require.NoError(t, err)
	ok, err = either.Call()
	require.NoError(t, err)
	assert.True(t, ok)

	neither, err := parse(t, s, "light(blue)").Or(parse(t, s, "light(amber)"))
	require.NoError(t, err)
	ok, err = neither.Call()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutParsedSyntaxError(t *testing.T) {
	s := newTestSession(t)
	term := s.NewTerm()
	err := term.PutParsed("f(1")
	var engineErr *prolog.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Contains(t, engineErr.Text, "syntax_error")
}

func TestTermFromParsedWithVars(t *testing.T) {
	s := newTestSession(t)
	term, vars, err := s.TermFromParsedWithVars("likes(X, Y, X)")
	require.NoError(t, err)
	require.Len(t, vars, 2)
	require.Contains(t, vars, "X")
	require.Contains(t, vars, "Y")

	// The named refs alias the variables inside the term.
	ok, err := vars["X"].UnifyAtomName("mia")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = vars["Y"].UnifyAtomName("vincent")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "likes(mia, vincent, mia)", term.String())

	_, vars, err = s.TermFromParsedWithVars("pair(_, Z)")
	require.NoError(t, err)
	require.Len(t, vars, 1)
	assert.Contains(t, vars, "Z")
}

func TestPutOverwrites(t *testing.T) {
	s := newTestSession(t)
	term, err := s.TermFromInteger(1)
	require.NoError(t, err)

	require.NoError(t, term.PutAtomName("replaced"))
	assert.Equal(t, "replaced", term.String())

	require.NoError(t, term.PutVariable())
	unbound, err := term.IsVariable()
	require.NoError(t, err)
	assert.True(t, unbound)
}

func TestInvalidatedTermErrors(t *testing.T) {
	s := newTestSession(t)
	frame, err := s.OpenFrame()
	require.NoError(t, err)
	term, err := frame.Term()
	require.NoError(t, err)
	require.NoError(t, frame.Close())

	_, err = term.GetInteger()
	assert.True(t, errors.Is(err, prolog.ErrInvalidated))
	assert.EqualError(t, err, "frame term has been invalidated")
	assert.Equal(t, "<invalidated term>", term.String())
}
