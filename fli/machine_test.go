package fli_test

import (
	"testing"

	"github.com/brunokim/logic-embed/fli"
)

func TestAtomIntern(t *testing.T) {
	m := fli.NewMachine()
	a1 := m.NewAtom("hello")
	a2 := m.NewAtom("hello")
	if a1 != a2 {
		t.Errorf("NewAtom interning: %d != %d", a1, a2)
	}
	if name := m.AtomName(a1); name != "hello" {
		t.Errorf("AtomName = %q != %q", name, "hello")
	}
	b := m.NewAtom("world")
	if a1 == b {
		t.Errorf("distinct atoms share handle %d", a1)
	}
}

func TestAtomRefCount(t *testing.T) {
	m := fli.NewMachine()
	a := m.NewAtom("counted")
	base := m.AtomRefCount(a)
	m.RegisterAtom(a)
	if got := m.AtomRefCount(a); got != base+1 {
		t.Errorf("after RegisterAtom: refs = %d != %d", got, base+1)
	}
	m.UnregisterAtom(a)
	if got := m.AtomRefCount(a); got != base {
		t.Errorf("after UnregisterAtom: refs = %d != %d", got, base)
	}
	// Interning again is also a reference.
	m.NewAtom("counted")
	if got := m.AtomRefCount(a); got != base+1 {
		t.Errorf("after re-interning: refs = %d != %d", got, base+1)
	}
}

func TestFunctorIntern(t *testing.T) {
	m := fli.NewMachine()
	name := m.NewAtom("foo")
	f1 := m.NewFunctor(name, 2)
	f2 := m.NewFunctor(name, 2)
	if f1 != f2 {
		t.Errorf("NewFunctor interning: %d != %d", f1, f2)
	}
	if m.NewFunctor(name, 3) == f1 {
		t.Errorf("foo/3 shares handle with foo/2")
	}
	if got := m.FunctorName(f1); got != name {
		t.Errorf("FunctorName = %d != %d", got, name)
	}
	if got := m.FunctorArity(f1); got != 2 {
		t.Errorf("FunctorArity = %d != 2", got)
	}
}

func TestModules(t *testing.T) {
	m := fli.NewMachine()
	user := m.UserModule()
	if name := m.AtomName(m.ModuleName(user)); name != "user" {
		t.Errorf("user module name = %q", name)
	}
	if m.Context() != user {
		t.Errorf("context module = %d != user %d", m.Context(), user)
	}
	lib := m.NewModule(m.NewAtom("lib"))
	if lib == user {
		t.Errorf("new module shares handle with user")
	}
	if again := m.NewModule(m.NewAtom("lib")); again != lib {
		t.Errorf("NewModule interning: %d != %d", again, lib)
	}
}

func TestTermRefRuns(t *testing.T) {
	m := fli.NewMachine()
	base := m.NewTermRefs(3)
	for i := 0; i < 3; i++ {
		ref := base + fli.TermRef(i)
		if !m.IsVariable(ref) {
			t.Errorf("fresh ref %d is not a variable", ref)
		}
	}
	next := m.NewTermRef()
	if next != base+3 {
		t.Errorf("refs not contiguous: %d after run ending at %d", next, base+2)
	}
}

func TestPutAndGet(t *testing.T) {
	m := fli.NewMachine()
	t1 := m.NewTermRef()

	m.PutInteger(t1, 42)
	if got, ok := m.GetInteger(t1); !ok || got != 42 {
		t.Errorf("GetInteger = %d, %t", got, ok)
	}
	if m.TermType(t1) != fli.TypeInteger {
		t.Errorf("TermType = %v != integer", m.TermType(t1))
	}

	m.PutAtomName(t1, "again")
	if got, ok := m.GetAtomName(t1); !ok || got != "again" {
		t.Errorf("GetAtomName = %q, %t", got, ok)
	}

	m.PutFloat(t1, 1.5)
	if got, ok := m.GetFloat(t1); !ok || got != 1.5 {
		t.Errorf("GetFloat = %v, %t", got, ok)
	}

	// Integer-valued floats convert on the way out; others do not.
	m.PutFloat(t1, 3.0)
	if got, ok := m.GetInteger(t1); !ok || got != 3 {
		t.Errorf("GetInteger on 3.0 = %d, %t", got, ok)
	}
	m.PutFloat(t1, 3.5)
	if _, ok := m.GetInteger(t1); ok {
		t.Errorf("GetInteger accepted 3.5")
	}
}

func TestPutTermSharing(t *testing.T) {
	m := fli.NewMachine()
	t1, t2 := m.NewTermRef(), m.NewTermRef()
	m.PutVariable(t1)
	m.PutTerm(t2, t1)
	if !m.UnifyAtomName(t1, "ok") {
		t.Fatalf("Unify failed")
	}
	if got, ok := m.GetAtomName(t2); !ok || got != "ok" {
		t.Errorf("shared ref missed binding: %q, %t", got, ok)
	}
}

func TestConsFunctor(t *testing.T) {
	m := fli.NewMachine()
	point := m.NewFunctor(m.NewAtom("point"), 2)
	x, y := m.NewTermRef(), m.NewTermRef()
	m.PutInteger(x, 1)
	m.PutInteger(y, 2)
	s := m.NewTermRef()
	m.ConsFunctor(s, point, x, y)

	if !m.IsCompound(s) {
		t.Fatalf("ConsFunctor result is not compound")
	}
	if got, ok := m.GetFunctor(s); !ok || got != point {
		t.Errorf("GetFunctor = %d, %t", got, ok)
	}
	name, arity, ok := m.GetCompoundNameArity(s)
	if !ok || m.AtomName(name) != "point" || arity != 2 {
		t.Errorf("GetCompoundNameArity = %q/%d, %t", m.AtomName(name), arity, ok)
	}
	arg := m.NewTermRef()
	if !m.GetArg(1, s, arg) {
		t.Fatalf("GetArg(1) failed")
	}
	if got, _ := m.GetInteger(arg); got != 2 {
		t.Errorf("arg 1 = %d != 2", got)
	}
}

func TestConsFunctorWide(t *testing.T) {
	m := fli.NewMachine()
	f := m.NewFunctor(m.NewAtom("wide"), 5)
	base := m.NewTermRefs(5)
	for i := 0; i < 5; i++ {
		m.PutInteger(base+fli.TermRef(i), int64(i))
	}
	s := m.NewTermRef()
	m.ConsFunctorV(s, f, base)
	if got := m.WriteTerm(s, fli.WriteOpts{}); got != "wide(0, 1, 2, 3, 4)" {
		t.Errorf("wide term = %q", got)
	}
}

func TestLists(t *testing.T) {
	m := fli.NewMachine()
	list := m.NewTermRef()
	m.PutListChars(list, "ab")
	if !m.IsList(list) || !m.IsPair(list) {
		t.Errorf("IsList/IsPair on char list: %t/%t", m.IsList(list), m.IsPair(list))
	}
	head, tail := m.NewTermRef(), m.NewTermRef()
	if !m.GetListHeadTail(list, head, tail) {
		t.Fatalf("GetListHeadTail failed")
	}
	if got, _ := m.GetAtomName(head); got != "a" {
		t.Errorf("head = %q != a", got)
	}
	rest := m.NewTermRef()
	if !m.GetListTail(tail, rest) {
		t.Fatalf("GetListTail failed")
	}
	if !m.GetNil(rest) {
		t.Errorf("tail of tail is not []")
	}

	// A partial list is a pair but not a list.
	partial := m.NewTermRef()
	elem := m.NewTermRef()
	m.PutAtomName(elem, "x")
	m.ConsList(partial, elem, m.NewTermRef())
	if !m.IsPair(partial) || m.IsList(partial) {
		t.Errorf("partial list: IsPair=%t IsList=%t", m.IsPair(partial), m.IsList(partial))
	}
}

func TestEmptyListIsAtom(t *testing.T) {
	m := fli.NewMachine()
	nl := m.NewTermRef()
	m.PutNil(nl)
	if !m.IsAtom(nl) {
		t.Errorf("[] is not an atom")
	}
	if m.TermType(nl) != fli.TypeNil {
		t.Errorf("TermType([]) = %v != nil type", m.TermType(nl))
	}
	if !m.IsList(nl) {
		t.Errorf("[] is not a list")
	}
}

func TestUnifyAndCompare(t *testing.T) {
	m := fli.NewMachine()
	x, y := m.NewTermRef(), m.NewTermRef()
	if !m.Unify(x, y) {
		t.Fatalf("var-var unification failed")
	}
	// A put on y replaces the slot; it does not bind the shared variable.
	m.PutInteger(y, 7)
	if !m.IsVariable(x) {
		t.Errorf("put on y bound x to %s", m.WriteTerm(x, fli.WriteOpts{}))
	}
	a, b := m.NewTermRef(), m.NewTermRef()
	m.PutInteger(a, 1)
	m.PutInteger(b, 2)
	if m.Unify(a, b) {
		t.Errorf("1 and 2 unified")
	}

	// Standard order: variables, then numbers with floats first on ties,
	// then atoms, strings and compounds.
	fl, i := m.NewTermRef(), m.NewTermRef()
	m.PutFloat(fl, 1.0)
	m.PutInteger(i, 1)
	if got := m.Compare(fl, i); got != -1 {
		t.Errorf("Compare(1.0, 1) = %d != -1", got)
	}
	at := m.NewTermRef()
	m.PutAtomName(at, "zzz")
	if got := m.Compare(i, at); got != -1 {
		t.Errorf("Compare(1, zzz) = %d != -1", got)
	}
	if got := m.Compare(at, at); got != 0 {
		t.Errorf("Compare(zzz, zzz) = %d != 0", got)
	}
}

func TestFrameClose(t *testing.T) {
	m := fli.NewMachine()
	x := m.NewTermRef()
	fr := m.OpenFrame()
	if !m.UnifyAtomName(x, "kept") {
		t.Fatalf("unify failed")
	}
	m.CloseFrame(fr)
	if got, ok := m.GetAtomName(x); !ok || got != "kept" {
		t.Errorf("binding lost on close: %q, %t", got, ok)
	}
}

func TestFrameDiscard(t *testing.T) {
	m := fli.NewMachine()
	x := m.NewTermRef()
	fr := m.OpenFrame()
	if !m.UnifyAtomName(x, "gone") {
		t.Fatalf("unify failed")
	}
	m.DiscardFrame(fr)
	if !m.IsVariable(x) {
		t.Errorf("binding survived discard: %s", m.WriteTerm(x, fli.WriteOpts{}))
	}
}

func TestFrameRewind(t *testing.T) {
	m := fli.NewMachine()
	x := m.NewTermRef()
	fr := m.OpenFrame()
	if !m.UnifyInteger(x, 1) {
		t.Fatalf("unify failed")
	}
	m.RewindFrame(fr)
	if !m.IsVariable(x) {
		t.Fatalf("rewind did not unbind x")
	}
	// The frame is still open and can be used again.
	if !m.UnifyInteger(x, 2) {
		t.Fatalf("unify after rewind failed")
	}
	m.CloseFrame(fr)
	if got, _ := m.GetInteger(x); got != 2 {
		t.Errorf("x = %d != 2 after rewound frame closed", got)
	}
}

func TestPutSurvivesRewind(t *testing.T) {
	m := fli.NewMachine()
	put, unified := m.NewTermRef(), m.NewTermRef()
	fr := m.OpenFrame()
	m.PutInteger(put, 42)
	if !m.UnifyInteger(unified, 42) {
		t.Fatalf("unify failed")
	}
	m.RewindFrame(fr)
	if got, ok := m.GetInteger(put); !ok || got != 42 {
		t.Errorf("direct write undone by rewind: %d, %t", got, ok)
	}
	if !m.IsVariable(unified) {
		t.Errorf("unification survived rewind")
	}
	m.CloseFrame(fr)
}

func TestRecord(t *testing.T) {
	m := fli.NewMachine()
	// f(X, X): sharing must survive the round trip.
	x := m.NewTermRef()
	s := m.NewTermRef()
	f := m.NewFunctor(m.NewAtom("f"), 2)
	m.ConsFunctor(s, f, x, x)
	id := m.Record(s)

	// Later bindings do not leak into the record.
	if !m.UnifyAtomName(x, "bound") {
		t.Fatalf("unify failed")
	}
	out := m.NewTermRef()
	if !m.Recorded(id, out) {
		t.Fatalf("Recorded failed")
	}
	a1, a2 := m.NewTermRef(), m.NewTermRef()
	m.GetArg(0, out, a1)
	m.GetArg(1, out, a2)
	if !m.IsVariable(a1) {
		t.Errorf("recorded copy captured a later binding: %s", m.WriteTerm(a1, fli.WriteOpts{}))
	}
	if m.Compare(a1, a2) != 0 {
		t.Errorf("recorded copy lost sharing: %s vs %s",
			m.WriteTerm(a1, fli.WriteOpts{}), m.WriteTerm(a2, fli.WriteOpts{}))
	}

	m.Erase(id)
	if m.Recorded(id, out) {
		t.Errorf("Recorded succeeded after Erase")
	}
	m.Erase(id) // erasing twice is fine
}

func TestRecordCyclic(t *testing.T) {
	m := fli.NewMachine()
	// X = f(X), built by unifying the argument with the whole term.
	s := m.NewTermRef()
	arg := m.NewTermRef()
	f := m.NewFunctor(m.NewAtom("f"), 1)
	m.ConsFunctor(s, f, arg)
	hole := m.NewTermRef()
	m.GetArg(0, s, hole)
	if !m.Unify(hole, s) {
		t.Fatalf("cyclic unification failed")
	}
	if m.IsAcyclic(s) {
		t.Fatalf("term is acyclic after tying the knot")
	}
	id := m.Record(s)
	out := m.NewTermRef()
	if !m.Recorded(id, out) {
		t.Fatalf("Recorded failed")
	}
	if m.IsAcyclic(out) {
		t.Errorf("recorded copy lost the cycle")
	}
}

func TestCopyTermRef(t *testing.T) {
	m := fli.NewMachine()
	x := m.NewTermRef()
	m.PutInteger(x, 9)
	y := m.CopyTermRef(x)
	if got, ok := m.GetInteger(y); !ok || got != 9 {
		t.Errorf("copy = %d, %t", got, ok)
	}
	// The copy is a separate slot: overwriting it leaves x alone.
	m.PutAtomName(y, "other")
	if got, _ := m.GetInteger(x); got != 9 {
		t.Errorf("x changed to %d", got)
	}
}
