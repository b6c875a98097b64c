package fli

import (
	"fmt"
	"math"
)

// TermType classifies the value currently held by a term ref.
type TermType int

const (
	TypeUnknown TermType = iota
	TypeVariable
	TypeAtom
	TypeInteger
	TypeFloat
	TypeString
	TypeCompound
	TypeNil
	TypeBlob
	TypeListPair
	// TypeDict is reserved; this engine does not build dicts.
	TypeDict
)

var termTypeNames = map[TermType]string{
	TypeUnknown:  "unknown",
	TypeVariable: "variable",
	TypeAtom:     "atom",
	TypeInteger:  "integer",
	TypeFloat:    "float",
	TypeString:   "string",
	TypeCompound: "compound",
	TypeNil:      "nil",
	TypeBlob:     "blob",
	TypeListPair: "list-pair",
	TypeDict:     "dict",
}

func (t TermType) String() string {
	if name, ok := termTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TermType(%d)", int(t))
}

// TermType returns the type of the term held by t. The empty list has its
// own type, distinct from atoms; list pairs are distinct from other
// compounds.
func (m *Machine) TermType(t TermRef) TermType {
	switch c := deref(m.cell(t)).(type) {
	case *Ref:
		return TypeVariable
	case Atom:
		if c == nilAtom {
			return TypeNil
		}
		return TypeAtom
	case Int:
		return TypeInteger
	case Float:
		return TypeFloat
	case Str:
		return TypeString
	case Ptr:
		return TypeBlob
	case *Struct:
		if isPair(c) {
			return TypeListPair
		}
		return TypeCompound
	default:
		panic(fmt.Sprintf("TermType: unhandled type %T (%v)", c, c))
	}
}

// ---- Put operations
//
// Puts overwrite the term-ref slot directly and are not trailed: a put
// survives frame discard and rewind. Unify is the operation that binds
// through the trail.

// PutVariable resets t to a fresh unbound variable.
func (m *Machine) PutVariable(t TermRef) {
	m.setCell(t, m.newRef())
}

// PutAtom stores the atom a in t. The atom's registration count is not
// changed; handles held by the embedder are registered separately.
func (m *Machine) PutAtom(t TermRef, a AtomID) {
	m.setCell(t, Atom(m.AtomName(a)))
}

// PutAtomName stores the atom named name in t.
func (m *Machine) PutAtomName(t TermRef, name string) {
	m.setCell(t, Atom(name))
}

// PutBool stores the atom true or false in t.
func (m *Machine) PutBool(t TermRef, b bool) {
	m.setCell(t, boolAtom(b))
}

// PutString stores a string object in t.
func (m *Machine) PutString(t TermRef, s string) {
	m.setCell(t, Str(s))
}

// PutListChars stores a list of one-char atoms spelling s in t.
func (m *Machine) PutListChars(t TermRef, s string) {
	m.setCell(t, charsList(s))
}

// PutInteger stores an integer in t.
func (m *Machine) PutInteger(t TermRef, i int64) {
	m.setCell(t, Int(i))
}

// PutPointer stores an opaque address in t.
func (m *Machine) PutPointer(t TermRef, p uintptr) {
	m.setCell(t, Ptr(p))
}

// PutFloat stores a float in t.
func (m *Machine) PutFloat(t TermRef, f float64) {
	m.setCell(t, Float(f))
}

// PutFunctor stores a compound of functor f with fresh variable arguments
// in t. With arity 0, stores the name atom.
func (m *Machine) PutFunctor(t TermRef, f FunctorID) {
	m.setCell(t, m.functorCell(f))
}

// PutList stores a list pair with fresh variable head and tail in t.
func (m *Machine) PutList(t TermRef) {
	m.setCell(t, listPair(m.newRef(), m.newRef()))
}

// PutNil stores the empty list in t.
func (m *Machine) PutNil(t TermRef) {
	m.setCell(t, nilAtom)
}

// PutTerm makes t reference the same term as u.
func (m *Machine) PutTerm(t, u TermRef) {
	m.setCell(t, m.cell(u))
}

// maxConsArgs is the highest argument count supported by the fixed-arity
// construction path. The vector form (ConsFunctorV) must be used past it.
const maxConsArgs = 4

// ConsFunctor builds a compound of functor f in t from the values of the
// given term refs. The fixed-arity path supports at most 4 arguments;
// larger functors must go through ConsFunctorV. The argument count must
// match the functor's arity.
func (m *Machine) ConsFunctor(t TermRef, f FunctorID, args ...TermRef) {
	if len(args) > maxConsArgs {
		panic(fmt.Sprintf("fli: ConsFunctor with %d args (max %d); use ConsFunctorV", len(args), maxConsArgs))
	}
	m.consFunctor(t, f, args)
}

// ConsFunctorV builds a compound of functor f in t, taking the arguments
// from the contiguous term-ref run starting at base.
func (m *Machine) ConsFunctorV(t TermRef, f FunctorID, base TermRef) {
	arity := m.FunctorArity(f)
	args := make([]TermRef, arity)
	for i := range args {
		args[i] = base + TermRef(i)
	}
	m.consFunctor(t, f, args)
}

func (m *Machine) consFunctor(t TermRef, f FunctorID, args []TermRef) {
	fe := m.functor(f)
	if fe.arity != len(args) {
		panic(fmt.Sprintf("fli: functor %s applied to %d args", m.functorIndicator(f), len(args)))
	}
	name := m.AtomName(fe.name)
	if fe.arity == 0 {
		m.setCell(t, Atom(name))
		return
	}
	cells := make([]Cell, len(args))
	for i, arg := range args {
		cells[i] = m.cell(arg)
	}
	m.setCell(t, &Struct{name, cells})
}

// ConsList builds a list pair in t from the values of head and tail.
func (m *Machine) ConsList(t, head, tail TermRef) {
	m.setCell(t, listPair(m.cell(head), m.cell(tail)))
}

// ---- Get operations
//
// Gets return false when the term does not hold a compatible type.

// GetAtom returns the atom held by t.
func (m *Machine) GetAtom(t TermRef) (AtomID, bool) {
	a, ok := deref(m.cell(t)).(Atom)
	if !ok {
		return 0, false
	}
	return m.intern(string(a)), true
}

// GetAtomName returns the name of the atom held by t.
func (m *Machine) GetAtomName(t TermRef) (string, bool) {
	a, ok := deref(m.cell(t)).(Atom)
	if !ok {
		return "", false
	}
	return string(a), true
}

// GetString returns the string object held by t.
func (m *Machine) GetString(t TermRef) (string, bool) {
	s, ok := deref(m.cell(t)).(Str)
	if !ok {
		return "", false
	}
	return string(s), true
}

// GetInteger returns the integer held by t. Floats with an exact integer
// value convert.
func (m *Machine) GetInteger(t TermRef) (int64, bool) {
	switch c := deref(m.cell(t)).(type) {
	case Int:
		return int64(c), true
	case Float:
		if f := float64(c); f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int64(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// GetBool returns the boolean held by t as the atom true or false.
func (m *Machine) GetBool(t TermRef) (bool, bool) {
	switch deref(m.cell(t)) {
	case Atom("true"):
		return true, true
	case Atom("false"):
		return false, true
	default:
		return false, false
	}
}

// GetPointer returns the opaque address held by t.
func (m *Machine) GetPointer(t TermRef) (uintptr, bool) {
	p, ok := deref(m.cell(t)).(Ptr)
	if !ok {
		return 0, false
	}
	return uintptr(p), true
}

// GetFloat returns the float held by t. Integers convert.
func (m *Machine) GetFloat(t TermRef) (float64, bool) {
	switch c := deref(m.cell(t)).(type) {
	case Float:
		return float64(c), true
	case Int:
		return float64(c), true
	default:
		return 0, false
	}
}

// GetFunctor returns the functor of the compound or atom held by t.
func (m *Machine) GetFunctor(t TermRef) (FunctorID, bool) {
	switch c := deref(m.cell(t)).(type) {
	case Atom:
		return m.NewFunctor(m.intern(string(c)), 0), true
	case *Struct:
		return m.NewFunctor(m.intern(c.Name), len(c.Args)), true
	default:
		return 0, false
	}
}

// GetNameArity returns the name and arity of the compound or atom held by
// t. Atoms report arity 0.
func (m *Machine) GetNameArity(t TermRef) (AtomID, int, bool) {
	switch c := deref(m.cell(t)).(type) {
	case Atom:
		return m.intern(string(c)), 0, true
	case *Struct:
		return m.intern(c.Name), len(c.Args), true
	default:
		return 0, 0, false
	}
}

// GetCompoundNameArity returns the name and arity of the compound held by
// t. Unlike GetNameArity, it fails for atoms.
func (m *Machine) GetCompoundNameArity(t TermRef) (AtomID, int, bool) {
	c, ok := deref(m.cell(t)).(*Struct)
	if !ok {
		return 0, 0, false
	}
	return m.intern(c.Name), len(c.Args), true
}

// GetModule returns the module named by the atom held by t, creating it if
// needed.
func (m *Machine) GetModule(t TermRef) (ModuleID, bool) {
	a, ok := deref(m.cell(t)).(Atom)
	if !ok {
		return 0, false
	}
	return m.NewModule(m.intern(string(a))), true
}

// GetArg assigns the i-th argument (0-based) of the compound held by t to
// the term ref a.
func (m *Machine) GetArg(i int, t, a TermRef) bool {
	s, ok := deref(m.cell(t)).(*Struct)
	if !ok || i < 0 || i >= len(s.Args) {
		return false
	}
	m.setCell(a, s.Args[i])
	return true
}

// GetListHeadTail assigns the head and tail of the list pair held by t.
func (m *Machine) GetListHeadTail(t, head, tail TermRef) bool {
	c := deref(m.cell(t))
	if !isPair(c) {
		return false
	}
	s := c.(*Struct)
	m.setCell(head, s.Args[0])
	m.setCell(tail, s.Args[1])
	return true
}

// GetListHead assigns the head of the list pair held by t.
func (m *Machine) GetListHead(t, head TermRef) bool {
	c := deref(m.cell(t))
	if !isPair(c) {
		return false
	}
	m.setCell(head, c.(*Struct).Args[0])
	return true
}

// GetListTail assigns the tail of the list pair held by t.
func (m *Machine) GetListTail(t, tail TermRef) bool {
	c := deref(m.cell(t))
	if !isPair(c) {
		return false
	}
	m.setCell(tail, c.(*Struct).Args[1])
	return true
}

// GetNil succeeds if t holds the empty list.
func (m *Machine) GetNil(t TermRef) bool {
	return deref(m.cell(t)) == nilAtom
}

// ---- Type predicates

// IsVariable reports whether t holds an unbound variable.
func (m *Machine) IsVariable(t TermRef) bool {
	_, ok := deref(m.cell(t)).(*Ref)
	return ok
}

// IsAtom reports whether t holds an atom. The empty list is an atom in
// this engine, even though it has its own term type.
func (m *Machine) IsAtom(t TermRef) bool {
	_, ok := deref(m.cell(t)).(Atom)
	return ok
}

// IsInteger reports whether t holds an integer.
func (m *Machine) IsInteger(t TermRef) bool {
	_, ok := deref(m.cell(t)).(Int)
	return ok
}

// IsFloat reports whether t holds a float.
func (m *Machine) IsFloat(t TermRef) bool {
	_, ok := deref(m.cell(t)).(Float)
	return ok
}

// IsNumber reports whether t holds an integer or float.
func (m *Machine) IsNumber(t TermRef) bool {
	switch deref(m.cell(t)).(type) {
	case Int, Float:
		return true
	}
	return false
}

// IsString reports whether t holds a string object.
func (m *Machine) IsString(t TermRef) bool {
	_, ok := deref(m.cell(t)).(Str)
	return ok
}

// IsCompound reports whether t holds a compound term, including list pairs.
func (m *Machine) IsCompound(t TermRef) bool {
	_, ok := deref(m.cell(t)).(*Struct)
	return ok
}

// IsCallable reports whether t holds an atom or compound term.
func (m *Machine) IsCallable(t TermRef) bool {
	switch deref(m.cell(t)).(type) {
	case Atom, *Struct:
		return true
	}
	return false
}

// IsAtomic reports whether t holds a constant: not a variable nor compound.
func (m *Machine) IsAtomic(t TermRef) bool {
	switch deref(m.cell(t)).(type) {
	case Atom, Int, Float, Str, Ptr:
		return true
	}
	return false
}

// IsPair reports whether t holds a list pair.
func (m *Machine) IsPair(t TermRef) bool {
	return isPair(deref(m.cell(t)))
}

// IsList reports whether t holds a proper list.
func (m *Machine) IsList(t TermRef) bool {
	return isProperList(m.cell(t))
}

// IsNil reports whether t holds the empty list.
func (m *Machine) IsNil(t TermRef) bool {
	return deref(m.cell(t)) == nilAtom
}

// IsGround reports whether t holds a term with no unbound variables.
func (m *Machine) IsGround(t TermRef) bool {
	return isGround(m.cell(t))
}

// IsAcyclic reports whether t holds an acyclic term.
func (m *Machine) IsAcyclic(t TermRef) bool {
	return isAcyclic(m.cell(t))
}

// IsFunctor reports whether t holds a compound term with functor f.
func (m *Machine) IsFunctor(t TermRef, f FunctorID) bool {
	s, ok := deref(m.cell(t)).(*Struct)
	if !ok {
		return false
	}
	ind := m.functorIndicator(f)
	return s.Name == ind.name && len(s.Args) == ind.arity
}
