package fli

import (
	"fmt"
)

// ---- Trail

// bind must be called with at least one unbound ref.
func (m *Machine) bind(c1, c2 Cell) {
	if ref1, ok := c1.(*Ref); ok && ref1.Cell == nil {
		ref1.Cell = c2
		m.trailRef(ref1)
		return
	}
	if ref2, ok := c2.(*Ref); ok && ref2.Cell == nil {
		ref2.Cell = c1
		m.trailRef(ref2)
		return
	}
	panic(fmt.Sprintf("bind(%v, %v): no unbound refs", c1, c2))
}

// trailRef records a binding for later undoing. Every binding is trailed:
// frames and queries set undo marks independently of choice points, so
// there is no "unconditional" binding that could be skipped.
func (m *Machine) trailRef(ref *Ref) {
	m.trail = append(m.trail, ref)
}

// undoBindings resets all bindings made since the trail had length mark.
func (m *Machine) undoBindings(mark int) {
	for _, ref := range m.trail[mark:] {
		ref.Cell = nil
	}
	m.trail = m.trail[:mark]
}

// ---- Unification

type cellPair struct {
	c1, c2 Cell
}

// unifyCells binds unbound refs to the other cell, or compares bound cells
// for equality, depth-first. Terms may be cyclic: a pair of structs already
// under comparison unifies trivially. On failure, bindings made so far are
// kept; callers undo them by unwinding to their own trail mark.
func (m *Machine) unifyCells(a1, a2 Cell) bool {
	stack := []Cell{a1, a2}
	var seen map[cellPair]struct{}
	for len(stack) > 0 {
		n := len(stack)
		a1, a2 := stack[n-2], stack[n-1]
		stack = stack[:n-2]
		c1, c2 := deref(a1), deref(a2)
		if c1 == c2 {
			continue
		}
		_, isRef1 := c1.(*Ref)
		_, isRef2 := c2.(*Ref)
		if isRef1 || isRef2 {
			m.bind(c1, c2)
			continue
		}
		switch t1 := c1.(type) {
		case Atom, Int, Float, Str, Ptr:
			if c1 != c2 {
				return false
			}
		case *Struct:
			t2, ok := c2.(*Struct)
			if !ok {
				return false
			}
			if t1.Name != t2.Name || len(t1.Args) != len(t2.Args) {
				return false
			}
			if seen == nil {
				seen = make(map[cellPair]struct{})
			}
			if _, ok := seen[cellPair{t1, t2}]; ok {
				continue
			}
			seen[cellPair{t1, t2}] = struct{}{}
			for i := range t1.Args {
				stack = append(stack, t1.Args[i], t2.Args[i])
			}
		default:
			panic(fmt.Sprintf("unifyCells: unhandled type %T (%v)", c1, c1))
		}
	}
	return true
}

// Unify attempts to unify the two terms, binding variables through the
// trail. Returns whether unification succeeded.
func (m *Machine) Unify(t1, t2 TermRef) bool {
	return m.unifyCells(m.cell(t1), m.cell(t2))
}

// UnifyAtom unifies t with an atom.
func (m *Machine) UnifyAtom(t TermRef, a AtomID) bool {
	return m.unifyCells(m.cell(t), Atom(m.AtomName(a)))
}

// UnifyAtomName unifies t with the atom named name.
func (m *Machine) UnifyAtomName(t TermRef, name string) bool {
	return m.unifyCells(m.cell(t), Atom(name))
}

// UnifyBool unifies t with the atom true or false.
func (m *Machine) UnifyBool(t TermRef, b bool) bool {
	return m.unifyCells(m.cell(t), boolAtom(b))
}

// UnifyInteger unifies t with an integer.
func (m *Machine) UnifyInteger(t TermRef, i int64) bool {
	return m.unifyCells(m.cell(t), Int(i))
}

// UnifyFloat unifies t with a float.
func (m *Machine) UnifyFloat(t TermRef, f float64) bool {
	return m.unifyCells(m.cell(t), Float(f))
}

// UnifyString unifies t with a string object.
func (m *Machine) UnifyString(t TermRef, s string) bool {
	return m.unifyCells(m.cell(t), Str(s))
}

// UnifyListChars unifies t with a list of one-char atoms spelling s.
func (m *Machine) UnifyListChars(t TermRef, s string) bool {
	return m.unifyCells(m.cell(t), charsList(s))
}

// UnifyNil unifies t with the empty list.
func (m *Machine) UnifyNil(t TermRef) bool {
	return m.unifyCells(m.cell(t), nilAtom)
}

// UnifyFunctor unifies t with a compound of the given functor whose
// arguments are fresh variables. With arity 0, unifies with the name atom.
func (m *Machine) UnifyFunctor(t TermRef, f FunctorID) bool {
	return m.unifyCells(m.cell(t), m.functorCell(f))
}

// UnifyPair unifies t with a list pair built from head and tail.
func (m *Machine) UnifyPair(t, head, tail TermRef) bool {
	return m.unifyCells(m.cell(t), listPair(m.cell(head), m.cell(tail)))
}

// UnifyArg unifies the i-th argument (0-based) of compound t with a.
func (m *Machine) UnifyArg(i int, t, a TermRef) bool {
	s, ok := deref(m.cell(t)).(*Struct)
	if !ok || i < 0 || i >= len(s.Args) {
		return false
	}
	return m.unifyCells(s.Args[i], m.cell(a))
}

func boolAtom(b bool) Atom {
	if b {
		return Atom("true")
	}
	return Atom("false")
}

// functorCell builds a cell for functor f with fresh variable args.
func (m *Machine) functorCell(f FunctorID) Cell {
	fe := m.functor(f)
	name := m.AtomName(fe.name)
	if fe.arity == 0 {
		return Atom(name)
	}
	args := make([]Cell, fe.arity)
	for i := range args {
		args[i] = m.newRef()
	}
	return &Struct{name, args}
}

// ---- Standard order of terms

// cellOrder ranks cell types: Var < Number < Atom < String < Ptr < Compound.
func cellOrder(c Cell) int {
	switch c := c.(type) {
	case *Ref:
		return 1
	case Int, Float:
		return 2
	case Atom:
		return 3
	case Str:
		return 4
	case Ptr:
		return 5
	case *Struct:
		return 10
	default:
		panic(fmt.Sprintf("cellOrder: unhandled type %T (%v)", c, c))
	}
}

// compareCells implements the standard order of terms: -1, 0 or +1.
// Numbers compare by value with Float preceding Int on ties; compounds by
// arity, then name, then args. Cyclic terms compare equal on the loop.
func compareCells(a1, a2 Cell) int {
	queue := []Cell{a1, a2}
	var seen map[cellPair]struct{}
	for len(queue) > 0 {
		c1, c2 := deref(queue[0]), deref(queue[1])
		queue = queue[2:]
		if c1 == c2 {
			continue
		}
		if o := compareInts(cellOrder(c1), cellOrder(c2)); o != 0 {
			return o
		}
		switch t1 := c1.(type) {
		case *Ref:
			t2 := c2.(*Ref)
			if o := compareInts(t1.id, t2.id); o != 0 {
				return o
			}
		case Int, Float:
			if o := compareNumbers(c1, c2); o != 0 {
				return o
			}
		case Atom:
			t2 := c2.(Atom)
			if o := compareStrings(string(t1), string(t2)); o != 0 {
				return o
			}
		case Str:
			t2 := c2.(Str)
			if o := compareStrings(string(t1), string(t2)); o != 0 {
				return o
			}
		case Ptr:
			t2 := c2.(Ptr)
			if o := compareInts(int(t1), int(t2)); o != 0 {
				return o
			}
		case *Struct:
			t2 := c2.(*Struct)
			if o := compareInts(len(t1.Args), len(t2.Args)); o != 0 {
				return o
			}
			if o := compareStrings(t1.Name, t2.Name); o != 0 {
				return o
			}
			if seen == nil {
				seen = make(map[cellPair]struct{})
			}
			if _, ok := seen[cellPair{t1, t2}]; ok {
				continue
			}
			seen[cellPair{t1, t2}] = struct{}{}
			for i := range t1.Args {
				queue = append(queue, t1.Args[i], t2.Args[i])
			}
		default:
			panic(fmt.Sprintf("compareCells: unhandled type %T (%v)", c1, c1))
		}
	}
	return 0
}

func compareInts(i1, i2 int) int {
	if i1 < i2 {
		return -1
	}
	if i1 > i2 {
		return 1
	}
	return 0
}

func compareStrings(s1, s2 string) int {
	if s1 < s2 {
		return -1
	}
	if s1 > s2 {
		return 1
	}
	return 0
}

func compareNumbers(c1, c2 Cell) int {
	f1, int1 := numberValue(c1)
	f2, int2 := numberValue(c2)
	if f1 < f2 {
		return -1
	}
	if f1 > f2 {
		return 1
	}
	// Numerically equal: Float precedes Int.
	if !int1 && int2 {
		return -1
	}
	if int1 && !int2 {
		return 1
	}
	return 0
}

func numberValue(c Cell) (value float64, isInt bool) {
	switch c := c.(type) {
	case Int:
		return float64(c), true
	case Float:
		return float64(c), false
	default:
		panic(fmt.Sprintf("numberValue: unhandled type %T (%v)", c, c))
	}
}

// Compare orders two terms in the standard order of terms.
func (m *Machine) Compare(t1, t2 TermRef) int {
	return compareCells(m.cell(t1), m.cell(t2))
}
