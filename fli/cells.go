package fli

import (
	"fmt"
)

// Cell is a term representation in the machine's term store.
//
// Mutation happens only through *Ref cells: an unbound ref has Cell == nil,
// and binding it writes the bound cell in place. All other cells are
// immutable once built. Struct args may form cycles; any code that walks
// cells must keep a seen set.
type Cell interface {
	isCell()
	fmt.Stringer
}

// Atom is an interned symbol constant, e.g. 'foo', '[]', '.'.
type Atom string

// Int is an integer constant.
type Int int64

// Float is a floating-point constant.
type Float float64

// Str is a string object, distinct from atoms and char lists.
type Str string

// Ptr is an opaque machine address stored as a term.
type Ptr uintptr

// Ref is a variable cell. Unbound when Cell is nil; binding is undone by
// resetting Cell to nil via the trail.
type Ref struct {
	Cell Cell
	id   int
}

// Struct is a compound term. List pairs are structs with name "." and
// arity 2, terminated by the atom '[]'.
type Struct struct {
	Name string
	Args []Cell
}

func (c Atom) isCell()    {}
func (c Int) isCell()     {}
func (c Float) isCell()   {}
func (c Str) isCell()     {}
func (c Ptr) isCell()     {}
func (c *Ref) isCell()    {}
func (c *Struct) isCell() {}

func (c Atom) String() string    { return formatCell(c) }
func (c Int) String() string     { return formatCell(c) }
func (c Float) String() string   { return formatCell(c) }
func (c Str) String() string     { return formatCell(c) }
func (c Ptr) String() string     { return formatCell(c) }
func (c *Ref) String() string    { return formatCell(c) }
func (c *Struct) String() string { return formatCell(c) }

const (
	nilAtom  = Atom("[]")
	pairName = "."
)

// indicator identifies a predicate or functor as name/arity.
type indicator struct {
	name  string
	arity int
}

func (ind indicator) String() string {
	return fmt.Sprintf("%s/%d", ind.name, ind.arity)
}

func structIndicator(s *Struct) indicator {
	return indicator{s.Name, len(s.Args)}
}

func listPair(head, tail Cell) *Struct {
	return &Struct{pairName, []Cell{head, tail}}
}

func isPair(c Cell) bool {
	s, ok := c.(*Struct)
	return ok && s.Name == pairName && len(s.Args) == 2
}

// mkList builds a proper list from elems.
func mkList(elems ...Cell) Cell {
	return mkListTail(elems, nilAtom)
}

func mkListTail(elems []Cell, tail Cell) Cell {
	list := tail
	for i := len(elems) - 1; i >= 0; i-- {
		list = listPair(elems[i], list)
	}
	return list
}

// charsList builds a list of one-char atoms from s.
func charsList(s string) Cell {
	var elems []Cell
	for _, ch := range s {
		elems = append(elems, Atom(string(ch)))
	}
	return mkList(elems...)
}

// codesList builds a list of char codes from s.
func codesList(s string) Cell {
	var elems []Cell
	for _, ch := range s {
		elems = append(elems, Int(ch))
	}
	return mkList(elems...)
}

// deref walks the reference chain until it finds a non-ref cell, or an unbound ref.
func deref(cell Cell) Cell {
	ref, ok := cell.(*Ref)
	for ok && ref.Cell != nil {
		cell = ref.Cell
		ref, ok = cell.(*Ref)
	}
	return cell
}

// isGround returns whether cell and its component cells are ground, that is,
// there's no unbound reference within.
func isGround(cell Cell) bool {
	stack := []Cell{cell}
	seen := make(map[Cell]struct{})
	for len(stack) > 0 {
		n := len(stack)
		cell := deref(stack[n-1])
		stack = stack[:n-1]
		// Check for reference loop.
		if _, ok := seen[cell]; ok {
			continue
		}
		seen[cell] = struct{}{}
		switch c := cell.(type) {
		case Atom, Int, Float, Str, Ptr:
			continue
		case *Ref:
			return false
		case *Struct:
			stack = append(stack, c.Args...)
		default:
			panic(fmt.Sprintf("isGround: unhandled type %T (%v)", cell, cell))
		}
	}
	return true
}

// isAcyclic returns whether no cell is reachable from itself through bound
// refs and struct args.
func isAcyclic(cell Cell) bool {
	// parents holds the cells on the path from the root to the current one.
	parents := make(map[Cell]struct{})
	var walk func(Cell) bool
	walk = func(cell Cell) bool {
		cell = deref(cell)
		s, ok := cell.(*Struct)
		if !ok {
			return true
		}
		if _, ok := parents[s]; ok {
			return false
		}
		parents[s] = struct{}{}
		defer delete(parents, s)
		for _, arg := range s.Args {
			if !walk(arg) {
				return false
			}
		}
		return true
	}
	return walk(cell)
}

// unrollList returns the elements of a list cell and its tail. A proper list
// has tail '[]'; a partial list ends in an unbound ref. Stops on a cycle.
func unrollList(c Cell) ([]Cell, Cell) {
	var elems []Cell
	seen := make(map[Cell]struct{})
	c = deref(c)
	for isPair(c) {
		if _, ok := seen[c]; ok {
			break
		}
		seen[c] = struct{}{}
		pair := c.(*Struct)
		elems = append(elems, pair.Args[0])
		c = deref(pair.Args[1])
	}
	return elems, c
}

// isProperList reports whether c is a nil-terminated, acyclic list.
func isProperList(c Cell) bool {
	_, tail := unrollList(c)
	return tail == nilAtom
}
