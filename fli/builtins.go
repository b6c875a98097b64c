package fli

import (
	"fmt"
	"unicode/utf8"

	"github.com/brunokim/logic-embed/runes"
)

// builtin implements a system predicate. It receives the goal's argument
// cells and returns success plus an exception ball to throw, or nil.
// Non-deterministic builtins push a retry choice point and return false,
// failing into their own first alternative.
type builtin func(m *Machine, s *solver, args []Cell) (bool, Cell)

// controlStub marks control constructs in the predicate table. The solver
// intercepts them by indicator before table dispatch.
func controlStub(m *Machine, s *solver, args []Cell) (bool, Cell) {
	panic("fli: control construct dispatched through the predicate table")
}

type builtinDef struct {
	name  string
	arity int
	fn    builtin
}

func (m *Machine) installBuiltins() {
	defs := []builtinDef{
		{"true", 0, controlStub},
		{"fail", 0, controlStub},
		{"false", 0, controlStub},
		{",", 2, controlStub},
		{";", 2, controlStub},
		{"->", 2, controlStub},
		{"\\+", 1, controlStub},
		{"!", 0, controlStub},
		{"once", 1, controlStub},
		{"catch", 3, controlStub},
		{"throw", 1, controlStub},

		{"=", 2, biUnify},
		{"\\=", 2, biNotUnifiable},
		{"==", 2, biEqual},
		{"\\==", 2, biNotEqual},
		{"@<", 2, biBefore},
		{"@>", 2, biAfter},
		{"@=<", 2, biBeforeEq},
		{"@>=", 2, biAfterEq},
		{"compare", 3, biCompare},

		{"var", 1, biVar},
		{"nonvar", 1, biNonvar},
		{"atom", 1, biAtom},
		{"atomic", 1, biAtomic},
		{"number", 1, biNumber},
		{"integer", 1, biInteger},
		{"float", 1, biFloat},
		{"compound", 1, biCompound},
		{"callable", 1, biCallable},
		{"is_list", 1, biIsList},
		{"string", 1, biString},
		{"ground", 1, biGround},
		{"acyclic_term", 1, biAcyclic},

		{"functor", 3, biFunctor},
		{"arg", 3, biArg},
		{"=..", 2, biUniv},
		{"copy_term", 2, biCopyTerm},

		{"is", 2, biIs},
		{"=:=", 2, arithCmp(func(o int) bool { return o == 0 })},
		{"=\\=", 2, arithCmp(func(o int) bool { return o != 0 })},
		{"<", 2, arithCmp(func(o int) bool { return o < 0 })},
		{">", 2, arithCmp(func(o int) bool { return o > 0 })},
		{"=<", 2, arithCmp(func(o int) bool { return o <= 0 })},
		{">=", 2, arithCmp(func(o int) bool { return o >= 0 })},
		{"succ", 2, biSucc},
		{"plus", 3, biPlus},
		{"between", 3, biBetween},

		{"assert", 1, biAssertz},
		{"assertz", 1, biAssertz},
		{"asserta", 1, biAsserta},
		{"retract", 1, biRetract},
		{"dynamic", 1, biDynamic},

		{"atom_length", 2, biAtomLength},
		{"atom_chars", 2, biAtomChars},
		{"atom_codes", 2, biAtomCodes},
		{"atom_concat", 3, biAtomConcat},
		{"char_code", 2, biCharCode},
		{"atom_string", 2, biAtomString},
		{"string_chars", 2, biStringChars},

		{"write", 1, biWrite},
		{"writeln", 1, biWriteln},
		{"nl", 0, biNl},
	}
	for i := 1; i <= 8; i++ {
		defs = append(defs, builtinDef{"call", i, controlStub})
	}
	for _, def := range defs {
		f := m.NewFunctor(m.NewAtom(def.name), def.arity)
		p := m.createPred(f, m.system)
		p.builtin = def.fn
	}
}

// pushRetry installs a choice point driven by a closure. The closure makes
// its own bindings and returns the goal to continue with, usually true.
// The caller then fails into the choice point, so the first alternative
// and redos share the backtrack path.
func (s *solver) pushRetry(retry func() (Cell, bool)) {
	s.cps = append(s.cps, &choicePoint{
		kind:     cpRetry,
		cont:     s.goals,
		module:   s.current.module,
		cutTo:    len(s.cps),
		trailTop: len(s.m.trail),
		retry:    retry,
	})
}

// ---- Unification and comparison

func biUnify(m *Machine, s *solver, args []Cell) (bool, Cell) {
	return m.unifyCells(args[0], args[1]), nil
}

func biNotUnifiable(m *Machine, s *solver, args []Cell) (bool, Cell) {
	mark := len(m.trail)
	ok := m.unifyCells(args[0], args[1])
	m.undoBindings(mark)
	return !ok, nil
}

func biEqual(m *Machine, s *solver, args []Cell) (bool, Cell) {
	return compareCells(args[0], args[1]) == 0, nil
}

func biNotEqual(m *Machine, s *solver, args []Cell) (bool, Cell) {
	return compareCells(args[0], args[1]) != 0, nil
}

func biBefore(m *Machine, s *solver, args []Cell) (bool, Cell) {
	return compareCells(args[0], args[1]) < 0, nil
}

func biAfter(m *Machine, s *solver, args []Cell) (bool, Cell) {
	return compareCells(args[0], args[1]) > 0, nil
}

func biBeforeEq(m *Machine, s *solver, args []Cell) (bool, Cell) {
	return compareCells(args[0], args[1]) <= 0, nil
}

func biAfterEq(m *Machine, s *solver, args []Cell) (bool, Cell) {
	return compareCells(args[0], args[1]) >= 0, nil
}

func biCompare(m *Machine, s *solver, args []Cell) (bool, Cell) {
	order := deref(args[0])
	switch order := order.(type) {
	case *Ref:
	case Atom:
		if order != "<" && order != "=" && order != ">" {
			return false, m.domainErrorCell("order", order)
		}
	default:
		return false, m.typeErrorCell("atom", order)
	}
	var sym Atom
	switch compareCells(args[1], args[2]) {
	case -1:
		sym = "<"
	case 0:
		sym = "="
	case 1:
		sym = ">"
	}
	return m.unifyCells(args[0], sym), nil
}

// ---- Type tests

func biVar(m *Machine, s *solver, args []Cell) (bool, Cell) {
	_, ok := deref(args[0]).(*Ref)
	return ok, nil
}

func biNonvar(m *Machine, s *solver, args []Cell) (bool, Cell) {
	_, ok := deref(args[0]).(*Ref)
	return !ok, nil
}

func biAtom(m *Machine, s *solver, args []Cell) (bool, Cell) {
	_, ok := deref(args[0]).(Atom)
	return ok, nil
}

func biAtomic(m *Machine, s *solver, args []Cell) (bool, Cell) {
	switch deref(args[0]).(type) {
	case Atom, Int, Float, Str, Ptr:
		return true, nil
	}
	return false, nil
}

func biNumber(m *Machine, s *solver, args []Cell) (bool, Cell) {
	switch deref(args[0]).(type) {
	case Int, Float:
		return true, nil
	}
	return false, nil
}

func biInteger(m *Machine, s *solver, args []Cell) (bool, Cell) {
	_, ok := deref(args[0]).(Int)
	return ok, nil
}

func biFloat(m *Machine, s *solver, args []Cell) (bool, Cell) {
	_, ok := deref(args[0]).(Float)
	return ok, nil
}

func biCompound(m *Machine, s *solver, args []Cell) (bool, Cell) {
	_, ok := deref(args[0]).(*Struct)
	return ok, nil
}

func biCallable(m *Machine, s *solver, args []Cell) (bool, Cell) {
	switch deref(args[0]).(type) {
	case Atom, *Struct:
		return true, nil
	}
	return false, nil
}

func biIsList(m *Machine, s *solver, args []Cell) (bool, Cell) {
	return isProperList(args[0]), nil
}

func biString(m *Machine, s *solver, args []Cell) (bool, Cell) {
	_, ok := deref(args[0]).(Str)
	return ok, nil
}

func biGround(m *Machine, s *solver, args []Cell) (bool, Cell) {
	return isGround(args[0]), nil
}

func biAcyclic(m *Machine, s *solver, args []Cell) (bool, Cell) {
	return isAcyclic(args[0]), nil
}

// ---- Term inspection and construction

func biFunctor(m *Machine, s *solver, args []Cell) (bool, Cell) {
	t := deref(args[0])
	switch t := t.(type) {
	case *Struct:
		return m.unifyCells(args[1], Atom(t.Name)) && m.unifyCells(args[2], Int(len(t.Args))), nil
	case *Ref:
		name := deref(args[1])
		arity := deref(args[2])
		if _, unbound := name.(*Ref); unbound {
			return false, m.instantiationErrorCell()
		}
		if _, unbound := arity.(*Ref); unbound {
			return false, m.instantiationErrorCell()
		}
		n, ok := arity.(Int)
		if !ok {
			return false, m.typeErrorCell("integer", arity)
		}
		if n < 0 {
			return false, m.domainErrorCell("not_less_than_zero", arity)
		}
		if n == 0 {
			if _, compound := name.(*Struct); compound {
				return false, m.typeErrorCell("atomic", name)
			}
			return m.unifyCells(args[0], name), nil
		}
		nameAtom, ok := name.(Atom)
		if !ok {
			return false, m.typeErrorCell("atom", name)
		}
		cells := make([]Cell, n)
		for i := range cells {
			cells[i] = m.newRef()
		}
		return m.unifyCells(args[0], &Struct{string(nameAtom), cells}), nil
	default:
		return m.unifyCells(args[1], t) && m.unifyCells(args[2], Int(0)), nil
	}
}

func biArg(m *Machine, s *solver, args []Cell) (bool, Cell) {
	t := deref(args[1])
	if _, unbound := t.(*Ref); unbound {
		return false, m.instantiationErrorCell()
	}
	ts, ok := t.(*Struct)
	if !ok {
		return false, m.typeErrorCell("compound", t)
	}
	switch n := deref(args[0]).(type) {
	case Int:
		if n < 1 || int(n) > len(ts.Args) {
			return false, nil
		}
		return m.unifyCells(args[2], ts.Args[n-1]), nil
	case *Ref:
		i := 0
		s.pushRetry(func() (Cell, bool) {
			for i < len(ts.Args) {
				i++
				mark := len(m.trail)
				if m.unifyCells(args[0], Int(i)) && m.unifyCells(args[2], ts.Args[i-1]) {
					return Atom("true"), true
				}
				m.undoBindings(mark)
			}
			return nil, false
		})
		return false, nil
	default:
		return false, m.typeErrorCell("integer", deref(args[0]))
	}
}

func biUniv(m *Machine, s *solver, args []Cell) (bool, Cell) {
	t := deref(args[0])
	switch t := t.(type) {
	case *Struct:
		elems := make([]Cell, 0, len(t.Args)+1)
		elems = append(elems, Atom(t.Name))
		elems = append(elems, t.Args...)
		return m.unifyCells(args[1], mkList(elems...)), nil
	case *Ref:
		elems, tail := unrollList(deref(args[1]))
		if _, unbound := deref(tail).(*Ref); unbound {
			return false, m.instantiationErrorCell()
		}
		if deref(tail) != nilAtom {
			return false, m.typeErrorCell("list", deref(args[1]))
		}
		if len(elems) == 0 {
			return false, m.domainErrorCell("non_empty_list", nilAtom)
		}
		head := deref(elems[0])
		if _, unbound := head.(*Ref); unbound {
			return false, m.instantiationErrorCell()
		}
		if len(elems) == 1 {
			if _, compound := head.(*Struct); compound {
				return false, m.typeErrorCell("atomic", head)
			}
			return m.unifyCells(args[0], head), nil
		}
		name, ok := head.(Atom)
		if !ok {
			return false, m.typeErrorCell("atom", head)
		}
		cells := make([]Cell, len(elems)-1)
		copy(cells, elems[1:])
		return m.unifyCells(args[0], &Struct{string(name), cells}), nil
	default:
		return m.unifyCells(args[1], mkList(t)), nil
	}
}

func biCopyTerm(m *Machine, s *solver, args []Cell) (bool, Cell) {
	copied := copyCell(args[0], make(map[*Ref]*Ref), make(map[*Struct]*Struct), m)
	return m.unifyCells(args[1], copied), nil
}

// ---- Arithmetic

func biIs(m *Machine, s *solver, args []Cell) (bool, Cell) {
	val, ball := m.evalArith(args[1])
	if ball != nil {
		return false, ball
	}
	return m.unifyCells(args[0], val), nil
}

func arithCmp(pred func(int) bool) builtin {
	return func(m *Machine, s *solver, args []Cell) (bool, Cell) {
		a, ball := m.evalArith(args[0])
		if ball != nil {
			return false, ball
		}
		b, ball := m.evalArith(args[1])
		if ball != nil {
			return false, ball
		}
		return pred(compareArith(a, b)), nil
	}
}

func biSucc(m *Machine, s *solver, args []Cell) (bool, Cell) {
	a := deref(args[0])
	switch a := a.(type) {
	case Int:
		if a < 0 {
			return false, m.typeErrorCell("not_less_than_zero", a)
		}
		return m.unifyCells(args[1], a+1), nil
	case *Ref:
		b := deref(args[1])
		if _, unbound := b.(*Ref); unbound {
			return false, m.instantiationErrorCell()
		}
		n, ok := b.(Int)
		if !ok {
			return false, m.typeErrorCell("integer", b)
		}
		if n < 0 {
			return false, m.typeErrorCell("not_less_than_zero", b)
		}
		if n == 0 {
			return false, nil
		}
		return m.unifyCells(args[0], n-1), nil
	default:
		return false, m.typeErrorCell("integer", a)
	}
}

func biPlus(m *Machine, s *solver, args []Cell) (bool, Cell) {
	cells := make([]Cell, 3)
	ints := make([]Int, 3)
	bound := 0
	for i := range args {
		cells[i] = deref(args[i])
		switch c := cells[i].(type) {
		case Int:
			ints[i] = c
			bound++
		case *Ref:
		default:
			return false, m.typeErrorCell("integer", c)
		}
	}
	if bound < 2 {
		return false, m.instantiationErrorCell()
	}
	switch {
	case isRef(cells[2]):
		return m.unifyCells(args[2], ints[0]+ints[1]), nil
	case isRef(cells[1]):
		return m.unifyCells(args[1], ints[2]-ints[0]), nil
	case isRef(cells[0]):
		return m.unifyCells(args[0], ints[2]-ints[1]), nil
	default:
		return ints[0]+ints[1] == ints[2], nil
	}
}

func isRef(c Cell) bool {
	_, ok := c.(*Ref)
	return ok
}

func biBetween(m *Machine, s *solver, args []Cell) (bool, Cell) {
	low, ball := betweenBound(m, args[0])
	if ball != nil {
		return false, ball
	}
	high, ball := betweenBound(m, args[1])
	if ball != nil {
		return false, ball
	}
	switch x := deref(args[2]).(type) {
	case Int:
		return low <= x && x <= high, nil
	case *Ref:
		n := low
		s.pushRetry(func() (Cell, bool) {
			if n > high {
				return nil, false
			}
			m.unifyCells(args[2], n)
			n++
			return Atom("true"), true
		})
		return false, nil
	default:
		return false, m.typeErrorCell("integer", x)
	}
}

func betweenBound(m *Machine, arg Cell) (Int, Cell) {
	switch c := deref(arg).(type) {
	case Int:
		return c, nil
	case *Ref:
		return 0, m.instantiationErrorCell()
	default:
		return 0, m.typeErrorCell("integer", c)
	}
}

// ---- Database

func biAssertz(m *Machine, s *solver, args []Cell) (bool, Cell) {
	ball := m.addClause(s.current.module, args[0], false, true)
	return ball == nil, ball
}

func biAsserta(m *Machine, s *solver, args []Cell) (bool, Cell) {
	ball := m.addClause(s.current.module, args[0], true, true)
	return ball == nil, ball
}

func biRetract(m *Machine, s *solver, args []Cell) (bool, Cell) {
	head, body := splitClause(args[0])
	head = deref(head)
	switch head.(type) {
	case *Ref:
		return false, m.instantiationErrorCell()
	case Atom, *Struct:
	default:
		return false, m.typeErrorCell("callable", head)
	}
	ind, _ := goalIndicator(head)
	p := m.lookupPred(s.current.module, ind)
	if p == nil {
		return false, nil
	}
	if p.builtin != nil {
		return false, m.permissionErrorCell("modify", "static_procedure", indicatorCell(ind))
	}
	if !p.dynamic {
		if len(p.clauses) == 0 {
			return false, nil
		}
		return false, m.permissionErrorCell("modify", "static_procedure", indicatorCell(ind))
	}
	snapshot := p.clauses
	i := 0
	s.pushRetry(func() (Cell, bool) {
		for i < len(snapshot) {
			cl := snapshot[i]
			i++
			refs := make(map[*Ref]*Ref)
			structs := make(map[*Struct]*Struct)
			renamedHead := copyCell(cl.head, refs, structs, m)
			renamedBody := copyCell(cl.body, refs, structs, m)
			mark := len(m.trail)
			if m.unifyCells(head, renamedHead) && m.unifyCells(body, renamedBody) {
				m.removeClause(p, cl)
				return Atom("true"), true
			}
			m.undoBindings(mark)
		}
		return nil, false
	})
	return false, nil
}

func biDynamic(m *Machine, s *solver, args []Cell) (bool, Cell) {
	ball := m.declareDynamic(s.current.module, args[0])
	return ball == nil, ball
}

// ---- Atoms and strings

func biAtomLength(m *Machine, s *solver, args []Cell) (bool, Cell) {
	a := deref(args[0])
	atom, ok := a.(Atom)
	if !ok {
		if isRef(a) {
			return false, m.instantiationErrorCell()
		}
		return false, m.typeErrorCell("atom", a)
	}
	switch length := deref(args[1]).(type) {
	case Int, *Ref:
		return m.unifyCells(args[1], Int(utf8.RuneCountInString(string(atom)))), nil
	default:
		return false, m.typeErrorCell("integer", length)
	}
}

func biAtomChars(m *Machine, s *solver, args []Cell) (bool, Cell) {
	switch a := deref(args[0]).(type) {
	case Atom:
		return m.unifyCells(args[1], charsList(string(a))), nil
	case *Ref:
		text, ball := charsText(m, args[1])
		if ball != nil {
			return false, ball
		}
		return m.unifyCells(args[0], Atom(text)), nil
	default:
		return false, m.typeErrorCell("atom", a)
	}
}

func biAtomCodes(m *Machine, s *solver, args []Cell) (bool, Cell) {
	switch a := deref(args[0]).(type) {
	case Atom:
		return m.unifyCells(args[1], codesList(string(a))), nil
	case *Ref:
		text, ball := codesText(m, args[1])
		if ball != nil {
			return false, ball
		}
		return m.unifyCells(args[0], Atom(text)), nil
	default:
		return false, m.typeErrorCell("atom", a)
	}
}

// charsText rebuilds a string from a proper list of one-char atoms.
func charsText(m *Machine, list Cell) (string, Cell) {
	elems, ball := properListElems(m, list)
	if elems == nil {
		return "", ball
	}
	rs := make([]rune, len(elems))
	for i, elem := range elems {
		c := deref(elem)
		ch, ok := c.(Atom)
		if !ok {
			if isRef(c) {
				return "", m.instantiationErrorCell()
			}
			return "", m.typeErrorCell("character", c)
		}
		r, ok := runes.Single(string(ch))
		if !ok {
			return "", m.typeErrorCell("character", c)
		}
		rs[i] = r
	}
	return string(rs), nil
}

// codesText rebuilds a string from a proper list of char codes.
func codesText(m *Machine, list Cell) (string, Cell) {
	elems, ball := properListElems(m, list)
	if elems == nil {
		return "", ball
	}
	rs := make([]rune, len(elems))
	for i, elem := range elems {
		c := deref(elem)
		code, ok := c.(Int)
		if !ok {
			if isRef(c) {
				return "", m.instantiationErrorCell()
			}
			return "", m.representationErrorCell("character_code")
		}
		if code < 0 || code > utf8.MaxRune {
			return "", m.representationErrorCell("character_code")
		}
		rs[i] = rune(code)
	}
	return string(rs), nil
}

// properListElems returns the list's elements, or nil and an exception
// ball when the cell is not a proper list.
func properListElems(m *Machine, list Cell) ([]Cell, Cell) {
	elems, tail := unrollList(deref(list))
	if isRef(deref(tail)) {
		return nil, m.instantiationErrorCell()
	}
	if deref(tail) != nilAtom {
		return nil, m.typeErrorCell("list", deref(list))
	}
	if elems == nil {
		elems = []Cell{}
	}
	return elems, nil
}

func biAtomConcat(m *Machine, s *solver, args []Cell) (bool, Cell) {
	a := deref(args[0])
	b := deref(args[1])
	for _, c := range []Cell{a, b} {
		switch c.(type) {
		case Atom, *Ref:
		default:
			return false, m.typeErrorCell("atom", c)
		}
	}
	aAtom, aok := a.(Atom)
	bAtom, bok := b.(Atom)
	if aok && bok {
		return m.unifyCells(args[2], aAtom+bAtom), nil
	}
	whole := deref(args[2])
	wAtom, ok := whole.(Atom)
	if !ok {
		if isRef(whole) {
			return false, m.instantiationErrorCell()
		}
		return false, m.typeErrorCell("atom", whole)
	}
	text := string(wAtom)
	splits := make([]int, 0, len(text)+1)
	for idx := range text {
		splits = append(splits, idx)
	}
	splits = append(splits, len(text))
	k := 0
	s.pushRetry(func() (Cell, bool) {
		for k < len(splits) {
			split := splits[k]
			k++
			mark := len(m.trail)
			if m.unifyCells(args[0], Atom(text[:split])) && m.unifyCells(args[1], Atom(text[split:])) {
				return Atom("true"), true
			}
			m.undoBindings(mark)
		}
		return nil, false
	})
	return false, nil
}

func biCharCode(m *Machine, s *solver, args []Cell) (bool, Cell) {
	switch c := deref(args[0]).(type) {
	case Atom:
		r, ok := runes.Single(string(c))
		if !ok {
			return false, m.typeErrorCell("character", c)
		}
		return m.unifyCells(args[1], Int(r)), nil
	case *Ref:
		code := deref(args[1])
		n, ok := code.(Int)
		if !ok {
			if isRef(code) {
				return false, m.instantiationErrorCell()
			}
			return false, m.typeErrorCell("integer", code)
		}
		if n < 0 || n > utf8.MaxRune {
			return false, m.representationErrorCell("character_code")
		}
		return m.unifyCells(args[0], Atom(string(rune(n)))), nil
	default:
		return false, m.typeErrorCell("character", c)
	}
}

func biAtomString(m *Machine, s *solver, args []Cell) (bool, Cell) {
	switch a := deref(args[0]).(type) {
	case Atom:
		return m.unifyCells(args[1], Str(string(a))), nil
	case Int, Float:
		return m.unifyCells(args[1], Str(formatCell(a))), nil
	case *Ref:
		str, ok := deref(args[1]).(Str)
		if !ok {
			if isRef(deref(args[1])) {
				return false, m.instantiationErrorCell()
			}
			return false, m.typeErrorCell("string", deref(args[1]))
		}
		return m.unifyCells(args[0], Atom(string(str))), nil
	default:
		return false, m.typeErrorCell("atom", a)
	}
}

func biStringChars(m *Machine, s *solver, args []Cell) (bool, Cell) {
	switch str := deref(args[0]).(type) {
	case Str:
		return m.unifyCells(args[1], charsList(string(str))), nil
	case *Ref:
		text, ball := charsText(m, args[1])
		if ball != nil {
			return false, ball
		}
		return m.unifyCells(args[0], Str(text)), nil
	default:
		return false, m.typeErrorCell("string", str)
	}
}

// ---- Output

func biWrite(m *Machine, s *solver, args []Cell) (bool, Cell) {
	fmt.Fprint(m.out, formatCell(args[0]))
	return true, nil
}

func biWriteln(m *Machine, s *solver, args []Cell) (bool, Cell) {
	fmt.Fprintln(m.out, formatCell(args[0]))
	return true, nil
}

func biNl(m *Machine, s *solver, args []Cell) (bool, Cell) {
	fmt.Fprintln(m.out)
	return true, nil
}
