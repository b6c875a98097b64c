package fli

import (
	"fmt"
)

// QueryFlag bits accepted by OpenQuery.
type QueryFlag int

const (
	// QNodebug suppresses the debug trace for goals run by the query.
	QNodebug QueryFlag = 1 << iota
	// QCatchException keeps uncaught exceptions on the query instead of
	// the machine's global exception cell.
	QCatchException
)

// engineQuery is a paused solver. NextSolution resumes it; the query stays
// on the machine's query stack until cut or closed.
type engineQuery struct {
	id        QueryID
	flags     QueryFlag
	module    ModuleID
	goal      Cell
	s         *solver
	trailTop  int
	started   bool
	done      bool
	exception Cell
}

// goalEntry is a node of the solver's continuation. cutTo is the
// choice-point stack height that a cut in this goal truncates to.
type goalEntry struct {
	goal   Cell
	module ModuleID
	cutTo  int
	next   *goalEntry
}

type cpKind int

const (
	// cpClauses retries the remaining clauses of a predicate call.
	cpClauses cpKind = iota
	// cpAlt runs a single alternative goal, for disjunctions.
	cpAlt
	// cpRetry asks a builtin's closure for the next alternative.
	cpRetry
	// cpCatch is a catch/3 frame; it offers no alternatives.
	cpCatch
)

type choicePoint struct {
	kind     cpKind
	cont     *goalEntry
	module   ModuleID
	cutTo    int
	trailTop int
	tried    bool

	goal    Cell      // cpClauses: calling goal, unified against each head
	clauses []*clause // cpClauses: remaining alternatives

	alt Cell // cpAlt: the alternative goal

	retry func() (Cell, bool) // cpRetry: next alternative goal

	catcher  Cell // cpCatch
	recovery Cell // cpCatch
}

// solver runs SLD resolution over a goal list and a choice-point stack.
// There is no separate run loop state: an open query owns a solver and
// resumes it on each NextSolution.
type solver struct {
	m       *Machine
	eq      *engineQuery // nil for the call-once path
	root    Cell
	goals   *goalEntry
	cps     []*choicePoint
	current *goalEntry // entry being dispatched, read by builtins
	ball    Cell       // uncaught exception, set when run returns false
}

// commitCell is an internal goal marker: truncate the choice-point stack
// to the given height. It never appears inside terms.
type commitCell int

func (c commitCell) isCell()        {}
func (c commitCell) String() string { return fmt.Sprintf("$commit(%d)", int(c)) }

// popCatchCell disarms a catch frame once the guarded goal has succeeded
// deterministically.
type popCatchCell struct {
	cp  *choicePoint
	idx int
}

func (c *popCatchCell) isCell()        {}
func (c *popCatchCell) String() string { return "$pop_catch" }

// ---- Queries

// OpenQuery starts a query calling pred with the argument run starting at
// args, in the given module (zero means the context module). The query is
// pushed on the query stack; queries nest in LIFO order and only the
// innermost may advance.
func (m *Machine) OpenQuery(module ModuleID, flags QueryFlag, pred PredicateID, args TermRef) QueryID {
	p := m.pred(pred)
	if module == 0 {
		module = m.context
	}
	goal := m.callCell(p, args)
	m.nextQueryID++
	eq := &engineQuery{
		id:       m.nextQueryID,
		flags:    flags,
		module:   module,
		goal:     goal,
		trailTop: len(m.trail),
	}
	eq.s = &solver{
		m:     m,
		eq:    eq,
		root:  goal,
		goals: &goalEntry{goal, module, 0, nil},
	}
	m.queries = append(m.queries, eq)
	return eq.id
}

// callCell builds the goal cell for calling p with the contiguous argument
// run starting at args. The argument cells are shared, so solution
// bindings remain visible through the caller's term refs.
func (m *Machine) callCell(p *predicate, args TermRef) Cell {
	if p.ind.arity == 0 {
		return Atom(p.ind.name)
	}
	cells := make([]Cell, p.ind.arity)
	for i := range cells {
		cells[i] = m.cell(args + TermRef(i))
	}
	return &Struct{p.ind.name, cells}
}

// NextSolution advances the innermost query to its next solution. It
// returns false when the query is exhausted or an exception was thrown;
// QueryException distinguishes the two.
func (m *Machine) NextSolution(q QueryID) bool {
	eq := m.query(q)
	m.checkInnermost(eq)
	if eq.done {
		return false
	}
	s := eq.s
	if eq.started {
		if !s.backtrack() {
			return m.settle(eq, false, nil)
		}
	} else {
		eq.started = true
	}
	solved, ball := s.run()
	return m.settle(eq, solved, ball)
}

// settle records the outcome of a solver step on its query. Exhaustion and
// uncaught exceptions both rewind the trail to the query's opening mark.
func (m *Machine) settle(eq *engineQuery, solved bool, ball Cell) bool {
	if solved {
		return true
	}
	eq.done = true
	m.undoBindings(eq.trailTop)
	if ball != nil {
		eq.exception = ball
		if eq.flags&QCatchException == 0 {
			m.exception = ball
		}
	}
	return false
}

// QueryException returns a term ref holding the query's uncaught
// exception, or 0 if none was thrown.
func (m *Machine) QueryException(q QueryID) TermRef {
	eq := m.query(q)
	if eq.exception == nil {
		return 0
	}
	t := m.NewTermRefs(1)
	m.setCell(t, eq.exception)
	return t
}

// CutQuery ends the innermost query, dropping its choice points but
// keeping the bindings of the last solution.
func (m *Machine) CutQuery(q QueryID) {
	eq := m.query(q)
	m.checkInnermost(eq)
	m.popQuery()
}

// CloseQuery ends the innermost query, dropping its choice points and
// undoing all bindings made since it was opened.
func (m *Machine) CloseQuery(q QueryID) {
	eq := m.query(q)
	m.checkInnermost(eq)
	m.undoBindings(eq.trailTop)
	m.popQuery()
}

func (m *Machine) query(q QueryID) *engineQuery {
	for _, eq := range m.queries {
		if eq.id == q {
			return eq
		}
	}
	panic(fmt.Sprintf("fli: invalid query handle %d", q))
}

func (m *Machine) checkInnermost(eq *engineQuery) {
	if m.queries[len(m.queries)-1] != eq {
		panic(fmt.Sprintf("fli: query %d is not the innermost", eq.id))
	}
}

func (m *Machine) popQuery() {
	m.queries = m.queries[:len(m.queries)-1]
}

// ---- Call-once

// Call runs the goal held by t like once/1: the first solution's bindings
// are kept and its choice points dropped. On failure all bindings are
// undone; an uncaught exception additionally lands in the machine's
// pending exception cell.
func (m *Machine) Call(t TermRef, module ModuleID) bool {
	return m.callGoal(m.cell(t), module)
}

// CallPredicate calls pred once with the argument run starting at args.
func (m *Machine) CallPredicate(module ModuleID, flags QueryFlag, pred PredicateID, args TermRef) bool {
	return m.callGoal(m.callCell(m.pred(pred), args), module)
}

func (m *Machine) callGoal(goal Cell, module ModuleID) bool {
	if module == 0 {
		module = m.context
	}
	mark := len(m.trail)
	s := &solver{
		m:     m,
		root:  goal,
		goals: &goalEntry{goal, module, 0, nil},
	}
	solved, ball := s.run()
	if solved {
		return true
	}
	m.undoBindings(mark)
	if ball != nil {
		m.exception = ball
	}
	return false
}

// ---- Solver loop

// run resolves goals until a solution, exhaustion, or an uncaught
// exception. The solver state survives a solution, so backtrack plus run
// yields the next one.
func (s *solver) run() (bool, Cell) {
	limit := s.m.config.IterLimit
	steps := 0
	for {
		if limit > 0 {
			steps++
			if steps > limit {
				// A caught limit gives the recovery goal a fresh budget.
				steps = 0
				if !s.throw(s.m.resourceErrorCell("iterations")) {
					return false, s.ball
				}
				continue
			}
		}
		if s.goals == nil {
			s.port("exit", s.root)
			return true, nil
		}
		entry := s.goals
		s.goals = entry.next
		if !s.step(entry) {
			return false, s.ball
		}
	}
}

// step resolves one goal. It returns false when the computation is over:
// either no choice point was left to backtrack into, or an exception went
// uncaught (s.ball holds it).
func (s *solver) step(entry *goalEntry) bool {
	m := s.m
	goal := deref(entry.goal)
	switch g := goal.(type) {
	case commitCell:
		// The barrier may exceed the current height when alternatives
		// are already gone; committing is then a no-op.
		if int(g) < len(s.cps) {
			s.cps = s.cps[:int(g)]
		}
		return true
	case *popCatchCell:
		if g.idx < len(s.cps) && s.cps[g.idx] == g.cp {
			if g.idx == len(s.cps)-1 {
				s.cps = s.cps[:g.idx]
			}
			// With alternatives above the frame, the guarded goal may
			// be redone; the frame stays armed.
		}
		return true
	case *Ref:
		return s.throw(m.instantiationErrorCell())
	case Int, Float, Str, Ptr:
		return s.throw(m.typeErrorCell("callable", goal))
	}

	ind, args := goalIndicator(goal)
	if ind.name == "call" && ind.arity >= 1 && ind.arity <= 8 {
		return s.metacall(entry, args)
	}
	switch ind {
	case indicator{"true", 0}:
		return true
	case indicator{"fail", 0}, indicator{"false", 0}:
		return s.backtrack()
	case indicator{",", 2}:
		s.goals = &goalEntry{args[0], entry.module, entry.cutTo,
			&goalEntry{args[1], entry.module, entry.cutTo, s.goals}}
		return true
	case indicator{";", 2}:
		if cond, ok := deref(args[0]).(*Struct); ok && cond.Name == "->" && len(cond.Args) == 2 {
			s.ite(entry, cond.Args[0], cond.Args[1], args[1])
			return true
		}
		s.cps = append(s.cps, &choicePoint{
			kind:     cpAlt,
			cont:     s.goals,
			module:   entry.module,
			cutTo:    entry.cutTo,
			trailTop: len(m.trail),
			alt:      args[1],
		})
		s.goals = &goalEntry{args[0], entry.module, entry.cutTo, s.goals}
		return true
	case indicator{"->", 2}:
		s.ite(entry, args[0], args[1], Atom("fail"))
		return true
	case indicator{"\\+", 1}:
		s.ite(entry, args[0], Atom("fail"), Atom("true"))
		return true
	case indicator{"once", 1}:
		s.ite(entry, args[0], Atom("true"), Atom("fail"))
		return true
	case indicator{"!", 0}:
		if entry.cutTo < len(s.cps) {
			s.cps = s.cps[:entry.cutTo]
		}
		return true
	case indicator{"catch", 3}:
		cp := &choicePoint{
			kind:     cpCatch,
			cont:     s.goals,
			module:   entry.module,
			trailTop: len(m.trail),
			catcher:  args[1],
			recovery: args[2],
		}
		s.cps = append(s.cps, cp)
		s.goals = &goalEntry{args[0], entry.module, len(s.cps),
			&goalEntry{&popCatchCell{cp, len(s.cps) - 1}, entry.module, 0, s.goals}}
		return true
	case indicator{"throw", 1}:
		ball := deref(args[0])
		if _, unbound := ball.(*Ref); unbound {
			return s.throw(m.instantiationErrorCell())
		}
		return s.throw(ball)
	case indicator{":", 2}:
		qual := deref(args[0])
		switch qual := qual.(type) {
		case *Ref:
			return s.throw(m.instantiationErrorCell())
		case Atom:
			module := m.NewModule(m.intern(string(qual)))
			s.goals = &goalEntry{args[1], module, entry.cutTo, s.goals}
			return true
		default:
			return s.throw(m.typeErrorCell("module", qual))
		}
	}

	s.port("call", goal)
	p := m.lookupPred(entry.module, ind)
	if p == nil || (p.builtin == nil && len(p.clauses) == 0 && !p.dynamic) {
		if m.config.Unknown == UnknownFail {
			return s.backtrack()
		}
		return s.throw(m.procedureExistenceCell(ind))
	}
	if p.builtin != nil {
		s.current = entry
		ok, ball := p.builtin(m, s, args)
		if ball != nil {
			return s.throw(ball)
		}
		if !ok {
			return s.backtrack()
		}
		return true
	}
	if len(p.clauses) == 0 {
		return s.backtrack()
	}
	// Push the full clause list and fail into it: first activation and
	// retries share the backtrack path.
	s.cps = append(s.cps, &choicePoint{
		kind:     cpClauses,
		cont:     s.goals,
		module:   p.module,
		cutTo:    len(s.cps),
		trailTop: len(m.trail),
		goal:     goal,
		clauses:  p.clauses,
	})
	return s.backtrack()
}

// metacall runs call/1..8: the closure goal extended with the extra
// arguments, with a cut barrier local to the call.
func (s *solver) metacall(entry *goalEntry, args []Cell) bool {
	m := s.m
	goal := deref(args[0])
	extra := args[1:]
	var called Cell
	switch g := goal.(type) {
	case *Ref:
		return s.throw(m.instantiationErrorCell())
	case Atom:
		if len(extra) == 0 {
			called = g
		} else {
			cells := make([]Cell, len(extra))
			copy(cells, extra)
			called = &Struct{string(g), cells}
		}
	case *Struct:
		cells := make([]Cell, 0, len(g.Args)+len(extra))
		cells = append(cells, g.Args...)
		cells = append(cells, extra...)
		called = &Struct{g.Name, cells}
	default:
		return s.throw(m.typeErrorCell("callable", goal))
	}
	s.goals = &goalEntry{called, entry.module, len(s.cps), s.goals}
	return true
}

// ite schedules (Cond -> Then ; Else). Cond runs with a local cut barrier;
// its first solution commits, dropping Else and Cond's own alternatives.
func (s *solver) ite(entry *goalEntry, cond, then, els Cell) {
	h := len(s.cps)
	s.cps = append(s.cps, &choicePoint{
		kind:     cpAlt,
		cont:     s.goals,
		module:   entry.module,
		cutTo:    entry.cutTo,
		trailTop: len(s.m.trail),
		tried:    true,
		alt:      els,
	})
	s.goals = &goalEntry{cond, entry.module, len(s.cps),
		&goalEntry{commitCell(h), entry.module, 0,
			&goalEntry{then, entry.module, entry.cutTo, s.goals}}}
}

// backtrack pops choice points until one yields a resumption. Each pop
// first unwinds the trail to the choice point's mark.
func (s *solver) backtrack() bool {
	m := s.m
	for len(s.cps) > 0 {
		cp := s.cps[len(s.cps)-1]
		m.undoBindings(cp.trailTop)
		switch cp.kind {
		case cpAlt:
			s.cps = s.cps[:len(s.cps)-1]
			s.port("redo", cp.alt)
			s.goals = &goalEntry{cp.alt, cp.module, cp.cutTo, cp.cont}
			return true
		case cpRetry:
			goal, ok := cp.retry()
			if !ok {
				s.cps = s.cps[:len(s.cps)-1]
				continue
			}
			if cp.tried {
				s.port("redo", goal)
			}
			cp.tried = true
			s.goals = &goalEntry{goal, cp.module, cp.cutTo, cp.cont}
			return true
		case cpClauses:
			if cp.tried {
				s.port("redo", cp.goal)
			}
			for len(cp.clauses) > 0 {
				cl := cp.clauses[0]
				cp.clauses = cp.clauses[1:]
				refs := make(map[*Ref]*Ref)
				structs := make(map[*Struct]*Struct)
				head := copyCell(cl.head, refs, structs, m)
				body := copyCell(cl.body, refs, structs, m)
				if m.unifyCells(cp.goal, head) {
					cp.tried = true
					if len(cp.clauses) == 0 {
						// Determinate exit on the last clause.
						s.cps = s.cps[:len(s.cps)-1]
					}
					s.goals = &goalEntry{body, cp.module, cp.cutTo, cp.cont}
					return true
				}
				m.undoBindings(cp.trailTop)
			}
			s.cps = s.cps[:len(s.cps)-1]
		case cpCatch:
			s.cps = s.cps[:len(s.cps)-1]
		default:
			panic(fmt.Sprintf("backtrack: unhandled choice point kind %d", cp.kind))
		}
	}
	s.port("fail", s.root)
	return false
}

// throw unwinds choice points looking for a catch frame whose catcher
// unifies with the ball. The ball is detached first, so unwinding cannot
// mangle it. Returns false when the exception goes uncaught.
func (s *solver) throw(ball Cell) bool {
	m := s.m
	ball = copyCell(ball, make(map[*Ref]*Ref), make(map[*Struct]*Struct), m)
	s.port("throw", ball)
	for len(s.cps) > 0 {
		cp := s.cps[len(s.cps)-1]
		s.cps = s.cps[:len(s.cps)-1]
		m.undoBindings(cp.trailTop)
		if cp.kind != cpCatch {
			continue
		}
		mark := len(m.trail)
		if !m.unifyCells(cp.catcher, ball) {
			m.undoBindings(mark)
			continue
		}
		s.goals = &goalEntry{cp.recovery, cp.module, len(s.cps), cp.cont}
		return true
	}
	s.ball = ball
	return false
}

func (s *solver) port(port string, goal Cell) {
	if s.m.debug == nil {
		return
	}
	if s.eq != nil && s.eq.flags&QNodebug != 0 {
		return
	}
	s.m.debug.port(port, len(s.cps), goal)
}

func goalIndicator(c Cell) (indicator, []Cell) {
	switch g := c.(type) {
	case Atom:
		return indicator{string(g), 0}, nil
	case *Struct:
		return structIndicator(g), g.Args
	default:
		panic(fmt.Sprintf("goalIndicator: unhandled type %T (%v)", c, c))
	}
}
