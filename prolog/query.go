package prolog

import (
	"strings"

	"github.com/brunokim/logic-embed/fli"
)

// Query is an inert, reusable query descriptor: a predicate, an
// argument list and an optional goal module. Arity is validated at
// construction, before the engine is ever touched. Solutions are read
// back from the argument list while the query is open.
type Query struct {
	s      *Session
	pred   *Predicate
	args   *TermList
	module *Module
}

// NewQuery describes a query of p over the given argument terms. The
// terms are copied into a fresh argument list; read solutions through
// Args.
func (s *Session) NewQuery(p *Predicate, args ...*Term) (*Query, error) {
	list, err := s.TermListFromTerms(args...)
	if err != nil {
		return nil, err
	}
	return s.NewQueryArgs(p, list)
}

// NewQueryArgs describes a query of p over an explicit argument list.
func (s *Session) NewQueryArgs(p *Predicate, args *TermList) (*Query, error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	if err := p.CheckArgumentMatch(args); err != nil {
		return nil, err
	}
	return &Query{s: s, pred: p, args: args}, nil
}

// NewQueryTerm describes a query proving goal through call/1, for
// goals built as terms rather than predicate-plus-arguments.
func (s *Session) NewQueryTerm(goal *Term) (*Query, error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	list, err := s.TermListFromTerms(goal)
	if err != nil {
		return nil, err
	}
	return s.NewQueryArgs(s.call, list)
}

// Predicate returns the queried predicate.
func (q *Query) Predicate() *Predicate { return q.pred }

// Args returns the argument list. While the query is open, each
// solution's bindings appear here.
func (q *Query) Args() *TermList { return q.args }

// Module returns the goal module, nil meaning the context module.
func (q *Query) Module() *Module { return q.module }

// SetModule sets the goal module for subsequent Opens.
func (q *Query) SetModule(m *Module) { q.module = m }

// String renders the query as a goal, like "user:between(1, 3, X)".
func (q *Query) String() string {
	pred := q.pred.String()
	if i := strings.LastIndex(pred, "/"); i >= 0 {
		pred = pred[:i]
	}
	args := make([]string, q.args.Len())
	for i := range args {
		args[i] = q.args.MustGet(i).String()
	}
	return pred + "(" + strings.Join(args, ", ") + ")"
}

// Open starts proving the query. Only one query may be active per
// session; a second Open fails with *QueryActiveError until the first
// is closed. The engine query runs with the debug trace off and catches
// proof exceptions, which NextSolution reports as *EngineError.
func (q *Query) Open() (*ActiveQuery, error) {
	if err := q.s.alive(); err != nil {
		return nil, err
	}
	if err := q.pred.CheckArgumentMatch(q.args); err != nil {
		return nil, err
	}
	if q.s.active != nil {
		return nil, &QueryActiveError{Active: q.s.active.q.String()}
	}
	var mid fli.ModuleID
	if q.module != nil {
		mid = q.module.id
	}
	aq := &ActiveQuery{
		q:      q,
		s:      q.s,
		id:     q.s.m.OpenQuery(mid, fli.QNodebug|fli.QCatchException, q.pred.id, q.args.base),
		life:   newLiveness("query"),
		window: newLiveness("temporary term"),
	}
	q.s.active = aq
	return aq, nil
}

// ActiveQuery is an open query. NextSolution drives it; Close releases
// it. Each solution binds the descriptor's argument list in place.
type ActiveQuery struct {
	q      *Query
	s      *Session
	id     fli.QueryID
	life   *liveness
	window *liveness
}

func (aq *ActiveQuery) check() error {
	if err := aq.s.alive(); err != nil {
		return err
	}
	return aq.life.check()
}

// NextSolution backtracks to the next solution, updating the query's
// argument list. False means the query is exhausted. An exception
// raised during the proof is returned as *EngineError, and the query
// yields no further solutions.
//
// Advancing undoes all bindings and reclaims all terms created since
// the previous solution. Every temporary term bound to the query dies
// first; snapshot values with TermRecord to keep them across
// backtracking.
func (aq *ActiveQuery) NextSolution() (bool, error) {
	if err := aq.check(); err != nil {
		return false, err
	}
	aq.window.kill()
	aq.window = newLiveness("temporary term")
	if aq.s.m.NextSolution(aq.id) {
		return true, nil
	}
	if exc := aq.s.m.QueryException(aq.id); exc != 0 {
		return false, aq.s.engineError(exc)
	}
	return false, nil
}

// TermAssignments iterates the value of t under each remaining
// solution. Persistent assignments are snapshotted as TermRecords and
// survive the query; otherwise each assignment is a TemporaryTerm that
// dies on the next advance.
func (aq *ActiveQuery) TermAssignments(t *Term, persistent bool) *TermAssignments {
	return &TermAssignments{aq: aq, src: t, persistent: persistent}
}

// BindTemporaryTerm ties tt's validity to the current solution window:
// the next NextSolution invalidates it.
func (aq *ActiveQuery) BindTemporaryTerm(tt *TemporaryTerm) error {
	if err := aq.check(); err != nil {
		return err
	}
	tt.life = aq.window
	return nil
}

// Close releases the engine query, undoing its bindings, and frees the
// session's query slot. A second Close fails with *InvalidatedError.
func (aq *ActiveQuery) Close() error {
	if err := aq.check(); err != nil {
		return err
	}
	aq.window.kill()
	aq.life.kill()
	aq.s.m.CloseQuery(aq.id)
	aq.s.active = nil
	return nil
}

// TemporaryTerm is a term whose validity is tied to a query's solution
// window once bound. Until bound it behaves like a plain term.
type TemporaryTerm struct {
	Term
}

// TemporaryTermFromTermCopy returns a temporary term holding a new
// handle for u's value. Bind it to an active query to scope it to the
// current solution.
func (s *Session) TemporaryTermFromTermCopy(u *Term) (*TemporaryTerm, error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	if err := u.check(); err != nil {
		return nil, err
	}
	return &TemporaryTerm{Term{s: s, ref: s.m.CopyTermRef(u.ref)}}, nil
}

// TermAssignments enumerates one term's value across a query's
// remaining solutions.
//
//	assignments := aq.TermAssignments(x, true)
//	for assignments.Next() {
//		fmt.Println(assignments.Record())
//	}
//	if err := assignments.Err(); err != nil { ...
type TermAssignments struct {
	aq         *ActiveQuery
	src        *Term
	persistent bool
	rec        *TermRecord
	tmp        *TemporaryTerm
	err        error
	done       bool
}

// Next advances to the next solution. It returns false when the query
// is exhausted or an error occurred; check Err afterwards.
func (ta *TermAssignments) Next() bool {
	if ta.done {
		return false
	}
	ok, err := ta.aq.NextSolution()
	if err != nil {
		ta.err = err
		ta.done = true
		return false
	}
	if !ok {
		ta.done = true
		return false
	}
	if ta.persistent {
		ta.rec, err = ta.aq.s.NewTermRecord(ta.src)
	} else {
		ta.tmp, err = ta.takeTemporary()
	}
	if err != nil {
		ta.err = err
		ta.done = true
		return false
	}
	return true
}

func (ta *TermAssignments) takeTemporary() (*TemporaryTerm, error) {
	tmp, err := ta.aq.s.TemporaryTermFromTermCopy(ta.src)
	if err != nil {
		return nil, err
	}
	if err := ta.aq.BindTemporaryTerm(tmp); err != nil {
		return nil, err
	}
	return tmp, nil
}

// Record returns the current solution's snapshot, for persistent
// iteration.
func (ta *TermAssignments) Record() *TermRecord { return ta.rec }

// Term returns the current solution's temporary term, for
// non-persistent iteration.
func (ta *TermAssignments) Term() *TemporaryTerm { return ta.tmp }

// Err returns the first error hit while iterating, if any.
func (ta *TermAssignments) Err() error { return ta.err }
