package prolog

import (
	"fmt"
	"hash/fnv"

	"github.com/brunokim/logic-embed/fli"
)

// Predicate names a callable procedure in a module. Its handle is not
// trusted as identity: Info queries the engine, and Equal compares the
// resolved (name, arity, module) triple.
type Predicate struct {
	s  *Session
	id fli.PredicateID
}

// NewPredicate resolves or creates the predicate for functor f in module
// m. A nil module resolves in the current context.
func (s *Session) NewPredicate(f *Functor, m *Module) *Predicate {
	s.mustBeOpen()
	var mid fli.ModuleID
	if m != nil {
		mid = m.id
	}
	return &Predicate{s: s, id: s.m.Pred(f.id, mid)}
}

// PredicateByName resolves or creates a predicate from its name, arity
// and module name. An empty module name resolves in the current context.
func (s *Session) PredicateByName(name string, arity int, moduleName string) *Predicate {
	s.mustBeOpen()
	return &Predicate{s: s, id: s.m.Predicate(name, arity, moduleName)}
}

// PredicateInfo is the resolved identity of a predicate.
type PredicateInfo struct {
	Name   *Atom
	Arity  int
	Module *Module
}

// Info queries the engine for the predicate's name, arity and module.
func (p *Predicate) Info() (PredicateInfo, error) {
	if err := p.s.alive(); err != nil {
		return PredicateInfo{}, err
	}
	name, arity, module := p.s.m.PredicateInfo(p.id)
	return PredicateInfo{
		Name:   p.s.atomFromID(name),
		Arity:  arity,
		Module: p.s.moduleFromID(module),
	}, nil
}

func (p *Predicate) String() string {
	name, arity, module := p.s.m.PredicateInfo(p.id)
	return fmt.Sprintf("%s:%s/%d",
		p.s.m.AtomName(p.s.m.ModuleName(module)), p.s.m.AtomName(name), arity)
}

// Equal reports whether both predicates resolve to the same name, arity
// and module.
func (p *Predicate) Equal(other *Predicate) bool {
	if other == nil {
		return false
	}
	n1, a1, m1 := p.s.m.PredicateInfo(p.id)
	n2, a2, m2 := other.s.m.PredicateInfo(other.id)
	return a1 == a2 &&
		p.s.m.AtomName(n1) == other.s.m.AtomName(n2) &&
		p.s.m.AtomName(p.s.m.ModuleName(m1)) == other.s.m.AtomName(other.s.m.ModuleName(m2))
}

// Hash returns a hash consistent with Equal.
func (p *Predicate) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(p.String()))
	return h.Sum64()
}

// CheckArgumentMatch verifies that args matches the predicate's arity.
// Called before every query and call operation, so mismatches surface
// before the engine is touched.
func (p *Predicate) CheckArgumentMatch(args *TermList) error {
	if err := p.s.alive(); err != nil {
		return err
	}
	_, arity, _ := p.s.m.PredicateInfo(p.id)
	if args.Len() != arity {
		return &ArityMismatchError{Arity: arity, NArgs: args.Len()}
	}
	return nil
}

// Call proves predicate(args...) once, keeping the first solution's
// bindings and dropping its choice points. False means the goal could
// not be proven; an exception inside the engine surfaces as an
// *EngineError.
func (p *Predicate) Call(args ...*Term) (bool, error) {
	list, err := p.s.TermListFromTerms(args...)
	if err != nil {
		return false, err
	}
	return p.CallArgs(list, nil)
}

// CallArgs is Call with an explicit argument list and goal module. A nil
// module calls in the current context.
func (p *Predicate) CallArgs(args *TermList, m *Module) (bool, error) {
	if err := p.CheckArgumentMatch(args); err != nil {
		return false, err
	}
	var mid fli.ModuleID
	if m != nil {
		mid = m.id
	}
	if p.s.m.CallPredicate(mid, fli.QNodebug, p.id, args.base) {
		return true, nil
	}
	if err := p.s.takeException(); err != nil {
		return false, err
	}
	return false, nil
}

// CallChecked is Call but reports failure to prove as a *CallError
// naming the predicate.
func (p *Predicate) CallChecked(args ...*Term) error {
	ok, err := p.Call(args...)
	if err != nil {
		return err
	}
	if !ok {
		return &CallError{Goal: p.String()}
	}
	return nil
}
