package prolog

import (
	"fmt"
	"hash/fnv"

	"github.com/brunokim/logic-embed/fli"
)

// Functor is an immutable (name, arity) pair naming a compound shape.
// Equality and hashing go by value.
type Functor struct {
	s     *Session
	id    fli.FunctorID
	name  *Atom
	arity int
}

// NewFunctor interns the functor with the given name and arity.
func (s *Session) NewFunctor(name string, arity int) *Functor {
	return s.NewFunctorAtom(s.NewAtom(name), arity)
}

// NewFunctorAtom interns the functor with the given name atom and arity.
func (s *Session) NewFunctorAtom(a *Atom, arity int) *Functor {
	s.mustBeOpen()
	return &Functor{s: s, id: s.m.NewFunctor(a.id, arity), name: a, arity: arity}
}

// functorFromID wraps an engine functor, registering its name atom.
func (s *Session) functorFromID(id fli.FunctorID) *Functor {
	return &Functor{
		s:     s,
		id:    id,
		name:  s.atomFromID(s.m.FunctorName(id)),
		arity: s.m.FunctorArity(id),
	}
}

// Name returns the functor's name atom.
func (f *Functor) Name() *Atom { return f.name }

// Arity returns the functor's arity.
func (f *Functor) Arity() int { return f.arity }

func (f *Functor) String() string {
	return fmt.Sprintf("%s/%d", f.name, f.arity)
}

// Equal reports whether both functors have the same name and arity.
func (f *Functor) Equal(other *Functor) bool {
	return other != nil && f.arity == other.arity && f.name.Equal(other.name)
}

// Hash returns a hash consistent with Equal.
func (f *Functor) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s/%d", f.name.Name(), f.arity)
	return h.Sum64()
}

// Apply builds a new compound term of this functor over args.
func (f *Functor) Apply(args ...*Term) (*Term, error) {
	return f.s.TermFromConsFunctor(f, args...)
}
