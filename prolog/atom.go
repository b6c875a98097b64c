package prolog

import (
	"hash/fnv"

	"github.com/brunokim/logic-embed/fli"
)

// Atom is a registered reference to an interned engine symbol. Equality
// and hashing go by name, not handle: the engine may reuse atom handles
// after garbage collection, names cannot collide.
type Atom struct {
	s        *Session
	id       fli.AtomID
	name     string
	released bool
}

// NewAtom interns name and registers a reference to it.
func (s *Session) NewAtom(name string) *Atom {
	s.mustBeOpen()
	return &Atom{s: s, id: s.m.NewAtom(name), name: name}
}

// atomFromID wraps an engine atom reference, registering it. Used when
// the engine hands an atom back, e.g. from a functor's name.
func (s *Session) atomFromID(id fli.AtomID) *Atom {
	s.m.RegisterAtom(id)
	return &Atom{s: s, id: id, name: s.m.AtomName(id)}
}

// Name returns the atom's text.
func (a *Atom) Name() string { return a.name }

func (a *Atom) String() string { return a.name }

// Equal reports whether both atoms have the same name, regardless of
// their underlying handles.
func (a *Atom) Equal(other *Atom) bool {
	return other != nil && a.name == other.name
}

// Hash returns a hash consistent with Equal.
func (a *Atom) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(a.name))
	return h.Sum64()
}

// Release returns the atom's registration to the engine. Releasing
// twice, or after the session closed, is a no-op; the latter is
// acceptable only at shutdown.
func (a *Atom) Release() error {
	if a.released || a.s.closed {
		return nil
	}
	a.released = true
	a.s.m.UnregisterAtom(a.id)
	return nil
}
