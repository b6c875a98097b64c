package prolog

import (
	"github.com/brunokim/logic-embed/fli"
)

// Module is a named clause namespace. Equality and hashing go by name.
type Module struct {
	s    *Session
	id   fli.ModuleID
	name *Atom
}

// NewModule resolves or creates the module named by a.
func (s *Session) NewModule(a *Atom) *Module {
	s.mustBeOpen()
	return &Module{s: s, id: s.m.NewModule(a.id), name: a}
}

// ModuleByName resolves or creates the module with the given name.
func (s *Session) ModuleByName(name string) *Module {
	return s.NewModule(s.NewAtom(name))
}

// CurrentContext returns the module of the engine's current context.
func (s *Session) CurrentContext() *Module {
	s.mustBeOpen()
	return s.moduleFromID(s.m.Context())
}

func (s *Session) moduleFromID(id fli.ModuleID) *Module {
	return &Module{s: s, id: id, name: s.atomFromID(s.m.ModuleName(id))}
}

// Name returns the module's name atom.
func (m *Module) Name() *Atom { return m.name }

func (m *Module) String() string { return m.name.Name() }

// Equal reports whether both modules have the same name.
func (m *Module) Equal(other *Module) bool {
	return other != nil && m.name.Equal(other.name)
}

// Hash returns a hash consistent with Equal.
func (m *Module) Hash() uint64 { return m.name.Hash() }
