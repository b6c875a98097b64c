// Package prolog wraps the fli embedding surface in handle objects with
// explicit validity windows: atoms, functors, modules, predicates,
// terms, frames, queries and term records. The wrappers only manage
// references into the engine; unification, resolution and the clause
// database stay on the engine side.
//
// The engine's term storage is one shared stack. Frames bound the
// lifetime of term refs and unification bindings, queries bound the
// lifetime of solution state, and records are the escape hatch that
// outlives both. Stack discipline is the correctness mechanism: frames
// nest in LIFO order and at most one query is active at a time.
package prolog

import (
	"github.com/brunokim/logic-embed/fli"
)

// Session owns an engine machine and the process state shared by every
// wrapper built from it: the availability flag consulted by destructor
// analogs, and the single active-query token.
type Session struct {
	m      *fli.Machine
	closed bool
	active *ActiveQuery

	// Hot entities interned once per session.
	eq   *Predicate // ==/2, for Term.Equal
	call *Predicate // call/1, for call-term queries
	conj *Functor   // ,/2
	disj *Functor   // ;/2
}

// NewSession creates a session over a default-configured engine.
func NewSession() *Session {
	return newSession(fli.NewMachine())
}

// NewSessionConfig creates a session over an engine with the given
// configuration.
func NewSessionConfig(config fli.Config) (*Session, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newSession(fli.NewMachineConfig(config)), nil
}

func newSession(m *fli.Machine) *Session {
	s := &Session{m: m}
	s.eq = &Predicate{s: s, id: m.Predicate("==", 2, "system")}
	s.call = &Predicate{s: s, id: m.Predicate("call", 1, "system")}
	s.conj = s.NewFunctor(",", 2)
	s.disj = s.NewFunctor(";", 2)
	return s
}

// Machine exposes the underlying engine for direct embedding calls.
func (s *Session) Machine() *fli.Machine { return s.m }

// Available reports whether the engine may still be called. It is true
// from construction until Close.
func (s *Session) Available() bool { return !s.closed }

// Close marks the engine unavailable. Afterwards Atom.Release,
// TermRecord.Erase and Frame.End become silent no-ops, operations with
// error returns report ErrEngineClosed, and constructors panic. Closing
// twice reports ErrEngineClosed.
func (s *Session) Close() error {
	if s.closed {
		return ErrEngineClosed
	}
	s.closed = true
	return nil
}

func (s *Session) alive() error {
	if s.closed {
		return ErrEngineClosed
	}
	return nil
}

func (s *Session) mustBeOpen() {
	if s.closed {
		panic("prolog: session is closed")
	}
}

// ConsultText loads the clauses in src into the database, running ':-'
// directives as they appear. Directive goals run once; a directive that
// fails stops the load with a *CallError.
func (s *Session) ConsultText(src string) error {
	if err := s.alive(); err != nil {
		return err
	}
	fr := s.m.OpenFrame()
	defer s.m.CloseFrame(fr)
	terms, err := s.m.ReadProgram(src)
	if err != nil {
		return err
	}
	for _, t := range terms {
		if name, arity, ok := s.m.GetCompoundNameArity(t); ok && arity == 1 && s.m.AtomName(name) == ":-" {
			goal := s.m.NewTermRef()
			s.m.GetArg(0, t, goal)
			if s.m.Call(goal, 0) {
				continue
			}
			if err := s.takeException(); err != nil {
				return err
			}
			return &CallError{Goal: s.m.WriteTerm(goal, fli.WriteOpts{})}
		}
		if !s.m.AssertTerm(t, false) {
			return s.takeException()
		}
	}
	return nil
}

// takeException converts the machine's pending exception into an
// *EngineError and clears it. Returns nil when none is pending.
func (s *Session) takeException() error {
	exc := s.m.Exception()
	if exc == 0 {
		return nil
	}
	s.m.ClearException()
	return s.engineError(exc)
}

// engineError snapshots the exception term held by exc into a durable
// error.
func (s *Session) engineError(exc fli.TermRef) *EngineError {
	return &EngineError{
		Text: s.m.WriteTerm(exc, fli.WriteOpts{Quoted: true}),
		Term: &TermRecord{s: s, id: s.m.Record(exc)},
	}
}
