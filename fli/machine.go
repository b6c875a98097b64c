// Package fli implements the embedding interface of a Prolog-style logic
// engine: an explicit machine holding term storage, atom/functor/predicate
// tables, a trail, frames, queries and records, driven through C-style
// primitives that deal in opaque integer handles.
//
// The machine is single-threaded and cooperative. Callers interact with it
// through term refs (slots in a stack of cells) and must respect the LIFO
// discipline of frames and queries; the prolog package layers a safe
// object model on top of this surface.
package fli

import (
	"fmt"
	"io"
	"os"
)

// A TermRef names a slot in the machine's term-ref stack. Slot contents
// change through Put and Unify operations; the ref itself is reclaimed by
// the frame or query that was open when it was allocated.
type TermRef int

// Handles for interned engine entities. Zero is the null handle for all of
// them; real handles start at 1.
type (
	AtomID      int
	FunctorID   int
	ModuleID    int
	PredicateID int
	QueryID     int
	FrameID     int
	RecordID    int
)

type atomEntry struct {
	name string
	refs int
}

type functorEntry struct {
	name  AtomID
	arity int
}

type functorKey struct {
	name  AtomID
	arity int
}

type moduleEntry struct {
	name AtomID
}

type predKey struct {
	module  ModuleID
	functor FunctorID
}

// clause is a stored program clause. head and body share refs; each
// activation renames them with fresh refs.
type clause struct {
	head Cell
	body Cell
}

type predicate struct {
	id      PredicateID
	ind     indicator
	module  ModuleID
	dynamic bool
	builtin builtin
	clauses []*clause
}

type frameMark struct {
	id       FrameID
	refTop   int
	trailTop int
}

// Machine is the engine instance. All state is owned by the machine; no
// global state is kept in the package.
type Machine struct {
	atoms        []atomEntry
	atomIndex    map[string]AtomID
	functors     []functorEntry
	functorIndex map[functorKey]FunctorID
	modules      []moduleEntry
	moduleIndex  map[AtomID]ModuleID
	preds        map[predKey]*predicate
	predList     []*predicate

	refs    []Cell
	trail   []*Ref
	frames  []frameMark
	queries []*engineQuery
	records map[RecordID]Cell

	system  ModuleID
	user    ModuleID
	context ModuleID

	lastRefID    int
	nextFrameID  FrameID
	nextQueryID  QueryID
	nextRecordID RecordID

	exception Cell

	config Config
	out    io.Writer
	debug  *debugTracer
}

// NewMachine creates a machine with the zero configuration.
func NewMachine() *Machine {
	return NewMachineConfig(Config{})
}

// NewMachineConfig creates a machine with the given configuration.
func NewMachineConfig(config Config) *Machine {
	m := &Machine{
		atomIndex:    make(map[string]AtomID),
		functorIndex: make(map[functorKey]FunctorID),
		moduleIndex:  make(map[AtomID]ModuleID),
		preds:        make(map[predKey]*predicate),
		records:      make(map[RecordID]Cell),
		config:       config.withDefaults(),
		out:          os.Stdout,
	}
	// Slot 0 of every table is reserved so that handle 0 stays null.
	m.refs = []Cell{nilAtom}
	m.system = m.NewModule(m.NewAtom("system"))
	m.user = m.NewModule(m.NewAtom("user"))
	m.context = m.user
	m.installBuiltins()
	if config.DebugFile != "" {
		if f, err := os.Create(config.DebugFile); err == nil {
			m.debug = newDebugTracer(f)
		}
	}
	return m
}

// SetOutput redirects the write/1 family. Defaults to os.Stdout.
func (m *Machine) SetOutput(w io.Writer) { m.out = w }

// SetDebug streams a JSONL trace of solver ports to w.
func (m *Machine) SetDebug(w io.Writer) { m.debug = newDebugTracer(w) }

// Config returns the machine's effective configuration.
func (m *Machine) Config() Config { return m.config }

// ---- Atoms

// NewAtom interns name and takes a reference to it.
func (m *Machine) NewAtom(name string) AtomID {
	if id, ok := m.atomIndex[name]; ok {
		m.atoms[id-1].refs++
		return id
	}
	m.atoms = append(m.atoms, atomEntry{name: name, refs: 1})
	id := AtomID(len(m.atoms))
	m.atomIndex[name] = id
	return id
}

// intern returns the atom id for name without taking a reference.
func (m *Machine) intern(name string) AtomID {
	if id, ok := m.atomIndex[name]; ok {
		return id
	}
	m.atoms = append(m.atoms, atomEntry{name: name})
	id := AtomID(len(m.atoms))
	m.atomIndex[name] = id
	return id
}

func (m *Machine) atom(id AtomID) *atomEntry {
	if id < 1 || int(id) > len(m.atoms) {
		panic(fmt.Sprintf("fli: invalid atom handle %d", id))
	}
	return &m.atoms[id-1]
}

// AtomName returns the name of an atom.
func (m *Machine) AtomName(id AtomID) string { return m.atom(id).name }

// RegisterAtom takes an additional reference to an atom.
func (m *Machine) RegisterAtom(id AtomID) { m.atom(id).refs++ }

// UnregisterAtom releases a reference to an atom. The entry is kept even at
// zero references; the count exists so embedders can balance their usage.
func (m *Machine) UnregisterAtom(id AtomID) {
	a := m.atom(id)
	if a.refs == 0 {
		panic(fmt.Sprintf("fli: unregister of unreferenced atom %q", a.name))
	}
	a.refs--
}

// AtomRefCount reports the current reference count of an atom.
func (m *Machine) AtomRefCount(id AtomID) int { return m.atom(id).refs }

// ---- Functors

// NewFunctor interns the (name, arity) pair.
func (m *Machine) NewFunctor(name AtomID, arity int) FunctorID {
	if arity < 0 {
		panic(fmt.Sprintf("fli: negative functor arity %d", arity))
	}
	key := functorKey{name, arity}
	if id, ok := m.functorIndex[key]; ok {
		return id
	}
	m.functors = append(m.functors, functorEntry{name: name, arity: arity})
	id := FunctorID(len(m.functors))
	m.functorIndex[key] = id
	return id
}

func (m *Machine) functor(id FunctorID) functorEntry {
	if id < 1 || int(id) > len(m.functors) {
		panic(fmt.Sprintf("fli: invalid functor handle %d", id))
	}
	return m.functors[id-1]
}

// FunctorName returns the functor's name atom.
func (m *Machine) FunctorName(id FunctorID) AtomID { return m.functor(id).name }

// FunctorArity returns the functor's arity.
func (m *Machine) FunctorArity(id FunctorID) int { return m.functor(id).arity }

func (m *Machine) functorIndicator(id FunctorID) indicator {
	f := m.functor(id)
	return indicator{m.AtomName(f.name), f.arity}
}

// ---- Modules

// NewModule resolves or creates the module named by an atom.
func (m *Machine) NewModule(name AtomID) ModuleID {
	if id, ok := m.moduleIndex[name]; ok {
		return id
	}
	m.modules = append(m.modules, moduleEntry{name: name})
	id := ModuleID(len(m.modules))
	m.moduleIndex[name] = id
	return id
}

func (m *Machine) module(id ModuleID) moduleEntry {
	if id < 1 || int(id) > len(m.modules) {
		panic(fmt.Sprintf("fli: invalid module handle %d", id))
	}
	return m.modules[id-1]
}

// ModuleName returns the module's name atom.
func (m *Machine) ModuleName(id ModuleID) AtomID { return m.module(id).name }

// Context returns the current context module.
func (m *Machine) Context() ModuleID { return m.context }

// UserModule returns the default working module.
func (m *Machine) UserModule() ModuleID { return m.user }

// ---- Predicates

// Pred resolves or creates the predicate for functor in module. A zero
// module means the current context. Builtins are visible from any module.
func (m *Machine) Pred(f FunctorID, module ModuleID) PredicateID {
	if module == 0 {
		module = m.context
	}
	p := m.resolvePred(f, module)
	if p == nil {
		p = m.createPred(f, module)
	}
	return p.id
}

// Predicate resolves or creates a predicate from name, arity and module
// name. An empty module name means the current context.
func (m *Machine) Predicate(name string, arity int, moduleName string) PredicateID {
	module := ModuleID(0)
	if moduleName != "" {
		module = m.NewModule(m.intern(moduleName))
	}
	return m.Pred(m.NewFunctor(m.intern(name), arity), module)
}

// resolvePred finds a visible predicate: module-local first, then system.
func (m *Machine) resolvePred(f FunctorID, module ModuleID) *predicate {
	if p, ok := m.preds[predKey{module, f}]; ok {
		return p
	}
	if p, ok := m.preds[predKey{m.system, f}]; ok {
		return p
	}
	return nil
}

func (m *Machine) createPred(f FunctorID, module ModuleID) *predicate {
	p := &predicate{
		id:     PredicateID(len(m.predList) + 1),
		ind:    m.functorIndicator(f),
		module: module,
	}
	m.preds[predKey{module, f}] = p
	m.predList = append(m.predList, p)
	return p
}

func (m *Machine) pred(id PredicateID) *predicate {
	if id < 1 || int(id) > len(m.predList) {
		panic(fmt.Sprintf("fli: invalid predicate handle %d", id))
	}
	return m.predList[id-1]
}

// PredicateInfo returns the name atom, arity and module of a predicate.
func (m *Machine) PredicateInfo(id PredicateID) (AtomID, int, ModuleID) {
	p := m.pred(id)
	return m.intern(p.ind.name), p.ind.arity, p.module
}

// lookupPred finds a visible predicate for a callable cell, or nil.
func (m *Machine) lookupPred(module ModuleID, ind indicator) *predicate {
	f := m.NewFunctor(m.intern(ind.name), ind.arity)
	return m.resolvePred(f, module)
}

// dynamicPred resolves or creates a dynamic predicate in module.
func (m *Machine) dynamicPred(module ModuleID, ind indicator) *predicate {
	f := m.NewFunctor(m.intern(ind.name), ind.arity)
	p := m.resolvePred(f, module)
	if p == nil {
		p = m.createPred(f, module)
	}
	p.dynamic = true
	return p
}

// ---- Term refs

// NewTermRef allocates a fresh term ref holding a new unbound variable.
func (m *Machine) NewTermRef() TermRef {
	return m.NewTermRefs(1)
}

// NewTermRefs allocates n contiguous term refs and returns the first. The
// handles of the run are base, base+1, ..., base+n-1.
func (m *Machine) NewTermRefs(n int) TermRef {
	if n < 1 {
		panic(fmt.Sprintf("fli: NewTermRefs(%d)", n))
	}
	if max := m.config.MaxRefs; max > 0 && len(m.refs)+n > max {
		panic(fmt.Sprintf("fli: term-ref stack overflow (max %d)", max))
	}
	base := TermRef(len(m.refs))
	for i := 0; i < n; i++ {
		m.refs = append(m.refs, m.newRef())
	}
	return base
}

// CopyTermRef allocates a new term ref pointing at the same term as t.
func (m *Machine) CopyTermRef(t TermRef) TermRef {
	cell := m.cell(t)
	ref := m.NewTermRefs(1)
	m.refs[ref] = cell
	return ref
}

func (m *Machine) newRef() *Ref {
	m.lastRefID++
	return &Ref{nil, m.lastRefID}
}

func (m *Machine) cell(t TermRef) Cell {
	if t < 1 || int(t) >= len(m.refs) {
		panic(fmt.Sprintf("fli: invalid term ref %d", t))
	}
	return m.refs[t]
}

// setCell overwrites the slot directly. Not trailed: direct writes survive
// frame discard and rewind, unlike Unify bindings.
func (m *Machine) setCell(t TermRef, c Cell) {
	if t < 1 || int(t) >= len(m.refs) {
		panic(fmt.Sprintf("fli: invalid term ref %d", t))
	}
	m.refs[t] = c
}

// ---- Frames

// OpenFrame marks the current term-ref and trail positions. Frames nest in
// strict LIFO order.
func (m *Machine) OpenFrame() FrameID {
	m.nextFrameID++
	id := m.nextFrameID
	m.frames = append(m.frames, frameMark{id, len(m.refs), len(m.trail)})
	return id
}

// CloseFrame pops the frame, reclaiming term refs allocated since it was
// opened. Bindings are retained.
func (m *Machine) CloseFrame(id FrameID) {
	f := m.popFrame(id)
	m.refs = m.refs[:f.refTop]
}

// DiscardFrame pops the frame, reclaiming term refs and undoing all
// bindings made since it was opened.
func (m *Machine) DiscardFrame(id FrameID) {
	f := m.popFrame(id)
	m.undoBindings(f.trailTop)
	m.refs = m.refs[:f.refTop]
}

// RewindFrame undoes bindings and reclaims term refs, but leaves the frame
// open for reuse.
func (m *Machine) RewindFrame(id FrameID) {
	f := m.topFrame(id)
	m.undoBindings(f.trailTop)
	m.refs = m.refs[:f.refTop]
}

func (m *Machine) popFrame(id FrameID) frameMark {
	f := m.topFrame(id)
	m.frames = m.frames[:len(m.frames)-1]
	return f
}

func (m *Machine) topFrame(id FrameID) frameMark {
	if len(m.frames) == 0 {
		panic(fmt.Sprintf("fli: no open frame (handle %d)", id))
	}
	f := m.frames[len(m.frames)-1]
	if f.id != id {
		panic(fmt.Sprintf("fli: frame %d is not the innermost (innermost is %d)", id, f.id))
	}
	return f
}

// ---- Records

// Record copies the term into detached storage, outside any frame or
// backtracking scope.
func (m *Machine) Record(t TermRef) RecordID {
	m.nextRecordID++
	id := m.nextRecordID
	m.records[id] = copyCell(m.cell(t), make(map[*Ref]*Ref), make(map[*Struct]*Struct), m)
	return id
}

// Recorded copies the recorded term into t. Returns false if the record
// was erased.
func (m *Machine) Recorded(id RecordID, t TermRef) bool {
	cell, ok := m.records[id]
	if !ok {
		return false
	}
	m.setCell(t, copyCell(cell, make(map[*Ref]*Ref), make(map[*Struct]*Struct), m))
	return true
}

// Erase frees the record's storage. Erasing twice is a no-op.
func (m *Machine) Erase(id RecordID) {
	delete(m.records, id)
}

// copyCell deep-copies a cell graph, preserving sharing and cycles.
// Unbound refs are copied to fresh unbound refs.
func copyCell(cell Cell, refs map[*Ref]*Ref, structs map[*Struct]*Struct, m *Machine) Cell {
	cell = deref(cell)
	switch c := cell.(type) {
	case Atom, Int, Float, Str, Ptr:
		return c
	case *Ref:
		if copied, ok := refs[c]; ok {
			return copied
		}
		copied := m.newRef()
		refs[c] = copied
		return copied
	case *Struct:
		if copied, ok := structs[c]; ok {
			return copied
		}
		copied := &Struct{Name: c.Name, Args: make([]Cell, len(c.Args))}
		structs[c] = copied
		for i, arg := range c.Args {
			copied.Args[i] = copyCell(arg, refs, structs, m)
		}
		return copied
	default:
		panic(fmt.Sprintf("copyCell: unhandled type %T (%v)", cell, cell))
	}
}

// ---- Exceptions

// Exception returns the pending exception term ref, or 0 if none.
func (m *Machine) Exception() TermRef {
	if m.exception == nil {
		return 0
	}
	t := m.NewTermRefs(1)
	m.setCell(t, m.exception)
	return t
}

// ClearException drops the pending exception.
func (m *Machine) ClearException() { m.exception = nil }

func (m *Machine) setException(cell Cell) {
	// Detach from term storage so backtracking can't mangle it.
	m.exception = copyCell(cell, make(map[*Ref]*Ref), make(map[*Struct]*Struct), m)
}
