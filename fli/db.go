package fli

// Database updates follow the logical update view: a running call works on
// the clause list snapshotted at call time. Retraction and abolition
// replace the clause slice instead of mutating it, and assertion only ever
// appends or prepends to a fresh or private slice.

// AssertTerm adds the clause held by t to the database, in front of the
// predicate's clauses if front is set. The clause is detached from term
// storage. On a malformed clause the error term becomes the machine's
// pending exception and false is returned.
func (m *Machine) AssertTerm(t TermRef, front bool) bool {
	if ball := m.addClause(m.context, m.cell(t), front, false); ball != nil {
		m.setException(ball)
		return false
	}
	return true
}

// addClause validates and stores a clause. mustDynamic marks the assert/1
// path, which refuses static predicates; loading from a file does not.
// Returns an exception ball, or nil.
func (m *Machine) addClause(module ModuleID, term Cell, front, mustDynamic bool) Cell {
	// Strip Module:Clause qualifications.
	for {
		s, ok := deref(term).(*Struct)
		if !ok || structIndicator(s) != (indicator{":", 2}) {
			break
		}
		name, ok := deref(s.Args[0]).(Atom)
		if !ok {
			return m.typeErrorCell("module", deref(s.Args[0]))
		}
		module = m.NewModule(m.intern(string(name)))
		term = s.Args[1]
	}
	head, body := splitClause(term)
	head = deref(head)
	// The head may carry its own qualifier, as in lib:p(X) :- q(X).
	for {
		s, ok := head.(*Struct)
		if !ok || structIndicator(s) != (indicator{":", 2}) {
			break
		}
		name, ok := deref(s.Args[0]).(Atom)
		if !ok {
			return m.typeErrorCell("module", deref(s.Args[0]))
		}
		module = m.NewModule(m.intern(string(name)))
		head = deref(s.Args[1])
	}
	switch head.(type) {
	case *Ref:
		return m.instantiationErrorCell()
	case Atom, *Struct:
	default:
		return m.typeErrorCell("callable", head)
	}
	switch deref(body).(type) {
	case Int, Float, Str, Ptr:
		return m.typeErrorCell("callable", deref(body))
	}

	ind, _ := goalIndicator(head)
	f := m.NewFunctor(m.intern(ind.name), ind.arity)
	p := m.resolvePred(f, module)
	if p == nil {
		p = m.createPred(f, module)
		p.dynamic = mustDynamic
	}
	if p.builtin != nil {
		return m.permissionErrorCell("modify", "static_procedure", indicatorCell(ind))
	}
	if mustDynamic && !p.dynamic {
		if len(p.clauses) > 0 {
			return m.permissionErrorCell("modify", "static_procedure", indicatorCell(ind))
		}
		// Asserting on a referenced but undefined predicate makes it
		// dynamic.
		p.dynamic = true
	}

	refs := make(map[*Ref]*Ref)
	structs := make(map[*Struct]*Struct)
	cl := &clause{
		head: copyCell(head, refs, structs, m),
		body: copyCell(body, refs, structs, m),
	}
	if front {
		p.clauses = append([]*clause{cl}, p.clauses...)
	} else {
		p.clauses = append(p.clauses, cl)
	}
	return nil
}

// removeClause drops the first occurrence of cl, copying the slice so that
// snapshots keep their view.
func (m *Machine) removeClause(p *predicate, cl *clause) {
	for i, existing := range p.clauses {
		if existing != cl {
			continue
		}
		clauses := make([]*clause, 0, len(p.clauses)-1)
		clauses = append(clauses, p.clauses[:i]...)
		p.clauses = append(clauses, p.clauses[i+1:]...)
		return
	}
}

// Abolish drops all clauses of module:name/arity, static ones included.
// Reloading a consulted file goes through here. Unknown predicates are
// ignored.
func (m *Machine) Abolish(module ModuleID, name string, arity int) {
	f := m.NewFunctor(m.intern(name), arity)
	p, ok := m.preds[predKey{module, f}]
	if !ok || p.builtin != nil {
		return
	}
	p.clauses = nil
}

// declareDynamic handles a dynamic/1 specification: a name/arity
// indicator, a bare atom, a callable template, or a comma list of these.
func (m *Machine) declareDynamic(module ModuleID, spec Cell) Cell {
	spec = deref(spec)
	switch spec := spec.(type) {
	case *Ref:
		return m.instantiationErrorCell()
	case Atom:
		return m.markDynamic(module, indicator{string(spec), 0})
	case *Struct:
		switch structIndicator(spec) {
		case indicator{",", 2}:
			if ball := m.declareDynamic(module, spec.Args[0]); ball != nil {
				return ball
			}
			return m.declareDynamic(module, spec.Args[1])
		case indicator{"/", 2}:
			name, nok := deref(spec.Args[0]).(Atom)
			arity, aok := deref(spec.Args[1]).(Int)
			if !nok || !aok || arity < 0 {
				return m.typeErrorCell("predicate_indicator", spec)
			}
			return m.markDynamic(module, indicator{string(name), int(arity)})
		default:
			// A callable template such as woman(_).
			return m.markDynamic(module, structIndicator(spec))
		}
	default:
		return m.typeErrorCell("predicate_indicator", spec)
	}
}

func (m *Machine) markDynamic(module ModuleID, ind indicator) Cell {
	f := m.NewFunctor(m.intern(ind.name), ind.arity)
	p := m.resolvePred(f, module)
	if p == nil {
		p = m.createPred(f, module)
	}
	if p.builtin != nil || (!p.dynamic && len(p.clauses) > 0) {
		return m.permissionErrorCell("modify", "static_procedure", indicatorCell(ind))
	}
	p.dynamic = true
	return nil
}

// splitClause separates a clause term into head and body; a clause without
// the :-/2 wrapper has body true.
func splitClause(term Cell) (head, body Cell) {
	term = deref(term)
	if s, ok := term.(*Struct); ok && s.Name == ":-" && len(s.Args) == 2 {
		return s.Args[0], s.Args[1]
	}
	return term, Atom("true")
}
