package fli

// Builders for the standard error terms thrown by builtins and the solver.
// The context argument of error/2 is left unbound; this engine does not
// decorate exceptions with stack traces.

func (m *Machine) errorCell(formal Cell) Cell {
	return &Struct{"error", []Cell{formal, m.newRef()}}
}

func (m *Machine) instantiationErrorCell() Cell {
	return m.errorCell(Atom("instantiation_error"))
}

func (m *Machine) typeErrorCell(typ string, culprit Cell) Cell {
	return m.errorCell(&Struct{"type_error", []Cell{Atom(typ), culprit}})
}

func (m *Machine) domainErrorCell(domain string, culprit Cell) Cell {
	return m.errorCell(&Struct{"domain_error", []Cell{Atom(domain), culprit}})
}

func (m *Machine) existenceErrorCell(kind string, culprit Cell) Cell {
	return m.errorCell(&Struct{"existence_error", []Cell{Atom(kind), culprit}})
}

func (m *Machine) procedureExistenceCell(ind indicator) Cell {
	return m.existenceErrorCell("procedure", indicatorCell(ind))
}

func (m *Machine) evaluationErrorCell(what string) Cell {
	return m.errorCell(&Struct{"evaluation_error", []Cell{Atom(what)}})
}

func (m *Machine) permissionErrorCell(action, kind string, culprit Cell) Cell {
	return m.errorCell(&Struct{"permission_error", []Cell{Atom(action), Atom(kind), culprit}})
}

func (m *Machine) representationErrorCell(what string) Cell {
	return m.errorCell(&Struct{"representation_error", []Cell{Atom(what)}})
}

func (m *Machine) resourceErrorCell(what string) Cell {
	return m.errorCell(&Struct{"resource_error", []Cell{Atom(what)}})
}

func (m *Machine) syntaxErrorCell(msg string) Cell {
	return m.errorCell(&Struct{"syntax_error", []Cell{Atom(msg)}})
}

func indicatorCell(ind indicator) Cell {
	return &Struct{"/", []Cell{Atom(ind.name), Int(ind.arity)}}
}
