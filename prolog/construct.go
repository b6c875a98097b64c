package prolog

// termFrom allocates a fresh term and runs put on it. Each TermFromX
// constructor below pairs with the PutX method it wraps.
func (s *Session) termFrom(put func(*Term) error) (*Term, error) {
	t, err := s.newTermChecked()
	if err != nil {
		return nil, err
	}
	if err := put(t); err != nil {
		return nil, err
	}
	return t, nil
}

// TermFromVariable returns a new term holding a fresh variable.
func (s *Session) TermFromVariable() (*Term, error) {
	return s.termFrom((*Term).PutVariable)
}

// TermFromAtom returns a new term holding the atom a.
func (s *Session) TermFromAtom(a *Atom) (*Term, error) {
	return s.termFrom(func(t *Term) error { return t.PutAtom(a) })
}

// TermFromAtomName returns a new term holding the atom named name.
func (s *Session) TermFromAtomName(name string) (*Term, error) {
	return s.termFrom(func(t *Term) error { return t.PutAtomName(name) })
}

// TermFromBool returns a new term holding the atom true or false.
func (s *Session) TermFromBool(b bool) (*Term, error) {
	return s.termFrom(func(t *Term) error { return t.PutBool(b) })
}

// TermFromString returns a new term holding a string object.
func (s *Session) TermFromString(str string) (*Term, error) {
	return s.termFrom(func(t *Term) error { return t.PutString(str) })
}

// TermFromListChars returns a new term holding str as a list of
// one-character atoms.
func (s *Session) TermFromListChars(str string) (*Term, error) {
	return s.termFrom(func(t *Term) error { return t.PutListChars(str) })
}

// TermFromInteger returns a new term holding an integer.
func (s *Session) TermFromInteger(i int64) (*Term, error) {
	return s.termFrom(func(t *Term) error { return t.PutInteger(i) })
}

// TermFromPointer returns a new term holding an opaque address.
func (s *Session) TermFromPointer(p uintptr) (*Term, error) {
	return s.termFrom(func(t *Term) error { return t.PutPointer(p) })
}

// TermFromFloat returns a new term holding a float.
func (s *Session) TermFromFloat(f float64) (*Term, error) {
	return s.termFrom(func(t *Term) error { return t.PutFloat(f) })
}

// TermFromFunctor returns a new term holding a compound of f over fresh
// variables.
func (s *Session) TermFromFunctor(f *Functor) (*Term, error) {
	return s.termFrom(func(t *Term) error { return t.PutFunctor(f) })
}

// TermFromList returns a new term holding a list cell with fresh
// variable head and tail.
func (s *Session) TermFromList() (*Term, error) {
	return s.termFrom((*Term).PutList)
}

// TermFromNil returns a new term holding the empty list.
func (s *Session) TermFromNil() (*Term, error) {
	return s.termFrom((*Term).PutNil)
}

// TermFromTerm returns a new term referencing the same value as u.
func (s *Session) TermFromTerm(u *Term) (*Term, error) {
	return s.termFrom(func(t *Term) error { return t.PutTerm(u) })
}

// TermFromTermCopy returns a new handle for the value held by u. The
// value is shared, not copied; only the handle is new.
func (s *Session) TermFromTermCopy(u *Term) (*Term, error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	if err := u.check(); err != nil {
		return nil, err
	}
	return &Term{s: s, ref: s.m.CopyTermRef(u.ref)}, nil
}

// TermFromParsed returns a new term parsed from Prolog text.
func (s *Session) TermFromParsed(text string) (*Term, error) {
	return s.termFrom(func(t *Term) error { return t.PutParsed(text) })
}

// TermFromParsedWithVars parses like TermFromParsed and also returns the
// term's named variables, keyed by source name. Underscore variables are
// not included.
func (s *Session) TermFromParsedWithVars(text string) (*Term, map[string]*Term, error) {
	t, err := s.newTermChecked()
	if err != nil {
		return nil, nil, err
	}
	vars, err := s.m.ReadTermWithVars(t.ref, text)
	if err != nil {
		return nil, nil, s.engineError(t.ref)
	}
	named := make(map[string]*Term, len(vars))
	for name, ref := range vars {
		named[name] = &Term{s: s, ref: ref}
	}
	return t, named, nil
}

// TermFromConsFunctor returns a new term holding a compound of f over
// args.
func (s *Session) TermFromConsFunctor(f *Functor, args ...*Term) (*Term, error) {
	return s.termFrom(func(t *Term) error { return t.PutConsFunctor(f, args...) })
}

// TermFromConsFunctorList returns a new term holding a compound of f
// with arguments taken from the contiguous run args.
func (s *Session) TermFromConsFunctorList(f *Functor, args *TermList) (*Term, error) {
	return s.termFrom(func(t *Term) error { return t.PutConsFunctorList(f, args) })
}

// TermFromConsList returns a new term holding the list cell
// [head|tail].
func (s *Session) TermFromConsList(head, tail *Term) (*Term, error) {
	return s.termFrom(func(t *Term) error { return t.PutConsList(head, tail) })
}
