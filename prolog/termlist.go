package prolog

import (
	"github.com/brunokim/logic-embed/fli"
)

// TermList is a contiguous run of term handles, allocated as one block.
// Element i lives at base+i. It is the argument vehicle of predicate
// calls and queries: solutions are read back out of the same list.
//
// A TermList carries no validity window of its own; its elements obey
// the usual engine frame rules.
type TermList struct {
	s    *Session
	base fli.TermRef
	n    int
}

// NewTermList allocates n contiguous fresh variable terms. An empty
// list allocates nothing and uses the null handle as its base.
func (s *Session) NewTermList(n int) *TermList {
	s.mustBeOpen()
	if n < 0 {
		panic("prolog: negative term list length")
	}
	if n == 0 {
		return &TermList{s: s, base: 0, n: 0}
	}
	return &TermList{s: s, base: s.m.NewTermRefs(n), n: n}
}

// TermListFromTerms allocates a list of len(ts) handles and copies each
// term's value into its slot.
func (s *Session) TermListFromTerms(ts ...*Term) (*TermList, error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	list := s.NewTermList(len(ts))
	for i, t := range ts {
		if err := t.check(); err != nil {
			return nil, err
		}
		s.m.PutTerm(list.base+fli.TermRef(i), t.ref)
	}
	return list, nil
}

// Len returns the number of elements.
func (l *TermList) Len() int { return l.n }

// Get returns element i as a term sharing the list's handle.
func (l *TermList) Get(i int) (*Term, error) {
	if err := l.s.alive(); err != nil {
		return nil, err
	}
	if i < 0 || i >= l.n {
		return nil, &IndexError{Index: i, Len: l.n}
	}
	return &Term{s: l.s, ref: l.base + fli.TermRef(i)}, nil
}

// MustGet is Get for indexes known to be in range. It panics otherwise.
func (l *TermList) MustGet(i int) *Term {
	t, err := l.Get(i)
	if err != nil {
		panic(err)
	}
	return t
}

// Equal reports whether both lists are the same run: same base handle
// and same length.
func (l *TermList) Equal(other *TermList) bool {
	return l.base == other.base && l.n == other.n
}

// String renders the elements like a slice of terms.
func (l *TermList) String() string {
	if err := l.s.alive(); err != nil {
		return "<invalidated term list>"
	}
	s := "["
	for i := 0; i < l.n; i++ {
		if i > 0 {
			s += " "
		}
		s += l.s.m.WriteTerm(l.base+fli.TermRef(i), fli.WriteOpts{})
	}
	return s + "]"
}
