package prolog

import (
	"github.com/brunokim/logic-embed/fli"
)

// TermRecord is a snapshot of a term in detached engine storage. The
// snapshot is immune to backtracking, frame transitions and query
// closes; it lives until erased or the session closes.
type TermRecord struct {
	s      *Session
	id     fli.RecordID
	erased bool
}

// NewTermRecord snapshots t's current value.
func (s *Session) NewTermRecord(t *Term) (*TermRecord, error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	if err := t.check(); err != nil {
		return nil, err
	}
	return &TermRecord{s: s, id: s.m.Record(t.ref)}, nil
}

// Get copies the snapshot into a fresh session-lifetime term.
func (r *TermRecord) Get() (*Term, error) {
	if err := r.s.alive(); err != nil {
		return nil, err
	}
	if r.erased {
		return nil, &StorageError{Erased: true}
	}
	t := &Term{s: r.s, ref: r.s.m.NewTermRef()}
	if !r.s.m.Recorded(r.id, t.ref) {
		return nil, &StorageError{}
	}
	return t, nil
}

// Erase frees the snapshot's storage. Erasing twice, or erasing after
// the session closed, is a no-op.
func (r *TermRecord) Erase() error {
	if r.erased || !r.s.Available() {
		return nil
	}
	r.erased = true
	r.s.m.Erase(r.id)
	return nil
}
