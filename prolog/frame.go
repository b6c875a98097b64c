package prolog

import (
	"github.com/brunokim/logic-embed/fli"
)

// Frame scopes term handles and bindings. Closing keeps bindings and
// reclaims handles; discarding also undoes every binding made since the
// frame opened; rewinding undoes bindings and handles but leaves the
// frame open for reuse.
//
// Frames obey stack order: the engine panics when a frame other than
// the innermost is popped. Frames never affect the dynamic database;
// assertions made inside a discarded frame stay.
//
// Only terms obtained through Term are invalidated by the frame's
// transitions. Terms created directly on the session and used across a
// frame boundary are an engine-level hazard this layer does not catch.
type Frame struct {
	s       *Session
	id      fli.FrameID
	discard bool
	ended   bool
	terms   *liveness
}

// OpenFrame opens a frame whose End closes it, keeping bindings.
func (s *Session) OpenFrame() (*Frame, error) {
	return s.openFrame(false)
}

// OpenDiscardFrame opens a frame whose End discards it, undoing
// bindings.
func (s *Session) OpenDiscardFrame() (*Frame, error) {
	return s.openFrame(true)
}

func (s *Session) openFrame(discard bool) (*Frame, error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	return &Frame{
		s:       s,
		id:      s.m.OpenFrame(),
		discard: discard,
		terms:   newLiveness("frame term"),
	}, nil
}

func (f *Frame) check() error {
	if err := f.s.alive(); err != nil {
		return err
	}
	if f.ended {
		return &InvalidatedError{Kind: "frame"}
	}
	return nil
}

// Term allocates a fresh variable term tracked by the frame. The term
// is invalidated by the frame's next transition, including Rewind.
func (f *Frame) Term() (*Term, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return &Term{s: f.s, ref: f.s.m.NewTermRef(), life: f.terms}, nil
}

// Close pops the frame. Bindings made since open persist; terms tracked
// by the frame are invalidated.
func (f *Frame) Close() error {
	if err := f.check(); err != nil {
		return err
	}
	f.terms.kill()
	f.ended = true
	f.s.m.CloseFrame(f.id)
	return nil
}

// Discard pops the frame and undoes every binding made since open.
// Terms tracked by the frame are invalidated. Values stored with Put
// are not bindings and survive.
func (f *Frame) Discard() error {
	if err := f.check(); err != nil {
		return err
	}
	f.terms.kill()
	f.ended = true
	f.s.m.DiscardFrame(f.id)
	return nil
}

// Rewind undoes bindings and reclaims handles made since open, but
// keeps the frame itself open. Tracked terms are invalidated; Term
// issues fresh ones afterwards. Rewind suits bounded retry loops that
// would otherwise nest one frame per attempt.
func (f *Frame) Rewind() error {
	if err := f.check(); err != nil {
		return err
	}
	f.terms.kill()
	f.terms = newLiveness("frame term")
	f.s.m.RewindFrame(f.id)
	return nil
}

// End closes or discards the frame per its construction, and is a
// no-op when the frame already ended or the session closed. It is meant
// for defer, so every exit path of the enclosing function pops the
// frame exactly once.
func (f *Frame) End() error {
	if f.ended || !f.s.Available() {
		return nil
	}
	if f.discard {
		return f.Discard()
	}
	return f.Close()
}
