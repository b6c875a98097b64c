package prolog_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brunokim/logic-embed/prolog"
)

func TestFrameCloseKeepsBindings(t *testing.T) {
	s := newTestSession(t)
	x, err := s.TermFromVariable()
	require.NoError(t, err)

	frame, err := s.OpenFrame()
	require.NoError(t, err)
	ok, err := x.UnifyInteger(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, frame.Close())

	got, err := x.GetInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestFrameDiscardUndoesBindings(t *testing.T) {
	s := newTestSession(t)
	x, err := s.TermFromVariable()
	require.NoError(t, err)

	frame, err := s.OpenFrame()
	require.NoError(t, err)
	ok, err := x.UnifyInteger(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, frame.Discard())

	unbound, err := x.IsVariable()
	require.NoError(t, err)
	assert.True(t, unbound)
}

func TestFrameDiscardKeepsPuts(t *testing.T) {
	s := newTestSession(t)
	x, err := s.TermFromVariable()
	require.NoError(t, err)

	frame, err := s.OpenFrame()
	require.NoError(t, err)
	require.NoError(t, x.PutInteger(5))
	require.NoError(t, frame.Discard())

	// Put stores a value outright; only unify bindings are trailed.
	got, err := x.GetInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)
}

func TestFrameRewindReusable(t *testing.T) {
	s := newTestSession(t)
	x, err := s.TermFromVariable()
	require.NoError(t, err)

	frame, err := s.OpenFrame()
	require.NoError(t, err)
	for _, want := range []int64{1, 2, 3} {
		ok, err := x.UnifyInteger(want)
		require.NoError(t, err)
		require.True(t, ok)

		got, err := x.GetInteger()
		require.NoError(t, err)
		assert.Equal(t, want, got)

		require.NoError(t, frame.Rewind())

		unbound, err := x.IsVariable()
		require.NoError(t, err)
		require.True(t, unbound)
	}
	require.NoError(t, frame.Close())
}

func TestFrameTermInvalidation(t *testing.T) {
	s := newTestSession(t)
	frame, err := s.OpenFrame()
	require.NoError(t, err)

	tracked, err := frame.Term()
	require.NoError(t, err)
	require.NoError(t, tracked.PutInteger(1))

	require.NoError(t, frame.Rewind())
	_, err = tracked.GetInteger()
	assert.True(t, errors.Is(err, prolog.ErrInvalidated))

	// Rewind leaves the frame open: it hands out fresh terms.
	fresh, err := frame.Term()
	require.NoError(t, err)
	require.NoError(t, fresh.PutInteger(2))
	require.NoError(t, frame.Close())

	_, err = fresh.GetInteger()
	assert.True(t, errors.Is(err, prolog.ErrInvalidated))
}

func TestFrameDoubleClose(t *testing.T) {
	s := newTestSession(t)
	frame, err := s.OpenFrame()
	require.NoError(t, err)
	require.NoError(t, frame.Close())

	var invalid *prolog.InvalidatedError
	assert.ErrorAs(t, frame.Close(), &invalid)
	assert.ErrorAs(t, frame.Discard(), &invalid)
	assert.ErrorAs(t, frame.Rewind(), &invalid)
	_, err = frame.Term()
	assert.ErrorAs(t, err, &invalid)

	// End stays safe for defer after any explicit transition.
	assert.NoError(t, frame.End())
}

func TestFrameEnd(t *testing.T) {
	s := newTestSession(t)
	x, err := s.TermFromVariable()
	require.NoError(t, err)

	func() {
		frame, err := s.OpenDiscardFrame()
		require.NoError(t, err)
		defer frame.End()
		ok, err := x.UnifyInteger(1)
		require.NoError(t, err)
		require.True(t, ok)
	}()

	unbound, err := x.IsVariable()
	require.NoError(t, err)
	assert.True(t, unbound)

	func() {
		frame, err := s.OpenFrame()
		require.NoError(t, err)
		defer frame.End()
		ok, err := x.UnifyInteger(2)
		require.NoError(t, err)
		require.True(t, ok)
	}()

	got, err := x.GetInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
}

func TestFrameNeverAffectsDatabase(t *testing.T) {
	s := newTestSession(t)
	frame, err := s.OpenDiscardFrame()
	require.NoError(t, err)
	ok, err := parse(t, s, "assertz(transient(1))").Call()
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, frame.Discard())

	// The assertion survives the discarded frame.
	ok, err = parse(t, s, "transient(1)").Call()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNestedFrames(t *testing.T) {
	s := newTestSession(t)
	x, err := s.TermFromVariable()
	require.NoError(t, err)
	y, err := s.TermFromVariable()
	require.NoError(t, err)

	outer, err := s.OpenFrame()
	require.NoError(t, err)
	ok, err := x.UnifyInteger(1)
	require.NoError(t, err)
	require.True(t, ok)

	inner, err := s.OpenFrame()
	require.NoError(t, err)
	ok, err = y.UnifyInteger(2)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, inner.Discard())

	// Only the inner frame's binding is undone.
	unbound, err := y.IsVariable()
	require.NoError(t, err)
	assert.True(t, unbound)
	got, err := x.GetInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	require.NoError(t, outer.Close())
}
