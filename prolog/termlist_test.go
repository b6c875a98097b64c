package prolog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brunokim/logic-embed/prolog"
)

func TestTermListIndexing(t *testing.T) {
	s := newTestSession(t)
	list := s.NewTermList(3)
	assert.Equal(t, 3, list.Len())

	for i := 0; i < 3; i++ {
		term, err := list.Get(i)
		require.NoError(t, err)
		unbound, err := term.IsVariable()
		require.NoError(t, err)
		assert.True(t, unbound)
	}

	_, err := list.Get(3)
	var indexErr *prolog.IndexError
	require.ErrorAs(t, err, &indexErr)
	assert.Equal(t, 3, indexErr.Index)
	assert.Equal(t, 3, indexErr.Len)

	_, err = list.Get(-1)
	require.ErrorAs(t, err, &indexErr)

	assert.Panics(t, func() { list.MustGet(3) })
}

func TestTermListFromTerms(t *testing.T) {
	s := newTestSession(t)
	list, err := s.TermListFromTerms(parse(t, s, "a"), parse(t, s, "42"))
	require.NoError(t, err)
	require.Equal(t, 2, list.Len())

	name, err := list.MustGet(0).GetAtomName()
	require.NoError(t, err)
	assert.Equal(t, "a", name)
	i, err := list.MustGet(1).GetInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(42), i)
}

func TestTermListEquality(t *testing.T) {
	s := newTestSession(t)
	list := s.NewTermList(2)
	other := s.NewTermList(2)

	assert.True(t, list.Equal(list))
	// A distinct allocation is a different run, even at equal length.
	assert.False(t, list.Equal(other))
}

func TestTermListNegativeLength(t *testing.T) {
	s := newTestSession(t)
	assert.Panics(t, func() { s.NewTermList(-1) })
}

func TestEmptyTermListCall(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.ConsultText("halts."))

	halts := s.PredicateByName("halts", 0, "")
	ok, err := halts.CallArgs(s.NewTermList(0), nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = halts.Call()
	require.NoError(t, err)
	assert.True(t, ok)
}
