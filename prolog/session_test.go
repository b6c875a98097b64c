package prolog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brunokim/logic-embed/fli"
	"github.com/brunokim/logic-embed/prolog"
)

func newTestSession(t *testing.T) *prolog.Session {
	t.Helper()
	s := prolog.NewSession()
	t.Cleanup(func() { s.Close() })
	return s
}

// parse builds a term from text, failing the test on a syntax error.
func parse(t *testing.T, s *prolog.Session, text string) *prolog.Term {
	t.Helper()
	term, err := s.TermFromParsed(text)
	require.NoError(t, err, "parse %q", text)
	return term
}

func TestSessionAvailability(t *testing.T) {
	s := prolog.NewSession()
	assert.True(t, s.Available())

	a := s.NewAtom("foo")

	require.NoError(t, s.Close())
	assert.False(t, s.Available())
	assert.ErrorIs(t, s.Close(), prolog.ErrEngineClosed)

	// Destructor analogs turn into no-ops.
	assert.NoError(t, a.Release())

	// Error-returning operations report the closed session.
	_, err := s.TermFromInteger(1)
	assert.ErrorIs(t, err, prolog.ErrEngineClosed)
	_, err = s.OpenFrame()
	assert.ErrorIs(t, err, prolog.ErrEngineClosed)
	assert.ErrorIs(t, s.ConsultText("p(1)."), prolog.ErrEngineClosed)

	// Constructors without error returns panic.
	assert.PanicsWithValue(t, "prolog: session is closed", func() { s.NewAtom("bar") })
	assert.PanicsWithValue(t, "prolog: session is closed", func() { s.NewTerm() })
	assert.PanicsWithValue(t, "prolog: session is closed", func() { s.NewTermList(2) })
}

func TestSessionConfig(t *testing.T) {
	_, err := prolog.NewSessionConfig(fli.Config{DoubleQuotes: fli.DoubleQuotesCodes})
	require.NoError(t, err)

	_, err = prolog.NewSessionConfig(fli.Config{DoubleQuotes: "nonsense"})
	assert.Error(t, err)
}

func TestConsultText(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.ConsultText(`
        woman(mia).
        woman(jody).
        woman(yolanda).
        loves(vincent, mia).
    `))

	woman := s.PredicateByName("woman", 1, "")
	ok, err := woman.Call(parse(t, s, "mia"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = woman.Call(parse(t, s, "vincent"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConsultTextDirective(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.ConsultText(`
        :- assertz(greeting(hello)).
        greeting(bye).
    `))

	greeting := s.PredicateByName("greeting", 1, "")
	ok, err := greeting.Call(parse(t, s, "hello"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = greeting.Call(parse(t, s, "bye"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConsultTextFailingDirective(t *testing.T) {
	s := newTestSession(t)
	err := s.ConsultText(`
        p(1).
        :- p(2).
    `)
	var callErr *prolog.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "p(2)", callErr.Goal)
}

func TestConsultTextThrowingDirective(t *testing.T) {
	s := newTestSession(t)
	err := s.ConsultText(`:- throw(setup_failed).`)
	var engineErr *prolog.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Contains(t, engineErr.Text, "setup_failed")
}

func TestConsultTextSyntaxError(t *testing.T) {
	s := newTestSession(t)
	assert.Error(t, s.ConsultText(`p(1`))
}
