package prolog_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brunokim/logic-embed/prolog"
)

// kb builds a knowledge base through the API alone: facts and rules are
// terms constructed with functors and loaded with assertz/1.
type kb struct {
	t       *testing.T
	s       *prolog.Session
	assertz *prolog.Predicate
	rule    *prolog.Functor
}

func newKB(t *testing.T) *kb {
	t.Helper()
	s := newTestSession(t)
	return &kb{
		t:       t,
		s:       s,
		assertz: s.PredicateByName("assertz", 1, ""),
		rule:    s.NewFunctor(":-", 2),
	}
}

func (k *kb) atom(name string) *prolog.Term {
	k.t.Helper()
	term, err := k.s.TermFromAtomName(name)
	require.NoError(k.t, err)
	return term
}

func (k *kb) fact(f *prolog.Functor, args ...*prolog.Term) {
	k.t.Helper()
	head, err := f.Apply(args...)
	require.NoError(k.t, err)
	require.NoError(k.t, k.assertz.CallChecked(head))
}

func (k *kb) clause(head, body *prolog.Term) {
	k.t.Helper()
	cl, err := k.rule.Apply(head, body)
	require.NoError(k.t, err)
	require.NoError(k.t, k.assertz.CallChecked(cl))
}

func (k *kb) proves(goal *prolog.Term) bool {
	k.t.Helper()
	ok, err := goal.Call()
	require.NoError(k.t, err)
	return ok
}

func TestKnowledgeBaseFacts(t *testing.T) {
	k := newKB(t)
	woman := k.s.NewFunctor("woman", 1)
	playsAirGuitar := k.s.NewFunctor("playsAirGuitar", 1)

	k.fact(woman, k.atom("mia"))
	k.fact(woman, k.atom("jody"))
	k.fact(woman, k.atom("yolanda"))
	k.fact(playsAirGuitar, k.atom("jody"))

	womanMia, err := woman.Apply(k.atom("mia"))
	require.NoError(t, err)
	assert.True(t, k.proves(womanMia))
	womanBob, err := woman.Apply(k.atom("bob"))
	require.NoError(t, err)
	assert.False(t, k.proves(womanBob))

	guitarJody, err := playsAirGuitar.Apply(k.atom("jody"))
	require.NoError(t, err)
	assert.True(t, k.proves(guitarJody))
	guitarMia, err := playsAirGuitar.Apply(k.atom("mia"))
	require.NoError(t, err)
	assert.False(t, k.proves(guitarMia))
}

func TestKnowledgeBaseRules(t *testing.T) {
	k := newKB(t)
	happy := k.s.NewFunctor("happy", 1)
	listens2Music := k.s.NewFunctor("listens2Music", 1)
	playsAirGuitar := k.s.NewFunctor("playsAirGuitar", 1)

	apply := func(f *prolog.Functor, args ...*prolog.Term) *prolog.Term {
		term, err := f.Apply(args...)
		require.NoError(t, err)
		return term
	}

	vincent := k.atom("vincent")
	butch := k.atom("butch")

	k.fact(happy, vincent)
	k.fact(listens2Music, butch)

	// playsAirGuitar(vincent) :- listens2Music(vincent), happy(vincent).
	both, err := apply(listens2Music, vincent).And(apply(happy, vincent))
	require.NoError(t, err)
	k.clause(apply(playsAirGuitar, vincent), both)
	// playsAirGuitar(butch) :- happy(butch).
	k.clause(apply(playsAirGuitar, butch), apply(happy, butch))
	// playsAirGuitar(butch) :- listens2Music(butch).
	k.clause(apply(playsAirGuitar, butch), apply(listens2Music, butch))

	assert.False(t, k.proves(apply(playsAirGuitar, vincent)))
	assert.True(t, k.proves(apply(playsAirGuitar, butch)))
}

func TestKnowledgeBaseEnumeration(t *testing.T) {
	k := newKB(t)
	loves := k.s.NewFunctor("loves", 2)

	k.fact(loves, k.atom("vincent"), k.atom("mia"))
	k.fact(loves, k.atom("marsellus"), k.atom("mia"))
	k.fact(loves, k.atom("pumpkin"), k.atom("honey_bunny"))
	k.fact(loves, k.atom("honey_bunny"), k.atom("pumpkin"))

	who, err := k.s.TermFromVariable()
	require.NoError(t, err)
	q, err := k.s.NewQuery(k.s.PredicateByName("loves", 2, ""), who, k.atom("mia"))
	require.NoError(t, err)

	aq, err := q.Open()
	require.NoError(t, err)
	got := drain(t, aq, who)
	require.NoError(t, aq.Close())

	want := []string{"vincent", "marsellus"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want, +got)\n%s", diff)
	}
}
