package prolog

import (
	"github.com/brunokim/logic-embed/fli"
)

// TermType is the engine's classification of a term's current value.
type TermType = fli.TermType

// Term types. The empty list and list pairs have their own types,
// distinct from atoms and other compounds. Blob and Dict are reserved.
const (
	Variable     = fli.TypeVariable
	AtomTerm     = fli.TypeAtom
	Integer      = fli.TypeInteger
	FloatTerm    = fli.TypeFloat
	StringTerm   = fli.TypeString
	CompoundTerm = fli.TypeCompound
	Nil          = fli.TypeNil
	Blob         = fli.TypeBlob
	ListPair     = fli.TypeListPair
	Dict         = fli.TypeDict
)

// maxFixedArgs is the largest arity the engine's fixed-arity compound
// construction accepts; larger compounds must go through the vector
// path.
const maxFixedArgs = 4

// Term is a live reference into engine term storage. The value it holds
// changes through put and unify operations; the handle does not. A term
// starts as a fresh variable.
//
// Terms created directly on the session are only invalidated by session
// close. Terms created through a Frame or bound to an ActiveQuery
// solution die with that scope.
type Term struct {
	s    *Session
	ref  fli.TermRef
	life *liveness
}

// NewTerm allocates a fresh variable term with session lifetime.
func (s *Session) NewTerm() *Term {
	s.mustBeOpen()
	return &Term{s: s, ref: s.m.NewTermRef()}
}

func (s *Session) newTermChecked() (*Term, error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	return &Term{s: s, ref: s.m.NewTermRef()}, nil
}

func (t *Term) check() error {
	if err := t.s.alive(); err != nil {
		return err
	}
	return t.life.check()
}

// String renders the term in Prolog syntax. After invalidation, or
// after the session closed, it returns a placeholder so that logging
// stays total.
func (t *Term) String() string {
	if t.check() != nil {
		return "<invalidated term>"
	}
	return t.s.m.WriteTerm(t.ref, fli.WriteOpts{})
}

// Type returns the classification of the term's current value.
func (t *Term) Type() (TermType, error) {
	if err := t.check(); err != nil {
		return fli.TypeUnknown, err
	}
	return t.s.m.TermType(t.ref), nil
}

func (t *Term) typeMismatch(expected ...string) error {
	return &TypeMismatchError{Expected: expected, Actual: t.s.m.TermType(t.ref).String()}
}

// ---- Type predicates

// IsVariable reports whether the term is an unbound variable.
func (t *Term) IsVariable() (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.IsVariable(t.ref), nil
}

// IsAtom reports whether the term holds an atom.
func (t *Term) IsAtom() (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.IsAtom(t.ref), nil
}

// IsAtomic reports whether the term is neither a variable nor compound.
func (t *Term) IsAtomic() (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.IsAtomic(t.ref), nil
}

// IsCallable reports whether the term is an atom or a compound.
func (t *Term) IsCallable() (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.IsCallable(t.ref), nil
}

// IsCompound reports whether the term is a compound.
func (t *Term) IsCompound() (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.IsCompound(t.ref), nil
}

// IsInteger reports whether the term holds an integer.
func (t *Term) IsInteger() (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.IsInteger(t.ref), nil
}

// IsFloat reports whether the term holds a float.
func (t *Term) IsFloat() (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.IsFloat(t.ref), nil
}

// IsNumber reports whether the term holds an integer or a float.
func (t *Term) IsNumber() (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.IsNumber(t.ref), nil
}

// IsString reports whether the term holds a string object.
func (t *Term) IsString() (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.IsString(t.ref), nil
}

// IsPair reports whether the term is a list cell.
func (t *Term) IsPair() (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.IsPair(t.ref), nil
}

// IsList reports whether the term is a proper list.
func (t *Term) IsList() (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.IsList(t.ref), nil
}

// IsNil reports whether the term is the empty list.
func (t *Term) IsNil() (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.IsNil(t.ref), nil
}

// IsGround reports whether no unbound variable occurs in the term.
func (t *Term) IsGround() (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.IsGround(t.ref), nil
}

// IsAcyclic reports whether the term is free of cycles. Cyclic terms
// are permitted; acyclicity is a queryable property, not an invariant.
func (t *Term) IsAcyclic() (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.IsAcyclic(t.ref), nil
}

// IsFunctor reports whether the term is a compound with functor f.
func (t *Term) IsFunctor(f *Functor) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.IsFunctor(t.ref, f.id), nil
}

// ---- Getters
//
// Getters require the term to hold a compatible type and report a
// *TypeMismatchError naming the expected types otherwise.

// GetAtom returns the atom held by the term. The returned atom holds
// its own registration.
func (t *Term) GetAtom() (*Atom, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	id, ok := t.s.m.GetAtom(t.ref)
	if !ok {
		return nil, t.typeMismatch("atom")
	}
	return t.s.atomFromID(id), nil
}

// GetAtomName returns the name of the atom held by the term.
func (t *Term) GetAtomName() (string, error) {
	if err := t.check(); err != nil {
		return "", err
	}
	name, ok := t.s.m.GetAtomName(t.ref)
	if !ok {
		return "", t.typeMismatch("atom")
	}
	return name, nil
}

// GetString returns the string object held by the term.
func (t *Term) GetString() (string, error) {
	if err := t.check(); err != nil {
		return "", err
	}
	str, ok := t.s.m.GetString(t.ref)
	if !ok {
		return "", t.typeMismatch("string")
	}
	return str, nil
}

// GetInteger returns the integer held by the term. Floats with an exact
// integer value convert.
func (t *Term) GetInteger() (int64, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	i, ok := t.s.m.GetInteger(t.ref)
	if !ok {
		return 0, t.typeMismatch("integer", "int-compatible float")
	}
	return i, nil
}

// GetBool returns the boolean held by the term as the atom true or
// false.
func (t *Term) GetBool() (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	b, ok := t.s.m.GetBool(t.ref)
	if !ok {
		return false, t.typeMismatch("boolean")
	}
	return b, nil
}

// GetPointer returns the opaque address held by the term.
func (t *Term) GetPointer() (uintptr, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	p, ok := t.s.m.GetPointer(t.ref)
	if !ok {
		return 0, t.typeMismatch("pointer")
	}
	return p, nil
}

// GetFloat returns the float held by the term. Integers convert.
func (t *Term) GetFloat() (float64, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	f, ok := t.s.m.GetFloat(t.ref)
	if !ok {
		return 0, t.typeMismatch("float", "integer")
	}
	return f, nil
}

// GetFunctor returns the functor of the compound held by the term.
// Atoms report their zero-arity functor.
func (t *Term) GetFunctor() (*Functor, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	id, ok := t.s.m.GetFunctor(t.ref)
	if !ok {
		return nil, t.typeMismatch("compound term", "atom")
	}
	return t.s.functorFromID(id), nil
}

// GetNameArity returns the name and arity of the compound held by the
// term. Atoms report arity 0.
func (t *Term) GetNameArity() (*Atom, int, error) {
	if err := t.check(); err != nil {
		return nil, 0, err
	}
	name, arity, ok := t.s.m.GetNameArity(t.ref)
	if !ok {
		return nil, 0, t.typeMismatch("compound term", "atom")
	}
	return t.s.atomFromID(name), arity, nil
}

// GetCompoundNameArity returns the name and arity of the compound held
// by the term. Unlike GetNameArity, it rejects atoms.
func (t *Term) GetCompoundNameArity() (*Atom, int, error) {
	if err := t.check(); err != nil {
		return nil, 0, err
	}
	name, arity, ok := t.s.m.GetCompoundNameArity(t.ref)
	if !ok {
		return nil, 0, t.typeMismatch("compound term")
	}
	return t.s.atomFromID(name), arity, nil
}

// GetModule returns the module named by the atom held by the term,
// creating it if needed.
func (t *Term) GetModule() (*Module, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	id, ok := t.s.m.GetModule(t.ref)
	if !ok {
		return nil, t.typeMismatch("atom")
	}
	return t.s.moduleFromID(id), nil
}

// GetArg returns argument i of the compound held by the term. Indexes
// are 0-based, unlike arg/3.
func (t *Term) GetArg(i int) (*Term, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	_, arity, ok := t.s.m.GetCompoundNameArity(t.ref)
	if !ok {
		return nil, t.typeMismatch("compound term")
	}
	if i < 0 || i >= arity {
		return nil, &IndexError{Index: i, Len: arity}
	}
	arg := &Term{s: t.s, ref: t.s.m.NewTermRef()}
	t.s.m.GetArg(i, t.ref, arg.ref)
	return arg, nil
}

// GetListHeadTail returns the head and tail of the list cell held by
// the term.
func (t *Term) GetListHeadTail() (*Term, *Term, error) {
	if err := t.check(); err != nil {
		return nil, nil, err
	}
	head := &Term{s: t.s, ref: t.s.m.NewTermRef()}
	tail := &Term{s: t.s, ref: t.s.m.NewTermRef()}
	if !t.s.m.GetListHeadTail(t.ref, head.ref, tail.ref) {
		return nil, nil, t.typeMismatch("list")
	}
	return head, tail, nil
}

// GetListHead returns the head of the list cell held by the term.
func (t *Term) GetListHead() (*Term, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	head := &Term{s: t.s, ref: t.s.m.NewTermRef()}
	if !t.s.m.GetListHead(t.ref, head.ref) {
		return nil, t.typeMismatch("list")
	}
	return head, nil
}

// GetListTail returns the tail of the list cell held by the term.
func (t *Term) GetListTail() (*Term, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	tail := &Term{s: t.s, ref: t.s.m.NewTermRef()}
	if !t.s.m.GetListTail(t.ref, tail.ref) {
		return nil, t.typeMismatch("list")
	}
	return tail, nil
}

// GetNil verifies that the term holds the empty list.
func (t *Term) GetNil() error {
	if err := t.check(); err != nil {
		return err
	}
	if !t.s.m.GetNil(t.ref) {
		return t.typeMismatch("empty list")
	}
	return nil
}

// ---- Mutators
//
// Puts overwrite the term's value outright, without trailing: a put
// survives frame discard and rewind. Unify is the operation that binds
// through the trail.

// PutVariable resets the term to a fresh unbound variable.
func (t *Term) PutVariable() error {
	if err := t.check(); err != nil {
		return err
	}
	t.s.m.PutVariable(t.ref)
	return nil
}

// PutAtom stores the atom a in the term.
func (t *Term) PutAtom(a *Atom) error {
	if err := t.check(); err != nil {
		return err
	}
	t.s.m.PutAtom(t.ref, a.id)
	return nil
}

// PutAtomName stores the atom named name in the term.
func (t *Term) PutAtomName(name string) error {
	if err := t.check(); err != nil {
		return err
	}
	t.s.m.PutAtomName(t.ref, name)
	return nil
}

// PutBool stores the atom true or false in the term.
func (t *Term) PutBool(b bool) error {
	if err := t.check(); err != nil {
		return err
	}
	t.s.m.PutBool(t.ref, b)
	return nil
}

// PutString stores a string object in the term.
func (t *Term) PutString(str string) error {
	if err := t.check(); err != nil {
		return err
	}
	t.s.m.PutString(t.ref, str)
	return nil
}

// PutListChars stores a list of one-character atoms in the term.
func (t *Term) PutListChars(str string) error {
	if err := t.check(); err != nil {
		return err
	}
	t.s.m.PutListChars(t.ref, str)
	return nil
}

// PutInteger stores an integer in the term.
func (t *Term) PutInteger(i int64) error {
	if err := t.check(); err != nil {
		return err
	}
	t.s.m.PutInteger(t.ref, i)
	return nil
}

// PutPointer stores an opaque address in the term.
func (t *Term) PutPointer(p uintptr) error {
	if err := t.check(); err != nil {
		return err
	}
	t.s.m.PutPointer(t.ref, p)
	return nil
}

// PutFloat stores a float in the term.
func (t *Term) PutFloat(f float64) error {
	if err := t.check(); err != nil {
		return err
	}
	t.s.m.PutFloat(t.ref, f)
	return nil
}

// PutFunctor stores a compound of f over fresh variables in the term.
// The variables are allocated on the current engine frame and do not
// persist beyond it.
func (t *Term) PutFunctor(f *Functor) error {
	if err := t.check(); err != nil {
		return err
	}
	t.s.m.PutFunctor(t.ref, f.id)
	return nil
}

// PutList stores a list cell with fresh variable head and tail in the
// term.
func (t *Term) PutList() error {
	if err := t.check(); err != nil {
		return err
	}
	t.s.m.PutList(t.ref)
	return nil
}

// PutNil stores the empty list in the term.
func (t *Term) PutNil() error {
	if err := t.check(); err != nil {
		return err
	}
	t.s.m.PutNil(t.ref)
	return nil
}

// PutTerm makes the term reference the same value as u.
func (t *Term) PutTerm(u *Term) error {
	if err := t.check(); err != nil {
		return err
	}
	if err := u.check(); err != nil {
		return err
	}
	t.s.m.PutTerm(t.ref, u.ref)
	return nil
}

// PutParsed parses text as a Prolog term into this term. On a parse
// failure the reader's error term is stored in the term and returned
// wrapped in an *EngineError.
func (t *Term) PutParsed(text string) error {
	if err := t.check(); err != nil {
		return err
	}
	if err := t.s.m.ReadTerm(t.ref, text); err != nil {
		return t.s.engineError(t.ref)
	}
	return nil
}

// PutConsFunctor builds a compound of f over args in the term. The
// engine's fixed-arity construction is unsafe past 4 arguments, so
// larger compounds route through the vector path on a fresh contiguous
// argument block.
func (t *Term) PutConsFunctor(f *Functor, args ...*Term) error {
	if err := t.check(); err != nil {
		return err
	}
	if f.arity != len(args) {
		return &ArityMismatchError{Arity: f.arity, NArgs: len(args), Functor: true}
	}
	if len(args) > maxFixedArgs {
		list, err := t.s.TermListFromTerms(args...)
		if err != nil {
			return err
		}
		t.s.m.ConsFunctorV(t.ref, f.id, list.base)
		return nil
	}
	refs := make([]fli.TermRef, len(args))
	for i, arg := range args {
		if err := arg.check(); err != nil {
			return err
		}
		refs[i] = arg.ref
	}
	t.s.m.ConsFunctor(t.ref, f.id, refs...)
	return nil
}

// PutConsFunctorList builds a compound of f in the term, with arguments
// taken from the contiguous run args.
func (t *Term) PutConsFunctorList(f *Functor, args *TermList) error {
	if err := t.check(); err != nil {
		return err
	}
	if f.arity != args.Len() {
		return &ArityMismatchError{Arity: f.arity, NArgs: args.Len(), Functor: true}
	}
	t.s.m.ConsFunctorV(t.ref, f.id, args.base)
	return nil
}

// PutConsList builds the list cell [head|tail] in the term.
func (t *Term) PutConsList(head, tail *Term) error {
	if err := t.check(); err != nil {
		return err
	}
	if err := head.check(); err != nil {
		return err
	}
	if err := tail.check(); err != nil {
		return err
	}
	t.s.m.ConsList(t.ref, head.ref, tail.ref)
	return nil
}

// ---- Unification
//
// Unify attempts are trailed: bindings are undone by frame discard,
// rewind and query backtracking. Failure to unify is a normal outcome,
// reported as false, not an error.

// Unify unifies the term with other.
func (t *Term) Unify(other *Term) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	if err := other.check(); err != nil {
		return false, err
	}
	return t.s.m.Unify(t.ref, other.ref), nil
}

// UnifyAtom unifies the term with the atom a.
func (t *Term) UnifyAtom(a *Atom) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.UnifyAtom(t.ref, a.id), nil
}

// UnifyAtomName unifies the term with the atom named name.
func (t *Term) UnifyAtomName(name string) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.UnifyAtomName(t.ref, name), nil
}

// UnifyBool unifies the term with the atom true or false.
func (t *Term) UnifyBool(b bool) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.UnifyBool(t.ref, b), nil
}

// UnifyString unifies the term with a string object.
func (t *Term) UnifyString(str string) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.UnifyString(t.ref, str), nil
}

// UnifyListChars unifies the term with a list of one-character atoms.
func (t *Term) UnifyListChars(str string) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.UnifyListChars(t.ref, str), nil
}

// UnifyInteger unifies the term with an integer.
func (t *Term) UnifyInteger(i int64) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.UnifyInteger(t.ref, i), nil
}

// UnifyFloat unifies the term with a float.
func (t *Term) UnifyFloat(f float64) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.UnifyFloat(t.ref, f), nil
}

// UnifyFunctor unifies the term with a compound of f over fresh
// variables.
func (t *Term) UnifyFunctor(f *Functor) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.UnifyFunctor(t.ref, f.id), nil
}

// UnifyNil unifies the term with the empty list.
func (t *Term) UnifyNil() (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	return t.s.m.UnifyNil(t.ref), nil
}

// UnifyList unifies the term with a list cell, then unifies head and
// tail with the cell's members.
func (t *Term) UnifyList(head, tail *Term) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	if err := head.check(); err != nil {
		return false, err
	}
	if err := tail.check(); err != nil {
		return false, err
	}
	return t.s.m.UnifyPair(t.ref, head.ref, tail.ref), nil
}

// UnifyConsList builds the list cell [head|tail] and unifies the term
// with it.
func (t *Term) UnifyConsList(head, tail *Term) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	if err := head.check(); err != nil {
		return false, err
	}
	if err := tail.check(); err != nil {
		return false, err
	}
	scratch := t.s.m.NewTermRef()
	t.s.m.ConsList(scratch, head.ref, tail.ref)
	return t.s.m.Unify(t.ref, scratch), nil
}

// UnifyArg unifies argument i (0-based) of the compound held by the
// term with arg.
func (t *Term) UnifyArg(i int, arg *Term) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	if err := arg.check(); err != nil {
		return false, err
	}
	return t.s.m.UnifyArg(i, t.ref, arg.ref), nil
}

// ---- Comparison

// Equal reports whether both terms are structurally equal, by the
// engine's ==/2 over a two-element argument list. No variable is bound
// as a side effect.
func (t *Term) Equal(other *Term) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	if err := other.check(); err != nil {
		return false, err
	}
	args := t.s.m.NewTermRefs(2)
	t.s.m.PutTerm(args, t.ref)
	t.s.m.PutTerm(args+1, other.ref)
	return t.s.m.CallPredicate(0, fli.QNodebug, t.s.eq.id, args), nil
}

// Compare orders the term against other in the standard order of terms.
// It returns -1, 0 or 1.
func (t *Term) Compare(other *Term) (int, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	if err := other.check(); err != nil {
		return 0, err
	}
	return t.s.m.Compare(t.ref, other.ref), nil
}

// ---- Combinators

// And builds the conjunction of the term and other as a new term.
// Combinators construct; nothing is evaluated until the result is
// called.
func (t *Term) And(other *Term) (*Term, error) {
	return t.s.TermFromConsFunctor(t.s.conj, t, other)
}

// Or builds the disjunction of the term and other as a new term.
func (t *Term) Or(other *Term) (*Term, error) {
	return t.s.TermFromConsFunctor(t.s.disj, t, other)
}

// ---- Calling

// Call proves the term once, keeping the first solution's bindings and
// dropping its choice points. False means the goal could not be proven;
// an exception inside the engine surfaces as an *EngineError.
func (t *Term) Call() (bool, error) {
	return t.CallInModule(nil)
}

// CallInModule is Call with an explicit goal module. A nil module calls
// in the current context.
func (t *Term) CallInModule(m *Module) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	var mid fli.ModuleID
	if m != nil {
		mid = m.id
	}
	if t.s.m.Call(t.ref, mid) {
		return true, nil
	}
	if err := t.s.takeException(); err != nil {
		return false, err
	}
	return false, nil
}

// CallChecked is Call but reports failure to prove as a *CallError
// carrying the goal's text.
func (t *Term) CallChecked() error {
	goal := t.String()
	ok, err := t.Call()
	if err != nil {
		return err
	}
	if !ok {
		return &CallError{Goal: goal}
	}
	return nil
}
