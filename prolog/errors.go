package prolog

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks. The typed errors below carry the
// diagnostic detail.
var (
	// ErrEngineClosed is reported by operations on a closed session.
	ErrEngineClosed = errors.New("engine session is closed")
	// ErrInvalidated classifies use-after-scope errors; every
	// *InvalidatedError matches it.
	ErrInvalidated = errors.New("handle has been invalidated")
	// ErrStorage classifies record retrieval failures; every
	// *StorageError matches it.
	ErrStorage = errors.New("record storage unavailable")
)

// TypeMismatchError reports a typed getter applied to a term holding an
// incompatible type. Recoverable: the term is left untouched.
type TypeMismatchError struct {
	// Expected lists the types the getter accepts.
	Expected []string
	// Actual is the type the term holds.
	Actual string
}

func (e *TypeMismatchError) Error() string {
	types := e.Expected[0]
	switch n := len(e.Expected); {
	case n == 2:
		types = e.Expected[0] + " or " + e.Expected[1]
	case n > 2:
		types = strings.Join(e.Expected[:n-1], ", ") + ", or " + e.Expected[n-1]
	}
	article := "a"
	if strings.ContainsRune("aeiou", rune(types[0])) {
		article = "an"
	}
	return fmt.Sprintf("Term is not %s %s.", article, types)
}

// ArityMismatchError reports a wrong number of arguments, detected
// before any engine call is made.
type ArityMismatchError struct {
	// Arity is the declared arity of the predicate or functor.
	Arity int
	// NArgs is the number of arguments supplied.
	NArgs int
	// Functor marks a compound-construction mismatch rather than a
	// predicate-call mismatch.
	Functor bool
}

func (e *ArityMismatchError) Error() string {
	if e.Functor {
		return fmt.Sprintf("Functor arity (%d) does not match number of arguments (%d).", e.Arity, e.NArgs)
	}
	return fmt.Sprintf("number of arguments (%d) does not match predicate arity (%d)", e.NArgs, e.Arity)
}

// EngineError wraps an exception term raised inside the engine during a
// proof or a parse. It always surfaces on the operation that triggered
// it, never as a plain failure.
type EngineError struct {
	// Text is the exception term as rendered when it was raised.
	Text string
	// Term is a durable snapshot of the exception term, readable until
	// the session closes.
	Term *TermRecord
}

func (e *EngineError) Error() string {
	return "exception: " + e.Text
}

// CallError reports a checked call whose goal could not be proven.
type CallError struct {
	// Goal is the text of the goal that failed.
	Goal string
}

func (e *CallError) Error() string {
	return "call failed: " + e.Goal
}

// InvalidatedError reports use of a handle after its governing scope
// ended. Always a programming error, distinct from type mismatches so
// tests can assert on scope misuse deliberately.
type InvalidatedError struct {
	// Kind names the invalidated wrapper, e.g. "frame term" or "query".
	Kind string
}

func (e *InvalidatedError) Error() string {
	return e.Kind + " has been invalidated"
}

func (e *InvalidatedError) Is(target error) bool { return target == ErrInvalidated }

// StorageError reports that a term record's engine storage cannot
// satisfy a retrieval. Retrying cannot succeed.
type StorageError struct {
	// Erased is true when the record was explicitly erased, false when
	// the store itself is gone.
	Erased bool
}

func (e *StorageError) Error() string {
	if e.Erased {
		return "term record was erased"
	}
	return "term record storage exhausted"
}

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// IndexError reports an index outside a term list's bounds.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

// QueryActiveError reports an attempt to open a query while another is
// live. The engine has a single query stack; close the active query
// first.
type QueryActiveError struct {
	// Active is the textual form of the query already open.
	Active string
}

func (e *QueryActiveError) Error() string {
	return "another query is already active: " + e.Active
}
