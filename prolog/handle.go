package prolog

// liveness is the invalidation token shared by scope-bound wrappers. A
// frame hands the same token to every term it tracks, so one transition
// invalidates them all; a query does the same per solution window. A nil
// token is permanently alive, used by session-lifetime terms.
type liveness struct {
	kind string
	dead bool
}

func newLiveness(kind string) *liveness { return &liveness{kind: kind} }

// kill is one-way and idempotent.
func (l *liveness) kill() {
	if l != nil {
		l.dead = true
	}
}

func (l *liveness) check() error {
	if l != nil && l.dead {
		return &InvalidatedError{Kind: l.kind}
	}
	return nil
}
