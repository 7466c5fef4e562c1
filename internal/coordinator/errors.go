package coordinator

import "errors"

var (
	// ErrNoQuorum is the single client-visible failure of a coordinated
	// operation: phase 1 collected fewer than W OK votes.
	ErrNoQuorum = errors.New("no quorum")
)
