package attempt

import "errors"

var (
	// ErrAttemptLimit is a policy violation: the learner already has
	// MaxClosedPerMajor closed attempts for the quiz's major.
	ErrAttemptLimit = errors.New("attempt limit reached for major")

	// ErrNoActiveAttempt means there is nothing open to append to or finalize.
	ErrNoActiveAttempt = errors.New("no active attempt")

	// ErrConflict is a transient create collision: a concurrent caller already
	// opened the attempt for the same (learner, quiz). The engine recovers it
	// internally; it never reaches a caller.
	ErrConflict = errors.New("open attempt already exists")

	// ErrAttemptNotFound covers direct lookups by attempt id.
	ErrAttemptNotFound = errors.New("attempt not found")
)
