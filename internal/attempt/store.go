package attempt

import "context"

// Store is the durable home of attempt records. AppendAnswer and Close are
// single atomic units at the store level; callers never read-modify-write an
// attempt in their own memory.
type Store interface {
	// FindOpen returns the open attempt for (learner, quiz), or
	// ErrNoActiveAttempt.
	FindOpen(ctx context.Context, learnerID, quizID string) (Attempt, error)

	// CountClosed counts finished attempts for (learner, major) across all
	// quizzes sharing the major.
	CountClosed(ctx context.Context, learnerID, major string) (int, error)

	// Create persists a new open attempt. Returns ErrConflict when an open
	// attempt for the same (learner, quiz) already exists.
	Create(ctx context.Context, a Attempt) (Attempt, error)

	// AppendAnswer records one answer and its score delta in a single unit and
	// returns the updated attempt. Returns ErrNoActiveAttempt when the attempt
	// is closed or gone.
	AppendAnswer(ctx context.Context, attemptID string, selectedOption int, isCorrect bool) (Attempt, error)

	// Close finalizes an open attempt exactly once, reconciling totalQuestions
	// against the answers actually recorded as part of the same unit so a
	// concurrent append cannot leave a stale count. Returns ErrNoActiveAttempt
	// when the attempt is already closed or absent.
	Close(ctx context.Context, attemptID string, endedAt int64) (Attempt, error)

	Get(ctx context.Context, attemptID string) (Attempt, error)

	// List returns the learner's attempts most-recent-first.
	List(ctx context.Context, learnerID string) ([]Attempt, error)

	// AggregateByMajor groups the learner's attempts per major. The
	// RemainingAttempts field is left to the engine.
	AggregateByMajor(ctx context.Context, learnerID string) ([]MajorStats, error)
}
