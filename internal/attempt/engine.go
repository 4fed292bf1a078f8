package attempt

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/quizforge/quizforge/internal/audit"
	"github.com/quizforge/quizforge/internal/catalog"
)

// Engine is the attempt lifecycle state machine. Per (learner, quiz) an
// attempt goes NONE -> OPEN on the first submitted answer (guarded by the
// per-major cap), stays OPEN across submissions, and ends CLOSED exactly once.
//
// The engine never trusts caller-supplied scores and never bounds-checks
// selectedOption against the option list; callers validate the range before
// invoking, otherwise any non-matching value simply scores as incorrect.
type Engine struct {
	catalog catalog.Catalog
	store   Store
	events  audit.Recorder
	now     func() time.Time
}

// NewEngine wires the engine's collaborators explicitly. events may be nil;
// now defaults to time.Now.
func NewEngine(cat catalog.Catalog, store Store, events audit.Recorder, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{catalog: cat, store: store, events: events, now: now}
}

// SubmitAnswer records one answer for (learner, quiz), lazily opening the
// attempt on the first submission. The score and running totals are computed
// here and in the store, never taken from the caller.
func (e *Engine) SubmitAnswer(ctx context.Context, learnerID, quizID string, questionID, selectedOption int) (Attempt, error) {
	quiz, err := e.catalog.GetQuizFull(ctx, quizID)
	if err != nil {
		return Attempt{}, err
	}
	q, err := catalog.FindQuestion(quiz, questionID)
	if err != nil {
		return Attempt{}, err
	}

	a, err := e.store.FindOpen(ctx, learnerID, quizID)
	if errors.Is(err, ErrNoActiveAttempt) {
		a, err = e.openAttempt(ctx, learnerID, quiz)
	}
	if err != nil {
		return Attempt{}, err
	}

	isCorrect := q.CorrectAnswer != nil && selectedOption == *q.CorrectAnswer
	updated, err := e.store.AppendAnswer(ctx, a.ID, selectedOption, isCorrect)
	if err != nil {
		return Attempt{}, err
	}
	e.record(ctx, audit.EventAnswerRecorded, updated.ID, map[string]any{
		"quiz_id":     quizID,
		"question_id": questionID,
		"correct":     isCorrect,
	})
	return updated, nil
}

// openAttempt enforces the per-major cap, then creates the attempt. A losing
// concurrent creator lands on ErrConflict and adopts the winner's attempt
// instead of surfacing the collision.
func (e *Engine) openAttempt(ctx context.Context, learnerID string, quiz catalog.Quiz) (Attempt, error) {
	closed, err := e.store.CountClosed(ctx, learnerID, quiz.Major)
	if err != nil {
		return Attempt{}, err
	}
	if closed >= MaxClosedPerMajor {
		return Attempt{}, ErrAttemptLimit
	}
	a, err := e.store.Create(ctx, Attempt{
		ID:        uuid.NewString(),
		LearnerID: learnerID,
		QuizID:    quiz.ID,
		Major:     quiz.Major,
		StartedAt: e.now().Unix(),
	})
	if errors.Is(err, ErrConflict) {
		return e.store.FindOpen(ctx, learnerID, quiz.ID)
	}
	if err != nil {
		return Attempt{}, err
	}
	e.record(ctx, audit.EventAttemptStarted, a.ID, map[string]any{
		"quiz_id": quiz.ID,
		"major":   quiz.Major,
	})
	return a, nil
}

// CompleteAttempt finalizes the open attempt for (learner, quiz). The
// totalQuestions reconciliation happens inside the store's close so answers
// appended after the lookup are still counted. A second call finds nothing
// open and returns ErrNoActiveAttempt, leaving the first endedAt untouched.
func (e *Engine) CompleteAttempt(ctx context.Context, learnerID, quizID string) (Attempt, error) {
	a, err := e.store.FindOpen(ctx, learnerID, quizID)
	if err != nil {
		return Attempt{}, err
	}
	final, err := e.store.Close(ctx, a.ID, e.now().Unix())
	if err != nil {
		return Attempt{}, err
	}
	e.record(ctx, audit.EventAttemptCompleted, final.ID, map[string]any{
		"quiz_id": quizID,
		"score":   final.Score,
		"total":   final.TotalQuestions,
	})
	return final, nil
}

// Stats aggregates the learner's attempts per major. RemainingAttempts is
// clamped at zero.
func (e *Engine) Stats(ctx context.Context, learnerID string) ([]MajorStats, error) {
	stats, err := e.store.AggregateByMajor(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	for i := range stats {
		rem := MaxClosedPerMajor - stats[i].CompletedAttempts
		if rem < 0 {
			rem = 0
		}
		stats[i].RemainingAttempts = rem
	}
	return stats, nil
}

// List returns the learner's attempts most-recent-first.
func (e *Engine) List(ctx context.Context, learnerID string) ([]Attempt, error) {
	return e.store.List(ctx, learnerID)
}

func (e *Engine) record(ctx context.Context, typ, key string, data map[string]any) {
	if e.events == nil {
		return
	}
	_ = e.events.Append(ctx, audit.Event{Type: typ, Key: key, DataJSON: audit.Payload(data)})
}
