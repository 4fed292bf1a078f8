package attempt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/quizforge/quizforge/internal/attempt"
)

func TestMemoryStore_CreateConflict(t *testing.T) {
	store := attempt.NewInMemoryStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, attempt.Attempt{ID: "a1", LearnerID: "l1", QuizID: "q1", Major: "Physics", StartedAt: 1}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := store.Create(ctx, attempt.Attempt{ID: "a2", LearnerID: "l1", QuizID: "q1", Major: "Physics", StartedAt: 2})
	if !errors.Is(err, attempt.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}

	// Different quiz for the same learner is fine.
	if _, err := store.Create(ctx, attempt.Attempt{ID: "a3", LearnerID: "l1", QuizID: "q2", Major: "Physics", StartedAt: 3}); err != nil {
		t.Fatalf("create other quiz: %v", err)
	}
}

func TestMemoryStore_AppendAfterCloseRejected(t *testing.T) {
	store := attempt.NewInMemoryStore()
	ctx := context.Background()

	a, err := store.Create(ctx, attempt.Attempt{ID: "a1", LearnerID: "l1", QuizID: "q1", Major: "Physics", StartedAt: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.AppendAnswer(ctx, a.ID, 0, true); err != nil {
		t.Fatalf("append: %v", err)
	}
	closed, err := store.Close(ctx, a.ID, 50)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.TotalQuestions != 1 {
		t.Fatalf("close reconciled total = %d; want 1", closed.TotalQuestions)
	}

	if _, err := store.AppendAnswer(ctx, a.ID, 1, false); !errors.Is(err, attempt.ErrNoActiveAttempt) {
		t.Fatalf("append after close: want ErrNoActiveAttempt, got %v", err)
	}
	if _, err := store.Close(ctx, a.ID, 60); !errors.Is(err, attempt.ErrNoActiveAttempt) {
		t.Fatalf("double close: want ErrNoActiveAttempt, got %v", err)
	}

	// The closed slot frees the (learner, quiz) pair for a new attempt.
	if _, err := store.Create(ctx, attempt.Attempt{ID: "a2", LearnerID: "l1", QuizID: "q1", Major: "Physics", StartedAt: 70}); err != nil {
		t.Fatalf("re-create after close: %v", err)
	}
}

func TestMemoryStore_CountAndAggregate(t *testing.T) {
	store := attempt.NewInMemoryStore()
	ctx := context.Background()

	mk := func(id, quiz, major string, closed bool) {
		t.Helper()
		a, err := store.Create(ctx, attempt.Attempt{ID: id, LearnerID: "l1", QuizID: quiz, Major: major, StartedAt: 1})
		if err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
		if closed {
			if _, err := store.Close(ctx, a.ID, 2); err != nil {
				t.Fatalf("close %s: %v", id, err)
			}
		}
	}
	mk("a1", "q1", "Chemistry", true)
	mk("a2", "q2", "Chemistry", true)
	mk("a3", "q3", "Chemistry", false)
	mk("a4", "q4", "Physics", true)

	n, err := store.CountClosed(ctx, "l1", "Chemistry")
	if err != nil || n != 2 {
		t.Fatalf("CountClosed Chemistry = %d, %v; want 2", n, err)
	}
	n, _ = store.CountClosed(ctx, "l2", "Chemistry")
	if n != 0 {
		t.Fatalf("CountClosed other learner = %d; want 0", n)
	}

	stats, err := store.AggregateByMajor(ctx, "l1")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 majors, got %d", len(stats))
	}
	chem := stats[0] // sorted by major
	if chem.Major != "Chemistry" || chem.TotalAttempts != 3 || chem.CompletedAttempts != 2 || chem.ActiveAttempts != 1 {
		t.Fatalf("chemistry stats: %+v", chem)
	}
}
