package catalog

import (
	"context"
	"errors"
)

var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
)

// Catalog is the read-mostly quiz source. GetQuiz and ListByMajor are
// learner-safe (answer keys stripped); GetQuizFull keeps the keys and is the
// grading path only.
type Catalog interface {
	PutQuiz(ctx context.Context, q Quiz) error
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	GetQuizFull(ctx context.Context, id string) (Quiz, error)
	// ListByMajor returns quizzes most-recent-first. An empty major lists all.
	ListByMajor(ctx context.Context, major string) ([]Quiz, error)
}

// FindQuestion resolves a question inside a quiz by its sequential id.
func FindQuestion(q Quiz, questionID int) (Question, error) {
	for _, qs := range q.Questions {
		if qs.ID == questionID {
			return qs, nil
		}
	}
	return Question{}, ErrQuestionNotFound
}

func stripAnswers(q Quiz) Quiz {
	qs := make([]Question, len(q.Questions))
	copy(qs, q.Questions)
	for i := range qs {
		qs[i].CorrectAnswer = nil
	}
	q.Questions = qs
	return q
}
