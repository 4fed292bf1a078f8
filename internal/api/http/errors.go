package http

import (
	"errors"
	"net/http"

	"github.com/quizforge/quizforge/internal/attempt"
	"github.com/quizforge/quizforge/internal/catalog"
)

// writeEngineError translates the attempt/catalog error taxonomy into HTTP
// status codes. Conflict never appears here: the engine absorbs it.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrQuizNotFound),
		errors.Is(err, catalog.ErrQuestionNotFound),
		errors.Is(err, attempt.ErrAttemptNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, attempt.ErrNoActiveAttempt):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, attempt.ErrAttemptLimit):
		http.Error(w, "maximum attempts reached for this major", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
