package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quizforge/quizforge/internal/attempt"
	authmw "github.com/quizforge/quizforge/internal/auth/middleware"
	"github.com/quizforge/quizforge/internal/catalog"
	"github.com/quizforge/quizforge/internal/rbac"
)

// POST /attempts/answers
// The handler owns input validation: selected_option must index into the
// question's option list. The engine itself treats any non-matching value as
// incorrect, so rejecting out-of-range input here is the only 400 path.
func SubmitAnswerHandler(eng *attempt.Engine, cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := authmw.IdentityFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			QuizID         string `json:"quiz_id"`
			QuestionID     int    `json:"question_id"`
			SelectedOption *int   `json:"selected_option"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.QuizID == "" || req.QuestionID == 0 || req.SelectedOption == nil {
			http.Error(w, "quiz_id, question_id and selected_option required", http.StatusBadRequest)
			return
		}

		quiz, err := cat.GetQuiz(r.Context(), req.QuizID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		q, err := catalog.FindQuestion(quiz, req.QuestionID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if *req.SelectedOption < 0 || *req.SelectedOption >= len(q.Options) {
			http.Error(w, "selected_option out of range", http.StatusBadRequest)
			return
		}

		a, err := eng.SubmitAnswer(r.Context(), ident.ID, req.QuizID, req.QuestionID, *req.SelectedOption)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(a)
	}
}

// POST /attempts/complete
func CompleteAttemptHandler(eng *attempt.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := authmw.IdentityFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			QuizID string `json:"quiz_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.QuizID == "" {
			http.Error(w, "quiz_id required", http.StatusBadRequest)
			return
		}
		a, err := eng.CompleteAttempt(r.Context(), ident.ID, req.QuizID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(a)
	}
}

// GET /attempts?learner_id=...
// Callers without attempt:view-all only ever see their own attempts; the
// learner_id filter is honored for roles that hold it. Mirrors the store
// order: most-recent-first.
func ListAttemptsHandler(eng *attempt.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := rbac.SubjectFromContext(r.Context())

		learnerID := strings.TrimSpace(r.URL.Query().Get("learner_id"))
		if !rbac.Allowed(role, "attempt:view-all") || learnerID == "" {
			learnerID = sub
		}

		attempts, err := eng.List(r.Context(), learnerID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		stats, err := eng.Stats(r.Context(), learnerID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"attempts":      attempts,
			"attempt_stats": stats,
		})
	}
}

// GET /attempts/stats
func AttemptStatsHandler(eng *attempt.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := authmw.IdentityFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		stats, err := eng.Stats(r.Context(), ident.ID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stats)
	}
}
