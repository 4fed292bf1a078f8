package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmw "github.com/quizforge/quizforge/internal/auth/middleware"
	"github.com/quizforge/quizforge/internal/catalog"
)

// POST /quizzes (teacher-only via rbac). Questions are validated and get
// sequential ids here; quizzes are create-only so questions never change
// under an in-progress attempt.
func CreateQuizHandler(cat catalog.Catalog) http.HandlerFunc {
	type questionReq struct {
		Text          string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer *int     `json:"correct_answer"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := authmw.IdentityFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			Title       string        `json:"title"`
			Description string        `json:"description"`
			Major       string        `json:"major"`
			Questions   []questionReq `json:"questions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req.Title = strings.TrimSpace(req.Title)
		req.Major = strings.TrimSpace(req.Major)
		if req.Title == "" || req.Major == "" {
			http.Error(w, "title and major required", http.StatusBadRequest)
			return
		}
		if len(req.Questions) == 0 {
			http.Error(w, "at least one question required", http.StatusBadRequest)
			return
		}

		questions := make([]catalog.Question, 0, len(req.Questions))
		for i, q := range req.Questions {
			if strings.TrimSpace(q.Text) == "" {
				http.Error(w, "question text required", http.StatusBadRequest)
				return
			}
			if len(q.Options) < 2 {
				http.Error(w, "at least two options required", http.StatusBadRequest)
				return
			}
			if q.CorrectAnswer == nil || *q.CorrectAnswer < 0 || *q.CorrectAnswer >= len(q.Options) {
				http.Error(w, "correct_answer out of range", http.StatusBadRequest)
				return
			}
			ca := *q.CorrectAnswer
			questions = append(questions, catalog.Question{
				ID:            i + 1,
				Text:          q.Text,
				Options:       q.Options,
				CorrectAnswer: &ca,
				Major:         req.Major,
				CreatedBy:     ident.ID,
			})
		}

		quiz := catalog.Quiz{
			ID:          uuid.NewString(),
			Title:       req.Title,
			Description: req.Description,
			Major:       req.Major,
			TeacherID:   ident.ID,
			Questions:   questions,
			CreatedAt:   time.Now().Unix(),
		}
		if err := cat.PutQuiz(r.Context(), quiz); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": quiz.ID})
	}
}

// GET /quizzes/{quizID} — learner-safe, answer keys stripped by the catalog.
func GetQuizHandler(cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "quizID")
		q, err := cat.GetQuiz(r.Context(), id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(q)
	}
}

// GET /quizzes?major=... — most-recent-first; the first entry is the active
// quiz for that major.
func ListQuizzesHandler(cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		major := strings.TrimSpace(r.URL.Query().Get("major"))
		list, err := cat.ListByMajor(r.Context(), major)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}
