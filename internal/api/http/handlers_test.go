package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	api "github.com/quizforge/quizforge/internal/api/http"
	"github.com/quizforge/quizforge/internal/attempt"
	authmw "github.com/quizforge/quizforge/internal/auth/middleware"
	"github.com/quizforge/quizforge/internal/catalog"
	"github.com/quizforge/quizforge/internal/db"
	"github.com/quizforge/quizforge/internal/rbac"
)

func intp(v int) *int { return &v }

// testServer wires the handlers over in-memory stores with a fixed caller
// identity, standing in for the JWT middleware.
func testServer(t *testing.T, ident authmw.Identity) (*httptest.Server, catalog.Catalog, *attempt.Engine) {
	t.Helper()
	cat := catalog.NewInMemoryStore()
	store := attempt.NewInMemoryStore()
	eng := attempt.NewEngine(cat, store, nil, func() time.Time { return time.Unix(1000, 0) })

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := authmw.WithIdentity(req.Context(), ident)
			ctx = rbac.WithRole(ctx, string(ident.Role))
			ctx = rbac.WithSubject(ctx, ident.ID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/quizzes", api.CreateQuizHandler(cat))
	r.Get("/quizzes/{quizID}", api.GetQuizHandler(cat))
	r.Get("/quizzes", api.ListQuizzesHandler(cat))
	r.Post("/attempts/answers", api.SubmitAnswerHandler(eng, cat))
	r.Post("/attempts/complete", api.CompleteAttemptHandler(eng))
	r.Get("/attempts", api.ListAttemptsHandler(eng))
	r.Get("/attempts/stats", api.AttemptStatsHandler(eng))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, cat, eng
}

func seedQuiz(t *testing.T, cat catalog.Catalog, id, major string, key []int) {
	t.Helper()
	qs := make([]catalog.Question, len(key))
	for i, k := range key {
		qs[i] = catalog.Question{ID: i + 1, Text: "q", Options: []string{"a", "b", "c"}, CorrectAnswer: intp(k), Major: major}
	}
	err := cat.PutQuiz(context.Background(), catalog.Quiz{
		ID: id, Title: "t", Major: major, TeacherID: "t1", Questions: qs, CreatedAt: 100,
	})
	if err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func TestSubmitAnswerHandler(t *testing.T) {
	srv, cat, _ := testServer(t, authmw.Identity{ID: "l1", Role: authmw.RoleStudent})
	seedQuiz(t, cat, "quiz-1", "Physics", []int{1, 0})

	resp := postJSON(t, srv.URL+"/attempts/answers", map[string]any{
		"quiz_id": "quiz-1", "question_id": 1, "selected_option": 1,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}
	var a attempt.Attempt
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.Score != 1 || a.TotalQuestions != 1 || a.LearnerID != "l1" {
		t.Fatalf("attempt = %+v", a)
	}
}

func TestSubmitAnswerHandler_Validation(t *testing.T) {
	srv, cat, _ := testServer(t, authmw.Identity{ID: "l1", Role: authmw.RoleStudent})
	seedQuiz(t, cat, "quiz-1", "Physics", []int{1})

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"missing quiz", map[string]any{"question_id": 1, "selected_option": 0}, 400},
		{"missing selected", map[string]any{"quiz_id": "quiz-1", "question_id": 1}, 400},
		{"selected negative", map[string]any{"quiz_id": "quiz-1", "question_id": 1, "selected_option": -1}, 400},
		{"selected past options", map[string]any{"quiz_id": "quiz-1", "question_id": 1, "selected_option": 3}, 400},
		{"unknown quiz", map[string]any{"quiz_id": "nope", "question_id": 1, "selected_option": 0}, 404},
		{"unknown question", map[string]any{"quiz_id": "quiz-1", "question_id": 9, "selected_option": 0}, 404},
	}
	for _, tc := range cases {
		resp := postJSON(t, srv.URL+"/attempts/answers", tc.body)
		resp.Body.Close()
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: status = %d; want %d", tc.name, resp.StatusCode, tc.want)
		}
	}
}

func TestSubmitAnswerHandler_LimitMapsTo403(t *testing.T) {
	srv, cat, eng := testServer(t, authmw.Identity{ID: "l1", Role: authmw.RoleStudent})
	seedQuiz(t, cat, "chem-1", "Chemistry", []int{0})
	ctx := context.Background()

	for i := 0; i < attempt.MaxClosedPerMajor; i++ {
		if _, err := eng.SubmitAnswer(ctx, "l1", "chem-1", 1, 0); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if _, err := eng.CompleteAttempt(ctx, "l1", "chem-1"); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}

	resp := postJSON(t, srv.URL+"/attempts/answers", map[string]any{
		"quiz_id": "chem-1", "question_id": 1, "selected_option": 0,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d; want 403", resp.StatusCode)
	}
}

func TestCompleteAttemptHandler_SecondCall404(t *testing.T) {
	srv, cat, _ := testServer(t, authmw.Identity{ID: "l1", Role: authmw.RoleStudent})
	seedQuiz(t, cat, "quiz-1", "Physics", []int{0})

	resp := postJSON(t, srv.URL+"/attempts/answers", map[string]any{
		"quiz_id": "quiz-1", "question_id": 1, "selected_option": 0,
	})
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/attempts/complete", map[string]any{"quiz_id": "quiz-1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first complete: status = %d; want 200", resp.StatusCode)
	}
	var a attempt.Attempt
	_ = json.NewDecoder(resp.Body).Decode(&a)
	resp.Body.Close()
	if a.EndedAt == nil || a.TotalQuestions != 1 {
		t.Fatalf("finalized attempt = %+v", a)
	}

	resp = postJSON(t, srv.URL+"/attempts/complete", map[string]any{"quiz_id": "quiz-1"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second complete: status = %d; want 404", resp.StatusCode)
	}
}

func TestListAttemptsHandler_StudentScopedToSelf(t *testing.T) {
	srv, cat, eng := testServer(t, authmw.Identity{ID: "l1", Role: authmw.RoleStudent})
	seedQuiz(t, cat, "quiz-1", "Physics", []int{0})
	ctx := context.Background()

	if _, err := eng.SubmitAnswer(ctx, "l1", "quiz-1", 1, 0); err != nil {
		t.Fatalf("submit l1: %v", err)
	}
	if _, err := eng.SubmitAnswer(ctx, "l2", "quiz-1", 1, 0); err != nil {
		t.Fatalf("submit l2: %v", err)
	}

	// learner_id is ignored for students.
	resp, err := http.Get(srv.URL + "/attempts?learner_id=l2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var out struct {
		Attempts []attempt.Attempt    `json:"attempts"`
		Stats    []attempt.MajorStats `json:"attempt_stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Attempts) != 1 || out.Attempts[0].LearnerID != "l1" {
		t.Fatalf("attempts = %+v; want only l1's", out.Attempts)
	}
	if len(out.Stats) != 1 || out.Stats[0].ActiveAttempts != 1 {
		t.Fatalf("stats = %+v", out.Stats)
	}
}

func TestListAttemptsHandler_ViewAllHonorsFilter(t *testing.T) {
	srv, cat, eng := testServer(t, authmw.Identity{ID: "t1", Role: authmw.RoleTeacher})
	seedQuiz(t, cat, "quiz-1", "Physics", []int{0})
	ctx := context.Background()

	if _, err := eng.SubmitAnswer(ctx, "l1", "quiz-1", 1, 0); err != nil {
		t.Fatalf("submit l1: %v", err)
	}
	if _, err := eng.SubmitAnswer(ctx, "l2", "quiz-1", 1, 0); err != nil {
		t.Fatalf("submit l2: %v", err)
	}

	resp, err := http.Get(srv.URL + "/attempts?learner_id=l2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var out struct {
		Attempts []attempt.Attempt `json:"attempts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Attempts) != 1 || out.Attempts[0].LearnerID != "l2" {
		t.Fatalf("attempts = %+v; want only l2's", out.Attempts)
	}
}

func TestListUsersHandler_FilterByRole(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })

	seed := [][4]string{
		{"u1", "alice", "student", "Physics"},
		{"u2", "bob", "teacher", ""},
	}
	for _, u := range seed {
		if _, err := dbh.ExecContext(ctx,
			`INSERT INTO users (id,username,password_hash,role,major,created_at) VALUES ($1,$2,'x',$3,$4,1)`,
			u[0], u[1], u[2], u[3]); err != nil {
			t.Fatalf("seed user %s: %v", u[1], err)
		}
	}

	rr := httptest.NewRecorder()
	api.ListUsersHandler(dbh)(rr, httptest.NewRequest("GET", "/users?role=teacher", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rr.Code)
	}
	var users []map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(users) != 1 || users[0]["username"] != "bob" || users[0]["role"] != "teacher" {
		t.Fatalf("filtered users = %+v; want just bob", users)
	}
}

func TestCreateAndGetQuizHandlers(t *testing.T) {
	srv, _, _ := testServer(t, authmw.Identity{ID: "t1", Role: authmw.RoleTeacher})

	resp := postJSON(t, srv.URL+"/quizzes", map[string]any{
		"title": "Mechanics", "major": "Physics",
		"questions": []map[string]any{
			{"question": "F = ?", "options": []string{"ma", "mv"}, "correct_answer": 0},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status = %d; want 201", resp.StatusCode)
	}
	var created map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	getResp, err := http.Get(fmt.Sprintf("%s/quizzes/%s", srv.URL, created["id"]))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer getResp.Body.Close()
	var quiz catalog.Quiz
	if err := json.NewDecoder(getResp.Body).Decode(&quiz); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if quiz.Title != "Mechanics" || len(quiz.Questions) != 1 {
		t.Fatalf("quiz = %+v", quiz)
	}
	if quiz.Questions[0].CorrectAnswer != nil {
		t.Fatalf("learner-facing quiz leaked the answer key")
	}

	// Bad correct_answer index.
	resp = postJSON(t, srv.URL+"/quizzes", map[string]any{
		"title": "Bad", "major": "Physics",
		"questions": []map[string]any{
			{"question": "q", "options": []string{"a", "b"}, "correct_answer": 2},
		},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad index: status = %d; want 400", resp.StatusCode)
	}
}
