package attempt

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) FindOpen(ctx context.Context, learnerID, quizID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,learner_id,quiz_id,major,score,total_questions,started_at,ended_at
		 FROM attempts WHERE learner_id=$1 AND quiz_id=$2 AND ended_at IS NULL`,
		learnerID, quizID)
	a, err := scanAttempt(row)
	if err != nil {
		if errors.Is(err, ErrAttemptNotFound) {
			return Attempt{}, ErrNoActiveAttempt
		}
		return Attempt{}, err
	}
	if err := s.loadAnswers(ctx, &a); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) CountClosed(ctx context.Context, learnerID, major string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE learner_id=$1 AND major=$2 AND ended_at IS NOT NULL`,
		learnerID, major).Scan(&n)
	return n, err
}

func (s *SQLStore) Create(ctx context.Context, a Attempt) (Attempt, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (id,learner_id,quiz_id,major,score,total_questions,started_at)
		 VALUES ($1,$2,$3,$4,0,0,$5)`,
		a.ID, a.LearnerID, a.QuizID, a.Major, a.StartedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Attempt{}, ErrConflict
		}
		return Attempt{}, err
	}
	a.Score = 0
	a.TotalQuestions = 0
	a.Answers = []int{}
	a.EndedAt = nil
	return a, nil
}

func (s *SQLStore) AppendAnswer(ctx context.Context, attemptID string, selectedOption int, isCorrect bool) (Attempt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, err
	}
	defer func() { _ = tx.Rollback() }()

	inc := 0
	if isCorrect {
		inc = 1
	}
	// The guard on ended_at makes the append a no-op against a closed attempt;
	// the increment form avoids lost updates between concurrent submissions.
	res, err := tx.ExecContext(ctx,
		`UPDATE attempts SET score=score+$1, total_questions=total_questions+1
		 WHERE id=$2 AND ended_at IS NULL`,
		inc, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Attempt{}, err
	}
	if n == 0 {
		return Attempt{}, ErrNoActiveAttempt
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO attempt_answers (attempt_id,selected_option,is_correct,created_at)
		 VALUES ($1,$2,$3,$4)`,
		attemptID, selectedOption, isCorrect, time.Now().Unix()); err != nil {
		return Attempt{}, err
	}
	if err := tx.Commit(); err != nil {
		return Attempt{}, err
	}
	return s.Get(ctx, attemptID)
}

func (s *SQLStore) Close(ctx context.Context, attemptID string, endedAt int64) (Attempt, error) {
	// total_questions is reconciled from the answers table inside the same
	// statement; a count taken before the close could miss a racing append.
	res, err := s.db.ExecContext(ctx,
		`UPDATE attempts
		 SET total_questions=(SELECT COUNT(*) FROM attempt_answers WHERE attempt_id=attempts.id),
		     ended_at=$1
		 WHERE id=$2 AND ended_at IS NULL`,
		endedAt, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Attempt{}, err
	}
	if n == 0 {
		return Attempt{}, ErrNoActiveAttempt
	}
	return s.Get(ctx, attemptID)
}

func (s *SQLStore) Get(ctx context.Context, attemptID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,learner_id,quiz_id,major,score,total_questions,started_at,ended_at
		 FROM attempts WHERE id=$1`, attemptID)
	a, err := scanAttempt(row)
	if err != nil {
		return Attempt{}, err
	}
	if err := s.loadAnswers(ctx, &a); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) List(ctx context.Context, learnerID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,learner_id,quiz_id,major,score,total_questions,started_at,ended_at
		 FROM attempts WHERE learner_id=$1 ORDER BY started_at DESC, id DESC`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.loadAnswers(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLStore) AggregateByMajor(ctx context.Context, learnerID string) ([]MajorStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT major,
		        COUNT(*),
		        SUM(CASE WHEN ended_at IS NOT NULL THEN 1 ELSE 0 END),
		        SUM(CASE WHEN ended_at IS NULL THEN 1 ELSE 0 END)
		 FROM attempts WHERE learner_id=$1 GROUP BY major ORDER BY major`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MajorStats{}
	for rows.Next() {
		var st MajorStats
		if err := rows.Scan(&st.Major, &st.TotalAttempts, &st.CompletedAttempts, &st.ActiveAttempts); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLStore) loadAnswers(ctx context.Context, a *Attempt) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT selected_option FROM attempt_answers WHERE attempt_id=$1 ORDER BY seq`, a.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	a.Answers = []int{}
	for rows.Next() {
		var sel int
		if err := rows.Scan(&sel); err != nil {
			return err
		}
		a.Answers = append(a.Answers, sel)
	}
	return rows.Err()
}

func scanAttempt(row interface{ Scan(dest ...any) error }) (Attempt, error) {
	var a Attempt
	var ended sql.NullInt64
	if err := row.Scan(&a.ID, &a.LearnerID, &a.QuizID, &a.Major, &a.Score, &a.TotalQuestions, &a.StartedAt, &ended); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, err
	}
	if ended.Valid {
		v := ended.Int64
		a.EndedAt = &v
	}
	return a, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value violates unique constraint") // postgres
}
