package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	EventAttemptStarted   = "attempt_started"
	EventAnswerRecorded   = "answer_recorded"
	EventAttemptCompleted = "attempt_completed"
)

type Event struct {
	Offset    int64
	Type      string
	Key       string // natural key: attemptID
	DataJSON  string
	CreatedAt int64
}

// Recorder appends attempt lifecycle events. Appends are best-effort from the
// engine's point of view; the attempt write is the source of truth.
type Recorder interface {
	Append(ctx context.Context, e Event) error
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

// Payload marshals k/v pairs into the event's JSON body.
func Payload(kv map[string]any) string {
	b, err := json.Marshal(kv)
	if err != nil {
		return "{}"
	}
	return string(b)
}
