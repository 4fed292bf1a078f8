package attempt

// MaxClosedPerMajor is the hard cap on finished attempts a learner gets for a
// major, counted across every quiz sharing that major.
const MaxClosedPerMajor = 2

// Attempt is one learner's pass through one quiz. Major is denormalized from
// the quiz at creation time and must always equal the quiz's major.
type Attempt struct {
	ID             string `json:"id"`
	LearnerID      string `json:"learner_id"`
	QuizID         string `json:"quiz_id"`
	Major          string `json:"major"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	Answers        []int  `json:"answers"`
	StartedAt      int64  `json:"started_at"`
	EndedAt        *int64 `json:"ended_at,omitempty"`
}

func (a Attempt) Open() bool { return a.EndedAt == nil }

// MajorStats is the per-major aggregation of a learner's attempts.
type MajorStats struct {
	Major             string `json:"major"`
	TotalAttempts     int    `json:"total_attempts"`
	CompletedAttempts int    `json:"completed_attempts"`
	ActiveAttempts    int    `json:"active_attempts"`
	RemainingAttempts int    `json:"remaining_attempts"`
}
