package catalog

// Question is embedded in its quiz. IDs are sequential and unique within the
// quiz only. CorrectAnswer is nil on learner-facing reads.
type Question struct {
	ID            int      `json:"id"`
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correct_answer,omitempty"`
	Major         string   `json:"major,omitempty"`
	CreatedBy     string   `json:"created_by,omitempty"`
}

type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Major       string     `json:"major"`
	TeacherID   string     `json:"teacher_id"`
	Questions   []Question `json:"questions"`
	CreatedAt   int64      `json:"created_at,omitempty"`
}
