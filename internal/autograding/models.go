package autograding

// Grading is one persisted evaluation of a learner's answer.
type Grading struct {
	ID           string   `json:"id"`
	QuestionID   string   `json:"question_id"`
	UserID       string   `json:"user_id"`
	AnswerText   string   `json:"answer_text"`
	Correct      bool     `json:"correct"`
	Grade        float64  `json:"grade"`
	MaximumGrade float64  `json:"maximum_grade"`
	Messages     []string `json:"messages"`
	GradedAt     int64    `json:"graded_at"`
}

type AnswerInput struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}
