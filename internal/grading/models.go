package grading

// PlainKind tags a solution of a plain text-response question.
type PlainKind string

const (
	ExactMatch PlainKind = "exact_match"
	Keyword    PlainKind = "keyword"
)

// Role tags a solution of a comprehension question.
type Role string

const (
	LiftedWordRole Role = "compre_lifted_word"
	KeywordRole    Role = "compre_keyword"
)

// PlainSolution is one authored solution of a plain question.
type PlainSolution struct {
	ID          string    `json:"id,omitempty"`
	Kind        PlainKind `json:"solution_type"`
	Text        string    `json:"solution"`
	Grade       float64   `json:"grade"`
	Explanation string    `json:"explanation,omitempty"`
}

// ComprehensionSolution is one authored solution of a comprehension Point.
// Texts lists the acceptable surface forms; Lemmas holds their base forms
// and is normally filled at authoring time.
type ComprehensionSolution struct {
	ID          string   `json:"id,omitempty"`
	Role        Role     `json:"solution_type"`
	Texts       []string `json:"solution"`
	Lemmas      []string `json:"solution_lemma,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

type Point struct {
	ID         string                  `json:"id,omitempty"`
	Weight     int                     `json:"point_weight"`
	PointGrade float64                 `json:"point_grade"`
	Solutions  []ComprehensionSolution `json:"solutions"`
}

type Group struct {
	ID                string  `json:"id,omitempty"`
	Weight            int     `json:"group_weight"`
	MaximumGroupGrade float64 `json:"maximum_group_grade"`
	Points            []Point `json:"points"`
}

// Question is the read-only view of a text-response question the engine
// grades against. Solutions is used when Comprehension is false, Groups
// otherwise.
type Question struct {
	ID            string          `json:"id"`
	Title         string          `json:"title,omitempty"`
	MaximumGrade  float64         `json:"maximum_grade"`
	Comprehension bool            `json:"comprehension"`
	Solutions     []PlainSolution `json:"solutions,omitempty"`
	Groups        []Group         `json:"groups,omitempty"`
}

// Answer is the read-only view of a student's answer.
type Answer struct {
	Text string `json:"answer_text"`
}

// Result is the outcome of grading one answer.
type Result struct {
	Correct  bool     `json:"correct"`
	Grade    float64  `json:"grade"`
	Messages []string `json:"messages"`
}

// AutoGradable reports whether q has anything to grade against. Callers
// should not submit answers for questions where this is false.
func AutoGradable(q Question) bool {
	if !q.Comprehension {
		return len(q.Solutions) > 0
	}
	for _, g := range q.Groups {
		for _, p := range g.Points {
			for _, s := range p.Solutions {
				if len(s.Texts) > 0 {
					return true
				}
			}
		}
	}
	return false
}
