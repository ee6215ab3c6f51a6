package grading

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrInvalidQuestion is returned when a question breaks an authoring
// invariant. Such questions must be rejected before they are stored.
var ErrInvalidQuestion = errors.New("invalid question")

// Lemmatizer maps a word to its base form. It returns false for unknown
// words and must be deterministic.
type Lemmatizer interface {
	Lemmatize(word string) (string, bool)
}

// Option configures an AutoGrader.
type Option func(*config)

type config struct {
	lemmatizer Lemmatizer
	logger     *zap.Logger
}

func WithLemmatizer(l Lemmatizer) Option { return func(c *config) { c.lemmatizer = l } }
func WithLogger(l *zap.Logger) Option    { return func(c *config) { c.logger = l } }

// AutoGrader grades text-response answers. It holds no per-answer state and
// is safe for concurrent use.
type AutoGrader struct {
	plain         strategy
	comprehension strategy
	log           *zap.Logger
}

type strategy interface {
	grade(q Question, answer string) Result
}

// NewAutoGrader builds a grader. Without WithLemmatizer every word is its
// own lemma.
func NewAutoGrader(opts ...Option) *AutoGrader {
	cfg := &config{logger: zap.NewNop()}
	for _, o := range opts {
		o(cfg)
	}
	return &AutoGrader{
		plain:         plainStrategy{},
		comprehension: comprehensionStrategy{lemmatizer: cfg.lemmatizer},
		log:           cfg.logger,
	}
}

// Evaluate grades answer against q. It has no side effects.
func (g *AutoGrader) Evaluate(q Question, answer Answer) (Result, error) {
	if err := Validate(q); err != nil {
		return Result{}, err
	}
	text := NormalizeText(answer.Text)

	s := g.plain
	mode := "plain"
	if q.Comprehension {
		s, mode = g.comprehension, "comprehension"
	}
	res := s.grade(q, text)
	g.log.Debug("answer evaluated",
		zap.String("question_id", q.ID),
		zap.String("mode", mode),
		zap.Float64("grade", res.Grade),
		zap.Float64("maximum_grade", q.MaximumGrade),
		zap.Bool("correct", res.Correct))
	return res, nil
}

type plainStrategy struct{}

func (plainStrategy) grade(q Question, answer string) Result {
	matched := matchPlain(answer, q.Solutions)
	grade := gradePlain(q, matched)
	return Result{
		Correct:  grade >= q.MaximumGrade,
		Grade:    grade,
		Messages: explainPlain(matched),
	}
}

type comprehensionStrategy struct{ lemmatizer Lemmatizer }

func (s comprehensionStrategy) grade(q Question, answer string) Result {
	lz := newMemo(s.lemmatizer)
	t := buildTree(q, func(sol ComprehensionSolution) []string {
		if len(sol.Lemmas) > 0 {
			return sol.Lemmas
		}
		return SolutionLemmas(lz, sol.Texts)
	})
	m := matchComprehension(answer, t, lz)
	grade := gradeComprehension(q, t, m)
	return Result{
		Correct:  grade >= q.MaximumGrade,
		Grade:    grade,
		Messages: explainComprehension(q, t, m, grade),
	}
}

// SolutionLemmas derives the lemma of every non-blank solution text. Texts
// are trimmed and lowercased first; unknown words are their own lemma.
func SolutionLemmas(lz Lemmatizer, texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		out = append(out, strings.TrimSpace(lemmaOrSelf(lz, t)))
	}
	return out
}

// memo pins one lemma per word for the duration of a grading. It is owned
// by a single Evaluate call.
type memo struct {
	next Lemmatizer
	seen map[string]memoEntry
}

type memoEntry struct {
	lemma string
	ok    bool
}

func newMemo(next Lemmatizer) *memo {
	return &memo{next: next, seen: map[string]memoEntry{}}
}

func (m *memo) Lemmatize(word string) (string, bool) {
	if m.next == nil {
		return "", false
	}
	if e, ok := m.seen[word]; ok {
		return e.lemma, e.ok
	}
	l, ok := m.next.Lemmatize(word)
	m.seen[word] = memoEntry{lemma: l, ok: ok}
	return l, ok
}

// Validate checks the authoring invariants of q: non-negative grades, no
// plain solution worth more than the question, no group capped above the
// question, no point worth more than its group, and known solution tags.
func Validate(q Question) error {
	if q.MaximumGrade < 0 {
		return fmt.Errorf("%w: negative maximum grade", ErrInvalidQuestion)
	}
	if !q.Comprehension {
		for i, s := range q.Solutions {
			switch s.Kind {
			case ExactMatch, Keyword:
			default:
				return fmt.Errorf("%w: solution %d: unknown solution type %q", ErrInvalidQuestion, i, s.Kind)
			}
			if s.Grade < 0 || s.Grade > q.MaximumGrade {
				return fmt.Errorf("%w: solution %d: grade %v outside [0, %v]", ErrInvalidQuestion, i, s.Grade, q.MaximumGrade)
			}
		}
		return nil
	}
	for gi, g := range q.Groups {
		if g.MaximumGroupGrade < 0 || g.MaximumGroupGrade > q.MaximumGrade {
			return fmt.Errorf("%w: group %d: maximum group grade %v outside [0, %v]", ErrInvalidQuestion, gi, g.MaximumGroupGrade, q.MaximumGrade)
		}
		for pi, p := range g.Points {
			if p.PointGrade < 0 || p.PointGrade > g.MaximumGroupGrade {
				return fmt.Errorf("%w: group %d point %d: point grade %v outside [0, %v]", ErrInvalidQuestion, gi, pi, p.PointGrade, g.MaximumGroupGrade)
			}
			for si, s := range p.Solutions {
				switch s.Role {
				case LiftedWordRole, KeywordRole:
				default:
					return fmt.Errorf("%w: group %d point %d solution %d: unknown solution type %q", ErrInvalidQuestion, gi, pi, si, s.Role)
				}
			}
		}
	}
	return nil
}
