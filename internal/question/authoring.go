package question

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-autograde/internal/grading"
)

// ErrInvalid wraps every authoring error returned by Prepare.
var ErrInvalid = errors.New("invalid question")

// Prepare returns a copy of q ready to be stored: solution texts trimmed,
// blank comprehension texts dropped, lemmas derived with lz, missing IDs
// filled and the authoring invariants checked.
func Prepare(q grading.Question, lz grading.Lemmatizer) (grading.Question, error) {
	out := q
	out.ID = strings.TrimSpace(out.ID)
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	out.Title = strings.TrimSpace(out.Title)

	if !q.Comprehension {
		out.Groups = nil
		out.Solutions = make([]grading.PlainSolution, len(q.Solutions))
		for i, s := range q.Solutions {
			s.ID = idOr(s.ID)
			if s.Kind == grading.Keyword {
				s.Text = strings.TrimSpace(s.Text)
				if s.Text == "" {
					return grading.Question{}, fmt.Errorf("%w: solution %d: blank keyword", ErrInvalid, i)
				}
			}
			out.Solutions[i] = s
		}
	} else {
		out.Solutions = nil
		out.Groups = make([]grading.Group, len(q.Groups))
		for gi, g := range q.Groups {
			g.ID = idOr(g.ID)
			points := make([]grading.Point, len(g.Points))
			for pi, p := range g.Points {
				p.ID = idOr(p.ID)
				sols := make([]grading.ComprehensionSolution, len(p.Solutions))
				for si, s := range p.Solutions {
					s.ID = idOr(s.ID)
					s.Texts = cleanTexts(s.Texts)
					s.Lemmas = grading.SolutionLemmas(lz, s.Texts)
					sols[si] = s
				}
				p.Solutions = sols
				points[pi] = p
			}
			g.Points = points
			out.Groups[gi] = g
		}
	}

	if err := grading.Validate(out); err != nil {
		return grading.Question{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return out, nil
}

func cleanTexts(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func idOr(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}
