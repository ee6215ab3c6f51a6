package grading

import "strings"

// matchPlain returns the solutions an answer matches: the first exact match
// if any, otherwise every keyword contained in the answer.
func matchPlain(answer string, solutions []PlainSolution) []PlainSolution {
	folded := strings.ToLower(answer)
	var keywords []PlainSolution
	for _, s := range solutions {
		switch s.Kind {
		case ExactMatch:
			if strings.ToLower(NormalizeText(s.Text)) == folded {
				return []PlainSolution{s}
			}
		case Keyword:
			keywords = append(keywords, s)
		}
	}

	matched := []PlainSolution{}
	for _, s := range keywords {
		if containsFold(answer, s.Text) {
			matched = append(matched, s)
		}
	}
	return matched
}

func gradePlain(q Question, matched []PlainSolution) float64 {
	sum := 0.0
	for _, s := range matched {
		sum += s.Grade
	}
	return capAt(sum, q.MaximumGrade)
}

func explainPlain(matched []PlainSolution) []string {
	out := make([]string, 0, len(matched))
	for _, s := range matched {
		if s.Explanation != "" {
			out = append(out, s.Explanation)
		}
	}
	return out
}

func capAt(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}
