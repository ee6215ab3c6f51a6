package grading

import (
	"strconv"
	"strings"
)

const (
	keywordsHeader = "Keywords correctly expressed:"
	liftedHeader   = "Lifted words:"
)

func explainComprehension(q Question, t tree, m *comprehensionMatch, grade float64) []string {
	var out []string

	var keywords []string
	for i, st := range m.status {
		if st.kind != matchedKeyword {
			continue
		}
		word := m.tokens[i]
		if e := t.solutions[st.solution].explanation; e != "" {
			word += " (" + e + ")"
		}
		keywords = append(keywords, word)
	}
	if len(keywords) > 0 {
		out = append(out, keywordsHeader, strings.Join(keywords, ", "))
	}

	var lifted []string
	for i, st := range m.status {
		if st.kind == matchedLifted {
			lifted = append(lifted, m.tokens[i])
		}
	}
	if len(lifted) > 0 {
		out = append(out, liftedHeader, strings.Join(lifted, ", "))
	}

	return append(out, "Grade: "+formatGrade(grade)+" / "+formatGrade(q.MaximumGrade))
}

func formatGrade(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
