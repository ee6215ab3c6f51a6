package grading

// gradeComprehension sums earned points per group, caps each group and then
// the question. A lifted point earns nothing; any other point earns its full
// grade only when every one of its keyword solutions was matched.
func gradeComprehension(q Question, t tree, m *comprehensionMatch) float64 {
	total := 0.0
	for _, g := range t.groups {
		groupGrade := 0.0
		for _, pr := range g.points {
			if m.lifted[pr] {
				continue
			}
			p := t.points[pr]
			if allMatched(p.keywords, m.keywords) {
				groupGrade += p.grade
			}
		}
		total += capAt(groupGrade, g.cap)
	}
	return capAt(total, q.MaximumGrade)
}

func allMatched(want []solutionRef, got map[solutionRef]bool) bool {
	for _, s := range want {
		if !got[s] {
			return false
		}
	}
	return true
}
