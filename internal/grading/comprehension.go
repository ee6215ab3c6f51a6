package grading

type matchKind uint8

const (
	unmatched matchKind = iota
	matchedLifted
	matchedKeyword
)

// tokenStatus records what one answer token was consumed by.
type tokenStatus struct {
	kind     matchKind
	point    pointRef    // matchedLifted
	solution solutionRef // matchedKeyword
}

type comprehensionMatch struct {
	tokens   []string
	lemmas   []string
	status   []tokenStatus
	lifted   map[pointRef]bool
	keywords map[solutionRef]bool
}

func (m *comprehensionMatch) count(k matchKind) int {
	n := 0
	for _, s := range m.status {
		if s.kind == k {
			n++
		}
	}
	return n
}

// matchComprehension scans the answer tokens twice: first claiming Points
// through lifted words, then Solutions through keywords. Both indices are
// consumed.
func matchComprehension(answer string, t tree, lz Lemmatizer) *comprehensionMatch {
	tokens := Tokenize(answer)
	m := &comprehensionMatch{
		tokens:   tokens,
		lemmas:   make([]string, len(tokens)),
		status:   make([]tokenStatus, len(tokens)),
		lifted:   map[pointRef]bool{},
		keywords: map[solutionRef]bool{},
	}
	for i, tok := range tokens {
		m.lemmas[i] = lemmaOrSelf(lz, tok)
	}

	liftedIx, keywordIx := buildIndices(t)

	for i, l := range m.lemmas {
		p, ok := liftedIx.claim(l)
		if !ok {
			continue
		}
		m.status[i] = tokenStatus{kind: matchedLifted, point: pointRef(p)}
		m.lifted[pointRef(p)] = true
	}

	for i, l := range m.lemmas {
		if m.status[i].kind == matchedLifted {
			continue
		}
		for {
			s, ok := keywordIx.claim(l)
			if !ok {
				break
			}
			sr := solutionRef(s)
			// a solution of a lifted point is used up without credit
			if m.lifted[t.solutions[sr].point] {
				continue
			}
			m.status[i] = tokenStatus{kind: matchedKeyword, solution: sr}
			m.keywords[sr] = true
			break
		}
	}
	return m
}

func lemmaOrSelf(lz Lemmatizer, word string) string {
	if lz == nil {
		return word
	}
	if l, ok := lz.Lemmatize(word); ok && l != "" {
		return l
	}
	return word
}
