package grading

import (
	"sort"
	"strings"
)

// pointRef and solutionRef are arena indices into a tree.
type (
	pointRef    int
	solutionRef int
)

type pointNode struct {
	group    int
	grade    float64
	keywords []solutionRef
}

type solutionNode struct {
	point       pointRef
	role        Role
	lemmas      []string
	explanation string
}

type groupNode struct {
	cap    float64
	points []pointRef
}

// tree is a flattened, read-only view of a comprehension question in
// grading order: groups and points by ascending weight, ties in authored
// order.
type tree struct {
	groups    []groupNode
	points    []pointNode
	solutions []solutionNode
}

func buildTree(q Question, lemmasFor func(ComprehensionSolution) []string) tree {
	var t tree
	for _, gi := range weightOrder(len(q.Groups), func(i int) int { return q.Groups[i].Weight }) {
		g := q.Groups[gi]
		gn := groupNode{cap: g.MaximumGroupGrade}
		group := len(t.groups)
		for _, pi := range weightOrder(len(g.Points), func(i int) int { return g.Points[i].Weight }) {
			p := g.Points[pi]
			pr := pointRef(len(t.points))
			pn := pointNode{group: group, grade: p.PointGrade}
			for _, s := range p.Solutions {
				sr := solutionRef(len(t.solutions))
				t.solutions = append(t.solutions, solutionNode{
					point:       pr,
					role:        s.Role,
					lemmas:      lemmasFor(s),
					explanation: s.Explanation,
				})
				if s.Role == KeywordRole {
					pn.keywords = append(pn.keywords, sr)
				}
			}
			t.points = append(t.points, pn)
			gn.points = append(gn.points, pr)
		}
		t.groups = append(t.groups, gn)
	}
	return t
}

func weightOrder(n int, weight func(int) int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return weight(idx[a]) < weight(idx[b]) })
	return idx
}

// queue is a FIFO of arena indices for one lemma. Entries are never
// reordered; dead entries are skipped when popped.
type queue []int

func (q *queue) push(v int) {
	for _, e := range *q {
		if e == v {
			return
		}
	}
	*q = append(*q, v)
}

// pop removes and returns the first entry for which dead is false, discarding
// dead entries in front of it.
func (q *queue) pop(dead func(int) bool) (int, bool) {
	for len(*q) > 0 {
		v := (*q)[0]
		*q = (*q)[1:]
		if !dead(v) {
			return v, true
		}
	}
	return 0, false
}

// lemmaIndex maps a lemma to the queue of owners that accept it. Claiming an
// owner marks it dead, which removes it from every bucket at once.
type lemmaIndex struct {
	buckets map[string]*queue
	dead    map[int]bool
}

func newLemmaIndex() *lemmaIndex {
	return &lemmaIndex{buckets: map[string]*queue{}, dead: map[int]bool{}}
}

func (ix *lemmaIndex) add(lemma string, owner int) {
	b, ok := ix.buckets[lemma]
	if !ok {
		b = &queue{}
		ix.buckets[lemma] = b
	}
	b.push(owner)
}

// claim pops the earliest live owner for lemma and kills it everywhere.
func (ix *lemmaIndex) claim(lemma string) (int, bool) {
	b, ok := ix.buckets[lemma]
	if !ok {
		return 0, false
	}
	v, ok := b.pop(func(o int) bool { return ix.dead[o] })
	if ok {
		ix.dead[v] = true
	}
	return v, ok
}

// buildIndices returns the lifted-word index (lemma -> points) and the
// keyword index (lemma -> solutions) of t.
func buildIndices(t tree) (lifted, keywords *lemmaIndex) {
	lifted, keywords = newLemmaIndex(), newLemmaIndex()
	for i, s := range t.solutions {
		for _, l := range s.lemmas {
			l = strings.TrimSpace(l)
			if l == "" {
				continue
			}
			switch s.role {
			case LiftedWordRole:
				lifted.add(l, int(s.point))
			case KeywordRole:
				keywords.add(l, i)
			}
		}
	}
	return lifted, keywords
}
