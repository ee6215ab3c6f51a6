package autograding

import (
	"context"
	"sort"
	"sync"
)

// Store persists gradings. Gradings are immutable once saved.
type Store interface {
	SaveGrading(ctx context.Context, g Grading) error
	GetGrading(ctx context.Context, id string) (Grading, error)
	// ListGradings returns the gradings of one question, newest first.
	ListGradings(ctx context.Context, questionID string) ([]Grading, error)
}

type memoryStore struct {
	mu       sync.RWMutex
	gradings map[string]Grading
}

func NewInMemoryStore() Store {
	return &memoryStore{gradings: map[string]Grading{}}
}

func (m *memoryStore) SaveGrading(_ context.Context, g Grading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gradings[g.ID] = g
	return nil
}

func (m *memoryStore) GetGrading(_ context.Context, id string) (Grading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.gradings[id]
	if !ok {
		return Grading{}, ErrNotFound
	}
	return g, nil
}

func (m *memoryStore) ListGradings(_ context.Context, questionID string) ([]Grading, error) {
	m.mu.RLock()
	out := []Grading{}
	for _, g := range m.gradings {
		if g.QuestionID == questionID {
			out = append(out, g)
		}
	}
	m.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(gs []Grading) {
	sort.Slice(gs, func(i, j int) bool {
		if gs[i].GradedAt != gs[j].GradedAt {
			return gs[i].GradedAt > gs[j].GradedAt
		}
		return gs[i].ID < gs[j].ID
	})
}
