package question

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mind-engage/mindengage-autograde/internal/grading"
)

var ErrNotFound = errors.New("question not found")

type ListOpts struct {
	Q      string // substring of the title
	Limit  int
	Offset int
}

// Summary is the list view of a stored question.
type Summary struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	MaximumGrade  float64 `json:"maximum_grade"`
	Comprehension bool    `json:"comprehension"`
	AutoGradable  bool    `json:"auto_gradable"`
	CreatedAt     int64   `json:"created_at"`
}

// Store persists prepared questions. Callers run Prepare before Put.
type Store interface {
	PutQuestion(ctx context.Context, q grading.Question) error
	GetQuestion(ctx context.Context, id string) (grading.Question, error)
	ListQuestions(ctx context.Context, opts ListOpts) ([]Summary, error)
}

func summarize(q grading.Question, createdAt int64) Summary {
	return Summary{
		ID:            q.ID,
		Title:         q.Title,
		MaximumGrade:  q.MaximumGrade,
		Comprehension: q.Comprehension,
		AutoGradable:  grading.AutoGradable(q),
		CreatedAt:     createdAt,
	}
}

type memoryEntry struct {
	q         grading.Question
	createdAt int64
}

type memoryStore struct {
	mu        sync.RWMutex
	questions map[string]memoryEntry
}

func NewInMemoryStore() Store {
	return &memoryStore{questions: map[string]memoryEntry{}}
}

func (m *memoryStore) PutQuestion(_ context.Context, q grading.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	created := time.Now().Unix()
	if prev, ok := m.questions[q.ID]; ok {
		created = prev.createdAt
	}
	m.questions[q.ID] = memoryEntry{q: q, createdAt: created}
	return nil
}

func (m *memoryStore) GetQuestion(_ context.Context, id string) (grading.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.questions[id]
	if !ok {
		return grading.Question{}, ErrNotFound
	}
	return e.q, nil
}

func (m *memoryStore) ListQuestions(_ context.Context, opts ListOpts) ([]Summary, error) {
	m.mu.RLock()
	out := make([]Summary, 0, len(m.questions))
	needle := strings.ToLower(strings.TrimSpace(opts.Q))
	for _, e := range m.questions {
		if needle != "" && !strings.Contains(strings.ToLower(e.q.Title), needle) {
			continue
		}
		out = append(out, summarize(e.q, e.createdAt))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return page(out, opts.Limit, opts.Offset), nil
}

func page[T any](in []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(in) {
		return []T{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
