package question

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/mind-engage/mindengage-autograde/internal/grading"
)

// SQLStore keeps each question as one JSON document in the questions table.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutQuestion(ctx context.Context, q grading.Question) error {
	body, err := json.Marshal(q)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO questions (id,title,maximum_grade,comprehension,body_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, maximum_grade=EXCLUDED.maximum_grade,
		  comprehension=EXCLUDED.comprehension, body_json=EXCLUDED.body_json`,
		q.ID, q.Title, q.MaximumGrade, q.Comprehension, string(body), time.Now().Unix())
	return err
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (grading.Question, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body_json FROM questions WHERE id=$1`, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grading.Question{}, ErrNotFound
		}
		return grading.Question{}, err
	}
	var q grading.Question
	if err := json.Unmarshal([]byte(body), &q); err != nil {
		return grading.Question{}, err
	}
	return q, nil
}

func (s *SQLStore) ListQuestions(ctx context.Context, opts ListOpts) ([]Summary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `SELECT body_json, created_at FROM questions
		WHERE ($1 = '' OR LOWER(title) LIKE '%' || LOWER($1) || '%')
		ORDER BY created_at DESC, id ASC
		LIMIT $2 OFFSET $3`, opts.Q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			body    string
			created int64
		)
		if err := rows.Scan(&body, &created); err != nil {
			return nil, err
		}
		var q grading.Question
		if err := json.Unmarshal([]byte(body), &q); err != nil {
			return nil, err
		}
		out = append(out, summarize(q, created))
	}
	return out, rows.Err()
}
