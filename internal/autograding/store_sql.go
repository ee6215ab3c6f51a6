package autograding

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) SaveGrading(ctx context.Context, g Grading) error {
	msgs, err := json.Marshal(g.Messages)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO gradings
		(id,question_id,user_id,answer_text,correct,grade,maximum_grade,messages_json,graded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		g.ID, g.QuestionID, g.UserID, g.AnswerText, g.Correct, g.Grade, g.MaximumGrade, string(msgs), g.GradedAt)
	return err
}

const gradingColumns = `id,question_id,user_id,answer_text,correct,grade,maximum_grade,messages_json,graded_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanGrading(sc scanner) (Grading, error) {
	var (
		g    Grading
		msgs string
	)
	if err := sc.Scan(&g.ID, &g.QuestionID, &g.UserID, &g.AnswerText, &g.Correct,
		&g.Grade, &g.MaximumGrade, &msgs, &g.GradedAt); err != nil {
		return Grading{}, err
	}
	if err := json.Unmarshal([]byte(msgs), &g.Messages); err != nil {
		return Grading{}, err
	}
	return g, nil
}

func (s *SQLStore) GetGrading(ctx context.Context, id string) (Grading, error) {
	g, err := scanGrading(s.db.QueryRowContext(ctx,
		`SELECT `+gradingColumns+` FROM gradings WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Grading{}, ErrNotFound
	}
	return g, err
}

func (s *SQLStore) ListGradings(ctx context.Context, questionID string) ([]Grading, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gradingColumns+` FROM gradings WHERE question_id=$1
		 ORDER BY graded_at DESC, id ASC`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Grading{}
	for rows.Next() {
		g, err := scanGrading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
