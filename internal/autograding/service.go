// Package autograding grades stored questions and keeps the outcome.
package autograding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-autograde/internal/grading"
	"github.com/mind-engage/mindengage-autograde/internal/question"
	syncx "github.com/mind-engage/mindengage-autograde/internal/sync"
)

var (
	// ErrNotAutoGradable means the question has no solutions to grade
	// against; the answer must be graded by hand.
	ErrNotAutoGradable = errors.New("question is not auto-gradable")
	ErrNotFound        = errors.New("grading not found")
)

// EventRecorder receives one event per saved grading.
type EventRecorder interface {
	Record(ctx context.Context, typ, key string, payload any) error
}

// Observer receives one observation per evaluated answer.
type Observer interface {
	ObserveGrading(comprehension, correct bool, grade, maximum float64, took time.Duration)
}

type Option func(*Service)

func WithEvents(e EventRecorder) Option     { return func(s *Service) { s.events = e } }
func WithObserver(o Observer) Option        { return func(s *Service) { s.observer = o } }
func WithLogger(l *zap.Logger) Option       { return func(s *Service) { s.log = l } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

type Service struct {
	questions question.Store
	gradings  Store
	grader    *grading.AutoGrader

	events   EventRecorder
	observer Observer
	log      *zap.Logger
	now      func() time.Time
}

func NewService(questions question.Store, gradings Store, grader *grading.AutoGrader, opts ...Option) *Service {
	s := &Service{
		questions: questions,
		gradings:  gradings,
		grader:    grader,
		log:       zap.NewNop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GradeAnswer evaluates in against the stored question and saves the
// resulting Grading. A failed event append is logged, not returned.
func (s *Service) GradeAnswer(ctx context.Context, questionID string, in AnswerInput) (Grading, error) {
	q, err := s.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return Grading{}, err
	}
	if !grading.AutoGradable(q) {
		return Grading{}, fmt.Errorf("%w: %s", ErrNotAutoGradable, q.ID)
	}

	res, err := s.evaluate(q, in.Text)
	if err != nil {
		return Grading{}, err
	}

	g := Grading{
		ID:           uuid.NewString(),
		QuestionID:   q.ID,
		UserID:       in.UserID,
		AnswerText:   in.Text,
		Correct:      res.Correct,
		Grade:        res.Grade,
		MaximumGrade: q.MaximumGrade,
		Messages:     res.Messages,
		GradedAt:     s.now().Unix(),
	}
	if err := s.gradings.SaveGrading(ctx, g); err != nil {
		return Grading{}, fmt.Errorf("save grading: %w", err)
	}
	if s.events != nil {
		if err := s.events.Record(ctx, syncx.EventAnswerGraded, g.ID, g); err != nil {
			s.log.Warn("append grading event", zap.String("grading_id", g.ID), zap.Error(err))
		}
	}
	s.log.Info("answer graded",
		zap.String("grading_id", g.ID),
		zap.String("question_id", q.ID),
		zap.String("user_id", in.UserID),
		zap.Float64("grade", g.Grade),
		zap.Float64("maximum_grade", g.MaximumGrade),
		zap.Bool("correct", g.Correct))
	return g, nil
}

// Preview grades answer against an unsaved question. Nothing is stored.
func (s *Service) Preview(q grading.Question, answer string) (grading.Result, error) {
	if !grading.AutoGradable(q) {
		return grading.Result{}, ErrNotAutoGradable
	}
	return s.evaluate(q, answer)
}

func (s *Service) GetGrading(ctx context.Context, id string) (Grading, error) {
	return s.gradings.GetGrading(ctx, id)
}

func (s *Service) ListGradings(ctx context.Context, questionID string) ([]Grading, error) {
	if _, err := s.questions.GetQuestion(ctx, questionID); err != nil {
		return nil, err
	}
	return s.gradings.ListGradings(ctx, questionID)
}

func (s *Service) evaluate(q grading.Question, answer string) (grading.Result, error) {
	start := time.Now()
	res, err := s.grader.Evaluate(q, grading.Answer{Text: answer})
	if err != nil {
		return grading.Result{}, err
	}
	if s.observer != nil {
		s.observer.ObserveGrading(q.Comprehension, res.Correct, res.Grade, q.MaximumGrade, time.Since(start))
	}
	return res, nil
}
