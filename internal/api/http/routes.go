// Package http is the REST surface of the grading service.
package http

import (
	"context"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	auth "github.com/mind-engage/mindengage-autograde/internal/auth/middleware"
	"github.com/mind-engage/mindengage-autograde/internal/autograding"
	"github.com/mind-engage/mindengage-autograde/internal/grading"
	"github.com/mind-engage/mindengage-autograde/internal/question"
	"github.com/mind-engage/mindengage-autograde/internal/rbac"
	syncx "github.com/mind-engage/mindengage-autograde/internal/sync"
)

type EventRecorder interface {
	Record(ctx context.Context, typ, key string, payload any) error
}

// EventFeed serves the event log to replicating sites.
type EventFeed interface {
	Since(ctx context.Context, after int64, limit int) ([]syncx.Event, error)
}

type Deps struct {
	Auth       *auth.AuthService
	Users      *auth.Users // nil disables login and user management
	Questions  question.Store
	Service    *autograding.Service
	Lemmatizer grading.Lemmatizer
	Events     EventRecorder // optional
	Feed       EventFeed     // optional; mounts GET /events
	Checker    *rbac.Checker
	Log        *zap.Logger
}

// Mount registers every API route on r.
func Mount(r chi.Router, d Deps) {
	if d.Checker == nil {
		d.Checker = rbac.NewChecker(nil)
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Users != nil {
		r.Post("/auth/login", auth.LoginHandler(d.Auth, d.Users, d.Log))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))
		c := d.Checker

		pr.With(c.Require(rbac.PermQuestionAuthor)).
			Put("/questions", PutQuestionHandler(d))
		pr.With(c.Require(rbac.PermQuestionView)).
			Get("/questions", ListQuestionsHandler(d))
		pr.With(c.Require(rbac.PermQuestionView)).
			Get("/questions/{questionID}", GetQuestionHandler(d))

		pr.With(c.Require(rbac.PermAnswerGrade)).
			Post("/questions/{questionID}/grade", GradeAnswerHandler(d))
		pr.With(c.Require(rbac.PermGradingView)).
			Get("/questions/{questionID}/gradings", ListGradingsHandler(d))
		pr.With(c.RequireAny(rbac.PermGradingView, rbac.PermGradingViewOwn)).
			Get("/gradings/{gradingID}", GetGradingHandler(d))
		pr.With(c.Require(rbac.PermQuestionAuthor)).
			Post("/grade/preview", PreviewHandler(d))

		if d.Feed != nil {
			pr.With(c.Require(rbac.PermEventsRead)).
				Get("/events", EventsHandler(d))
		}

		if d.Users != nil {
			pr.With(c.Require(rbac.PermUsersManage)).
				Post("/users/bulk", BulkUpsertUsersHandler(d))
			pr.With(c.Require(rbac.PermUsersManage)).
				Get("/users", ListUsersHandler(d))
			pr.With(c.Require(rbac.PermPasswordChange)).
				Post("/users/change-password", ChangePasswordHandler(d))
		}
	})
}
