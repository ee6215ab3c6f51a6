package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-autograde/internal/grading"
	"github.com/mind-engage/mindengage-autograde/internal/question"
	"github.com/mind-engage/mindengage-autograde/internal/rbac"
	syncx "github.com/mind-engage/mindengage-autograde/internal/sync"
)

// learnerView is what roles without question:author see: no solutions.
type learnerView struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	MaximumGrade  float64 `json:"maximum_grade"`
	Comprehension bool    `json:"comprehension"`
}

// PUT /questions
func PutQuestionHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in grading.Question
		if !decodeJSON(w, r, &in) {
			return
		}
		q, err := question.Prepare(in, d.Lemmatizer)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		if err := d.Questions.PutQuestion(r.Context(), q); err != nil {
			writeError(w, d.Log, err)
			return
		}
		if d.Events != nil {
			if err := d.Events.Record(r.Context(), syncx.EventQuestionPut, q.ID, q); err != nil {
				d.Log.Warn("append question event", zap.String("question_id", q.ID), zap.Error(err))
			}
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// GET /questions?q=&limit=&offset=
func ListQuestionsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs := r.URL.Query()
		limit, _ := strconv.Atoi(qs.Get("limit"))
		offset, _ := strconv.Atoi(qs.Get("offset"))
		out, err := d.Questions.ListQuestions(r.Context(), question.ListOpts{
			Q:      strings.TrimSpace(qs.Get("q")),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /questions/{questionID}
func GetQuestionHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := d.Questions.GetQuestion(r.Context(), chi.URLParam(r, "questionID"))
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		if !d.Checker.Has(rbac.RoleFromContext(r.Context()), rbac.PermQuestionAuthor) {
			writeJSON(w, http.StatusOK, learnerView{
				ID: q.ID, Title: q.Title, MaximumGrade: q.MaximumGrade, Comprehension: q.Comprehension,
			})
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}
