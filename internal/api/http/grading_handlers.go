package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-autograde/internal/autograding"
	"github.com/mind-engage/mindengage-autograde/internal/grading"
	"github.com/mind-engage/mindengage-autograde/internal/question"
	"github.com/mind-engage/mindengage-autograde/internal/rbac"
)

// POST /questions/{questionID}/grade  { "text": "..." }
func GradeAnswerHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		g, err := d.Service.GradeAnswer(r.Context(), chi.URLParam(r, "questionID"), autograding.AnswerInput{
			UserID: rbac.SubjectFromContext(r.Context()),
			Text:   req.Text,
		})
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusCreated, g)
	}
}

// GET /gradings/{gradingID}; learners only see their own.
func GetGradingHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := d.Service.GetGrading(r.Context(), chi.URLParam(r, "gradingID"))
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		ctx := r.Context()
		if !d.Checker.Has(rbac.RoleFromContext(ctx), rbac.PermGradingView) && g.UserID != rbac.SubjectFromContext(ctx) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

// GET /questions/{questionID}/gradings
func ListGradingsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := d.Service.ListGradings(r.Context(), chi.URLParam(r, "questionID"))
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /grade/preview  { "question": {...}, "answer": "..." }
// The question is prepared like an authored one but never stored.
func PreviewHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Question grading.Question `json:"question"`
			Answer   string           `json:"answer"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		q, err := question.Prepare(req.Question, d.Lemmatizer)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		res, err := d.Service.Preview(q, req.Answer)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
