package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	api "github.com/mind-engage/mindengage-autograde/internal/api/http"
	auth "github.com/mind-engage/mindengage-autograde/internal/auth/middleware"
	"github.com/mind-engage/mindengage-autograde/internal/autograding"
	"github.com/mind-engage/mindengage-autograde/internal/db"
	"github.com/mind-engage/mindengage-autograde/internal/grading"
	"github.com/mind-engage/mindengage-autograde/internal/lemma"
	"github.com/mind-engage/mindengage-autograde/internal/question"
	syncx "github.com/mind-engage/mindengage-autograde/internal/sync"
)

type server struct {
	*httptest.Server
	auth *auth.AuthService
}

func newServer(t *testing.T) server {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })

	lz := lemma.DefaultDictionary()
	questions := question.NewInMemoryStore()
	svc := autograding.NewService(questions, autograding.NewInMemoryStore(),
		grading.NewAutoGrader(grading.WithLemmatizer(lz)))
	a := auth.NewAuthService("test-secret")
	events := syncx.NewEventRepo(dbh).WithSite("lab-1")

	r := chi.NewRouter()
	api.Mount(r, api.Deps{
		Auth:       a,
		Users:      auth.NewUsers(dbh, "", ""),
		Questions:  questions,
		Service:    svc,
		Lemmatizer: lz,
		Events:     events,
		Feed:       events,
	})
	s := server{Server: httptest.NewServer(r), auth: a}
	t.Cleanup(s.Close)
	return s
}

func (s server) do(t *testing.T, method, path, sub, role string, body any) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, s.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if role != "" {
		tok, err := s.auth.IssueJWT(sub, role)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

var capital = grading.Question{
	ID: "capital", Title: "Capital of France", MaximumGrade: 5,
	Solutions: []grading.PlainSolution{
		{Kind: grading.ExactMatch, Text: "Paris", Grade: 5, Explanation: "Paris is the capital"},
		{Kind: grading.Keyword, Text: "seine", Grade: 2},
	},
}

func TestAuthorGradeAndReview(t *testing.T) {
	s := newServer(t)

	resp := s.do(t, http.MethodPut, "/questions", "t1", "teacher", capital)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT /questions = %d", resp.StatusCode)
	}
	stored := decode[grading.Question](t, resp)
	if stored.Solutions[0].ID == "" {
		t.Fatalf("solution ids not assigned")
	}

	resp = s.do(t, http.MethodGet, "/questions/capital", "s1", "student", nil)
	view := decode[map[string]any](t, resp)
	if _, leaked := view["solutions"]; leaked {
		t.Fatalf("student saw solutions: %v", view)
	}
	resp = s.do(t, http.MethodGet, "/questions/capital", "t1", "teacher", nil)
	if q := decode[grading.Question](t, resp); len(q.Solutions) != 2 {
		t.Fatalf("teacher view = %+v", q)
	}

	resp = s.do(t, http.MethodPost, "/questions/capital/grade", "s1", "student", map[string]string{"text": "near the seine"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("grade = %d", resp.StatusCode)
	}
	g := decode[autograding.Grading](t, resp)
	if g.UserID != "s1" || g.Grade != 2 || g.Correct {
		t.Fatalf("grading = %+v", g)
	}

	if resp := s.do(t, http.MethodGet, "/gradings/"+g.ID, "s1", "student", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("owner read = %d", resp.StatusCode)
	}
	if resp := s.do(t, http.MethodGet, "/gradings/"+g.ID, "s2", "student", nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("other student read = %d", resp.StatusCode)
	}
	if resp := s.do(t, http.MethodGet, "/questions/capital/gradings", "s1", "student", nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("student list = %d", resp.StatusCode)
	}
	resp = s.do(t, http.MethodGet, "/questions/capital/gradings", "t1", "teacher", nil)
	if list := decode[[]autograding.Grading](t, resp); len(list) != 1 || list[0].ID != g.ID {
		t.Fatalf("list = %+v", list)
	}

	resp = s.do(t, http.MethodGet, "/questions?q=france", "s1", "student", nil)
	if sums := decode[[]question.Summary](t, resp); len(sums) != 1 || !sums[0].AutoGradable {
		t.Fatalf("summaries = %+v", sums)
	}
}

func TestErrorMapping(t *testing.T) {
	s := newServer(t)
	s.do(t, http.MethodPut, "/questions", "t1", "teacher", grading.Question{ID: "essay", MaximumGrade: 10})

	tests := []struct {
		name       string
		method     string
		path, role string
		body       any
		want       int
	}{
		{"no token", http.MethodGet, "/questions", "", nil, http.StatusUnauthorized},
		{"student authoring", http.MethodPut, "/questions", "student", capital, http.StatusForbidden},
		{"invalid question", http.MethodPut, "/questions", "teacher",
			grading.Question{MaximumGrade: 1, Solutions: []grading.PlainSolution{{Kind: grading.Keyword, Text: "x", Grade: 3}}},
			http.StatusUnprocessableEntity},
		{"unknown question", http.MethodGet, "/questions/nope", "teacher", nil, http.StatusNotFound},
		{"not auto-gradable", http.MethodPost, "/questions/essay/grade", "student", map[string]string{"text": "x"}, http.StatusConflict},
		{"unknown grading", http.MethodGet, "/gradings/nope", "teacher", nil, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := s.do(t, tc.method, tc.path, "u", tc.role, tc.body)
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}

	req, _ := http.NewRequest(http.MethodPost, s.URL+"/questions/essay/grade", strings.NewReader("{"))
	tok, _ := s.auth.IssueJWT("s1", "student")
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad json status = %d", resp.StatusCode)
	}
}

func TestPreview(t *testing.T) {
	s := newServer(t)
	body := map[string]any{
		"question": grading.Question{
			MaximumGrade: 2, Comprehension: true,
			Groups: []grading.Group{{MaximumGroupGrade: 2, Points: []grading.Point{{
				PointGrade: 2,
				Solutions: []grading.ComprehensionSolution{
					{Role: grading.KeywordRole, Texts: []string{"run"}},
				},
			}}}},
		},
		"answer": "The mice were running.",
	}
	resp := s.do(t, http.MethodPost, "/grade/preview", "t1", "teacher", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("preview = %d", resp.StatusCode)
	}
	res := decode[grading.Result](t, resp)
	if !res.Correct || res.Grade != 2 {
		t.Fatalf("result = %+v", res)
	}
	if resp := s.do(t, http.MethodGet, "/questions", "t1", "teacher", nil); len(decode[[]question.Summary](t, resp)) != 0 {
		t.Fatalf("preview stored a question")
	}
}

func TestUsersAndLogin(t *testing.T) {
	s := newServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "users.csv")
	_, _ = fw.Write([]byte("id,username,role,password\ns1,sam,student,pw1\nt1,tess,teacher,pw2\n"))
	_ = mw.Close()

	req, _ := http.NewRequest(http.MethodPost, s.URL+"/users/bulk", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	tok, _ := s.auth.IssueJWT("admin", "admin")
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := decode[map[string]int](t, resp); got["inserted"] != 2 {
		t.Fatalf("bulk upsert = %v", got)
	}

	resp = s.do(t, http.MethodPost, "/auth/login", "", "", map[string]string{"username": "sam", "password": "pw1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login = %d", resp.StatusCode)
	}
	login := decode[map[string]string](t, resp)
	if login["role"] != "student" || login["access_token"] == "" {
		t.Fatalf("login body = %v", login)
	}

	resp = s.do(t, http.MethodPost, "/users/change-password", "s1", "student",
		map[string]string{"old_password": "wrong", "new_password": "pw3"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("change password with wrong old = %d", resp.StatusCode)
	}
	resp = s.do(t, http.MethodPost, "/users/change-password", "s1", "student",
		map[string]string{"old_password": "pw1", "new_password": "pw3"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("change password = %d", resp.StatusCode)
	}

	resp = s.do(t, http.MethodGet, "/users?role=teacher", "t1", "teacher", nil)
	if users := decode[[]auth.User](t, resp); len(users) != 1 || users[0].Username != "tess" {
		t.Fatalf("users = %+v", users)
	}
}

func TestEventFeed(t *testing.T) {
	s := newServer(t)
	s.do(t, http.MethodPut, "/questions", "t1", "teacher", capital)
	second := capital
	second.ID = "capital-2"
	s.do(t, http.MethodPut, "/questions", "t1", "teacher", second)

	if resp := s.do(t, http.MethodGet, "/events", "t1", "teacher", nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("teacher read events = %d", resp.StatusCode)
	}

	resp := s.do(t, http.MethodGet, "/events", "root", "admin", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /events = %d", resp.StatusCode)
	}
	all := decode[[]syncx.Event](t, resp)
	if len(all) != 2 {
		t.Fatalf("got %d events, want 2", len(all))
	}
	for _, e := range all {
		if e.SiteID != "lab-1" || e.Type != syncx.EventQuestionPut {
			t.Fatalf("event = %+v", e)
		}
	}

	resp = s.do(t, http.MethodGet, "/events?after="+strconv.FormatInt(all[0].Offset, 10)+"&limit=5", "root", "admin", nil)
	if rest := decode[[]syncx.Event](t, resp); len(rest) != 1 || rest[0].Key != "capital-2" {
		t.Fatalf("events after first = %+v", rest)
	}

	if resp := s.do(t, http.MethodGet, "/events?after=-1", "root", "admin", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("negative offset = %d", resp.StatusCode)
	}
}
