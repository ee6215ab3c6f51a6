package lemma_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mind-engage/mindengage-autograde/internal/lemma"
)

func lemmaServer(t *testing.T, table map[string]string, failures *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lemma" {
			http.NotFound(w, r)
			return
		}
		if failures != nil && atomic.AddInt32(failures, -1) >= 0 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		l, ok := table[r.URL.Query().Get("word")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"lemma": l})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteLemmatize(t *testing.T) {
	srv := lemmaServer(t, map[string]string{"running": "Run"}, nil)
	r := lemma.NewRemote(lemma.RemoteConfig{BaseURL: srv.URL + "/", RetryDelay: time.Millisecond})

	if got, ok := r.Lemmatize("running"); !ok || got != "run" {
		t.Fatalf("got %q,%v want run,true", got, ok)
	}
	if _, ok := r.Lemmatize("qwerty"); ok {
		t.Fatalf("unknown word reported known")
	}
}

func TestRemoteRetriesTransientErrors(t *testing.T) {
	failures := int32(2)
	srv := lemmaServer(t, map[string]string{"mice": "mouse"}, &failures)
	r := lemma.NewRemote(lemma.RemoteConfig{BaseURL: srv.URL, Attempts: 3, RetryDelay: time.Millisecond})

	got, ok, err := r.LemmatizeErr("mice")
	if err != nil {
		t.Fatalf("LemmatizeErr: %v", err)
	}
	if !ok || got != "mouse" {
		t.Fatalf("got %q,%v want mouse,true", got, ok)
	}
}

func TestRemoteUnavailable(t *testing.T) {
	failures := int32(1000)
	srv := lemmaServer(t, nil, &failures)
	r := lemma.NewRemote(lemma.RemoteConfig{BaseURL: srv.URL, Attempts: 2, RetryDelay: time.Millisecond})

	_, _, err := r.LemmatizeErr("mice")
	if !errors.Is(err, lemma.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if _, ok := r.Lemmatize("mice"); ok {
		t.Fatalf("failed lookup reported known")
	}
}

func TestRemoteBehindCacheFallsBackToDictionary(t *testing.T) {
	failures := int32(1000)
	srv := lemmaServer(t, nil, &failures)
	remote := lemma.NewRemote(lemma.RemoteConfig{BaseURL: srv.URL, Attempts: 1, RetryDelay: time.Millisecond})
	chain := lemma.Chain{lemma.NewCache(remote, 100), lemma.DefaultDictionary()}

	if got, ok := chain.Lemmatize("running"); !ok || got != "run" {
		t.Fatalf("got %q,%v want run,true", got, ok)
	}
}
