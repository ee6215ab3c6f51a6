package lemma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
	"go.uber.org/zap"
)

// Remote asks an external lemma service:
//
//	GET {BaseURL}/lemma?word=running  ->  200 {"lemma":"run"}
//	                                      404 when the word is unknown
//
// Calls go through a retrier inside a circuit breaker. When the service is
// down Lemmatize reports the word as unknown and logs the failure.
type Remote struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	breaker circuitbreaker.CircuitBreaker[lookup]
	retrier retry.Retry[lookup]
	log     *zap.Logger
}

type RemoteConfig struct {
	BaseURL    string
	Timeout    time.Duration // per lookup, retries included; default 2s
	Attempts   int           // default 3
	RetryDelay time.Duration // initial backoff; default 100ms
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type lookup struct {
	lemma string
	ok    bool
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("lemma service: status %d", e.code) }

func NewRemote(cfg RemoteConfig) *Remote {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	r := &Remote{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client:  cfg.HTTPClient,
		timeout: cfg.Timeout,
		log:     cfg.Logger,
	}
	r.breaker = circuitbreaker.New[lookup](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c circuitbreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			r.log.Warn("lemma service circuit breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	r.retrier = retry.New[lookup](retry.Config{
		MaxAttempts:   cfg.Attempts,
		InitialDelay:  cfg.RetryDelay,
		MaxDelay:      cfg.Timeout,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   retryable,
	})
	return r
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return !errors.Is(err, context.Canceled)
}

func (r *Remote) Lemmatize(word string) (string, bool) {
	lemma, ok, err := r.LemmatizeErr(word)
	if err != nil {
		r.log.Warn("lemma lookup failed", zap.String("word", word), zap.Error(err))
		return "", false
	}
	return lemma, ok
}

// LemmatizeErr is Lemmatize with the failure exposed, bounded by the
// configured timeout.
func (r *Remote) LemmatizeErr(word string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.LemmatizeContext(ctx, word)
}

func (r *Remote) LemmatizeContext(ctx context.Context, word string) (string, bool, error) {
	res, err := r.breaker.Execute(ctx, func(ctx context.Context) (lookup, error) {
		return r.retrier.Do(ctx, func(ctx context.Context) (lookup, error) {
			return r.fetch(ctx, word)
		})
	})
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return res.lemma, res.ok, nil
}

func (r *Remote) fetch(ctx context.Context, word string) (lookup, error) {
	u := r.baseURL + "/lemma?" + url.Values{"word": {word}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return lookup{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return lookup{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return lookup{}, nil
	case resp.StatusCode != http.StatusOK:
		return lookup{}, &statusError{code: resp.StatusCode}
	}
	var body struct {
		Lemma string `json:"lemma"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return lookup{}, fmt.Errorf("decode lemma response: %w", err)
	}
	l := normalizeWord(body.Lemma)
	return lookup{lemma: l, ok: l != ""}, nil
}
