// Package lemma provides lemmatizers: functions from a surface word to its
// dictionary base form. All implementations return ok=false for words they
// do not know, never an error.
package lemma

import (
	"errors"
	"strings"
)

// ErrUnavailable is reported by remote lemmatizers that cannot reach their
// service. Callers see it only through logs; lookups degrade to "unknown".
var ErrUnavailable = errors.New("lemma service unavailable")

// Lemmatizer maps a word to its base form.
type Lemmatizer interface {
	Lemmatize(word string) (string, bool)
}

// Func adapts a plain function to Lemmatizer.
type Func func(word string) (string, bool)

func (f Func) Lemmatize(word string) (string, bool) { return f(word) }

// Map is a fixed lookup table. Keys are matched after lowercasing.
type Map map[string]string

func (m Map) Lemmatize(word string) (string, bool) {
	l, ok := m[strings.ToLower(word)]
	return l, ok
}

// Identity knows no words; every word becomes its own lemma.
var Identity Lemmatizer = Func(func(string) (string, bool) { return "", false })

// Chain asks each lemmatizer in turn and returns the first answer.
type Chain []Lemmatizer

func (c Chain) Lemmatize(word string) (string, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}
		if lemma, ok := l.Lemmatize(word); ok {
			return lemma, true
		}
	}
	return "", false
}
