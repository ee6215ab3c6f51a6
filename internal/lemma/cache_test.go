package lemma_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/mind-engage/mindengage-autograde/internal/lemma"
)

type countingLemmatizer struct {
	mu    sync.Mutex
	calls map[string]int
	fail  bool
}

func (c *countingLemmatizer) LemmatizeErr(word string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[word]++
	if c.fail {
		return "", false, errors.New("down")
	}
	if word == "unknown" {
		return "", false, nil
	}
	return word + "-lemma", true, nil
}

func (c *countingLemmatizer) Lemmatize(word string) (string, bool) {
	l, ok, _ := c.LemmatizeErr(word)
	return l, ok
}

func (c *countingLemmatizer) count(word string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[word]
}

func TestCacheMemoizes(t *testing.T) {
	src := &countingLemmatizer{}
	c := lemma.NewCache(src, 10)

	for i := 0; i < 3; i++ {
		if got, ok := c.Lemmatize("word"); !ok || got != "word-lemma" {
			t.Fatalf("got %q,%v", got, ok)
		}
		if _, ok := c.Lemmatize("unknown"); ok {
			t.Fatalf("unknown reported known")
		}
	}
	if n := src.count("word"); n != 1 {
		t.Fatalf("word looked up %d times, want 1", n)
	}
	if n := src.count("unknown"); n != 1 {
		t.Fatalf("unknown looked up %d times, want 1", n)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	src := &countingLemmatizer{}
	c := lemma.NewCache(src, 2)

	c.Lemmatize("a")
	c.Lemmatize("b")
	c.Lemmatize("a") // a is now most recent
	c.Lemmatize("c") // evicts b

	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	c.Lemmatize("a")
	if n := src.count("a"); n != 1 {
		t.Fatalf("a looked up %d times, want 1", n)
	}
	c.Lemmatize("b")
	if n := src.count("b"); n != 2 {
		t.Fatalf("b looked up %d times, want 2", n)
	}
}

func TestCacheSkipsFailures(t *testing.T) {
	src := &countingLemmatizer{fail: true}
	c := lemma.NewCache(src, 10)

	c.Lemmatize("word")
	c.Lemmatize("word")
	if n := src.count("word"); n != 2 {
		t.Fatalf("failed lookup cached: %d calls", n)
	}
	if c.Len() != 0 {
		t.Fatalf("len = %d, want 0", c.Len())
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := lemma.NewCache(lemma.DefaultDictionary(), 4)
	words := []string{"running", "cells", "mice", "boxes", "studies", "qwerty"}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Lemmatize(words[(i+j)%len(words)])
			}
		}(i)
	}
	wg.Wait()
	if got, _ := c.Lemmatize("running"); got != "run" {
		t.Fatalf("got %q", got)
	}
}
