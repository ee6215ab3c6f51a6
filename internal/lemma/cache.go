package lemma

import (
	"container/list"
	"sync"
)

// Fallible is implemented by lemmatizers whose lookups can fail for reasons
// other than an unknown word.
type Fallible interface {
	LemmatizeErr(word string) (string, bool, error)
}

// Cache memoizes another lemmatizer, keeping at most size words (least
// recently used evicted first). Unknown words are cached too; failed
// lookups of a Fallible lemmatizer are not. Safe for concurrent use.
type Cache struct {
	next Lemmatizer
	size int

	mu    sync.Mutex
	ll    *list.List
	items map[string]*list.Element
}

type cacheEntry struct {
	word  string
	lemma string
	ok    bool
}

func NewCache(next Lemmatizer, size int) *Cache {
	if size <= 0 {
		size = 10000
	}
	return &Cache{next: next, size: size, ll: list.New(), items: map[string]*list.Element{}}
}

func (c *Cache) Lemmatize(word string) (string, bool) {
	c.mu.Lock()
	if el, ok := c.items[word]; ok {
		c.ll.MoveToFront(el)
		e := el.Value.(*cacheEntry)
		c.mu.Unlock()
		return e.lemma, e.ok
	}
	c.mu.Unlock()

	var (
		lemma string
		ok    bool
	)
	if f, fallible := c.next.(Fallible); fallible {
		var err error
		if lemma, ok, err = f.LemmatizeErr(word); err != nil {
			// outages are not remembered
			return "", false
		}
	} else {
		lemma, ok = c.next.Lemmatize(word)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, exists := c.items[word]; exists {
		c.ll.MoveToFront(el)
		e := el.Value.(*cacheEntry)
		return e.lemma, e.ok
	}
	c.items[word] = c.ll.PushFront(&cacheEntry{word: word, lemma: lemma, ok: ok})
	if c.ll.Len() > c.size {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).word)
	}
	return lemma, ok
}

// Len reports the number of cached words.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
