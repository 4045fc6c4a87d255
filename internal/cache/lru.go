package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache holds at most maxSize keyed slots. A slot lives ttl from its last
// Set; reads refresh its recency but not its lifetime. When full, the least
// recently touched slot makes room.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	byKey   map[string]*list.Element
	recency *list.List // front is most recent
}

type slot[T any] struct {
	key      string
	value    T
	deadline time.Time
}

func (s *slot[T]) expired(now time.Time) bool {
	return !now.Before(s.deadline)
}

func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		byKey:   make(map[string]*list.Element, maxSize),
		recency: list.New(),
	}
}

// WithClock swaps the time source.
func (c *LRUCache[T]) WithClock(now func() time.Time) *LRUCache[T] {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

func (c *LRUCache[T]) TTL() time.Duration {
	return c.ttl
}

// Get returns the live value under key. An expired slot is dropped on read.
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.byKey[key]
	if !ok {
		return zero, false
	}
	s := elem.Value.(*slot[T])
	if s.expired(c.now()) {
		c.dropLocked(elem)
		return zero, false
	}
	c.recency.MoveToFront(elem)
	return s.value, true
}

// Set replaces the slot under key and restarts its lifetime.
func (c *LRUCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &slot[T]{key: key, value: value, deadline: c.now().Add(c.ttl)}
	if elem, ok := c.byKey[key]; ok {
		elem.Value = s
		c.recency.MoveToFront(elem)
		return
	}

	for c.recency.Len() >= c.maxSize {
		c.dropLocked(c.recency.Back())
	}
	c.byKey[key] = c.recency.PushFront(s)
}

func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.byKey[key]; ok {
		c.dropLocked(elem)
	}
}

func (c *LRUCache[T]) dropLocked(elem *list.Element) {
	delete(c.byKey, elem.Value.(*slot[T]).key)
	c.recency.Remove(elem)
}

// CleanExpired drops every expired slot and reports how many went.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for elem := c.recency.Front(); elem != nil; {
		next := elem.Next()
		if elem.Value.(*slot[T]).expired(now) {
			c.dropLocked(elem)
			removed++
		}
		elem = next
	}
	return removed
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byKey)
}
