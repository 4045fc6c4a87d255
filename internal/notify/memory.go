package notify

import (
	"context"
	"time"

	"finsight/internal/cache"
)

// MemoryStore keeps notification slots in a bounded TTL cache.
type MemoryStore struct {
	slots *cache.LRUCache[Notification]
}

// NewMemoryStore tracks up to maxClients slots, each expiring ttl after it was set.
func NewMemoryStore(maxClients int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{slots: cache.NewLRUCache[Notification](maxClients, ttl)}
}

// Cache exposes the backing cache so a cache.Manager can purge expired slots.
func (s *MemoryStore) Cache() *cache.LRUCache[Notification] {
	return s.slots
}

func (s *MemoryStore) Put(_ context.Context, client string, n Notification) error {
	s.slots.Set(client, n)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, client string) (Notification, bool, error) {
	n, ok := s.slots.Get(client)
	return n, ok, nil
}

func (s *MemoryStore) Delete(_ context.Context, client string) error {
	s.slots.Delete(client)
	return nil
}
