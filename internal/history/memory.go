package history

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/JonMunkholm/salesimport/internal/core"
)

// MemoryStore keeps results in process memory. Expired entries are dropped
// lazily on access and on every Save.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	result    core.ImportResult
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Save(ctx context.Context, res *core.ImportResult) error {
	if res == nil || res.ImportID == "" {
		return errors.New("save import result: missing import id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
	s.entries[res.ImportID] = memoryEntry{result: copyResult(res), expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, importID string) (*core.ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[importID]
	if !ok {
		return nil, ErrResultNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, importID)
		return nil, ErrResultNotFound
	}
	res := copyResult(&e.result)
	return &res, nil
}

// Len reports the number of stored results, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func copyResult(res *core.ImportResult) core.ImportResult {
	c := *res
	c.Errors = append([]core.ErrorRecord(nil), res.Errors...)
	c.UnmappedHeaders = append([]string(nil), res.UnmappedHeaders...)
	return c
}
