package storage

import (
	"sync"
	"time"

	"github.com/lehigh-university-libraries/libbycheck/internal/catalog"
)

type entry struct {
	records  []catalog.Record
	storedAt time.Time
}

// SearchCache remembers catalog search results by query string so a title
// listed twice is only searched once. Entries older than ttl are ignored;
// a ttl of zero keeps them for the life of the cache.
type SearchCache struct {
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
}

func New(ttl time.Duration) *SearchCache {
	return &SearchCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns cached results for a query. Expired entries are dropped.
func (s *SearchCache) Get(query string) ([]catalog.Record, bool) {
	s.mu.RLock()
	e, exists := s.entries[query]
	s.mu.RUnlock()
	if !exists {
		return nil, false
	}
	if s.ttl > 0 && s.now().Sub(e.storedAt) > s.ttl {
		s.mu.Lock()
		if cur, ok := s.entries[query]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(s.entries, query)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.records, true
}

// Set stores results for a query. Empty results are not stored, since a
// failed search looks the same as one with no hits.
func (s *SearchCache) Set(query string, records []catalog.Record) {
	if len(records) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[query] = entry{records: records, storedAt: s.now()}
}

// Len is the number of cached queries.
func (s *SearchCache) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
