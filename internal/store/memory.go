package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/weather-now/internal/weather"
)

var (
	// ErrNotFound is returned when no fresh entry is cached for a city.
	ErrNotFound = errors.New("no cached weather for city")
)

type entry struct {
	current   weather.Current
	fetchedAt time.Time
}

// MemoryStore is a concurrency-safe in-memory cache of current conditions.
type MemoryStore struct {
	mu sync.RWMutex

	// key: normalized city query
	data map[string]entry
	// insertion order of keys, oldest first
	order []string

	// retention configuration
	maxEntries int           // max number of cached cities
	maxAge     time.Duration // max age of an entry

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxEntries is <= 0, it is treated as unlimited; a maxAge <= 0 keeps
// entries until evicted by count.
func NewMemoryStore(maxEntries int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveCurrent caches c under key, replacing any older entry, and enforces
// retention by count.
func (s *MemoryStore) SaveCurrent(key string, c weather.Current) {
	// Keys outlive the caller and may point into a reused request buffer.
	key = strings.Clone(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; ok {
		s.removeFromOrder(key)
	}
	s.data[key] = entry{current: c, fetchedAt: s.now()}
	s.order = append(s.order, key)

	if s.maxEntries > 0 && len(s.order) > s.maxEntries {
		over := len(s.order) - s.maxEntries
		for _, k := range s.order[:over] {
			delete(s.data, k)
		}
		s.order = append([]string(nil), s.order[over:]...)
	}
}

// GetCurrent returns the cached entry for key if it has not expired.
func (s *MemoryStore) GetCurrent(key string) (weather.Current, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok || s.expired(e) {
		return weather.Current{}, ErrNotFound
	}
	return e.current, nil
}

// Prune removes expired entries and returns how many were dropped.
func (s *MemoryStore) Prune() int {
	if s.maxAge <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.order[:0]
	removed := 0
	for _, k := range s.order {
		if s.expired(s.data[k]) {
			delete(s.data, k)
			removed++
			continue
		}
		kept = append(kept, k)
	}
	s.order = kept
	return removed
}

// Len returns the number of cached entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) expired(e entry) bool {
	if s.maxAge <= 0 {
		return false
	}
	return s.now().Sub(e.fetchedAt) > s.maxAge
}

func (s *MemoryStore) removeFromOrder(key string) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
