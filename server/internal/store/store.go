package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wqlegmed/death-time-calculator/pkg/estimate"
	"github.com/wqlegmed/death-time-calculator/pkg/types"
)

// Entry is an inferred result together with the time it was stored.
type Entry struct {
	ID     string
	Key    string
	Result *types.Result
	// Locale is the language the result's warnings were rendered in.
	Locale    estimate.Locale
	UpdatedAt time.Time
}

// Store is a thread-safe in-memory result cache keyed by request fingerprint.
// A background goroutine (Run) periodically evicts entries older than the
// configured TTL. A zero TTL disables caching.
type Store struct {
	mu   sync.RWMutex
	data map[string]*Entry // fingerprint -> entry
	ids  map[string]string // entry ID -> fingerprint
	ttl  time.Duration
	now  func() time.Time // injectable for deterministic tests
}

// New creates a Store with the given TTL.
func New(ttl time.Duration) *Store {
	return &Store{
		data: make(map[string]*Entry),
		ids:  make(map[string]string),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Key fingerprints an observation together with the engine options that
// shape its result. Equal inputs always map to the same key.
func Key(obs types.Observation, opts estimate.Options) (string, error) {
	b, err := json.Marshal(struct {
		Observation types.Observation  `json:"observation"`
		Locale      estimate.Locale    `json:"locale"`
		Decay       estimate.DecayForm `json:"decay"`
		Fixed       bool               `json:"fixed_location"`
	}{obs, opts.Locale, opts.Decay, opts.FixedLocation})
	if err != nil {
		return "", fmt.Errorf("store: fingerprint: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// TTL returns the retention window.
func (s *Store) TTL() time.Duration { return s.ttl }

// Put stores or replaces the result under key and returns the new entry.
// A replaced entry is no longer reachable by its old ID.
// Callers must not modify res after calling Put.
func (s *Store) Put(key, id string, locale estimate.Locale, res *types.Result) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.data[key]; ok {
		delete(s.ids, old.ID)
	}
	e := &Entry{ID: id, Key: key, Result: res, Locale: locale, UpdatedAt: s.now()}
	s.data[key] = e
	s.ids[id] = key
	return e
}

// Get returns the live entry for key. Entries older than the TTL are
// reported as missing even before Evict removes them.
func (s *Store) Get(key string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[key]
	if !ok || !s.live(e) {
		return nil, false
	}
	return e, true
}

// ByID returns the live entry stored under the given result ID.
func (s *Store) ByID(id string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.ids[id]
	if !ok {
		return nil, false
	}
	e := s.data[key]
	if !s.live(e) {
		return nil, false
	}
	return e, true
}

// List returns all entries whose UpdatedAt is within the TTL.
// Stale entries that have not yet been evicted are excluded.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entry, 0, len(s.data))
	for _, e := range s.data {
		if s.live(e) {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the total number of entries currently held, including stale ones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Evict removes entries whose UpdatedAt is older than now minus TTL.
// It returns the number of entries removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	removed := 0
	for key, e := range s.data {
		if !e.UpdatedAt.After(cutoff) {
			delete(s.data, key)
			delete(s.ids, e.ID)
			removed++
		}
	}
	return removed
}

// Run starts the background TTL eviction loop. It ticks at half the TTL interval
// (minimum 1 second) so entries are evicted promptly. Run blocks until ctx is
// cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: evicted stale results", "count", n)
			}
		}
	}
}

// live reports whether e is within the TTL. Callers hold s.mu.
func (s *Store) live(e *Entry) bool {
	return e.UpdatedAt.After(s.now().Add(-s.ttl))
}
