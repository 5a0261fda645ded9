// Package api holds server-side state shared by the HTTP handlers.
package api

import (
	"sync"
	"time"

	"dma-backtest/internal/api/models"

	"github.com/google/uuid"
)

// DefaultResultTTL is how long a finished run stays retrievable.
const DefaultResultTTL = 15 * time.Minute

type storedResult struct {
	resp      models.BacktestResponse
	expiresAt time.Time
}

// ResultStore keeps finished backtest runs in memory, keyed by run ID,
// so the trade ledger can be re-fetched without re-running. It is a
// field on the server, not a package global: two servers in one
// process never share results.
type ResultStore struct {
	mu    sync.RWMutex
	store map[string]storedResult
	ttl   time.Duration
	now   func() time.Time
}

func NewResultStore(ttl time.Duration) *ResultStore {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &ResultStore{
		store: make(map[string]storedResult),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Put stores a finished run and returns its ID.
func (s *ResultStore) Put(resp models.BacktestResponse) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	s.store[id] = storedResult{resp: resp, expiresAt: s.now().Add(s.ttl)}
	return id
}

// Get retrieves a stored run if it has not expired.
func (s *ResultStore) Get(id string) (models.BacktestResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.store[id]
	if !ok || s.now().After(entry.expiresAt) {
		return models.BacktestResponse{}, false
	}
	return entry.resp, true
}

// Len reports the live entry count (expired entries may still linger
// until the next Put).
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.store)
}

func (s *ResultStore) pruneLocked() {
	now := s.now()
	for id, entry := range s.store {
		if now.After(entry.expiresAt) {
			delete(s.store, id)
		}
	}
}
