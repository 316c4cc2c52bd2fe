// Package transposition stores search results keyed by game state digest, so
// that positions reached through different move orders are evaluated once.
package transposition

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/okusnadi/SabberStone/internal/config"
	"github.com/okusnadi/SabberStone/internal/game/model"
)

// Entry is the stored result for one game state.
type Entry struct {
	Digest string
	Depth  int
	Visits int
	Value  float64
}

// Store persists entries by digest.
type Store interface {
	// Get returns the entry for digest; ok is false when it is unknown.
	Get(ctx context.Context, digest string) (Entry, bool, error)
	// Put stores e unless an entry searched to a greater depth exists.
	// Visit counts are kept from the stored entry.
	Put(ctx context.Context, e Entry) error
	// Visit increments the visit count of digest, creating the entry if
	// needed, and returns the new count.
	Visit(ctx context.Context, digest string) (int, error)
	Len(ctx context.Context) (int, error)
	Close() error
}

// Open returns the store selected by cfg.
func Open(cfg config.TranspositionConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQLite(cfg.Path, logger)
	default:
		return nil, fmt.Errorf("unknown transposition driver %q", cfg.Driver)
	}
}

// Observe records a visit of the current state of g and returns its entry.
func Observe(ctx context.Context, s Store, g *model.Game) (Entry, error) {
	digest := g.Digest()
	if _, err := s.Visit(ctx, digest); err != nil {
		return Entry{}, err
	}
	e, _, err := s.Get(ctx, digest)
	return e, err
}

// MemoryStore is a Store backed by a map.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (m *MemoryStore) Get(_ context.Context, digest string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[digest]
	return e, ok, nil
}

func (m *MemoryStore) Put(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.entries[e.Digest]
	if ok {
		if cur.Depth > e.Depth {
			return nil
		}
		e.Visits = cur.Visits
	}
	m.entries[e.Digest] = e
	return nil
}

func (m *MemoryStore) Visit(_ context.Context, digest string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entries[digest]
	e.Digest = digest
	e.Visits++
	m.entries[digest] = e
	return e.Visits, nil
}

func (m *MemoryStore) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries), nil
}

func (m *MemoryStore) Close() error { return nil }
