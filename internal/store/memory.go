// internal/store/memory.go
//
// In-memory keyed store for engine entities (sessions, rooms).
//
// Characteristics:
//   - Entities are kept by ID in a map guarded by an RWMutex.
//   - Every entity additionally has its own mutex; Update and View run the
//     caller's function while holding it, so a read-modify-write on one id is
//     atomic and different ids never wait on each other.
//   - Each access stamps the entry, which lets Sweep evict idle entries.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned for unknown ids.
var ErrNotFound = errors.New("store: not found")

// ErrExists is returned by Create when the id is already taken.
var ErrExists = errors.New("store: id already exists")

// Store defines the keyed, per-entity locked persistence interface.
type Store[T any] interface {
	// Create inserts v under id. Fails with ErrExists on collision.
	Create(ctx context.Context, id string, v T) error

	// Update runs fn on the entity under its lock. fn's error is returned as is.
	Update(ctx context.Context, id string, fn func(T) error) error

	// View runs fn on the entity under its lock for reading.
	View(ctx context.Context, id string, fn func(T)) error

	// Delete removes the entity; deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// Range calls fn for every entity, each under its own lock.
	Range(ctx context.Context, fn func(id string, v T)) error
}

type entry[T any] struct {
	mu      sync.Mutex
	val     T
	touched time.Time
	gone    bool // set once removed from the map
}

// Memory is an in-memory Store implementation.
type Memory[T any] struct {
	mu    sync.RWMutex         // guards items
	items map[string]*entry[T] // keyed by entity ID
	now   func() time.Time
}

var _ Store[struct{}] = (*Memory[struct{}])(nil)

// NewMemory constructs an empty store. A nil clock means time.Now.
func NewMemory[T any](now func() time.Time) *Memory[T] {
	if now == nil {
		now = time.Now
	}
	return &Memory[T]{items: make(map[string]*entry[T]), now: now}
}

func (m *Memory[T]) Create(ctx context.Context, id string, v T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; ok {
		return ErrExists
	}
	m.items[id] = &entry[T]{val: v, touched: m.now()}
	return nil
}

// lock returns the locked entry for id. Callers must unlock it.
func (m *Memory[T]) lock(ctx context.Context, id string) (*entry[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	e, ok := m.items[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	// The entry may have been deleted while we waited for its lock.
	if e.gone {
		e.mu.Unlock()
		return nil, ErrNotFound
	}
	e.touched = m.now()
	return e, nil
}

func (m *Memory[T]) Update(ctx context.Context, id string, fn func(T) error) error {
	e, err := m.lock(ctx, id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()
	return fn(e.val)
}

func (m *Memory[T]) View(ctx context.Context, id string, fn func(T)) error {
	e, err := m.lock(ctx, id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()
	fn(e.val)
	return nil
}

func (m *Memory[T]) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.items[id]
	delete(m.items, id)
	m.mu.Unlock()
	if ok {
		e.mu.Lock()
		e.gone = true
		e.mu.Unlock()
	}
	return nil
}

func (m *Memory[T]) Range(ctx context.Context, fn func(id string, v T)) error {
	m.mu.RLock()
	ids := make([]string, 0, len(m.items))
	entries := make([]*entry[T], 0, len(m.items))
	for id, e := range m.items {
		ids = append(ids, id)
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.mu.Lock()
		if !e.gone {
			fn(ids[i], e.val)
		}
		e.mu.Unlock()
	}
	return nil
}

// Len returns the number of stored entities.
func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Sweep removes entries not accessed within idle and returns their ids.
// A non-positive idle disables eviction.
func (m *Memory[T]) Sweep(idle time.Duration) []string {
	if idle <= 0 {
		return nil
	}
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []string
	for id, e := range m.items {
		// Skip entries busy in Update; they are by definition not idle.
		if !e.mu.TryLock() {
			continue
		}
		if e.touched.Before(cutoff) {
			e.gone = true
			delete(m.items, id)
			removed = append(removed, id)
		}
		e.mu.Unlock()
	}
	return removed
}
