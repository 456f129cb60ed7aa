package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
)

type counter struct{ n int }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[*counter](nil)

	if err := m.Create(ctx, "a", &counter{n: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.Create(ctx, "a", &counter{}); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	var got int
	if err := m.View(ctx, "a", func(c *counter) { got = c.n }); err != nil || got != 1 {
		t.Fatalf("view: n=%d err=%v", got, err)
	}
	if err := m.View(ctx, "missing", func(*counter) {}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := m.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete twice should be fine: %v", err)
	}
	if err := m.Update(ctx, "a", func(*counter) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestUpdateReturnsCallbackError(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[*counter](nil)
	_ = m.Create(ctx, "a", &counter{})
	boom := errors.New("boom")
	if err := m.Update(ctx, "a", func(*counter) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestUpdateIsAtomicPerID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[*counter](nil)
	_ = m.Create(ctx, "a", &counter{})
	_ = m.Create(ctx, "b", &counter{})

	const workers, iters = 16, 200
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := "a"
			if w%2 == 1 {
				id = "b"
			}
			for i := 0; i < iters; i++ {
				_ = m.Update(ctx, id, func(c *counter) error {
					n := c.n
					time.Sleep(0)
					c.n = n + 1
					return nil
				})
			}
		}(w)
	}
	wg.Wait()

	for _, id := range []string{"a", "b"} {
		var n int
		_ = m.View(ctx, id, func(c *counter) { n = c.n })
		if n != workers/2*iters {
			t.Fatalf("%s: lost updates, n=%d want %d", id, n, workers/2*iters)
		}
	}
}

func TestRange(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[*counter](nil)
	for _, id := range []string{"x", "y", "z"} {
		_ = m.Create(ctx, id, &counter{})
	}
	var ids []string
	if err := m.Range(ctx, func(id string, _ *counter) { ids = append(ids, id) }); err != nil {
		t.Fatalf("range: %v", err)
	}
	sort.Strings(ids)
	if len(ids) != 3 || ids[0] != "x" || ids[2] != "z" {
		t.Fatalf("unexpected ids %v", ids)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := m.Range(cancelled, func(string, *counter) {}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSweepEvictsIdle(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemory[*counter](clock.Now)

	_ = m.Create(ctx, "old", &counter{})
	_ = m.Create(ctx, "fresh", &counter{})
	clock.Advance(10 * time.Minute)
	_ = m.View(ctx, "fresh", func(*counter) {})
	clock.Advance(time.Minute)

	if got := m.Sweep(0); got != nil {
		t.Fatalf("zero idle must disable eviction, got %v", got)
	}
	removed := m.Sweep(5 * time.Minute)
	if len(removed) != 1 || removed[0] != "old" {
		t.Fatalf("expected only old evicted, got %v", removed)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 entry left, got %d", m.Len())
	}
}
