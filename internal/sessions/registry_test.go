package sessions

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/talentscout/internal/domain"
	"github.com/ashureev/talentscout/internal/intake"
)

type countingRecorder struct {
	mu     sync.Mutex
	active int
}

func (c *countingRecorder) ObserveGenerate(string, int, time.Duration) {}
func (c *countingRecorder) ObserveSubmission(string, string) {}

func (c *countingRecorder) SessionOpened() {
	c.mu.Lock()
	c.active++
	c.mu.Unlock()
}

func (c *countingRecorder) SessionClosed() {
	c.mu.Lock()
	c.active--
	c.mu.Unlock()
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestRegistry(rec *countingRecorder, clock *fakeClock) *Registry {
	return NewRegistry(domain.DefaultQuestions(),
		WithRecorder(rec),
		WithClock(clock.Now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestRegistryCreateAndWith(t *testing.T) {
	rec := &countingRecorder{}
	r := newTestRegistry(rec, &fakeClock{now: time.Unix(1000, 0)})

	id := r.Create()
	if id == "" {
		t.Fatal("expected non-empty id")
	}
	var got string
	err := r.With(id, func(s *intake.Session) error {
		got = s.ID
		return nil
	})
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}
	if got != id {
		t.Errorf("session id = %q, want %q", got, id)
	}
	if r.Len() != 1 || rec.active != 1 {
		t.Errorf("expected one live session, len=%d active=%d", r.Len(), rec.active)
	}
}

func TestRegistryUnknownSession(t *testing.T) {
	r := newTestRegistry(&countingRecorder{}, &fakeClock{})
	err := r.With("missing", func(*intake.Session) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistryIDsAreUnique(t *testing.T) {
	r := newTestRegistry(&countingRecorder{}, &fakeClock{})
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := r.Create()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestRegistrySweepRemovesIdleSessions(t *testing.T) {
	rec := &countingRecorder{}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	r := newTestRegistry(rec, clock)

	idle := r.Create()
	clock.Advance(30 * time.Minute)
	busy := r.Create()
	clock.Advance(45 * time.Minute)
	_ = r.With(busy, func(*intake.Session) error { return nil })

	if n := r.Sweep(time.Hour); n != 1 {
		t.Fatalf("expected 1 swept session, got %d", n)
	}
	if err := r.With(idle, func(*intake.Session) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("idle session should be gone, got %v", err)
	}
	if err := r.With(busy, func(*intake.Session) error { return nil }); err != nil {
		t.Errorf("active session should survive, got %v", err)
	}
	if rec.active != 1 {
		t.Errorf("expected gauge 1, got %d", rec.active)
	}
}

func TestRegistryRemove(t *testing.T) {
	rec := &countingRecorder{}
	var cleaned []string
	r := NewRegistry(domain.DefaultQuestions(),
		WithRecorder(rec),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithCleanup(func(id string) { cleaned = append(cleaned, id) }),
	)
	id := r.Create()
	r.Remove(id)
	r.Remove(id)
	if r.Len() != 0 || rec.active != 0 {
		t.Errorf("expected empty registry, len=%d active=%d", r.Len(), rec.active)
	}
	if len(cleaned) != 1 || cleaned[0] != id {
		t.Errorf("expected one cleanup for %s, got %v", id, cleaned)
	}
}

func TestRegistrySerialisesSessionAccess(t *testing.T) {
	r := newTestRegistry(&countingRecorder{}, &fakeClock{})
	id := r.Create()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		overlap bool
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.With(id, func(*intake.Session) error {
				mu.Lock()
				inside++
				if inside > 1 {
					overlap = true
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	if overlap {
		t.Error("concurrent access to one session")
	}
}
