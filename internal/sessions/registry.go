// Package sessions keeps live intake sessions in memory and expires idle ones.
package sessions

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashureev/talentscout/internal/domain"
	"github.com/ashureev/talentscout/internal/intake"
	"github.com/ashureev/talentscout/internal/metrics"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("session not found")

const defaultSweepInterval = time.Minute

type entry struct {
	mu       sync.Mutex
	session  *intake.Session
	lastSeen time.Time
}

// Registry owns every live session. Access to one session is serialised;
// different sessions proceed in parallel.
type Registry struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	questions []domain.FixedQuestion
	recorder  metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time
	onCleanup CleanupCallback
}

// CleanupCallback is called after a session is removed or swept.
type CleanupCallback func(sessionID string)

// Option configures a Registry.
type Option func(*Registry)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(reg *Registry) { reg.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(reg *Registry) { reg.logger = l }
}

// WithClock sets the time source used for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(reg *Registry) { reg.now = now }
}

// WithCleanup registers a callback run for every removed session.
func WithCleanup(fn CleanupCallback) Option {
	return func(reg *Registry) { reg.onCleanup = fn }
}

// NewRegistry creates a registry whose sessions use the given fixed catalog.
func NewRegistry(questions []domain.FixedQuestion, opts ...Option) *Registry {
	r := &Registry{
		entries:   make(map[string]*entry),
		questions: questions,
		recorder:  metrics.Nop{},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create starts a new session and returns its ID.
func (r *Registry) Create() string {
	id := uuid.NewString()
	e := &entry{
		session:  intake.NewSession(id, r.questions),
		lastSeen: r.now(),
	}

	r.mu.Lock()
	r.entries[id] = e
	r.mu.Unlock()

	r.recorder.SessionOpened()
	r.logger.Info("Intake session created", "session_id", id)
	return id
}

// With runs fn while holding the session's lock. fn must not retain s.
func (r *Registry) With(id string, fn func(s *intake.Session) error) error {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = r.now()
	return fn(e.session)
}

// Remove drops a session. Unknown IDs are ignored.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()

	if ok {
		r.recorder.SessionClosed()
		r.cleanup(id)
		r.logger.Info("Intake session removed", "session_id", id)
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Sweep removes sessions idle for longer than ttl and returns how many
// were removed. A session currently in use is never swept.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	var expired []string
	for id, e := range r.entries {
		if !e.mu.TryLock() {
			continue
		}
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			expired = append(expired, id)
		}
		e.mu.Unlock()
	}
	r.mu.Unlock()

	for _, id := range expired {
		r.recorder.SessionClosed()
		r.cleanup(id)
	}
	if len(expired) > 0 {
		r.logger.Info("Session sweeper removed idle sessions", "count", len(expired), "ttl", ttl)
	}
	return len(expired)
}

func (r *Registry) cleanup(id string) {
	if r.onCleanup != nil {
		r.onCleanup(id)
	}
}

// StartSweeper runs Sweep periodically until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context, ttl, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		r.logger.Info("Session sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				r.Sweep(ttl)
			case <-ctx.Done():
				r.logger.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
