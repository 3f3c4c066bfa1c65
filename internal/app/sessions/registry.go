package sessions

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/district-compass/school-search-api/internal/app/search"
	"github.com/district-compass/school-search-api/internal/platform/metrics"
	clockport "github.com/district-compass/school-search-api/internal/ports/out/clock"
)

// Registry owns the live search sessions. Each session is identified by an
// opaque id and expires after TTL of inactivity; any successful lookup counts
// as activity.
type Registry struct {
	factory func() *search.Session
	clk     clockport.Clock
	log     *slog.Logger

	newSessionID func() string

	// TTL is the idle lifetime of a session.
	TTL time.Duration

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
}

type entry struct {
	session   *search.Session
	createdAt time.Time
	lastSeen  time.Time
}

// Info describes a session without exposing the session itself.
type Info struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func NewRegistry(factory func() *search.Session, clk clockport.Clock, log *slog.Logger, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Registry{
		factory:      factory,
		clk:          clk,
		log:          log,
		newSessionID: uuid.NewString,
		TTL:          ttl,
		entries:      make(map[string]*entry),
	}
}

// Create starts a new session and returns its id.
func (r *Registry) Create() (Info, *search.Session) {
	now := r.clk.Now()
	id := r.newSessionID()
	s := r.factory()

	r.mu.Lock()
	r.entries[id] = &entry{session: s, createdAt: now, lastSeen: now}
	n := len(r.entries)
	r.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	r.log.Info("session created", "sessionId", id)
	return Info{ID: id, CreatedAt: now, ExpiresAt: now.Add(r.TTL)}, s
}

// Get returns the session with the given id and refreshes its idle timer.
// Expired sessions are indistinguishable from unknown ones.
func (r *Registry) Get(id string) (*search.Session, error) {
	now := r.clk.Now()

	r.mu.Lock()
	e, ok := r.entries[id]
	if ok && now.Sub(e.lastSeen) > r.TTL {
		delete(r.entries, id)
		r.mu.Unlock()
		e.session.Close()
		r.publishCount()
		return nil, errSessionNotFound(id)
	}
	if ok {
		e.lastSeen = now
	}
	r.mu.Unlock()

	if !ok {
		return nil, errSessionNotFound(id)
	}
	return e.session, nil
}

// Describe returns metadata for the session without refreshing its timer.
func (r *Registry) Describe(id string) (Info, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || r.clk.Now().Sub(e.lastSeen) > r.TTL {
		return Info{}, errSessionNotFound(id)
	}
	return Info{ID: id, CreatedAt: e.createdAt, ExpiresAt: e.lastSeen.Add(r.TTL)}, nil
}

// Delete closes and removes the session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()

	if !ok {
		return errSessionNotFound(id)
	}
	e.session.Close()
	r.publishCount()
	r.log.Info("session deleted", "sessionId", id)
	return nil
}

// Sweep closes every session idle for longer than TTL and returns how many
// were removed.
func (r *Registry) Sweep() int {
	now := r.clk.Now()

	r.mu.Lock()
	var expired []*entry
	for id, e := range r.entries {
		if now.Sub(e.lastSeen) > r.TTL {
			expired = append(expired, e)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, e := range expired {
		e.session.Close()
	}
	if len(expired) > 0 {
		r.publishCount()
		r.log.Info("sessions expired", "count", len(expired))
	}
	return len(expired)
}

// RunSweeper sweeps at the given interval until ctx is cancelled. Intended to
// run in its own goroutine.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep()
		}
	}
}

// Close closes every remaining session. The registry is unusable afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.session.Close()
	}
	metrics.ActiveSessions.Set(0)
}

func (r *Registry) publishCount() {
	r.mu.Lock()
	n := len(r.entries)
	r.mu.Unlock()
	metrics.ActiveSessions.Set(float64(n))
}
