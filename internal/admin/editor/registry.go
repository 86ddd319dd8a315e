package editor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/faithfulaborisade1/kilkennyquads/internal/contentstore"
)

const defaultIdleTimeout = 2 * time.Hour

type entry struct {
	credential string
	session    *Session
}

// Registry maps admin session ids to editor sessions.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]entry

	syncer *contentstore.Syncer
	paths  Paths
	idle   time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// Option customises a Registry.
type Option func(*Registry)

// WithIdleTimeout sets how long an unused session is kept.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.idle = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger used by the sweeper.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry constructs an empty registry.
func NewRegistry(syncer *contentstore.Syncer, paths Paths, opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]entry),
		syncer:   syncer,
		paths:    paths,
		idle:     defaultIdleTimeout,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Session returns the editor session bound to sessionID, creating it when
// absent or when the credential changed since it was created.
func (r *Registry) Session(sessionID, credential string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sessionID]; ok && e.credential == credential {
		return e.session
	}
	sess := NewSession(r.syncer, r.paths, credential, r.now)
	r.sessions[sessionID] = entry{credential: credential, session: sess}
	return sess
}

// Drop forgets the session bound to sessionID.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the idle timeout and returns how
// many were removed. The registry lock is not held while activity is read.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	snapshot := make(map[string]*Session, len(r.sessions))
	for id, e := range r.sessions {
		snapshot[id] = e.session
	}
	r.mu.Unlock()

	cutoff := r.now().Add(-r.idle)
	var idle []string
	for id, sess := range snapshot {
		if sess.LastActivity().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	if len(idle) == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for _, id := range idle {
		// the id may have been rebound to a new session meanwhile
		if e, ok := r.sessions[id]; ok && e.session == snapshot[id] {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("dropped idle editor sessions", zap.Int("count", n))
			}
		}
	}
}
