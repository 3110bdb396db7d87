package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Decision is the outcome of checking one request against a client's window.
type Decision struct {
	Allowed    bool
	Limit      int
	Used       int
	Remaining  int
	ResetAfter time.Duration
	RetryAfter time.Duration // zero when allowed
}

// ResetSeconds is ResetAfter in whole seconds, rounded up. Headers and the
// introspection endpoint both use this shape.
func (d Decision) ResetSeconds() int {
	return int(math.Ceil(d.ResetAfter.Seconds()))
}

// RetrySeconds is RetryAfter in whole seconds, rounded up so a client never
// retries before the window actually resets.
func (d Decision) RetrySeconds() int {
	return int(math.Ceil(d.RetryAfter.Seconds()))
}

// window is one client's fixed window. A window starts at the client's first
// request and resets fully once the duration has passed.
type window struct {
	start time.Time
	count int
}

// Store tracks per-client fixed windows. State is process-local; the gateway
// runs as a single instance.
type Store struct {
	mu      sync.Mutex
	windows map[string]*window

	max    int
	window time.Duration
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithNow replaces the clock, for deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store enforcing max requests per client key per window.
func NewStore(max int, windowDur time.Duration, opts ...Option) *Store {
	s := &Store{
		windows: make(map[string]*window),
		max:     max,
		window:  windowDur,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Admit counts one request for key and decides whether it may proceed.
// Requests past the quota keep counting; the window still resets on schedule.
func (s *Store) Admit(key string) Decision {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || s.expired(w, now) {
		w = &window{start: now}
		s.windows[key] = w
	}
	w.count++

	return s.decision(w, now)
}

// Peek reports the caller's current window without counting a request.
func (s *Store) Peek(key string) Decision {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || s.expired(w, now) {
		return Decision{Allowed: true, Limit: s.max, Remaining: s.max, ResetAfter: s.window}
	}
	return s.decision(w, now)
}

// Sweep drops expired windows and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, w := range s.windows {
		if s.expired(w, now) {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

func (s *Store) expired(w *window, now time.Time) bool {
	return !now.Before(w.start.Add(s.window))
}

func (s *Store) decision(w *window, now time.Time) Decision {
	d := Decision{
		Allowed:    w.count <= s.max,
		Limit:      s.max,
		Used:       w.count,
		Remaining:  s.max - w.count,
		ResetAfter: w.start.Add(s.window).Sub(now),
	}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if !d.Allowed {
		d.RetryAfter = d.ResetAfter
	}
	return d
}
