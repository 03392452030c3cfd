package ratelimit

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"
)

// Defaults for the contact form window.
const (
	DefaultWindow      = time.Hour
	DefaultMaxRequests = 5
)

const lockStripes = 64

// Entry is the per-identifier fixed window state.
type Entry struct {
	Count     int
	ResetTime time.Time
}

// Expired reports whether the window has rolled over at now.
func (e Entry) Expired(now time.Time) bool {
	return now.After(e.ResetTime)
}

// Result describes the decision for a single request.
type Result struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetTime time.Time
}

// Store persists window state per identifier.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
	// Sweep removes entries whose window expired before now and returns how
	// many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// AtomicStore is implemented by stores that can run the whole fixed window
// step server-side, which keeps the count exact across processes.
type AtomicStore interface {
	Store
	Hit(ctx context.Context, key string, now time.Time, window time.Duration, max int) (Entry, bool, error)
}

// Limiter is a fixed window request counter.
type Limiter struct {
	store  Store
	window time.Duration
	max    int
	now    func() time.Time
	locks  [lockStripes]sync.Mutex
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter creates a limiter allowing max requests per window for each
// identifier.
func NewLimiter(store Store, window time.Duration, max int, opts ...Option) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMaxRequests
	}
	l := &Limiter{
		store:  store,
		window: window,
		max:    max,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Max returns the configured ceiling per window.
func (l *Limiter) Max() int { return l.max }

// Store returns the underlying store.
func (l *Limiter) Store() Store { return l.store }

// Check counts one request for identifier and reports whether it is allowed.
func (l *Limiter) Check(ctx context.Context, identifier string) (Result, error) {
	now := l.now()

	if as, ok := l.store.(AtomicStore); ok {
		entry, allowed, err := as.Hit(ctx, identifier, now, l.window, l.max)
		if err != nil {
			return Result{}, fmt.Errorf("rate limit hit: %w", err)
		}
		return l.result(entry, allowed), nil
	}

	mu := l.lockFor(identifier)
	mu.Lock()
	defer mu.Unlock()

	entry, found, err := l.store.Get(ctx, identifier)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit get: %w", err)
	}

	if !found || entry.Expired(now) {
		entry = Entry{Count: 1, ResetTime: now.Add(l.window)}
		if err := l.store.Set(ctx, identifier, entry); err != nil {
			return Result{}, fmt.Errorf("rate limit set: %w", err)
		}
		return l.result(entry, true), nil
	}

	if entry.Count >= l.max {
		return l.result(entry, false), nil
	}

	entry.Count++
	if err := l.store.Set(ctx, identifier, entry); err != nil {
		return Result{}, fmt.Errorf("rate limit set: %w", err)
	}
	return l.result(entry, true), nil
}

// Sweep drops expired entries from the store.
func (l *Limiter) Sweep(ctx context.Context) (int, error) {
	return l.store.Sweep(ctx, l.now())
}

func (l *Limiter) result(entry Entry, allowed bool) Result {
	remaining := 0
	if allowed {
		remaining = l.max - entry.Count
		if remaining < 0 {
			remaining = 0
		}
	}
	return Result{
		Allowed:   allowed,
		Remaining: remaining,
		Limit:     l.max,
		ResetTime: entry.ResetTime,
	}
}

func (l *Limiter) lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &l.locks[h.Sum32()%lockStripes]
}
