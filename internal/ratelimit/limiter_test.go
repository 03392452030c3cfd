package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLimiter_WindowCeiling(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(NewMemoryStore(), time.Hour, 5, WithClock(clock.Now))
	ctx := context.Background()
	first := clock.Now()

	for n := 1; n <= 5; n++ {
		res, err := l.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", n)
		assert.Equal(t, 5-n, res.Remaining, "request %d", n)
		assert.Equal(t, first.Add(time.Hour), res.ResetTime)
		clock.Advance(time.Minute)
	}

	res, err := l.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, first.Add(time.Hour), res.ResetTime, "rejection must not move the window")
}

func TestLimiter_ResetAfterWindow(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(NewMemoryStore(), time.Hour, 2, WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := l.Check(ctx, "id")
		require.NoError(t, err)
	}

	// Exactly at resetTime the old window still applies.
	clock.Advance(time.Hour)
	res, err := l.Check(ctx, "id")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	clock.Advance(time.Millisecond)
	res, err = l.Check(ctx, "id")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
	assert.Equal(t, clock.Now().Add(time.Hour), res.ResetTime)
}

func TestLimiter_IdentifiersAreIndependent(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), time.Hour, 1)
	ctx := context.Background()

	a, err := l.Check(ctx, "a")
	require.NoError(t, err)
	b, err := l.Check(ctx, "b")
	require.NoError(t, err)
	a2, err := l.Check(ctx, "a")
	require.NoError(t, err)

	assert.True(t, a.Allowed)
	assert.True(t, b.Allowed)
	assert.False(t, a2.Allowed)
}

func TestLimiter_ConcurrentRequestsNeverExceedCeiling(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), time.Hour, 5)
	ctx := context.Background()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := l.Check(ctx, "burst")
			if err == nil && res.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), allowed.Load())
}

func TestLimiter_Defaults(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), 0, 0)
	assert.Equal(t, DefaultWindow, l.Window())
	assert.Equal(t, DefaultMaxRequests, l.Max())
}

type failingStore struct{ *MemoryStore }

func (*failingStore) Get(context.Context, string) (Entry, bool, error) {
	return Entry{}, false, errors.New("store unavailable")
}

func TestLimiter_StoreErrorPropagates(t *testing.T) {
	l := NewLimiter(&failingStore{NewMemoryStore()}, time.Hour, 5)

	_, err := l.Check(context.Background(), "id")
	assert.ErrorContains(t, err, "store unavailable")
}

func TestMemoryStore_Sweep(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	l := NewLimiter(store, time.Hour, 5, WithClock(clock.Now))
	ctx := context.Background()

	_, err := l.Check(ctx, "old")
	require.NoError(t, err)
	clock.Advance(30 * time.Minute)
	_, err = l.Check(ctx, "new")
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)
	removed, err := l.Sweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())
	_, found, _ := store.Get(ctx, "new")
	assert.True(t, found)
}
