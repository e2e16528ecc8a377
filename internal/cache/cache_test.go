package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tss-backtest/internal/backtest"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestCache(ttl time.Duration) (*ResultCache, *clock) {
	clk := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := New(ttl)
	c.now = clk.now
	return c, clk
}

func TestPutAssignsIDAndGetReturnsRun(t *testing.T) {
	c, clk := newTestCache(time.Minute)
	run := &Run{Result: &backtest.Result{InitialCapital: 10000}}

	id := c.Put(run)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, clk.now(), run.CreatedAt)

	got, ok := c.Get(id)
	require.True(t, ok)
	assert.Same(t, run, got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestPutKeepsExistingID(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	assert.Equal(t, "fixed", c.Put(&Run{ID: "fixed"}))
	assert.Equal(t, 1, c.Len())
	assert.Empty(t, c.Put(nil))
}

func TestEntriesExpire(t *testing.T) {
	c, clk := newTestCache(time.Minute)
	id := c.Put(&Run{})
	clk.advance(30 * time.Second)
	other := c.Put(&Run{})

	clk.advance(31 * time.Second)
	_, ok := c.Get(id)
	assert.False(t, ok)
	_, ok = c.Get(other)
	assert.True(t, ok)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Zero(t, c.Len())
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *ResultCache
	assert.Empty(t, c.Put(&Run{}))
	_, ok := c.Get("x")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
	c.Clear()
}

func TestStartStopsWithContext(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
