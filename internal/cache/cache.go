package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tss-backtest/internal/backtest"
	"tss-backtest/internal/model"
)

// Run is a completed backtest kept for later retrieval by id.
type Run struct {
	ID        string
	CreatedAt time.Time
	Strategy  model.StrategyID
	Params    map[string]any
	Seed      uint64
	Result    *backtest.Result
}

type entry struct {
	run       *Run
	expiresAt time.Time
}

// ResultCache keeps backtest runs in memory for a fixed TTL.
//
// Runs are not persisted and are lost on restart.
type ResultCache struct {
	mu    sync.RWMutex
	store map[string]*entry
	ttl   time.Duration
	now   func() time.Time
}

func New(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultCache{
		store: make(map[string]*entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Put stores run, assigning an id and creation time when unset, and returns the id.
func (c *ResultCache) Put(run *Run) string {
	if c == nil || run == nil {
		return ""
	}
	now := c.now()
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[run.ID] = &entry{run: run, expiresAt: now.Add(c.ttl)}
	return run.ID
}

// Get retrieves a run if present and not expired.
func (c *ResultCache) Get(id string) (*Run, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.store[id]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.run, true
}

func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Clear removes all entries.
func (c *ResultCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]*entry)
}

// Sweep deletes expired entries and returns how many were removed.
func (c *ResultCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for id, e := range c.store {
		if now.After(e.expiresAt) {
			delete(c.store, id)
			n++
		}
	}
	return n
}

// Start sweeps every interval until ctx is done.
func (c *ResultCache) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}
