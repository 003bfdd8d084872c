package plan

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-formflow/internal/ctxlog"
	"github.com/goliatone/go-formflow/pkg/binding"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

type entry struct {
	plan *Plan
	err  error
}

// Cache builds plans on first use and keeps them, failures included, for its
// whole lifetime. It is safe for concurrent use.
type Cache struct {
	set    *binding.Set
	mu     sync.RWMutex
	plans  map[trigger.Signature]entry
	group  singleflight.Group
	builds atomic.Int64
}

// NewCache returns an empty cache over set.
func NewCache(set *binding.Set) *Cache {
	return &Cache{set: set, plans: make(map[trigger.Signature]entry)}
}

// Get returns the plan of sig. ok is false when no provider listens to sig.
func (c *Cache) Get(ctx context.Context, sig trigger.Signature) (*Plan, bool, error) {
	if len(c.set.Direct(sig)) == 0 {
		return nil, false, nil
	}

	c.mu.RLock()
	cached, hit := c.plans[sig]
	c.mu.RUnlock()
	if hit {
		return cached.plan, true, cached.err
	}

	result, _, _ := c.group.Do(string(sig), func() (any, error) {
		c.mu.RLock()
		cached, hit := c.plans[sig]
		c.mu.RUnlock()
		if hit {
			return cached, nil
		}

		c.builds.Add(1)
		p, err := Build(c.set, sig)
		built := entry{plan: p, err: err}
		logger := ctxlog.FromContext(ctx)
		if err != nil {
			logger.Debug("plan build failed", "trigger", sig, "error", err)
		} else {
			logger.Debug("plan built", "trigger", sig, "providers", built.plan.IDs())
		}

		c.mu.Lock()
		c.plans[sig] = built
		c.mu.Unlock()
		return built, nil
	})
	stored := result.(entry)
	return stored.plan, true, stored.err
}

// Warm builds the plan of every declared trigger and returns every failure.
func (c *Cache) Warm(ctx context.Context) error {
	var errs []error
	for _, t := range c.set.Triggers() {
		if _, _, err := c.Get(ctx, t.Signature()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Builds reports how many plans were built so far.
func (c *Cache) Builds() int {
	return int(c.builds.Load())
}
