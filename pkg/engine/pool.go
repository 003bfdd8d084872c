package engine

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-formflow/internal/ctxlog"
)

// CompileFunc builds the engine of the form with the given id.
type CompileFunc func(ctx context.Context, id string) (*Engine, error)

// Pool keeps the most recently used compiled engines. Concurrent requests for
// a form being compiled wait for the same compilation. Failures are not
// cached.
type Pool struct {
	cache   *lru.Cache[string, *Engine]
	compile CompileFunc
	group   singleflight.Group
}

// NewPool returns a pool holding at most size engines.
func NewPool(size int, compile CompileFunc) (*Pool, error) {
	if compile == nil {
		return nil, errors.New("engine: pool compile function is required")
	}
	cache, err := lru.New[string, *Engine](size)
	if err != nil {
		return nil, fmt.Errorf("engine: create pool: %w", err)
	}
	return &Pool{cache: cache, compile: compile}, nil
}

// Get returns the engine of id, compiling it on a miss.
func (p *Pool) Get(ctx context.Context, id string) (*Engine, error) {
	if e, ok := p.cache.Get(id); ok {
		return e, nil
	}
	result, err, shared := p.group.Do(id, func() (any, error) {
		if e, ok := p.cache.Get(id); ok {
			return e, nil
		}
		e, err := p.compile(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("engine: compile %q: %w", id, err)
		}
		if evicted := p.cache.Add(id, e); evicted {
			ctxlog.FromContext(ctx).Debug("engine pool evicted least recently used form")
		}
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("engine pool resolved", "form", id, "shared", shared)
	return result.(*Engine), nil
}

// Evict drops the engine of id, reporting whether it was cached.
func (p *Pool) Evict(id string) bool {
	return p.cache.Remove(id)
}

// Len reports how many engines are cached.
func (p *Pool) Len() int {
	return p.cache.Len()
}

// IDs lists the cached form ids, least recently used first.
func (p *Pool) IDs() []string {
	return p.cache.Keys()
}
