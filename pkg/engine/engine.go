package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formflow/internal/ctxlog"
	"github.com/goliatone/go-formflow/pkg/binding"
	"github.com/goliatone/go-formflow/pkg/invoke"
	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/plan"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/schematree"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/trigger"
	"github.com/goliatone/go-formflow/pkg/updates"
)

// Engine is the compiled form. It is immutable after New and safe for
// concurrent invocations from different dialog sessions.
type Engine struct {
	tree      *schematree.Tree
	set       *binding.Set
	plans     *plan.Cache
	handler   *invoke.Handler
	logger    *slog.Logger
	lazy      bool
	sanitized []string
}

// New resolves every provider of reg against tree and, unless WithLazyPlans
// is set, builds every trigger's plan.
func New(tree *schematree.Tree, reg *provider.Registry, options ...Option) (*Engine, error) {
	e := &Engine{tree: tree, logger: ctxlog.Discard()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}

	ctx := ctxlog.WithLogger(context.Background(), e.logger)
	set, err := binding.Resolve(ctx, tree, reg)
	if err != nil {
		return nil, err
	}
	e.set = set
	e.plans = plan.NewCache(set)

	var aggOpts []updates.Option
	if len(e.sanitized) > 0 {
		aggOpts = append(aggOpts, updates.WithSanitizedOptions(e.sanitized...))
	}
	e.handler = invoke.NewHandler(set, e.plans, aggOpts...)

	if !e.lazy {
		if err := e.plans.Warm(ctx); err != nil {
			return nil, err
		}
	}
	e.logger.Debug("engine ready",
		slog.Int("providers", len(set.Bindings())),
		slog.Int("triggers", len(set.Triggers())),
		slog.Bool("lazy", e.lazy),
	)
	return e, nil
}

// Tree returns the schema the engine was built for.
func (e *Engine) Tree() *schematree.Tree {
	return e.tree
}

// Bindings returns the resolved provider bindings.
func (e *Engine) Bindings() *binding.Set {
	return e.set
}

// Triggers lists every trigger some provider listens to.
func (e *Engine) Triggers() []trigger.Trigger {
	return e.set.Triggers()
}

// Plan returns the execution plan of t. ok is false when nothing listens to
// t.
func (e *Engine) Plan(ctx context.Context, t trigger.Trigger) (*plan.Plan, bool, error) {
	if t == nil {
		return nil, false, fmt.Errorf("engine: trigger is required")
	}
	return e.plans.Get(e.context(ctx), t.Signature())
}

// Invoke executes one trigger event.
func (e *Engine) Invoke(ctx context.Context, inv invoke.Invocation) (updates.Result, error) {
	return e.handler.Invoke(e.context(ctx), inv)
}

// FireOption customises Fire.
type FireOption func(*invoke.Invocation)

// WithIndices locates the element the event originated in.
func WithIndices(indices ...int) FireOption {
	return func(inv *invoke.Invocation) {
		inv.Indices = location.Index(indices).Clone()
	}
}

// WithContext hands ambient host data to providers.
func WithContext(value any) FireOption {
	return func(inv *invoke.Invocation) {
		inv.Context = value
	}
}

// WithSession attaches the dialog session owning cancellable work.
func WithSession(s *session.Session) FireOption {
	return func(inv *invoke.Invocation) {
		inv.Session = s
	}
}

// Fire is Invoke with the invocation assembled from options.
func (e *Engine) Fire(ctx context.Context, t trigger.Trigger, lookup invoke.Lookup, opts ...FireOption) (updates.Result, error) {
	inv := invoke.Invocation{Trigger: t, Lookup: lookup}
	for _, opt := range opts {
		if opt != nil {
			opt(&inv)
		}
	}
	return e.Invoke(ctx, inv)
}

func (e *Engine) context(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctxlog.Ensure(ctx, e.logger)
}
