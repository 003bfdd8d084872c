package binding

import (
	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

// declaration is what one provider recorded.
type declaration struct {
	triggers    []trigger.Trigger
	reads       []provider.Read
	computeFrom []provider.ID
	scope       *location.Location
	scopeCalls  int
}

type recorder struct {
	decl *declaration
}

var _ provider.Recorder = (*recorder)(nil)

func (r *recorder) On(t trigger.Trigger) {
	if t == nil {
		return
	}
	r.addTrigger(t)
}

func (r *recorder) Read(ref provider.Ref, opts ...provider.ReadOption) provider.Handle {
	read := provider.Read{Ref: ref}
	for _, opt := range opts {
		if opt != nil {
			opt(&read)
		}
	}
	r.decl.reads = append(r.decl.reads, read)
	return provider.Handle(len(r.decl.reads) - 1)
}

func (r *recorder) ComputeOnValueChange(loc location.Location, opts ...provider.ReadOption) provider.Handle {
	r.addTrigger(trigger.Value(loc))
	return r.Read(provider.Field(loc), opts...)
}

func (r *recorder) ComputeFrom(id provider.ID, opts ...provider.ReadOption) provider.Handle {
	r.decl.computeFrom = append(r.decl.computeFrom, id)
	return r.Read(provider.Output(id), opts...)
}

func (r *recorder) Scope(loc location.Location) {
	r.decl.scopeCalls++
	scope := location.New(loc.Section, loc.Paths...)
	r.decl.scope = &scope
}

func (r *recorder) addTrigger(t trigger.Trigger) {
	sig := t.Signature()
	for _, existing := range r.decl.triggers {
		if existing.Signature() == sig {
			return
		}
	}
	r.decl.triggers = append(r.decl.triggers, t)
}
