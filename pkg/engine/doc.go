// Package engine wires a schema tree and a provider registry into a ready
// reactive form engine: bindings are resolved once, execution plans are cached
// per trigger signature and invocations run against caller-supplied lookups.
//
// Construction fails fast. Unless WithLazyPlans is given, the plan of every
// declared trigger is built by New, so cycles surface before the first event.
package engine
