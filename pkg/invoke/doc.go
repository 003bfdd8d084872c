// Package invoke executes one trigger event against its cached execution
// plan.
//
// Providers run strictly in plan order on the calling goroutine. Field
// dependencies are always read through the caller's Lookup, so a provider sees
// the values held before the invocation started even when an earlier step
// produced an update for the same field. Provider outputs are memoised per
// provider and element combination for the lifetime of one invocation.
//
// The element combinations a provider is evaluated for follow from the
// trigger's indices: the leading array levels shared with the trigger are
// pinned, every remaining level fans out over the current element count.
package invoke
