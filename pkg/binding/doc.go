// Package binding runs the declaration phase of every registered provider and
// turns what they recorded into immutable bindings: the field each provider
// supplies, the triggers that invoke it directly, and the fields or provider
// outputs it reads.
//
// Every reference is checked against the schema tree while resolving, so an
// execution plan built from a Set never meets a dangling dependency. All
// problems found are reported together as ConfigError values.
package binding
