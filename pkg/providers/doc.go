// Package providers offers ready-made provider implementations for the common
// cases: constants, copies, rule-driven visibility, aggregates over repeated
// sections, choice lists, and cancellable background work.
package providers
