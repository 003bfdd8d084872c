// Package settings holds a fixed node-settings object and answers value and
// array-length lookups against it. It backs the deterministic simulation
// harness and tests; hosts with live form state implement the lookup
// themselves.
package settings
