// Package updates groups provider outputs into the result of one trigger
// invocation: value updates keyed by field Location and UI-state updates keyed
// by field Location and option name.
package updates
