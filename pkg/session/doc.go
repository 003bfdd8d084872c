// Package session tracks the cancellable background work of open dialogs.
//
// Each dialog instance owns one Session, and a Session runs at most one
// cancellable Task at a time: starting a new task first cancels and clears the
// previous one. A cancel event (usually a button provider) interrupts the task
// cooperatively through its context; computations are expected to poll
// ctx.Done() and return promptly. There are no timeouts unless the caller's
// context carries one.
package session
