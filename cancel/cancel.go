// Package cancel provides a cooperative cancellation handle shared across a
// single solve. It is deliberately not a package-level global: each solve
// owns its own Handle, so that concurrently running solves (as in the
// scenario tests of spec.md section 8, or a library caller driving several
// solvers at once) never observe each other's cancellation.
package cancel

import "sync/atomic"

// Handle is a cheap, goroutine-safe cancellation flag. The zero value is a
// live (not cancelled) handle.
type Handle struct {
	flag atomic.Bool
}

// New returns a fresh, not-yet-cancelled Handle.
func New() *Handle { return &Handle{} }

// Cancel marks the handle cancelled. Idempotent; safe to call from a signal
// handler or a deadline timer concurrently with the solve itself.
func (h *Handle) Cancel() { h.flag.Store(true) }

// Cancelled reports whether Cancel has been called. It is a single atomic
// load; no channel is involved, so polling it in a hot loop is cheap.
func (h *Handle) Cancelled() bool { return h.flag.Load() }
