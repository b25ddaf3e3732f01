package polynomial

import "sync/atomic"

// Handle is the lifetime/sharing wrapper spec.md's component table calls
// the "Thread-Safe Trajectory Handle" (C3): a single atomically-swappable
// pointer to the current Trajectory, null-valued until the first
// successful optimization. One writer (the worker) publishes; any number
// of readers (the evaluator's fast path) load without ever blocking on the
// writer, replacing the source's mutex-and-copy approach with a
// single-writer/many-reader discipline (spec.md §9 "Shared mutable
// trajectory").
type Handle struct {
	ptr atomic.Pointer[Trajectory]
}

// Load returns the current trajectory and true, or (nil, false) if none
// has ever been published.
func (h *Handle) Load() (Trajectory, bool) {
	p := h.ptr.Load()
	if p == nil {
		return nil, false
	}
	return *p, true
}

// Store publishes traj as the current trajectory. Safe to call
// concurrently with any number of Load calls.
func (h *Handle) Store(traj Trajectory) {
	h.ptr.Store(&traj)
}

// IsSet reports whether a trajectory has ever been published.
func (h *Handle) IsSet() bool {
	return h.ptr.Load() != nil
}
