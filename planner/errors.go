package planner

import "errors"

// ErrNoTrajectory is logged internally when Evaluate or a stitch sample is
// attempted before any trajectory has ever been generated (spec.md §7.5).
// The public Evaluate contract reports this through its bool return rather
// than a returned error, but the sentinel lets logs distinguish this case
// from other failure paths with errors.Is.
var ErrNoTrajectory = errors.New("planner: no trajectory generated yet")

// ErrOptimizationFailed is joined with whatever the Optimizer returned on
// every failed optimization attempt, whether the worker then retries once or
// drops the pending change (spec.md §7.3).
var ErrOptimizationFailed = errors.New("planner: optimizer failed")

// ErrUnknownWaypointName is logged (never returned to the caller) when
// ModifyWaypoint names a waypoint absent from the active deque (spec.md
// §7.2).
var ErrUnknownWaypointName = errors.New("planner: unknown waypoint name")
