// Package waypoint holds the dynamic waypoint and waypoint-deque model that
// the planner optimizes against. A Waypoint is mutable while it sits in the
// planner's pending buckets, and carries a running offset once it has been
// absorbed into an in-flight trajectory and is edited live via
// ModifyWaypoint.
package waypoint

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Constraint pins a single derivative (position, velocity or acceleration)
// of a waypoint to a fixed value. A Waypoint with no constraints at all is
// illegal (spec.md §3).
type Constraint struct {
	Set   bool
	Value r3.Vector
}

// Waypoint is a named (optionally) point in ℝ³ that an optimized trajectory
// must pass through, plus whatever derivative constraints the caller pinned
// and the live offset accumulated since the trajectory that absorbed it was
// generated.
type Waypoint struct {
	Name string

	Position     Constraint
	Velocity     Constraint
	Acceleration Constraint

	// AssignedSegmentTime is the duration from the previous waypoint to
	// this one, populated by the optimizer after a successful run.
	AssignedSegmentTime float64

	// CurrentOffset is how far this waypoint has drifted from its base
	// Position since the active trajectory was generated. It is applied
	// both as a live blend during evaluation (planner.Evaluate) and as the
	// base position fed to the next optimization run.
	CurrentOffset r3.Vector
}

// New builds a waypoint with only a position constraint, mirroring the most
// common construction the producer side uses.
func New(name string, position r3.Vector) Waypoint {
	return Waypoint{
		Name:     name,
		Position: Constraint{Set: true, Value: position},
	}
}

// WithVelocity returns a copy of w with its velocity constraint set.
func (w Waypoint) WithVelocity(v r3.Vector) Waypoint {
	w.Velocity = Constraint{Set: true, Value: v}
	return w
}

// WithAcceleration returns a copy of w with its acceleration constraint set.
func (w Waypoint) WithAcceleration(a r3.Vector) Waypoint {
	w.Acceleration = Constraint{Set: true, Value: a}
	return w
}

// ActualPosition is the base position plus whatever live offset has been
// accumulated on this waypoint.
func (w Waypoint) ActualPosition() r3.Vector {
	if !w.Position.Set {
		return w.CurrentOffset
	}
	return w.Position.Value.Add(w.CurrentOffset)
}

// HasAnyConstraint reports whether at least one derivative is pinned. A
// waypoint with none is illegal as an optimizer input (spec.md §3).
func (w Waypoint) HasAnyConstraint() bool {
	return w.Position.Set || w.Velocity.Set || w.Acceleration.Set
}

// Validate checks the invariants spec.md §3 places on a single waypoint.
func (w Waypoint) Validate() error {
	if !w.HasAnyConstraint() {
		return fmt.Errorf("waypoint %q: no constraints set", w.Name)
	}
	return nil
}
