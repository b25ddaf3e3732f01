// Package polynomial defines the minimal interface the planner expects of
// an optimized trajectory and its optimizer (C1/C2 in spec.md's component
// table), plus one concrete, swappable implementation of each so the
// module is runnable end to end without depending on an external flight
// stack's polynomial QP solver.
package polynomial

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Derivative order constants, matching spec.md §6's "derivative-to-optimize"
// values.
const (
	Position     = 0
	Velocity     = 1
	Acceleration = 2
	Jerk         = 3
	Snap         = 4
)

// Trajectory is an immutable, time-parameterized piecewise polynomial in
// ℝ³. Implementations must be safe for concurrent read access: the planner
// shares one instance between the evaluator's hot path and the worker
// during a swap.
type Trajectory interface {
	MinTime() float64
	MaxTime() float64
	// Evaluate samples the given derivative order at local time t. t is not
	// required to be clamped by the implementation; callers clamp before
	// calling (spec.md §4.5).
	Evaluate(t float64, derivative int) (r3.Vector, error)
}

// Vertex is one optimizer-input constraint set: for each derivative order
// present in Constraints, the optimizer treats that derivative as pinned at
// this vertex.
type Vertex struct {
	Constraints map[int]r3.Vector
}

// NewVertex builds a vertex with only a position constraint.
func NewVertex(position r3.Vector) Vertex {
	return Vertex{Constraints: map[int]r3.Vector{Position: position}}
}

// With returns a copy of v with the given derivative pinned.
func (v Vertex) With(derivative int, value r3.Vector) Vertex {
	out := Vertex{Constraints: make(map[int]r3.Vector, len(v.Constraints)+1)}
	for k, val := range v.Constraints {
		out.Constraints[k] = val
	}
	out.Constraints[derivative] = value
	return out
}

// Has reports whether derivative is pinned on this vertex.
func (v Vertex) Has(derivative int) (r3.Vector, bool) {
	val, ok := v.Constraints[derivative]
	return val, ok
}

// ErrOutOfRange is returned by Evaluate when t falls outside [MinTime(),
// MaxTime()] and the implementation chooses not to silently clamp.
type ErrOutOfRange struct {
	T, Min, Max float64
}

func (e ErrOutOfRange) Error() string {
	return fmt.Sprintf("polynomial: t=%.6f out of range [%.6f, %.6f]", e.T, e.Min, e.Max)
}
