package waypoint

import "github.com/samber/lo"

// Deque is the ordered sequence of waypoints a trajectory is optimized
// against. The head of the deque is the time-earliest target. It mirrors
// the C++ source's dynamic_traj_generator::DynamicWaypoint::Deque, realized
// as a slice: this module only ever appends to the tail and filters by
// predicate, never needs push-front, so a slice is the idiomatic Go
// substitute for a two-ended C++ container here.
type Deque []Waypoint

// Clone returns an independent copy so callers can hand a Deque to the
// worker without it aliasing planner-owned state.
func (d Deque) Clone() Deque {
	out := make(Deque, len(d))
	copy(out, d)
	return out
}

// ValidateForOptimization enforces spec.md §3/§4.1: an optimizable deque
// needs at least two waypoints and the first one must carry a position
// constraint.
func (d Deque) ValidateForOptimization() error {
	if len(d) < 2 {
		return ErrTooFewWaypoints
	}
	if !d[0].Position.Set {
		return ErrMissingPositionConstraint
	}
	for _, w := range d {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ByName returns the index of the waypoint named n, or -1.
func (d Deque) ByName(n string) int {
	for i := range d {
		if d[i].Name == n && n != "" {
			return i
		}
	}
	return -1
}

// Names returns the set of non-empty waypoint names in the deque, used to
// detect which previously-active names survive into a freshly composed
// next_deque (spec.md §4.6 item 3).
func (d Deque) Names() map[string]struct{} {
	out := make(map[string]struct{}, len(d))
	for _, w := range d {
		if w.Name != "" {
			out[w.Name] = struct{}{}
		}
	}
	return out
}

// Positions returns each waypoint's ActualPosition (base position plus live
// offset) in order, the shape the segment-time estimator consumes.
func (d Deque) Positions() [][3]float64 {
	return lo.Map(d, func(w Waypoint, _ int) [3]float64 {
		p := w.ActualPosition()
		return [3]float64{p.X, p.Y, p.Z}
	})
}

// AfterLocalTime returns the sub-deque of waypoints whose assigned segment
// time (cumulative) is strictly greater than t, i.e. the waypoints a
// stitched trajectory still has ahead of it. cumulative holds, per index,
// the running local time at which that waypoint is reached; it is produced
// by the caller from the optimizer's assigned segment times since Deque
// itself has no notion of cumulative time.
func AfterLocalTime(d Deque, cumulative []float64, t float64) Deque {
	return lo.Filter(d, func(_ Waypoint, i int) bool {
		return i < len(cumulative) && cumulative[i] > t
	})
}
