package polynomial

import (
	"github.com/golang/geo/r3"
)

// PiecewisePolynomial is the Trajectory implementation produced by
// MinimumJerkOptimizer: a sequence of quintic segments, each valid over its
// own local [0, duration] window, concatenated into one [0, MaxTime()]
// domain.
type PiecewisePolynomial struct {
	segments     []quinticSegment
	segmentTimes []float64
}

var _ Trajectory = (*PiecewisePolynomial)(nil)

// MinTime implements Trajectory.
func (p *PiecewisePolynomial) MinTime() float64 { return 0 }

// MaxTime implements Trajectory.
func (p *PiecewisePolynomial) MaxTime() float64 {
	var total float64
	for _, st := range p.segmentTimes {
		total += st
	}
	return total
}

// SegmentTimes returns the per-segment durations the optimizer assigned, in
// order. The planner uses these as the waypoints' AssignedSegmentTime.
func (p *PiecewisePolynomial) SegmentTimes() []float64 {
	return append([]float64{}, p.segmentTimes...)
}

// Evaluate implements Trajectory. t outside [MinTime(), MaxTime()] yields
// ErrOutOfRange; callers that want to sample past the end (e.g. the
// evaluator holding position after the last waypoint) are expected to
// clamp t themselves, per spec.md §4.5.
func (p *PiecewisePolynomial) Evaluate(t float64, derivative int) (r3.Vector, error) {
	if len(p.segments) == 0 {
		return r3.Vector{}, ErrOutOfRange{T: t, Min: 0, Max: 0}
	}
	if t < 0 || t > p.MaxTime() {
		return r3.Vector{}, ErrOutOfRange{T: t, Min: 0, Max: p.MaxTime()}
	}

	local := t
	for i, seg := range p.segments {
		if local <= seg.duration || i == len(p.segments)-1 {
			if local > seg.duration {
				local = seg.duration
			}
			return seg.evaluate(local, derivative), nil
		}
		local -= seg.duration
	}
	// Unreachable given the range check above.
	last := p.segments[len(p.segments)-1]
	return last.evaluate(last.duration, derivative), nil
}
