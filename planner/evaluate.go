package planner

import (
	"github.com/golang/geo/r3"

	"github.com/flightstack/dynamic-trajectory-generator/polynomial"
	"github.com/flightstack/dynamic-trajectory-generator/waypoint"
)

// Evaluate implements the consumer contract's evaluate(t_global, &refs,
// only_positions, for_plotting) -> bool (spec.md §4.5, §6, and the
// for_plotting flag from original_source/'s evaluateTrajectory). It never
// blocks on the worker: it loads the current trajectory pointer
// atomically, samples it, and blends in any live waypoint offsets.
func (p *Planner) Evaluate(tGlobal float64, out *References, onlyPositions, forPlotting bool) bool {
	traj, ok := p.traj.Load()
	if !ok {
		p.log.debugf("evaluate: %v", ErrNoTrajectory)
		return false
	}

	tOffset := p.getTOffset()
	tLocal := clampToDomain(tGlobal-tOffset, traj)

	pos, err := traj.Evaluate(tLocal, polynomial.Position)
	if err != nil {
		return false
	}
	blend := p.modifierBlend(tLocal)

	orders := []int{polynomial.Position}
	if !onlyPositions {
		orders = append(orders, polynomial.Velocity, polynomial.Acceleration)
	}
	for _, order := range orders {
		ref, err := out.At(order)
		if err != nil {
			continue
		}
		if order == polynomial.Position {
			*ref = pos.Add(blend)
			continue
		}
		if v, err := traj.Evaluate(tLocal, order); err == nil {
			*ref = v
		}
	}

	if !forPlotting {
		p.advanceWatermark(tGlobal, tLocal)
	}
	return true
}

// sampleForStitch samples the currently loaded trajectory plus modifier
// blending at local time t, clamped to the trajectory's domain, without
// touching the evaluation watermark. The worker uses this to seed a new
// optimization with the position/velocity/acceleration the vehicle will
// actually be at when the stitch takes effect (spec.md §4.3).
func (p *Planner) sampleForStitch(t float64) (References, bool) {
	traj, ok := p.traj.Load()
	if !ok {
		p.log.debugf("stitch sample: %v", ErrNoTrajectory)
		return References{}, false
	}
	tLocal := clampToDomain(t, traj)

	var refs References
	pos, err := traj.Evaluate(tLocal, polynomial.Position)
	if err != nil {
		return References{}, false
	}
	blend := p.modifierBlend(tLocal)
	for _, order := range []int{polynomial.Position, polynomial.Velocity, polynomial.Acceleration} {
		ref, _ := refs.At(order)
		if order == polynomial.Position {
			*ref = pos.Add(blend)
			continue
		}
		if v, err := traj.Evaluate(tLocal, order); err == nil {
			*ref = v
		}
	}
	return refs, true
}

func clampToDomain(t float64, traj polynomial.Trajectory) float64 {
	if t < traj.MinTime() {
		return traj.MinTime()
	}
	if t > traj.MaxTime() {
		return traj.MaxTime()
	}
	return t
}

// advanceWatermark updates last_local/global_time_evaluated only when t_g
// advances beyond the prior watermark (spec.md §4.5, P1). Evaluating at an
// earlier t_g than previously seen is permitted (e.g. for plotting) but
// never moves the watermark backwards.
func (p *Planner) advanceWatermark(tGlobal, tLocal float64) {
	p.paramsMu.Lock()
	defer p.paramsMu.Unlock()
	if !p.params.haveEvaluated || tGlobal > p.params.lastGlobalTimeEvaluated {
		p.params.lastGlobalTimeEvaluated = tGlobal
		p.params.lastLocalTimeEvaluated = tLocal
		p.params.haveEvaluated = true
	}
}

// modifierBlend computes the sum of each in-flight waypoint's offset
// weighted by its compact bump influence at local time t (spec.md §4.5).
func (p *Planner) modifierBlend(t float64) r3.Vector {
	p.waypointsMu.Lock()
	defer p.waypointsMu.Unlock()

	if len(p.active) == 0 {
		return r3.Vector{}
	}
	cumulative := cumulativeLocalTimes(p.active)

	var blend r3.Vector
	for i, w := range p.active {
		if w.CurrentOffset == (r3.Vector{}) {
			continue
		}
		weight := bumpInfluence(cumulative, i, t)
		if weight == 0 {
			continue
		}
		blend = blend.Add(w.CurrentOffset.Mul(weight))
	}
	return blend
}

// cumulativeLocalTimes returns, for each waypoint in d, the local time at
// which the optimizer's trajectory reaches it: 0 for the head, and a
// running sum of AssignedSegmentTime thereafter.
func cumulativeLocalTimes(d waypoint.Deque) []float64 {
	out := make([]float64, len(d))
	for i := range d {
		if i == 0 {
			out[i] = 0
			continue
		}
		out[i] = out[i-1] + d[i].AssignedSegmentTime
	}
	return out
}

// bumpInfluence is φ_i(t): 1 at waypoint i's own local time, smoothly
// falling to 0 at the neighboring waypoints' local times (the far ends of
// its two adjacent segments), and 0 everywhere outside that window
// (spec.md §4.5). The head and tail have a one-sided window.
func bumpInfluence(cumulative []float64, i int, t float64) float64 {
	center := cumulative[i]
	left := center
	if i > 0 {
		left = cumulative[i-1]
	}
	right := center
	if i < len(cumulative)-1 {
		right = cumulative[i+1]
	}

	switch {
	case t == center:
		return 1
	case t <= left || t >= right:
		return 0
	case t <= center:
		if center == left {
			return 1
		}
		return smoothstep((t - left) / (center - left))
	default:
		if right == center {
			return 1
		}
		return smoothstep((right - t) / (right - center))
	}
}

// smoothstep is the classic 3x²-2x³ Hermite smoothstep on [0,1].
func smoothstep(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return x * x * (3 - 2*x)
}
