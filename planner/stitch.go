package planner

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/flightstack/dynamic-trajectory-generator/polynomial"
	"github.com/flightstack/dynamic-trajectory-generator/waypoint"
)

// pendingSnapshot is what the worker drains from the waypoints lock before
// building the next deque to optimize (spec.md §4.2 step 2). Draining here
// means a failed optimization attempt discards this snapshot rather than
// retrying it verbatim: if the input itself was degenerate, retrying it
// unchanged would just fail again, and any new producer call re-arms dirty
// with fresh input anyway.
type pendingSnapshot struct {
	base waypoint.Deque
	// fromToBeSet records whether base came from to_be_set rather than
	// active: a to_be_set deque has never been optimized, so its
	// waypoints' AssignedSegmentTime is still the zero value and must not
	// be used to time-filter base against t_stitch (spec.md §4.3).
	fromToBeSet  bool
	toBeAppended waypoint.Deque
	modifiers    []waypoint.Modifier
}

func (p *Planner) snapshotPending() pendingSnapshot {
	p.waypointsMu.Lock()
	defer p.waypointsMu.Unlock()

	var base waypoint.Deque
	fromToBeSet := p.haveToBeSet
	if fromToBeSet {
		base = p.toBeSet.Clone()
		p.toBeSet = nil
		p.haveToBeSet = false
	} else {
		base = p.active.Clone()
	}
	appended := p.toBeAppended
	p.toBeAppended = nil
	mods := p.modifiers.Drain()

	return pendingSnapshot{base: base, fromToBeSet: fromToBeSet, toBeAppended: appended, modifiers: mods}
}

// stitchPlan is the deque to hand to the optimizer plus the bookkeeping the
// worker needs to install the result as a new trajectory (spec.md §4.3).
type stitchPlan struct {
	deque          waypoint.Deque
	newTOffset     float64
	hasDeadline    bool
	deadlineGlobal float64
}

// planNextDeque decides what to optimize next: a cold start seeded by the
// vehicle's last known pose when no trajectory has ever been generated, or
// a stitch seeded by sampling the currently executing trajectory at a
// security horizon ahead of "now" so the replacement is C2-continuous with
// what the vehicle is actually flying (spec.md §4.3, §4.4).
func (p *Planner) planNextDeque(snap pendingSnapshot, hasTrajectory bool) stitchPlan {
	var head waypoint.Waypoint
	var remaining waypoint.Deque
	var plan stitchPlan

	if !hasTrajectory {
		head = waypoint.New("__vehicle__", p.getVehiclePosition())
		remaining = snap.base
	} else {
		tNowGlobal, tNowLocal := p.currentEvaluationTime()
		horizon := p.cfg.StitchingSecurityHorizon.Seconds()
		tStitchLocal := tNowLocal + horizon
		tStitchGlobal := tNowGlobal + horizon

		sample, ok := p.sampleForStitch(tStitchLocal)
		if !ok {
			head = waypoint.New("__vehicle__", p.getVehiclePosition())
			remaining = snap.base
		} else {
			head = waypoint.New(newGenerationID(), sample.Position).
				WithVelocity(sample.Velocity).
				WithAcceleration(sample.Acceleration)

			if snap.fromToBeSet {
				// A freshly supplied replacement overrides the
				// "remaining" portion wholesale; it has no meaningful
				// cumulative local time to filter against yet, and
				// spec.md §4.3 calls for using it in full regardless.
				remaining = snap.base
			} else {
				cumulative := cumulativeLocalTimes(snap.base)
				remaining = waypoint.AfterLocalTime(snap.base, cumulative, tStitchLocal)
			}

			plan.hasDeadline = true
			plan.newTOffset = tStitchGlobal
			plan.deadlineGlobal = tStitchGlobal - horizon*(1-p.cfg.StitchingSafetyCoefficient)
		}
	}

	next := make(waypoint.Deque, 0, p.cfg.WaypointsAppendedFromStitching+len(remaining)+len(snap.toBeAppended))
	next = append(next, head)
	next = append(next, remaining...)
	next = append(next, snap.toBeAppended...)
	next = dropCoincidentHead(next)

	applyModifiers(next, snap.modifiers)
	plan.deque = next
	return plan
}

// dropCoincidentHead merges a synthetic seed vertex into the next waypoint
// and drops it when the two are at the same position: a zero-length
// leading segment has no time to assign and only exists here because the
// vehicle or stitch sample happened to already be sitting on top of the
// next real waypoint.
func dropCoincidentHead(d waypoint.Deque) waypoint.Deque {
	if len(d) < 2 {
		return d
	}
	if d[0].ActualPosition().Sub(d[1].ActualPosition()).Norm2() > 1e-12 {
		return d
	}
	if d[0].Velocity.Set && !d[1].Velocity.Set {
		d[1].Velocity = d[0].Velocity
	}
	if d[0].Acceleration.Set && !d[1].Acceleration.Set {
		d[1].Acceleration = d[0].Acceleration
	}
	return d[1:]
}

// currentEvaluationTime returns the most recent (t_global, t_local) pair
// observed through Evaluate, or (0, 0) before the first evaluation.
func (p *Planner) currentEvaluationTime() (float64, float64) {
	p.paramsMu.Lock()
	defer p.paramsMu.Unlock()
	if !p.params.haveEvaluated {
		return 0, 0
	}
	return p.params.lastGlobalTimeEvaluated, p.params.lastLocalTimeEvaluated
}

// applyModifiers bakes any pending ModifyWaypoint edits into next's target
// positions and clears the live offset those edits were driving, since the
// upcoming optimization will hit the new target directly (spec.md §4.6).
func applyModifiers(next waypoint.Deque, mods []waypoint.Modifier) {
	for _, m := range mods {
		if i := next.ByName(m.Name); i >= 0 {
			next[i].Position = waypoint.Constraint{Set: true, Value: m.Position}
			next[i].CurrentOffset = r3.Vector{}
		}
	}
}

// safeToSwap reports whether installing a stitched candidate is still
// within its safety margin: the candidate was computed assuming the splice
// happens at deadlineGlobal's underlying t_stitch, and optimization itself
// takes real time. If "now" has already eaten into the
// StitchingSafetyCoefficient margin before the deadline, the candidate is
// stale and must be discarded rather than installed (spec.md §4.4). A swap
// is also unsafe while "now" sits inside the configured security zone
// around any of the candidate's own waypoints.
func (p *Planner) safeToSwap(plan stitchPlan) bool {
	if p.withinSecurityZone(plan) {
		return false
	}
	if !plan.hasDeadline {
		return true
	}
	tNowGlobal, _ := p.currentEvaluationTime()
	return tNowGlobal < plan.deadlineGlobal
}

// withinSecurityZone reports whether "now" falls within SecurityZoneWidth
// of any waypoint in the candidate deque's local timeline (spec.md §4.4).
// SecurityZoneWidth defaults to 0, so this is a documented no-op hook
// until a nonzero width is configured (spec.md §9 open questions).
func (p *Planner) withinSecurityZone(plan stitchPlan) bool {
	width := p.cfg.SecurityZoneWidth
	if width <= 0 {
		return false
	}
	_, tNowLocal := p.currentEvaluationTime()
	for _, t := range cumulativeLocalTimes(plan.deque) {
		if math.Abs(t-tNowLocal) < width {
			return true
		}
	}
	return false
}

func buildVertices(d waypoint.Deque) []polynomial.Vertex {
	out := make([]polynomial.Vertex, len(d))
	for i, w := range d {
		v := polynomial.NewVertex(w.ActualPosition())
		if w.Velocity.Set {
			v = v.With(polynomial.Velocity, w.Velocity.Value)
		}
		if w.Acceleration.Set {
			v = v.With(polynomial.Acceleration, w.Acceleration.Value)
		}
		out[i] = v
	}
	return out
}
