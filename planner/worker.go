package planner

import (
	"errors"

	"github.com/flightstack/dynamic-trajectory-generator/polynomial"
)

// runWorker is the sole background goroutine a Planner owns (component C8,
// spec.md §4.2): it wakes on an explicit nudge or its poll interval,
// claims the dirty flag, and attempts one regeneration. It never holds the
// waypoints or trajectory locks while the optimizer runs.
func (p *Planner) runWorker() {
	defer close(p.doneCh)

	ticker := p.clock.Ticker(p.cfg.WorkerPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-p.wakeCh:
		case <-ticker.C:
		}

		if !p.dirty.CompareAndSwap(true, false) {
			continue
		}
		p.regenerate()
	}
}

// regenerate performs one full attempt: snapshot pending producer input,
// decide the deque to optimize (cold start or stitch), run the optimizer
// outside any lock, and install the result if it is still safe to do so
// (spec.md §4.2-§4.4). An unsafe swap or a first optimizer failure re-arms
// dirty so the next poll retries with whatever the producers have queued in
// the meantime; a second consecutive optimizer failure drops the pending
// change without re-arming, and a deque that is still too small to optimize
// is left alone until a producer adds more.
func (p *Planner) regenerate() {
	genID := newGenerationID()
	hasTraj := p.traj.IsSet()

	snap := p.snapshotPending()
	plan := p.planNextDeque(snap, hasTraj)

	if err := plan.deque.ValidateForOptimization(); err != nil {
		p.log.debugf("regen %s: not enough waypoints yet (%v), waiting for more input", genID, err)
		return
	}
	logDroppedNames(p.log, genID, snap.base.Names(), plan.deque.Names())

	segmentTimes := polynomial.EstimateSegmentTimes(plan.deque.Positions(), p.GetSpeed(), p.cfg.MaxAcceleration)
	for i := 1; i < len(plan.deque); i++ {
		plan.deque[i].AssignedSegmentTime = segmentTimes[i-1]
	}
	vertices := buildVertices(plan.deque)

	traj, err := p.optimizer.Optimize(vertices, segmentTimes, p.cfg.DerivativeToOptimize, 3)
	if err != nil {
		wrapped := errors.Join(ErrOptimizationFailed, err)
		p.optimizeFailures++
		if p.optimizeFailures >= 2 {
			p.log.errorf("regen %s: optimizer failed twice over %d waypoints, dropping pending change: %v", genID, len(plan.deque), wrapped)
			p.optimizeFailures = 0
			return
		}
		p.log.warnf("regen %s: optimizer failed over %d waypoints, retrying once: %v", genID, len(plan.deque), wrapped)
		p.dirty.Store(true)
		return
	}
	p.optimizeFailures = 0

	if pp, ok := traj.(*polynomial.PiecewisePolynomial); ok {
		if authoritative := pp.SegmentTimes(); len(authoritative) == len(plan.deque)-1 {
			for i := 1; i < len(plan.deque); i++ {
				plan.deque[i].AssignedSegmentTime = authoritative[i-1]
			}
		}
	}

	if hasTraj && !p.safeToSwap(plan) {
		p.log.warnf("regen %s: discarding candidate, past stitching safety deadline, requesting fresh stitch", genID)
		p.dirty.Store(true)
		return
	}

	p.install(plan, traj)
	p.log.infof("regen %s: installed trajectory over %d waypoints, t_offset=%.3f", genID, len(plan.deque), plan.newTOffset)
}

// install swaps the new trajectory into the handle, advances the
// local-to-global time offset, replaces the active deque, and flips the
// regenerated/first-trajectory flags consumers poll (spec.md §4.1, P6).
func (p *Planner) install(plan stitchPlan, traj polynomial.Trajectory) {
	p.waypointsMu.Lock()
	p.active = plan.deque
	p.waypointsMu.Unlock()

	if plan.hasDeadline {
		p.paramsMu.Lock()
		p.params.tOffset = plan.newTOffset
		p.params.globalTimeLastTrajectoryGenerated = plan.newTOffset
		p.paramsMu.Unlock()
	}

	p.traj.Store(traj)
	p.regenerated.Store(true)
	p.markFirstTrajectoryReady()
}

// logDroppedNames logs any named waypoint present in before but absent from
// after, e.g. a name that fell out of the "remaining" portion during
// stitching because the trajectory already passed it (spec.md §4.6 item 3).
func logDroppedNames(log *logger, genID string, before, after map[string]struct{}) {
	for name := range before {
		if _, ok := after[name]; !ok {
			log.debugf("regen %s: waypoint %q no longer present in next deque", genID, name)
		}
	}
}
