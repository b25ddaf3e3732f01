package planner

import (
	"testing"

	"github.com/golang/geo/r3"

	"github.com/flightstack/dynamic-trajectory-generator/polynomial"
	"github.com/flightstack/dynamic-trajectory-generator/waypoint"
)

// TestSetWaypointsWhileFlyingReplacesWholesale is the regression test for the
// to_be_set/AssignedSegmentTime bug: a fresh SetWaypoints call must replace
// the in-flight route in full, prefixed only by the stitch head, never
// time-filtered against a timeline it has no AssignedSegmentTime on yet
// (spec.md §4.3).
func TestSetWaypointsWhileFlyingReplacesWholesale(t *testing.T) {
	p, mock := newTestPlanner(t)
	if err := p.SetWaypoints(waypoint.Deque{
		waypoint.New("a1", r3.Vector{X: 0, Y: 0, Z: 0}),
		waypoint.New("a2", r3.Vector{X: 10, Y: 0, Z: 0}),
		waypoint.New("a3", r3.Vector{X: 20, Y: 0, Z: 0}),
	}); err != nil {
		t.Fatalf("SetWaypoints() error = %v", err)
	}
	waitForFirst(t, p, mock)
	p.WasRegenerated()

	if err := p.SetWaypoints(waypoint.Deque{
		waypoint.New("b1", r3.Vector{X: 0, Y: 20, Z: 0}),
		waypoint.New("b2", r3.Vector{X: 10, Y: 20, Z: 0}),
		waypoint.New("b3", r3.Vector{X: 20, Y: 20, Z: 0}),
	}); err != nil {
		t.Fatalf("second SetWaypoints() error = %v", err)
	}
	waitForRegeneration(t, p, mock)

	p.waypointsMu.Lock()
	defer p.waypointsMu.Unlock()

	if len(p.active) < 3 {
		t.Fatalf("active deque has %d waypoints after wholesale replace while flying; want the full replacement plus a stitch head", len(p.active))
	}
	for _, name := range []string{"b1", "b2", "b3"} {
		if p.active.ByName(name) < 0 {
			t.Errorf("active deque missing %q after wholesale SetWaypoints while flying", name)
		}
	}
	for _, name := range []string{"a1", "a2", "a3"} {
		if p.active.ByName(name) >= 0 {
			t.Errorf("active deque still has stale %q after wholesale replace", name)
		}
	}
}

// TestAppendWaypointWhileFlyingIsContinuousAcrossSwap exercises the
// stitching path end to end and checks the property spec.md calls out as
// the hard engineering: position, velocity and acceleration must agree
// across the swap at the stitch instant (spec.md §4.3, §4.4).
func TestAppendWaypointWhileFlyingIsContinuousAcrossSwap(t *testing.T) {
	p, mock := newTestPlanner(t)
	if err := p.SetWaypoints(waypoint.Deque{
		waypoint.New("a", r3.Vector{X: 0, Y: 0, Z: 0}),
		waypoint.New("b", r3.Vector{X: 10, Y: 0, Z: 0}),
		waypoint.New("c", r3.Vector{X: 20, Y: 5, Z: 0}),
	}); err != nil {
		t.Fatalf("SetWaypoints() error = %v", err)
	}
	waitForFirst(t, p, mock)
	p.WasRegenerated()

	oldTraj, ok := p.traj.Load()
	if !ok {
		t.Fatal("traj.Load() after first swap: want ok=true")
	}

	// No Evaluate call has happened yet, so the next regeneration's stitch
	// instant lands exactly at the configured security horizon past t=0
	// (testConfig's 100ms).
	const tLocal = 0.1
	wantPos, err := oldTraj.Evaluate(tLocal, polynomial.Position)
	if err != nil {
		t.Fatalf("oldTraj.Evaluate(position) error = %v", err)
	}
	wantVel, err := oldTraj.Evaluate(tLocal, polynomial.Velocity)
	if err != nil {
		t.Fatalf("oldTraj.Evaluate(velocity) error = %v", err)
	}
	wantAcc, err := oldTraj.Evaluate(tLocal, polynomial.Acceleration)
	if err != nil {
		t.Fatalf("oldTraj.Evaluate(acceleration) error = %v", err)
	}

	if err := p.AppendWaypoint(waypoint.New("d", r3.Vector{X: 30, Y: 5, Z: 5})); err != nil {
		t.Fatalf("AppendWaypoint() error = %v", err)
	}
	waitForRegeneration(t, p, mock)

	tStitchGlobal := p.getTOffset()

	var got References
	if !p.Evaluate(tStitchGlobal, &got, false, true) {
		t.Fatal("Evaluate() at stitch instant: want ok=true")
	}

	const eps = 1e-6
	if !approxEqualVec(got.Position, wantPos, eps) {
		t.Errorf("position at stitch instant = %v; want %v (continuity break)", got.Position, wantPos)
	}
	if !approxEqualVec(got.Velocity, wantVel, eps) {
		t.Errorf("velocity at stitch instant = %v; want %v (continuity break)", got.Velocity, wantVel)
	}
	if !approxEqualVec(got.Acceleration, wantAcc, eps) {
		t.Errorf("acceleration at stitch instant = %v; want %v (continuity break)", got.Acceleration, wantAcc)
	}
}

// TestDropCoincidentHeadMergesZeroLengthLeadingSegment exercises the
// dropCoincidentHead helper directly: a synthetic head sitting exactly on
// top of the next waypoint must be merged away rather than left as a
// zero-duration segment.
func TestDropCoincidentHeadMergesZeroLengthLeadingSegment(t *testing.T) {
	d := waypoint.Deque{
		waypoint.New("__vehicle__", r3.Vector{X: 5, Y: 5, Z: 5}),
		waypoint.New("w1", r3.Vector{X: 5, Y: 5, Z: 5}).WithVelocity(r3.Vector{X: 1, Y: 0, Z: 0}),
		waypoint.New("w2", r3.Vector{X: 10, Y: 5, Z: 5}),
	}
	out := dropCoincidentHead(d)
	if len(out) != 2 {
		t.Fatalf("dropCoincidentHead() length = %d; want 2", len(out))
	}
	if out[0].Name != "w1" {
		t.Errorf("dropCoincidentHead() head = %q; want %q", out[0].Name, "w1")
	}
	if !out[0].Velocity.Set {
		t.Error("dropCoincidentHead() should not have touched w1's already-set velocity constraint")
	}
}

// TestPlanNextDequeColdStartSeedsFromVehiclePosition exercises the cold
// start branch of planNextDeque without going through the worker.
func TestPlanNextDequeColdStartSeedsFromVehiclePosition(t *testing.T) {
	p, _ := newTestPlanner(t)
	p.UpdateVehiclePosition(r3.Vector{X: 1, Y: 2, Z: 3})

	snap := pendingSnapshot{base: waypoint.Deque{
		waypoint.New("w1", r3.Vector{X: 10, Y: 0, Z: 0}),
		waypoint.New("w2", r3.Vector{X: 20, Y: 0, Z: 0}),
	}}
	plan := p.planNextDeque(snap, false)

	if plan.hasDeadline {
		t.Error("cold-start plan: hasDeadline = true; want false")
	}
	if len(plan.deque) == 0 || plan.deque[0].Name != "__vehicle__" {
		t.Fatalf("cold-start plan head = %+v; want synthetic __vehicle__ waypoint", plan.deque)
	}
	if got := plan.deque[0].ActualPosition(); got != (r3.Vector{X: 1, Y: 2, Z: 3}) {
		t.Errorf("cold-start plan head position = %v; want vehicle position", got)
	}
}
