package planner

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"

	"github.com/flightstack/dynamic-trajectory-generator/config"
	"github.com/flightstack/dynamic-trajectory-generator/waypoint"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.WorkerPollInterval = time.Millisecond
	cfg.StitchingSecurityHorizon = 100 * time.Millisecond
	return cfg
}

// waitForFirst blocks briefly on GetMinTime/GetMaxTime's internal
// channel without depending on wall-clock sleeps, by running the blocking
// call in a goroutine and advancing the mock clock until it returns.
func waitForFirst(t *testing.T, p *Planner, c *clock.Mock) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		p.waitForFirstTrajectory()
		close(done)
	}()
	for i := 0; i < 10000; i++ {
		select {
		case <-done:
			return
		default:
			c.Add(time.Millisecond)
		}
	}
	t.Fatal("timed out waiting for first trajectory")
}

// waitForRegeneration blocks until a regeneration has installed a new
// trajectory, driving the mock clock the same way waitForFirst does. Unlike
// WasRegenerated, it only observes the flag; it does not drain it.
func waitForRegeneration(t *testing.T, p *Planner, c *clock.Mock) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		if p.regenerated.Load() {
			return
		}
		c.Add(time.Millisecond)
	}
	t.Fatal("timed out waiting for regeneration")
}

func newTestPlanner(t *testing.T) (*Planner, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	p := New(testConfig(), WithClock(mock))
	t.Cleanup(p.Close)
	return p, mock
}

func TestSetWaypointsProducesTrajectory(t *testing.T) {
	p, mock := newTestPlanner(t)

	err := p.SetWaypoints(waypoint.Deque{
		waypoint.New("start", r3.Vector{X: 0, Y: 0, Z: 0}),
		waypoint.New("end", r3.Vector{X: 10, Y: 0, Z: 0}),
	})
	if err != nil {
		t.Fatalf("SetWaypoints() error = %v", err)
	}

	waitForFirst(t, p, mock)

	var refs References
	ok := p.Evaluate(p.GetMinTime(), &refs, false, false)
	if !ok {
		t.Fatal("Evaluate() at MinTime: want ok=true")
	}
	if got := refs.Position; !approxEqualVec(got, r3.Vector{X: 0, Y: 0, Z: 0}, 1e-3) {
		t.Errorf("Evaluate(MinTime).Position = %v; want origin-ish", got)
	}
}

func TestSetWaypointsRejectsTooFew(t *testing.T) {
	p, _ := newTestPlanner(t)
	err := p.SetWaypoints(waypoint.Deque{waypoint.New("only", r3.Vector{})})
	if err == nil {
		t.Error("SetWaypoints() with one waypoint: want error, got nil")
	}
}

func TestSetSpeedRejectsNonPositive(t *testing.T) {
	p, _ := newTestPlanner(t)
	if err := p.SetSpeed(0); err == nil {
		t.Error("SetSpeed(0): want error, got nil")
	}
	if err := p.SetSpeed(-1); err == nil {
		t.Error("SetSpeed(-1): want error, got nil")
	}
}

func TestWasRegeneratedFiresOnceThenClears(t *testing.T) {
	p, mock := newTestPlanner(t)
	if err := p.SetWaypoints(waypoint.Deque{
		waypoint.New("a", r3.Vector{X: 0}),
		waypoint.New("b", r3.Vector{X: 1}),
	}); err != nil {
		t.Fatalf("SetWaypoints() error = %v", err)
	}
	waitForFirst(t, p, mock)

	if !p.WasRegenerated() {
		t.Error("WasRegenerated() after first swap: want true")
	}
	if p.WasRegenerated() {
		t.Error("WasRegenerated() called again immediately: want false")
	}
}

func TestModifyWaypointAppliesLiveOffsetImmediately(t *testing.T) {
	p, mock := newTestPlanner(t)
	if err := p.SetWaypoints(waypoint.Deque{
		waypoint.New("a", r3.Vector{X: 0, Y: 0, Z: 0}),
		waypoint.New("b", r3.Vector{X: 10, Y: 0, Z: 0}),
	}); err != nil {
		t.Fatalf("SetWaypoints() error = %v", err)
	}
	waitForFirst(t, p, mock)

	p.ModifyWaypoint("b", r3.Vector{X: 10, Y: 5, Z: 0})

	p.waypointsMu.Lock()
	idx := p.active.ByName("b")
	offset := p.active[idx].CurrentOffset
	p.waypointsMu.Unlock()

	if idx < 0 {
		t.Fatal("active deque lost waypoint \"b\" after ModifyWaypoint")
	}
	if !approxEqualVec(offset, r3.Vector{X: 0, Y: 5, Z: 0}, 1e-9) {
		t.Errorf("CurrentOffset = %v; want {0,5,0}", offset)
	}
}

func TestModifyWaypointUnknownNameIsIgnored(t *testing.T) {
	p, mock := newTestPlanner(t)
	if err := p.SetWaypoints(waypoint.Deque{
		waypoint.New("a", r3.Vector{X: 0}),
		waypoint.New("b", r3.Vector{X: 1}),
	}); err != nil {
		t.Fatalf("SetWaypoints() error = %v", err)
	}
	waitForFirst(t, p, mock)

	// Must not panic or block; unknown names are logged and dropped.
	p.ModifyWaypoint("does-not-exist", r3.Vector{X: 99})
}

func approxEqualVec(a, b r3.Vector, eps float64) bool {
	d := a.Sub(b)
	return d.X*d.X+d.Y*d.Y+d.Z*d.Z <= eps*eps
}
