// Package planner implements the dynamic trajectory planner: the
// concurrent object that owns a current polynomial trajectory, schedules
// background regeneration when waypoints change, stitches a replacement
// trajectory to the one currently executing, atomically swaps it in when
// safe, and serves synchronous reference queries throughout (spec.md §1-§5,
// component C6/C7/C8).
package planner

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"

	"github.com/flightstack/dynamic-trajectory-generator/config"
	"github.com/flightstack/dynamic-trajectory-generator/polynomial"
	"github.com/flightstack/dynamic-trajectory-generator/waypoint"
)

// numericParameters bundles the f64 state spec.md §3 lists under "Numeric
// parameters", guarded by paramsMu. Lock ordering (spec.md §5):
// parameters ≺ waypoints ≺ trajectory.
type numericParameters struct {
	speed                          float64
	lastLocalTimeEvaluated         float64
	lastGlobalTimeEvaluated        float64
	tOffset                        float64
	globalTimeLastTrajectoryGenerated float64
	haveEvaluated                  bool
}

// Planner is the dynamic trajectory planner described in spec.md §4.1. A
// Planner is a value in the sense that it carries no package-level state;
// multiple Planners coexist independently (spec.md §9 "Global state: None").
// Construct with New and release resources with Close.
type Planner struct {
	cfg       config.Config
	clock     clock.Clock
	optimizer polynomial.Optimizer
	log       *logger

	// Trajectory swap "lock": an atomically swappable shared pointer
	// (spec.md §9), read by the evaluator fast path without blocking and
	// written only by the worker during a swap.
	traj polynomial.Handle

	// Waypoints lock: guards active/toBeSet/toBeAppended/modifiers.
	waypointsMu  sync.Mutex
	active       waypoint.Deque
	toBeSet      waypoint.Deque
	haveToBeSet  bool
	toBeAppended waypoint.Deque
	modifiers    *waypoint.Book

	// Parameters lock.
	paramsMu sync.Mutex
	params   numericParameters

	// Vehicle pose lock.
	poseMu          sync.Mutex
	vehiclePosition r3.Vector

	dirty       atomic.Bool
	regenerated atomic.Bool

	// optimizeFailures counts consecutive optimizer failures. Touched only
	// by the worker goroutine, so it needs no lock (spec.md §7.3: one
	// retry, then the pending change is cleared).
	optimizeFailures int

	stopCh chan struct{}
	wakeCh chan struct{}
	doneCh chan struct{}

	firstTrajMu sync.Mutex
	firstTrajCh chan struct{}
	firstTrajSet bool
}

// Option configures optional Planner behavior at construction time.
type Option func(*Planner)

// WithClock overrides the clock the background worker uses for its poll
// ticker. Tests inject clock.NewMock() to drive the worker deterministically
// instead of sleeping in wall-clock time; production code can leave this
// unset to get the real clock.
func WithClock(c clock.Clock) Option {
	return func(p *Planner) { p.clock = c }
}

// WithOptimizer overrides the default polynomial.MinimumJerkOptimizer.
func WithOptimizer(o polynomial.Optimizer) Option {
	return func(p *Planner) { p.optimizer = o }
}

// WithDebugLogging enables debug-level log lines from the worker loop.
func WithDebugLogging() Option {
	return func(p *Planner) { p.log.debug = true }
}

// New constructs a Planner and starts its background worker. Call Close
// when done to stop the worker.
func New(cfg config.Config, opts ...Option) *Planner {
	p := &Planner{
		cfg:         cfg,
		clock:       clock.New(),
		optimizer:   polynomial.MinimumJerkOptimizer{},
		log:         newLogger(false),
		modifiers:   waypoint.NewBook(),
		stopCh:      make(chan struct{}),
		wakeCh:      make(chan struct{}, 1),
		doneCh:      make(chan struct{}),
		firstTrajCh: make(chan struct{}),
	}
	p.params.speed = cfg.Speed

	for _, opt := range opts {
		opt(p)
	}

	go p.runWorker()
	return p
}

// Close stops the background worker and waits for it to exit. In-flight
// optimizer calls run to completion; their result is dropped (spec.md §5
// "Cancellation").
func (p *Planner) Close() {
	close(p.stopCh)
	<-p.doneCh
}

func (p *Planner) wake() {
	select {
	case p.wakeCh <- struct{}{}:
	default:
	}
}

// SetWaypoints queues a full replacement of the waypoint deque, discarding
// any previously queued appends, and triggers regeneration (spec.md §4.1).
// Rejected synchronously if fewer than two waypoints are given or the first
// lacks a position constraint (spec.md §7.1); planner state is unchanged
// on rejection.
func (p *Planner) SetWaypoints(ws waypoint.Deque) error {
	if err := ws.ValidateForOptimization(); err != nil {
		return err
	}

	p.waypointsMu.Lock()
	p.toBeSet = ws.Clone()
	p.haveToBeSet = true
	p.toBeAppended = nil
	p.waypointsMu.Unlock()

	p.dirty.Store(true)
	p.wake()
	return nil
}

// AppendWaypoint queues appending one waypoint to the tail; multiple calls
// accumulate until the next regeneration consumes them (spec.md §4.1).
func (p *Planner) AppendWaypoint(w waypoint.Waypoint) error {
	if err := w.Validate(); err != nil {
		return err
	}

	p.waypointsMu.Lock()
	p.toBeAppended = append(p.toBeAppended, w)
	p.waypointsMu.Unlock()

	p.dirty.Store(true)
	p.wake()
	return nil
}

// ModifyWaypoint queues a rename-based edit for the next regeneration and,
// on the fast path, applies it immediately as a live offset to the
// matching waypoint in the active deque so evaluations bend toward the new
// target before regeneration completes (spec.md §4.1, §5). An unknown name
// is logged and ignored, never an error (spec.md §7.2).
func (p *Planner) ModifyWaypoint(name string, position r3.Vector) {
	p.waypointsMu.Lock()
	if i := p.active.ByName(name); i >= 0 {
		base := p.active[i].Position.Value
		p.active[i].CurrentOffset = position.Sub(base)
	} else {
		p.log.warnf("modify_waypoint: %v", fmt.Errorf("%w: %q", ErrUnknownWaypointName, name))
	}
	p.modifiers.Put(name, position)
	p.waypointsMu.Unlock()

	p.dirty.Store(true)
	p.wake()
}

// SetSpeed sets the cruise speed and triggers regeneration. Rejected
// synchronously if v is not positive (spec.md §7.1).
func (p *Planner) SetSpeed(v float64) error {
	if v <= 0 {
		return waypoint.ErrNonPositiveSpeed
	}

	p.paramsMu.Lock()
	p.params.speed = v
	p.paramsMu.Unlock()

	p.dirty.Store(true)
	p.wake()
	return nil
}

// GetSpeed returns the current cruise speed.
func (p *Planner) GetSpeed() float64 {
	p.paramsMu.Lock()
	defer p.paramsMu.Unlock()
	return p.params.speed
}

// UpdateVehiclePosition publishes the current vehicle pose; the worker uses
// it to choose the initial vertex when no trajectory exists yet.
func (p *Planner) UpdateVehiclePosition(position r3.Vector) {
	p.poseMu.Lock()
	p.vehiclePosition = position
	p.poseMu.Unlock()
}

func (p *Planner) getVehiclePosition() r3.Vector {
	p.poseMu.Lock()
	defer p.poseMu.Unlock()
	return p.vehiclePosition
}

// WasRegenerated is a single-read edge flag: it returns true at most once
// per successful swap, then false until the next swap (spec.md §4.1, P6).
func (p *Planner) WasRegenerated() bool {
	return p.regenerated.CompareAndSwap(true, false)
}

// GetMinTime blocks until a first trajectory exists, then returns its
// global-time lower bound.
func (p *Planner) GetMinTime() float64 {
	p.waitForFirstTrajectory()
	traj, _ := p.traj.Load()
	return traj.MinTime() + p.getTOffset()
}

// GetMaxTime blocks until a first trajectory exists, then returns its
// global-time upper bound.
func (p *Planner) GetMaxTime() float64 {
	p.waitForFirstTrajectory()
	traj, _ := p.traj.Load()
	return traj.MaxTime() + p.getTOffset()
}

func (p *Planner) waitForFirstTrajectory() {
	p.firstTrajMu.Lock()
	ch := p.firstTrajCh
	p.firstTrajMu.Unlock()
	<-ch
}

func (p *Planner) markFirstTrajectoryReady() {
	p.firstTrajMu.Lock()
	defer p.firstTrajMu.Unlock()
	if !p.firstTrajSet {
		p.firstTrajSet = true
		close(p.firstTrajCh)
	}
}

func (p *Planner) getTOffset() float64 {
	p.paramsMu.Lock()
	defer p.paramsMu.Unlock()
	return p.params.tOffset
}

// newGenerationID tags one optimizer candidate for log correlation.
func newGenerationID() string {
	return uuid.NewString()
}
