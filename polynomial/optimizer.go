package polynomial

import "math"

// Optimizer is the external collaborator spec.md §6 describes: given an
// ordered vertex list, a per-segment time vector, the derivative order to
// optimize, and the spatial dimension, it synthesizes a Trajectory. This
// module never re-derives the optimization math beyond the one default
// implementation below (MinimumJerkOptimizer) — any conforming
// implementation, including one backed by a real flight-stack solver, can
// be swapped in through this interface.
type Optimizer interface {
	Optimize(vertices []Vertex, segmentTimes []float64, derivativeToOptimize, dimension int) (Trajectory, error)
}

// EstimateSegmentTimes assigns each segment a duration long enough to cover
// its distance at vMax without exceeding aMax during the accelerate/cruise/
// decelerate phases, following the trapezoidal-velocity-profile timing model
// (the same shape as a triangular/trapezoidal motion profile used for
// single-axis motor moves, generalized here to the straight-line distance
// between consecutive ℝ³ positions).
func EstimateSegmentTimes(positions [][3]float64, vMax, aMax float64) []float64 {
	if len(positions) < 2 {
		return nil
	}
	times := make([]float64, len(positions)-1)
	for i := 0; i < len(positions)-1; i++ {
		d := distance(positions[i], positions[i+1])
		times[i] = segmentTime(d, vMax, aMax)
	}
	return times
}

func distance(a, b [3]float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// segmentTime computes the duration of a trapezoidal (or, if the segment is
// too short to reach vMax, triangular) velocity profile over distance d.
func segmentTime(d, vMax, aMax float64) float64 {
	if d <= 0 {
		return 0
	}
	if vMax <= 0 {
		vMax = 1
	}
	if aMax <= 0 {
		aMax = 1
	}

	timeToMaxVel := vMax / aMax
	distAccelDecel := vMax * timeToMaxVel

	if distAccelDecel > d {
		// Triangular profile: never reaches vMax.
		cruiseVel := math.Sqrt(aMax * d)
		accelTime := cruiseVel / aMax
		return 2 * accelTime
	}

	cruiseTime := (d - distAccelDecel) / vMax
	return 2*timeToMaxVel + cruiseTime
}
