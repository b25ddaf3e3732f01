package polynomial

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// MinimumJerkOptimizer is the default, in-module implementation of
// Optimizer. Spec.md explicitly treats polynomial-segment fitting as an
// external collaborator and does not ask this module to re-derive the
// optimization math; this implementation exists so the module is runnable
// end to end without a real flight-stack QP solver wired in.
//
// Per segment it fits a quintic (5th order) polynomial per axis from
// boundary position/velocity/acceleration, solved with a 6x6 linear system
// via gonum/mat. Any vertex derivative left unconstrained is estimated from
// its neighbors with a centered finite difference, so adjacent segments
// agree on velocity and acceleration at every interior knot by
// construction — the trajectory is C2 everywhere a neighbor exists to
// estimate from. The derivativeToOptimize argument is ignored: each segment
// is fully determined by its boundary conditions.
type MinimumJerkOptimizer struct{}

// Optimize implements Optimizer.
func (MinimumJerkOptimizer) Optimize(vertices []Vertex, segmentTimes []float64, derivativeToOptimize, dimension int) (Trajectory, error) {
	if len(vertices) < 2 {
		return nil, fmt.Errorf("minimumjerk: need at least two vertices, got %d", len(vertices))
	}
	if len(segmentTimes) != len(vertices)-1 {
		return nil, fmt.Errorf("minimumjerk: %d segment times for %d vertices", len(segmentTimes), len(vertices))
	}
	for i, st := range segmentTimes {
		if st <= 0 {
			return nil, fmt.Errorf("minimumjerk: segment %d has non-positive time %.6f", i, st)
		}
	}
	_ = derivativeToOptimize // accepted for interface compliance; see doc comment.

	positions := make([]r3.Vector, len(vertices))
	velocities := make([]r3.Vector, len(vertices))
	accelerations := make([]r3.Vector, len(vertices))
	for i, v := range vertices {
		p, ok := v.Has(Position)
		if !ok {
			return nil, fmt.Errorf("minimumjerk: vertex %d has no position constraint", i)
		}
		positions[i] = p
	}
	for i, v := range vertices {
		if vel, ok := v.Has(Velocity); ok {
			velocities[i] = vel
		} else {
			velocities[i] = estimateDerivative(positions, segmentTimes, i, 1)
		}
	}
	for i, v := range vertices {
		if acc, ok := v.Has(Acceleration); ok {
			accelerations[i] = acc
		} else {
			accelerations[i] = estimateDerivative(velocities, segmentTimes, i, 2)
		}
	}

	segments := make([]quinticSegment, len(segmentTimes))
	for i := range segmentTimes {
		seg, err := fitQuinticSegment(
			positions[i], velocities[i], accelerations[i],
			positions[i+1], velocities[i+1], accelerations[i+1],
			segmentTimes[i])
		if err != nil {
			return nil, fmt.Errorf("minimumjerk: segment %d: %w", i, err)
		}
		segments[i] = seg
	}

	return &PiecewisePolynomial{segments: segments, segmentTimes: append([]float64{}, segmentTimes...)}, nil
}

// estimateDerivative estimates the value of the given derivative order
// (1 = velocity from position samples, 2 = acceleration from velocity
// samples) at index i using a centered finite difference over the adjacent
// segment times, falling back to a one-sided difference at the ends and to
// zero when there are fewer than two samples.
func estimateDerivative(samples []r3.Vector, segmentTimes []float64, i int, _ int) r3.Vector {
	n := len(samples)
	switch {
	case n < 2:
		return r3.Vector{}
	case i == 0:
		dt := segmentTimes[0]
		return samples[1].Sub(samples[0]).Mul(1 / dt)
	case i == n-1:
		dt := segmentTimes[len(segmentTimes)-1]
		return samples[i].Sub(samples[i-1]).Mul(1 / dt)
	default:
		dtPrev, dtNext := segmentTimes[i-1], segmentTimes[i]
		total := dtPrev + dtNext
		return samples[i+1].Sub(samples[i-1]).Mul(1 / total)
	}
}

// quinticSegment holds the per-axis coefficients c0..c5 of
// p(t) = c0 + c1 t + c2 t^2 + c3 t^3 + c4 t^4 + c5 t^5, t ∈ [0, duration].
type quinticSegment struct {
	coeffs   [3][6]float64
	duration float64
}

func fitQuinticSegment(p0, v0, a0, p1, v1, a1 r3.Vector, T float64) (quinticSegment, error) {
	var seg quinticSegment
	seg.duration = T

	boundary := func(axis int, p0, v0, a0, p1, v1, a1 float64) ([6]float64, error) {
		// Boundary-value matrix for p(t)=sum(c_k t^k), rows are
		// p(0), p'(0), p''(0), p(T), p'(T), p''(T).
		A := mat.NewDense(6, 6, []float64{
			1, 0, 0, 0, 0, 0,
			0, 1, 0, 0, 0, 0,
			0, 0, 2, 0, 0, 0,
			1, T, T * T, T * T * T, T * T * T * T, T * T * T * T * T,
			0, 1, 2 * T, 3 * T * T, 4 * T * T * T, 5 * T * T * T * T,
			0, 0, 2, 6 * T, 12 * T * T, 20 * T * T * T,
		})
		b := mat.NewVecDense(6, []float64{p0, v0, a0, p1, v1, a1})
		var x mat.VecDense
		if err := x.SolveVec(A, b); err != nil {
			return [6]float64{}, fmt.Errorf("axis %d: %w", axis, err)
		}
		var out [6]float64
		for k := 0; k < 6; k++ {
			out[k] = x.AtVec(k)
		}
		return out, nil
	}

	var err error
	seg.coeffs[0], err = boundary(0, p0.X, v0.X, a0.X, p1.X, v1.X, a1.X)
	if err != nil {
		return seg, err
	}
	seg.coeffs[1], err = boundary(1, p0.Y, v0.Y, a0.Y, p1.Y, v1.Y, a1.Y)
	if err != nil {
		return seg, err
	}
	seg.coeffs[2], err = boundary(2, p0.Z, v0.Z, a0.Z, p1.Z, v1.Z, a1.Z)
	if err != nil {
		return seg, err
	}
	return seg, nil
}

func (s quinticSegment) evaluate(t float64, derivative int) r3.Vector {
	return r3.Vector{
		X: polyDerivativeValue(s.coeffs[0], t, derivative),
		Y: polyDerivativeValue(s.coeffs[1], t, derivative),
		Z: polyDerivativeValue(s.coeffs[2], t, derivative),
	}
}

// polyDerivativeValue evaluates the `derivative`-th derivative of
// sum(c_k t^k) at t.
func polyDerivativeValue(c [6]float64, t float64, derivative int) float64 {
	var sum float64
	for k := derivative; k < 6; k++ {
		coeff := c[k]
		for j := 0; j < derivative; j++ {
			coeff *= float64(k - j)
		}
		sum += coeff * pow(t, k-derivative)
	}
	return sum
}

func pow(t float64, n int) float64 {
	if n <= 0 {
		return 1
	}
	out := 1.0
	for i := 0; i < n; i++ {
		out *= t
	}
	return out
}
