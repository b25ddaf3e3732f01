package planner

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/flightstack/dynamic-trajectory-generator/polynomial"
)

// References is the sample an Evaluate call produces: position always, plus
// velocity and acceleration unless the caller asked for only_positions.
// This mirrors the C++ source's References struct, including its
// index-by-derivative-order accessor.
type References struct {
	Position     r3.Vector
	Velocity     r3.Vector
	Acceleration r3.Vector
}

// At returns the requested derivative by order (0=position, 1=velocity,
// 2=acceleration), the Go equivalent of the source's References::operator[].
func (r *References) At(order int) (*r3.Vector, error) {
	switch order {
	case polynomial.Position:
		return &r.Position, nil
	case polynomial.Velocity:
		return &r.Velocity, nil
	case polynomial.Acceleration:
		return &r.Acceleration, nil
	default:
		return nil, fmt.Errorf("planner: invalid derivative order %d", order)
	}
}
