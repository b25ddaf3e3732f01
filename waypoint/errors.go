package waypoint

import "errors"

// Input violations, rejected synchronously at the producer call (spec.md
// §7.1).
var (
	ErrTooFewWaypoints          = errors.New("waypoint: fewer than two waypoints given")
	ErrMissingPositionConstraint = errors.New("waypoint: first waypoint of deque has no position constraint")
	ErrNonPositiveSpeed         = errors.New("waypoint: speed must be positive")
)
