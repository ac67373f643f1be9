package router

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRangeLane is returned when a lane index falls outside [0, laneCount)
	ErrOutOfRangeLane = errors.New("lane index out of range")

	// ErrUnknownOperator is returned when a rule names an operation that is not registered
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrPattern is returned for a malformed regex pattern or flag set
	ErrPattern = errors.New("invalid regex pattern")

	// ErrUnknownMode is returned when the mode parameter is neither expression nor rules
	ErrUnknownMode = errors.New("unknown routing mode")

	// ErrInvalidParameter is returned when a resolved parameter has an unusable type
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidLaneCount is returned when Route is called with a non-positive lane count
	ErrInvalidLaneCount = errors.New("lane count must be positive")
)

// LaneRangeError reports a lane index outside the valid range.
// It matches ErrOutOfRangeLane with errors.Is.
type LaneRangeError struct {
	Index int
	Min   int
	Max   int
}

func (e *LaneRangeError) Error() string {
	return fmt.Sprintf("the output %d is not allowed, it has to be between %d and %d", e.Index, e.Min, e.Max)
}

// Is makes errors.Is(err, ErrOutOfRangeLane) hold
func (e *LaneRangeError) Is(target error) bool {
	return target == ErrOutOfRangeLane
}
