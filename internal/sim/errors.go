package sim

import "errors"

var (
	// ErrInvalidConfig is returned for a non-positive step or duration.
	ErrInvalidConfig = errors.New("sim: invalid config")

	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates a state of the wrong length.
	ErrDimensionMismatch = errors.New("sim: dimension mismatch between state and dynamics")

	// ErrStepTooSmall indicates the adaptive step fell below MinDt.
	ErrStepTooSmall = errors.New("sim: adaptive timestep below minimum")
)
