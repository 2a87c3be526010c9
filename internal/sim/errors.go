package sim

import (
	"errors"
	"fmt"
)

// Domain errors for the stepper.
var (
	// ErrStepInProgress is returned when a step is requested, or collections
	// are changed, while a step is still running. Nothing is changed.
	ErrStepInProgress = errors.New("sim: a step is already in progress")

	// ErrInvalidParams indicates a non-positive time step or Reynolds number.
	ErrInvalidParams = errors.New("sim: invalid simulation parameters")

	// ErrUnstable indicates non-finite velocities after a step.
	ErrUnstable = errors.New("sim: simulation unstable (non-finite velocity)")
)

// StepError wraps an error with the step and phase it happened in.
type StepError struct {
	Step    int
	Time    float64
	Phase   string
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4g) %s: %v", e.Step, e.Time, e.Phase, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
