package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrTooFewBodies indicates fewer than two bodies were supplied.
	ErrTooFewBodies = errors.New("dynamo: at least two bodies are required")

	// ErrInvalidMass indicates a non-positive or non-finite body mass.
	ErrInvalidMass = errors.New("dynamo: body mass must be positive and finite")

	// ErrInvalidTimeStep indicates a non-positive or non-finite time step.
	ErrInvalidTimeStep = errors.New("dynamo: time step must be positive and finite")

	// ErrDuplicateName indicates two bodies share a name.
	ErrDuplicateName = errors.New("dynamo: body names must be unique and non-empty")

	// ErrUnknownReference indicates the reference body is not in the body list.
	ErrUnknownReference = errors.New("dynamo: reference body not found")

	// ErrCoincidentBodies indicates two bodies occupy the same position.
	ErrCoincidentBodies = errors.New("dynamo: coincident bodies (zero separation)")

	// ErrInvalidState indicates a NaN or Inf in a body's state.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrEngineFailed indicates a step was requested after a fatal step error.
	ErrEngineFailed = errors.New("dynamo: engine halted by an earlier error")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
