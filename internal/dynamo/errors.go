package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for motion configuration and sampling.
var (
	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrInvalidSample indicates a sample with NaN or Inf value.
	ErrInvalidSample = errors.New("dynamo: invalid sample (NaN or Inf detected)")

	// ErrContextCanceled indicates the pregeneration was interrupted.
	ErrContextCanceled = errors.New("dynamo: pregeneration canceled by context")

	// ErrUnknownPreset indicates a preset name that is not registered.
	ErrUnknownPreset = errors.New("dynamo: unknown preset")
)

// SimulationError wraps an error with sampling context.
type SimulationError struct {
	Step    int
	Time    float64
	Sample  Sample
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4fms): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// ParamError reports which parameter failed validation.
func ParamError(name string, value float64, reason string) error {
	return fmt.Errorf("%w: %s=%g %s", ErrParameterBounds, name, value, reason)
}
