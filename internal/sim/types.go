package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/gravsim/internal/gravity"
)

var (
	// ErrInvalidState indicates a body whose position or velocity is NaN or Inf.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates a run configuration that cannot be executed.
	ErrInvalidConfig = errors.New("sim: invalid run configuration")
)

type Metric interface {
	Name() string
	Observe(sys *gravity.System, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(sys *gravity.System, step int, t float64)
}

type Config struct {
	Steps         int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Steps:         1000,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, c.Steps)
	}
	return nil
}

type Result struct {
	StepsTaken    int
	Times         []float64
	Metrics       map[string]float64
	MomentumDrift float64
	EnergyDrift   float64
}

// StepError wraps a failure with the step that produced it.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
