package gravity

import (
	"errors"
	"fmt"
)

// Domain errors for gravity operations.
var (
	// ErrInvalidMass indicates a mass that is not a finite positive number.
	ErrInvalidMass = errors.New("gravity: mass must be finite and positive")

	// ErrSingularity indicates two distinct bodies at zero separation.
	ErrSingularity = errors.New("gravity: singular configuration (zero separation)")

	// ErrInvalidStep indicates a time step that is not a finite positive number.
	ErrInvalidStep = errors.New("gravity: time step must be finite and positive")

	// ErrInvalidConstant indicates a gravitational constant that is not a finite positive number.
	ErrInvalidConstant = errors.New("gravity: gravitational constant must be finite and positive")

	// ErrNoBodies indicates a system constructed without bodies.
	ErrNoBodies = errors.New("gravity: system needs at least one body")

	// ErrInvalidBody indicates a nil body in the system.
	ErrInvalidBody = errors.New("gravity: nil body")

	// ErrDuplicateBody indicates the same body attached to a system twice.
	ErrDuplicateBody = errors.New("gravity: body appears more than once")

	// ErrBodyAttached indicates a body that already belongs to another system.
	ErrBodyAttached = errors.New("gravity: body belongs to another system")
)

// SingularityError reports the pair of bodies that coincide during a step.
type SingularityError struct {
	I, J int
	Time float64
}

func (e *SingularityError) Error() string {
	return fmt.Sprintf("bodies %d and %d coincide at t=%.6g: %v", e.I, e.J, e.Time, ErrSingularity)
}

func (e *SingularityError) Unwrap() error {
	return ErrSingularity
}
