package gravity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// System owns an ordered, fixed set of bodies and advances them together.
type System struct {
	bodies []*Body
	dt     float64
	g      float64
}

type Option func(*System)

// WithG overrides the gravitational constant. Tests use G=1 to keep the
// arithmetic readable.
func WithG(g float64) Option {
	return func(s *System) { s.g = g }
}

// NewSystem attaches bodies to a new system stepping by dt. The slice is
// copied; the bodies themselves are owned by the system from here on and
// cannot be attached to another one. A failed call claims no bodies.
func NewSystem(bodies []*Body, dt float64, opts ...Option) (*System, error) {
	s := &System{
		bodies: make([]*Body, len(bodies)),
		dt:     dt,
		g:      G,
	}
	copy(s.bodies, bodies)
	for _, opt := range opts {
		opt(s)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	for _, b := range s.bodies {
		b.owner = s
	}
	return s, nil
}

func (s *System) validate() error {
	if !(s.dt > 0) || math.IsInf(s.dt, 1) {
		return fmt.Errorf("%w: got %g", ErrInvalidStep, s.dt)
	}
	if !(s.g > 0) || math.IsInf(s.g, 1) {
		return fmt.Errorf("%w: got %g", ErrInvalidConstant, s.g)
	}
	if len(s.bodies) == 0 {
		return ErrNoBodies
	}

	seen := make(map[*Body]int, len(s.bodies))
	for i, b := range s.bodies {
		if b == nil {
			return fmt.Errorf("%w: index %d", ErrInvalidBody, i)
		}
		if j, ok := seen[b]; ok {
			return fmt.Errorf("%w: indices %d and %d", ErrDuplicateBody, j, i)
		}
		if b.owner != nil {
			return fmt.Errorf("%w: index %d", ErrBodyAttached, i)
		}
		seen[b] = i
	}
	return nil
}

// Bodies returns the system's bodies in construction order. The returned
// slice is a copy; the bodies are shared.
func (s *System) Bodies() []*Body {
	out := make([]*Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

func (s *System) Body(i int) *Body { return s.bodies[i] }
func (s *System) Len() int         { return len(s.bodies) }
func (s *System) Dt() float64      { return s.dt }
func (s *System) G() float64       { return s.g }

// Step advances every body by one time step and records the new positions
// at time t.
//
// All velocity increments are applied before any position moves, so the
// result does not depend on body order. If two bodies coincide the step
// returns a *SingularityError and no body is modified.
func (s *System) Step(t float64) error {
	if err := s.checkSeparations(t); err != nil {
		return err
	}

	for i, p := range s.bodies {
		for j, other := range s.bodies {
			if other == p {
				continue
			}
			delta, err := p.VelocityDelta(other, s.g, s.dt)
			if err != nil {
				return &SingularityError{I: i, J: j, Time: t}
			}
			p.ApplyVelocityDelta(delta)
		}
	}

	for _, p := range s.bodies {
		p.CommitPosition(t, s.dt)
	}
	return nil
}

func (s *System) checkSeparations(t float64) error {
	for i := 0; i < len(s.bodies); i++ {
		for j := i + 1; j < len(s.bodies); j++ {
			if separationCubed(s.bodies[i], s.bodies[j]) == 0 {
				return &SingularityError{I: i, J: j, Time: t}
			}
		}
	}
	return nil
}

// Momentum returns the total linear momentum Σ m v.
func (s *System) Momentum() r3.Vec {
	var p r3.Vec
	for _, b := range s.bodies {
		p = r3.Add(p, b.Momentum())
	}
	return p
}

func (s *System) KineticEnergy() float64 {
	ke := 0.0
	for _, b := range s.bodies {
		ke += b.KineticEnergy()
	}
	return ke
}

// PotentialEnergy returns -Σ_{i<j} G m_i m_j / r_ij. Coincident pairs
// contribute -Inf.
func (s *System) PotentialEnergy() float64 {
	pe := 0.0
	for i := 0; i < len(s.bodies); i++ {
		for j := i + 1; j < len(s.bodies); j++ {
			r := s.bodies[i].Separation(s.bodies[j].pos)
			pe -= s.g * s.bodies[i].mass * s.bodies[j].mass / r
		}
	}
	return pe
}

func (s *System) TotalEnergy() float64 {
	return s.KineticEnergy() + s.PotentialEnergy()
}

// CenterOfMass returns the mass-weighted mean position.
func (s *System) CenterOfMass() r3.Vec {
	var c r3.Vec
	total := 0.0
	for _, b := range s.bodies {
		c = r3.Add(c, r3.Scale(b.mass, b.pos))
		total += b.mass
	}
	return r3.Vec{X: c.X / total, Y: c.Y / total, Z: c.Z / total}
}

// MinSeparation returns the smallest pairwise distance and the pair it
// belongs to. A single-body system reports +Inf and (-1, -1).
func (s *System) MinSeparation() (float64, int, int) {
	best, bi, bj := math.Inf(1), -1, -1
	for i := 0; i < len(s.bodies); i++ {
		for j := i + 1; j < len(s.bodies); j++ {
			if r := s.bodies[i].Separation(s.bodies[j].pos); r < best {
				best, bi, bj = r, i, j
			}
		}
	}
	return best, bi, bj
}
