package gravity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// G is the SI gravitational constant in m³ kg⁻¹ s⁻².
const G = 6.674e-11

// Body is a point mass and the history of positions it has been committed to.
// trajectory and times are index-aligned and never empty.
type Body struct {
	pos  r3.Vec
	vel  r3.Vec
	mass float64

	trajectory []r3.Vec
	times      []float64

	owner *System
}

// NewBody returns a body at pos moving with vel. The initial position is
// recorded as the first trajectory entry at t=0.
func NewBody(pos, vel r3.Vec, mass float64) (*Body, error) {
	if !(mass > 0) || math.IsInf(mass, 1) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidMass, mass)
	}
	return &Body{
		pos:        pos,
		vel:        vel,
		mass:       mass,
		trajectory: []r3.Vec{pos},
		times:      []float64{0},
	}, nil
}

func (b *Body) Position() r3.Vec { return b.pos }
func (b *Body) Velocity() r3.Vec { return b.vel }
func (b *Body) Mass() float64    { return b.mass }

// Len returns the number of recorded trajectory entries.
func (b *Body) Len() int { return len(b.trajectory) }

// Time returns the timestamp of the last recorded trajectory entry.
func (b *Body) Time() float64 { return b.times[len(b.times)-1] }

// Separation returns the Euclidean distance from b to other.
func (b *Body) Separation(other r3.Vec) float64 {
	return r3.Norm(r3.Sub(other, b.pos))
}

// Direction returns other - position. The result is not normalized.
func (b *Body) Direction(other r3.Vec) r3.Vec {
	return r3.Sub(other, b.pos)
}

// VelocityDelta returns the velocity increment b receives from other's pull
// over one step of length dt:
//
//	g * m_other * dt / r³ * (p_other - p_b)
func (b *Body) VelocityDelta(other *Body, g, dt float64) (r3.Vec, error) {
	cube := separationCubed(b, other)
	if cube == 0 {
		return r3.Vec{}, ErrSingularity
	}
	k := g * other.mass * dt / cube
	return r3.Scale(k, b.Direction(other.pos)), nil
}

// separationCubed returns r³ between a and b. It is 0 both for coincident
// bodies and for separations so small that r³ underflows.
func separationCubed(a, b *Body) float64 {
	r := a.Separation(b.pos)
	return r * r * r
}

// ApplyVelocityDelta adds delta to the velocity.
func (b *Body) ApplyVelocityDelta(delta r3.Vec) {
	b.vel = r3.Add(b.vel, delta)
}

// CommitPosition advances the position by velocity*dt and records it at t.
// The velocity must already hold this step's update.
func (b *Body) CommitPosition(t, dt float64) {
	b.pos = r3.Add(b.pos, r3.Scale(dt, b.vel))
	b.trajectory = append(b.trajectory, b.pos)
	b.times = append(b.times, t)
}

// Trajectory returns copies of the recorded times and positions, in
// insertion order.
func (b *Body) Trajectory() ([]float64, []r3.Vec) {
	times := make([]float64, len(b.times))
	copy(times, b.times)
	positions := make([]r3.Vec, len(b.trajectory))
	copy(positions, b.trajectory)
	return times, positions
}

// Speed returns |v|.
func (b *Body) Speed() float64 {
	return math.Sqrt(b.vel.X*b.vel.X + b.vel.Y*b.vel.Y + b.vel.Z*b.vel.Z)
}

// KineticEnergy returns ½ m |v|².
func (b *Body) KineticEnergy() float64 {
	v := b.Speed()
	return 0.5 * b.mass * v * v
}

// Momentum returns m v.
func (b *Body) Momentum() r3.Vec {
	return r3.Scale(b.mass, b.vel)
}
