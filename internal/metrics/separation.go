package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/gravity"
)

// MinSeparation reports the closest approach between any two bodies.
// Single-body systems report +Inf.
type MinSeparation struct {
	name string
	min  float64
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{name: "min_separation", min: math.Inf(1)}
}

func (s *MinSeparation) Name() string { return s.name }

func (s *MinSeparation) Observe(sys *gravity.System, t float64) {
	r, _, _ := sys.MinSeparation()
	s.min = math.Min(s.min, r)
}

func (s *MinSeparation) Value() float64 {
	return s.min
}

func (s *MinSeparation) Reset() {
	s.min = math.Inf(1)
}
