package config

import (
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/gravity"
)

const (
	DefaultDt    = 0.001
	DefaultSteps = 99
)

var ErrInvalidScenario = errors.New("config: invalid scenario")

// Scenario is the caller-supplied description of one run. A zero G means the
// SI constant.
type Scenario struct {
	Name   string       `yaml:"name"`
	G      float64      `yaml:"g,omitempty"`
	Dt     float64      `yaml:"dt"`
	Steps  int          `yaml:"steps"`
	Bodies []BodyConfig `yaml:"bodies"`
}

type BodyConfig struct {
	Name     string     `yaml:"name,omitempty"`
	Position [3]float64 `yaml:"position"`
	Velocity [3]float64 `yaml:"velocity"`
	Mass     float64    `yaml:"mass"`
}

func DefaultScenario() *Scenario {
	return GetPreset("reference")
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := &Scenario{Dt: DefaultDt, Steps: DefaultSteps}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

func Save(path string, s *Scenario) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Scenario) Validate() error {
	if !(s.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidScenario, s.Dt)
	}
	if s.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidScenario, s.Steps)
	}
	if s.G < 0 {
		return fmt.Errorf("%w: g must not be negative, got %g", ErrInvalidScenario, s.G)
	}
	if len(s.Bodies) == 0 {
		return fmt.Errorf("%w: no bodies", ErrInvalidScenario)
	}
	for i, b := range s.Bodies {
		if !(b.Mass > 0) {
			return fmt.Errorf("%w: body %d (%s): %w", ErrInvalidScenario, i, b.Label(i), gravity.ErrInvalidMass)
		}
	}
	return nil
}

// Constant returns the gravitational constant the scenario runs with.
func (s *Scenario) Constant() float64 {
	if s.G == 0 {
		return gravity.G
	}
	return s.G
}

// Duration is the simulated time covered by Steps.
func (s *Scenario) Duration() float64 {
	return float64(s.Steps) * s.Dt
}

// Build constructs fresh bodies and a system for the scenario.
func (s *Scenario) Build() (*gravity.System, error) {
	return s.BuildWithDt(s.Dt)
}

// BuildWithDt is Build with the time step overridden.
func (s *Scenario) BuildWithDt(dt float64) (*gravity.System, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	bodies := make([]*gravity.Body, len(s.Bodies))
	for i, bc := range s.Bodies {
		b, err := gravity.NewBody(vec(bc.Position), vec(bc.Velocity), bc.Mass)
		if err != nil {
			return nil, fmt.Errorf("body %d (%s): %w", i, bc.Label(i), err)
		}
		bodies[i] = b
	}

	return gravity.NewSystem(bodies, dt, gravity.WithG(s.Constant()))
}

// Names returns the display label of every body.
func (s *Scenario) Names() []string {
	names := make([]string, len(s.Bodies))
	for i, b := range s.Bodies {
		names[i] = b.Label(i)
	}
	return names
}

func (s *Scenario) Clone() *Scenario {
	c := *s
	c.Bodies = make([]BodyConfig, len(s.Bodies))
	copy(c.Bodies, s.Bodies)
	return &c
}

// Label returns the body's name, or a positional name when it has none.
func (b BodyConfig) Label(i int) string {
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprintf("body%d", i)
}

func vec(a [3]float64) r3.Vec {
	return r3.Vec{X: a[0], Y: a[1], Z: a[2]}
}
