package sim

import (
	"context"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/gravsim/internal/gravity"
)

type Simulator struct {
	metrics   []Metric
	observers []Observer
}

func New() *Simulator {
	return &Simulator{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances sys by cfg.Steps steps. Time continues from the last recorded
// timestamp of the first body, so a system can be run in several legs.
//
// Metrics and observers see the state before the first step and after every
// committed step. On failure the partial result is returned together with a
// *StepError. A step that commits non-finite state is counted in StepsTaken,
// since its positions are already recorded, but is not observed.
func (s *Simulator) Run(ctx context.Context, sys *gravity.System, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		Times:   make([]float64, 0, cfg.Steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	start := sys.Body(0).Time()
	dt := sys.Dt()
	p0 := sys.Momentum()
	e0 := sys.TotalEnergy()

	result.Times = append(result.Times, start)
	s.observe(sys, 0, start)

	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, sys, p0, e0)
			return result, ctx.Err()
		default:
		}

		t := start + float64(i)*dt
		if err := sys.Step(t); err != nil {
			s.finish(result, sys, p0, e0)
			return result, &StepError{Step: i, Time: t, Wrapped: err}
		}

		result.StepsTaken++
		result.Times = append(result.Times, t)

		if cfg.ValidateState && !isValid(sys) {
			s.finish(result, sys, p0, e0)
			return result, &StepError{Step: i, Time: t, Wrapped: ErrInvalidState}
		}

		s.observe(sys, i, t)
	}

	s.finish(result, sys, p0, e0)
	return result, nil
}

func (s *Simulator) observe(sys *gravity.System, step int, t float64) {
	for _, m := range s.metrics {
		m.Observe(sys, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(sys, step, t)
	}
}

func (s *Simulator) finish(result *Result, sys *gravity.System, p0 r3.Vec, e0 float64) {
	result.MomentumDrift = r3.Norm(r3.Sub(sys.Momentum(), p0))
	if e0 != 0 && !math.IsInf(e0, 0) {
		result.EnergyDrift = math.Abs(sys.TotalEnergy()-e0) / math.Abs(e0)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func isValid(sys *gravity.System) bool {
	for _, b := range sys.Bodies() {
		if !finite(b.Position()) || !finite(b.Velocity()) {
			return false
		}
	}
	return true
}

func finite(v r3.Vec) bool {
	for _, x := range [...]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
