package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
)

var ErrNotSetup = errors.New("experiment: not set up")

// Experiment is one scenario run: the system built from the scenario, the
// runner with its metrics, and the outcome once Run has returned.
type Experiment struct {
	scenario  *config.Scenario
	system    *gravity.System
	simulator *sim.Simulator
	result    *sim.Result
	runErr    error
}

func New(scenario *config.Scenario) *Experiment {
	return &Experiment{scenario: scenario.Clone()}
}

// Setup builds the system and attaches the given metrics, or the default set
// when none are passed.
func (e *Experiment) Setup(ms ...sim.Metric) error {
	sys, err := e.scenario.Build()
	if err != nil {
		return err
	}

	if len(ms) == 0 {
		ms = metrics.Defaults()
	}

	e.system = sys
	e.simulator = sim.New()
	for _, m := range ms {
		e.simulator.AddMetric(m)
	}
	return nil
}

// Run executes the scenario. A failing step still leaves the partial result
// and system in place for Metadata and storage.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, ErrNotSetup
	}

	cfg := sim.DefaultConfig()
	cfg.Steps = e.scenario.Steps

	result, err := e.simulator.Run(ctx, e.system, cfg)
	e.result = result
	e.runErr = err
	if err != nil {
		return result, fmt.Errorf("scenario %s: %w", e.scenario.Name, err)
	}
	return result, nil
}

func (e *Experiment) Scenario() *config.Scenario { return e.scenario }
func (e *Experiment) System() *gravity.System    { return e.system }

// Simulator returns the underlying runner for adding observers.
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

// Metadata describes the run for storage. ID and Timestamp are left for the
// store to assign.
func (e *Experiment) Metadata() storage.RunMetadata {
	s := e.scenario
	meta := storage.RunMetadata{
		Scenario: s.Name,
		G:        s.Constant(),
		Dt:       s.Dt,
		Steps:    s.Steps,
		Bodies:   make([]storage.BodyMeta, len(s.Bodies)),
		Metrics:  map[string]float64{},
	}
	for i, b := range s.Bodies {
		meta.Bodies[i] = storage.BodyMeta{Name: b.Label(i), Mass: b.Mass}
	}

	if r := e.result; r != nil {
		meta.StepsTaken = r.StepsTaken
		meta.MomentumDrift = r.MomentumDrift
		meta.EnergyDrift = r.EnergyDrift
		for k, v := range r.Metrics {
			meta.Metrics[k] = v
		}
	}
	if e.runErr != nil {
		meta.Error = e.runErr.Error()
	}
	return meta
}
