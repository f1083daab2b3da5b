package sim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/gravsim/internal/gravity"
)

// SweepRun is one leg of a time-step sweep.
type SweepRun struct {
	Dt     float64
	Steps  int
	System *gravity.System
	Result *Result
	// Elapsed is the wall-clock time spent in the run itself.
	Elapsed time.Duration
}

// Sweep runs the same scenario once per time step in dts, each covering the
// same simulated duration. Every run builds and owns its own system and
// metrics, so runs share no state. Results are returned in the order of dts.
func Sweep(
	ctx context.Context,
	build func(dt float64) (*gravity.System, error),
	newMetrics func() []Metric,
	dts []float64,
	duration float64,
) ([]SweepRun, error) {
	if !(duration > 0) {
		return nil, fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, duration)
	}

	runs := make([]SweepRun, len(dts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, dt := range dts {
		g.Go(func() error {
			sys, err := build(dt)
			if err != nil {
				return fmt.Errorf("dt=%g: %w", dt, err)
			}

			s := New()
			if newMetrics != nil {
				for _, m := range newMetrics() {
					s.AddMetric(m)
				}
			}

			cfg := DefaultConfig()
			cfg.Steps = int(math.Round(duration / dt))

			start := time.Now()
			result, err := s.Run(ctx, sys, cfg)
			runs[i] = SweepRun{Dt: dt, Steps: cfg.Steps, System: sys, Result: result, Elapsed: time.Since(start)}
			if err != nil {
				return fmt.Errorf("dt=%g: %w", dt, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return runs, err
	}
	return runs, nil
}
