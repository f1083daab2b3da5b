package analysis

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrTooShort = errors.New("analysis: series too short")
	ErrNoSignal = errors.New("analysis: series has no oscillation")
)

const minSamples = 4

// Separations returns |a_k - b_k| for each index both series share.
func Separations(a, b []r3.Vec) []float64 {
	n := min(len(a), len(b))
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		out[k] = r3.Norm(r3.Sub(a[k], b[k]))
	}
	return out
}

// DominantPeriod returns the period of the strongest non-constant component
// of data sampled every dt.
func DominantPeriod(data []float64, dt float64) (float64, error) {
	if len(data) < minSamples {
		return 0, fmt.Errorf("%w: need %d samples, got %d", ErrTooShort, minSamples, len(data))
	}

	ps := PowerSpectrum(data)

	maxPower := 0.0
	maxIdx := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}

	if maxIdx == 0 || maxPower < 1e-12*peak(data) {
		return 0, ErrNoSignal
	}

	return float64(len(data)) * dt / float64(maxIdx), nil
}

func peak(data []float64) float64 {
	m := 0.0
	for _, v := range data {
		if v < 0 {
			v = -v
		}
		m = max(m, v)
	}
	return m * float64(len(data))
}
