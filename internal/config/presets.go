package config

import (
	"math"
	"sort"
)

var Presets = map[string]*Scenario{
	// Heavy particle at rest with a light one passing by, SI units.
	"reference": {
		Name: "reference", Dt: 0.001, Steps: 99,
		Bodies: []BodyConfig{
			{Name: "A", Position: [3]float64{5e-2, 1e-2, 0}, Mass: 1e6},
			{Name: "B", Velocity: [3]float64{1, 0, 0}, Mass: 1},
		},
	},
	"pair": {
		Name: "pair", Dt: 0.005, Steps: 1000,
		Bodies: []BodyConfig{
			{Name: "A", Mass: 10},
			{Name: "B", Position: [3]float64{1, 0, 0}, Mass: 10},
		},
	},
	// Equal masses on a circular orbit, period 2π√0.5.
	"binary": {
		Name: "binary", G: 1, Dt: 0.001, Steps: 10000,
		Bodies: []BodyConfig{
			{Name: "A", Position: [3]float64{-0.5, 0, 0}, Velocity: [3]float64{0, -math.Sqrt(0.5), 0}, Mass: 1},
			{Name: "B", Position: [3]float64{0.5, 0, 0}, Velocity: [3]float64{0, math.Sqrt(0.5), 0}, Mass: 1},
		},
	},
	// Chenciner–Montgomery figure-eight choreography.
	"triple": {
		Name: "triple", G: 1, Dt: 0.001, Steps: 6326,
		Bodies: []BodyConfig{
			{Name: "A", Position: [3]float64{0.97000436, -0.24308753, 0}, Velocity: [3]float64{0.466203685, 0.43236573, 0}, Mass: 1},
			{Name: "B", Position: [3]float64{-0.97000436, 0.24308753, 0}, Velocity: [3]float64{0.466203685, 0.43236573, 0}, Mass: 1},
			{Name: "C", Velocity: [3]float64{-0.93240737, -0.86473146, 0}, Mass: 1},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Scenario {
	s, ok := Presets[name]
	if !ok {
		return nil
	}
	return s.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
