// Package analysis derives scalar series from recorded trajectories.
//
//   - [Separations]: distance between two bodies at each recorded step
//   - [PowerSpectrum]: magnitude spectrum of a series
//   - [DominantPeriod]: period of the strongest oscillation in a series
//
// # Orbital Period
//
// For a bound pair, the separation oscillates once per orbit:
//
//	_, a := sys.Body(0).Trajectory()
//	_, b := sys.Body(1).Trajectory()
//	period, err := analysis.DominantPeriod(analysis.Separations(a, b), sys.Dt())
//
// The estimate resolves periods to the spectral bin width, so runs should
// cover several orbits.
package analysis
