// Package sim drives a [gravity.System] through a fixed number of steps.
//
// A [Simulator] owns the step loop and feeds each committed state to its
// [Metric] and [Observer] hooks. [Sweep] repeats one scenario over several
// time steps concurrently, one independent system per goroutine.
package sim
