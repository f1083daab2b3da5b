// Package gravity integrates Newtonian gravity for a fixed set of point masses.
//
// The package defines the two pieces of mutable simulation state:
//
//   - [Body]: position, velocity and mass of one point mass, plus its
//     recorded trajectory
//   - [System]: an ordered, fixed set of bodies advanced together with a
//     fixed time step
//
// # Integration
//
// [System.Step] uses semi-implicit Euler with all-pairs gravity. Every body
// first receives the velocity increments from every other body, and only
// then does any body move, using the velocity it was just given:
//
//	v_i += G m_j dt / r_ij³ (p_j - p_i)   for all i != j
//	p_i += v_i dt                         for all i
//
// # Example
//
//	a, _ := gravity.NewBody(r3.Vec{}, r3.Vec{}, 10)
//	b, _ := gravity.NewBody(r3.Vec{X: 1}, r3.Vec{}, 10)
//	sys, _ := gravity.NewSystem([]*gravity.Body{a, b}, 0.005)
//	for i := 1; i <= 100; i++ {
//	    if err := sys.Step(float64(i) * sys.Dt()); err != nil {
//	        return err
//	    }
//	}
//	times, positions := a.Trajectory()
//
// # Singularities
//
// Two distinct bodies at the same position, or so close that r³ underflows
// to zero, make the force term divide by zero. Step detects this before
// touching any state and returns a [*SingularityError] naming both body
// indices; the system is left as it was before the call.
//
// # Thread Safety
//
// Bodies and systems are NOT thread-safe. A system owns its bodies, a body
// can be attached to only one system, and a system must be driven from a
// single goroutine.
package gravity
