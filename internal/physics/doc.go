// Package physics implements the gravitational N-body engine.
//
// [Engine] owns an ordered set of bodies and implements [dynamo.System]:
//
//   - construction computes initial accelerations, then circular-orbit
//     velocities around a single reference body
//   - [Engine.Step] advances one tick with semi-implicit Euler by default
//   - [Solver] implementations compute accelerations: [Direct] (exact,
//     O(N²)), [Parallel] (same sums across goroutines) and [BarnesHut]
//     (quadtree approximation)
//
// Accelerations use the fixed constant [G]. Two bodies at the same position
// are reported as [dynamo.ErrCoincidentBodies]; the engine never produces NaN
// accelerations silently.
//
// # Energy Conservation
//
// The default scheme is first order and drifts slowly over many steps. Use
// [Engine.TotalEnergy] to monitor drift:
//
//	eng, _ := physics.New(bodies, 100)
//	e0 := eng.TotalEnergy()
//	_ = eng.Step()
//	drift := math.Abs(eng.TotalEnergy()-e0) / math.Abs(e0)
package physics
