// Package dynamo provides the simulation driver for gravitational systems.
//
// The package defines the contracts between a physics engine and whatever
// drives it:
//
//   - [System]: a steppable set of bodies (implemented by physics.Engine)
//   - [Simulator]: runs a System for a fixed number of ticks
//   - [Metric] and [Observer]: per-tick hooks fed with read-only [Frame] copies
//   - [Sweep]: runs independent systems for several time steps concurrently
//
// # Example
//
//	eng, _ := physics.New(bodies, 100)
//	sim := dynamo.New(eng)
//	result, err := sim.Run(ctx, dynamo.DefaultConfig())
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe, and neither are the systems they
// drive. For parallel runs use [Sweep], which builds one system per run.
package dynamo
