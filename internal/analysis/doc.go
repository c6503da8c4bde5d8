// Package analysis derives orbital properties from recorded trajectories.
//
//   - [OrbitalPeriod]: dominant period of a coordinate series from its
//     FFT power spectrum
//   - [Apsides]: closest and farthest distance between two bodies
//   - [Divergence]: largest position difference between two runs of the
//     same scenario
//
// # Period Estimation
//
// The series should cover several revolutions. Fewer than two full orbits
// give a coarse estimate:
//
//	xs, _ := result.Track(1)
//	period, err := analysis.OrbitalPeriod(xs, dt*float64(recordEvery))
package analysis
