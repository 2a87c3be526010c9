// Package kernels provides the pairwise velocity influence functions used by
// the vortex particle and panel solvers.
//
// Functions are named after the source and target shapes:
//
//   - [VortexBlob], [VortexPoint]: thick-cored vortex particle on a
//     thick-cored or singular target point
//   - [SourcePoint]: source particle on a singular target point
//   - [PanelVortexPoint], [PanelVortexBlob], [PanelSourcePoint]: flat
//     triangular panel of constant strength on a target point, integrated with
//     a 4-point rule
//   - the *Grad variants also return the velocity gradient at the target
//   - [PanelVortexSelf], [PanelSourceSelf]: a panel on its own centroid
//
// # Normalization
//
// No kernel applies the 1/(4π) Biot-Savart factor. Callers accumulate raw
// sums and scale them once, when velocities are finalized.
//
// # Singularities
//
// Cores add in quadrature: r² = |d|² + rs² + rt². With non-zero cores the
// kernels are finite when source and target coincide. With zero cores and
// coincident points the result is Inf/NaN, the same as the true singular
// kernel; this is not guarded.
package kernels
