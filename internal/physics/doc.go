// Package physics advances particles by one frame.
//
// A frame runs three stages per particle, in order:
//
//   - [Euler]: pointer force, gravity scaled by mass and optional jitter
//     are added to the velocity, then the pixel position moves by it
//   - [Boundary]: each axis is clamped to [size/2, extent-size/2] and the
//     velocity component is reflected and scaled by the bounce strength
//   - [Damp]: velocity is multiplied by friction and the rest flag updated
//
// [Pipeline] composes the stages. Stepping is explicit Euler with a step
// of one frame; it is not an energy-conserving integrator.
package physics
