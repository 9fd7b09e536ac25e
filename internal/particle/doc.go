// Package particle holds the particle records driven by the simulation.
//
// Positions are stored as container fractions in [0,100] on each axis so a
// resize of the hosting container never requires repositioning. Velocities
// are in pixels per frame.
//
//   - [Particle]: one record; mass, influence distance and rest threshold
//     are fixed at creation
//   - [Pool]: the exclusively owned slice of particles, reseeded by
//     [Pool.Initialize]
package particle
