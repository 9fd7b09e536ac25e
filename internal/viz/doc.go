// Package viz renders the particle field in the terminal.
//
// The view wraps a [sim.Controller] in a Bubble Tea program. Particles are
// drawn on a braille [Canvas] where each terminal cell holds 2x4 dots;
// moving particles and particles at rest get different colours. Mouse
// motion is reported with all-motion tracking and fed to the pointer
// tracker, so the field follows the cursor.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reseed particles
//	P     - Flip pointer polarity
//	Up/Dn - Gravity +/- 0.05
//	+/-   - Particle count +/- 50
//	B     - Cycle bounce strength
//	T     - Cycle color themes
//	Q     - Quit
package viz
