package physics

import "gonum.org/v1/gonum/spatial/r2"

// Contact is a bit set of the walls touched during one resolution.
type Contact uint8

const (
	ContactLeft Contact = 1 << iota
	ContactRight
	ContactTop
	ContactBottom
)

// Count returns the number of walls touched.
func (c Contact) Count() int {
	n := 0
	for ; c != 0; c &= c - 1 {
		n++
	}
	return n
}

// Boundary clamps particles inside the container, keeping their centre
// half a particle away from each wall.
type Boundary struct {
	Extent r2.Vec
	Size   float64
	Bounce float64
}

// Resolve clamps px and reflects vel on each axis independently, so a
// corner contact reflects both components in the same frame.
func (b Boundary) Resolve(px, vel r2.Vec) (r2.Vec, r2.Vec, Contact) {
	var c Contact
	var lo, hi bool

	px.X, vel.X, lo, hi = b.axis(px.X, vel.X, b.Extent.X)
	if lo {
		c |= ContactLeft
	}
	if hi {
		c |= ContactRight
	}

	px.Y, vel.Y, lo, hi = b.axis(px.Y, vel.Y, b.Extent.Y)
	if lo {
		c |= ContactTop
	}
	if hi {
		c |= ContactBottom
	}
	return px, vel, c
}

func (b Boundary) axis(pos, vel, extent float64) (float64, float64, bool, bool) {
	half := b.Size / 2
	// Container narrower than a particle: pin to the centre line.
	if extent-half < half {
		return extent / 2, 0, true, true
	}
	if pos <= half {
		return half, abs(vel) * b.Bounce, true, false
	}
	if pos >= extent-half {
		return extent - half, -abs(vel) * b.Bounce, false, true
	}
	return pos, vel, false, false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
