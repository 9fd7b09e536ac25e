package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/driftfield/internal/sim"
)

const (
	Background  = "#0a0a0a"
	ActiveColor = "#7dd3fc"
	RestColor   = "#64748b"
)

// FrameToSVG renders one snapshot into a width x height container. Particle
// positions are container fractions, so the same frame scales to any size.
func FrameToSVG(frame sim.Frame, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, Background))

	for _, p := range frame.Particles {
		color := ActiveColor
		if p.AtRest {
			color = RestColor
		}
		r := p.Size / 2
		cx := p.X / 100 * float64(width)
		cy := p.Y / 100 * float64(height)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="%.1f"/>
`, cx, cy, r, color, p.Opacity()))
	}

	if !frame.Idle {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="none" stroke="#f472b6"/>
`, frame.Pointer.X, frame.Pointer.Y))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG draws a metric series as a polyline scaled to its own range.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 || width <= 0 || height <= 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	span *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, Background, strokeColor))

	step := float64(width) / float64(len(values)-1)
	for i, v := range values {
		x := float64(i) * step
		y := float64(height) - (v-lo)/span*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
