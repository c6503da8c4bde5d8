// Package export renders recorded runs to static formats.
package export

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// TrajectorySVG draws every body's path in its own color, with a dot and a
// label at its final position. Both axes share one scale so orbits keep
// their shape.
func TrajectorySVG(frames []dynamo.Frame, width, height int) string {
	if len(frames) == 0 || len(frames[0].Bodies) == 0 {
		return ""
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, f := range frames {
		for _, b := range f.Bodies {
			minX = math.Min(minX, b.Position.X)
			maxX = math.Max(maxX, b.Position.X)
			minY = math.Min(minY, b.Position.Y)
			maxY = math.Max(maxY, b.Position.Y)
		}
	}

	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		span = 1
	}
	span *= 1.2
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	scale := math.Min(float64(width), float64(height)) / span

	project := func(x, y float64) (float64, float64) {
		return float64(width)/2 + (x-cx)*scale, float64(height)/2 - (y-cy)*scale
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	last := frames[len(frames)-1]
	for i, b := range frames[0].Bodies {
		color := b.Color.Hex()

		if len(frames) > 1 {
			fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color)
			for j, f := range frames {
				if i >= len(f.Bodies) {
					continue
				}
				x, y := project(f.Bodies[i].Position.X, f.Bodies[i].Position.Y)
				if j == 0 {
					fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
				} else {
					fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
				}
			}
			sb.WriteString("\"/>\n")
		}

		if i < len(last.Bodies) {
			x, y := project(last.Bodies[i].Position.X, last.Bodies[i].Position.Y)
			r := math.Max(2, last.Bodies[i].Radius*scale)
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
<text x="%.1f" y="%.1f" fill="#cccccc" font-family="monospace" font-size="11">%s</text>
`, x, y, r, color, x+r+3, y-r-3, html.EscapeString(b.Name))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}
