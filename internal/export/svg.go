// Package export renders saved trajectories as standalone SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/cosray/internal/vec"
)

var strokePalette = []string{"#00ff88", "#00ccff", "#ff00ff", "#ffaa00", "#ff4444", "#88ff88"}

// TrajectoriesToSVG projects a set of trajectories onto a coordinate plane
// ("xy", "xz" or "yz") and draws each as a polyline. All tracks share the
// same bounds so their relative spread is preserved.
func TrajectoriesToSVG(tracks [][]vec.Vec3, plane string, width, height int) (string, error) {
	points := make([][]struct{ X, Y float64 }, 0, len(tracks))
	for _, track := range tracks {
		flat := make([]struct{ X, Y float64 }, 0, len(track))
		for _, p := range track {
			x, y, err := projectPlane(p, plane)
			if err != nil {
				return "", err
			}
			flat = append(flat, struct{ X, Y float64 }{x, y})
		}
		if len(flat) >= 2 {
			points = append(points, flat)
		}
	}
	if len(points) == 0 {
		return "", fmt.Errorf("export: no trajectory with at least two points")
	}

	minX, maxX := points[0][0].X, points[0][0].X
	minY, maxY := points[0][0].Y, points[0][0].Y
	for _, track := range points {
		for _, p := range track {
			if p.X < minX {
				minX = p.X
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for i, track := range points {
		color := strokePalette[i%len(strokePalette)]
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for j, p := range track {
			x := (p.X - minX) / rangeX * float64(width)
			y := float64(height) - (p.Y-minY)/rangeY*float64(height)
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String(), nil
}

func projectPlane(p vec.Vec3, plane string) (float64, float64, error) {
	switch plane {
	case "xy":
		return p.X, p.Y, nil
	case "xz":
		return p.X, p.Z, nil
	case "yz":
		return p.Y, p.Z, nil
	default:
		return 0, 0, fmt.Errorf("export: unknown plane %q (use xy, xz or yz)", plane)
	}
}
