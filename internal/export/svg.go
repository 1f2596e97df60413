// Package export renders saved runs into standalone artifacts.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/drivesim/internal/geom"
)

// TrajectorySVG draws the ground-plane path of a run as an SVG polyline,
// fitted to the path bounds with 10% padding. World X maps right and
// world Z maps up. Returns "" for paths too short to draw.
func TrajectorySVG(points []geom.Vec3, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minZ, maxZ := points[0].Z, points[0].Z
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Z < minZ {
			minZ = p.Z
		}
		if p.Z > maxZ {
			maxZ = p.Z
		}
	}

	rangeX := maxX - minX
	rangeZ := maxZ - minZ
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeZ == 0 {
		rangeZ = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minZ -= rangeZ * 0.1
	maxZ += rangeZ * 0.1
	rangeX = maxX - minX
	rangeZ = maxZ - minZ

	toScreen := func(p geom.Vec3) (float64, float64) {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Z-minZ)/rangeZ*float64(height)
		return x, y
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		x, y := toScreen(p)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")

	sx, sy := toScreen(points[0])
	ex, ey := toScreen(points[len(points)-1])
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="#4fd6be"/>
<circle cx="%.1f" cy="%.1f" r="3" fill="#e06c75"/>
</svg>`, sx, sy, ex, ey))

	return sb.String()
}

// TrajectoryFile writes TrajectorySVG output to path.
func TrajectoryFile(path string, points []geom.Vec3, width, height int, strokeColor string) error {
	svg := TrajectorySVG(points, width, height, strokeColor)
	if svg == "" {
		return fmt.Errorf("trajectory too short to render")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
