package viz

import (
	"math"

	"github.com/san-kum/drivesim/internal/geom"
)

// Map projects world ground-plane positions onto a braille canvas centered
// on a focus point. World +X maps right and +Z maps up.
type Map struct {
	canvas *Canvas
	scale  float64 // world units per dot
}

func NewMap(cols, rows int, scale float64) *Map {
	if scale <= 0 {
		scale = 1
	}
	return &Map{canvas: NewCanvas(cols, rows), scale: scale}
}

// Render draws the player's recent trail, traffic positions and the player
// marker, returning the canvas as terminal lines.
func (m *Map) Render(center geom.Vec3, heading float64, trail, traffic []geom.Vec3) string {
	m.canvas.Clear()

	for _, p := range trail {
		if x, y, ok := m.project(center, p); ok {
			m.canvas.Set(x, y)
		}
	}

	for _, p := range traffic {
		if x, y, ok := m.project(center, p); ok {
			m.canvas.Set(x, y)
			m.canvas.Set(x+1, y)
			m.canvas.Set(x, y+1)
			m.canvas.Set(x+1, y+1)
		}
	}

	// The player sits at the viewport center with a short heading tick.
	cx, cy := m.canvas.Cols, m.canvas.Rows*2
	tx := cx + int(math.Round(4*math.Sin(heading)))
	ty := cy - int(math.Round(4*math.Cos(heading)))
	m.canvas.Line(cx, cy, tx, ty)

	return m.canvas.String()
}

func (m *Map) project(center, p geom.Vec3) (int, int, bool) {
	dx := (p.X - center.X) / m.scale
	dz := (p.Z - center.Z) / m.scale
	x := m.canvas.Cols + int(math.Round(dx))
	y := m.canvas.Rows*2 - int(math.Round(dz))
	if x < 0 || y < 0 || x >= m.canvas.Cols*2 || y >= m.canvas.Rows*4 {
		return 0, 0, false
	}
	return x, y, true
}
