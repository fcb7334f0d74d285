package coords

import (
	"math"

	"github.com/paulmach/orb"
)

// Metrics maps lattice coordinates to world space. Positions are planar
// orb.Points holding world (x, z); elevation becomes world y.
type Metrics struct {
	OuterRadius   float64 `json:"outer_radius"`
	ElevationStep float64 `json:"elevation_step"`
}

func DefaultMetrics() Metrics {
	return Metrics{OuterRadius: 5, ElevationStep: 5}
}

func (m Metrics) InnerRadius() float64 { return m.OuterRadius * math.Sqrt(3) / 2 }

// EdgeLength is the distance between neighboring vertices.
func (m Metrics) EdgeLength() float64 { return 2 * m.InnerRadius() }

func (m Metrics) RowHeight() float64 { return 1.5 * m.OuterRadius }

func (m Metrics) Height(elevation int) float64 { return float64(elevation) * m.ElevationStep }

func (m Metrics) VertexPosition(v Vertex) orb.Point {
	return orb.Point{
		(float64(v.X) + float64(v.Z)/2) * m.EdgeLength(),
		float64(v.Z) * m.RowHeight(),
	}
}

// VertexFromPosition returns the vertex nearest to p.
func (m Metrics) VertexFromPosition(p orb.Point) Vertex {
	x := p[0] / m.EdgeLength()
	y := -x
	off := p[1] / (3 * m.OuterRadius)
	x -= off
	y -= off
	z := -x - y

	ix, iy, iz := math.Round(x), math.Round(y), math.Round(z)
	if ix+iy+iz != 0 {
		dx, dy, dz := math.Abs(x-ix), math.Abs(y-iy), math.Abs(z-iz)
		if dx > dy && dx > dz {
			ix = -iy - iz
		} else if dz > dy {
			iz = -ix - iy
		}
	}
	return Vertex{X: int(ix), Z: int(iz)}
}

// CellFromPosition finds the vertex nearest to p, then the 60 degree
// sector around it that contains p.
func (m Metrics) CellFromPosition(p orb.Point) Cell {
	v := m.VertexFromPosition(p)
	return v.CellAround(SectorDirection(m.VertexPosition(v), p))
}

// SectorDirection is the cell direction from center whose sector holds p.
func SectorDirection(center, p orb.Point) CellDirection {
	deg := math.Atan2(p[1]-center[1], p[0]-center[0]) * 180 / math.Pi
	switch {
	case deg >= 0 && deg < 60:
		return CellNE
	case deg >= 60 && deg < 120:
		return CellN
	case deg >= 120:
		return CellNW
	case deg < -120:
		return CellSW
	case deg < -60:
		return CellS
	default:
		return CellSE
	}
}

// CellCenter is the centroid of the cell's corners.
func (m Metrics) CellCenter(c Cell) orb.Point {
	var sx, sz float64
	for _, v := range c.Corners() {
		p := m.VertexPosition(v)
		sx += p[0]
		sz += p[1]
	}
	return orb.Point{sx / 3, sz / 3}
}
