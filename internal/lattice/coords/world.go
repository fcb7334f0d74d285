package coords

import (
	"github.com/johanhenriksson/goworld/math/vec3"
	"github.com/paulmach/orb"
)

// World space is x east, y up, z north. Positions carry float32 like the
// meshes built from them; planar lookups go through orb in float64.

// Position3 places a vertex at the given elevation in world space.
func (m Metrics) Position3(v Vertex, elevation int) vec3.T {
	p := m.VertexPosition(v)
	return vec3.New(float32(p[0]), float32(m.Height(elevation)), float32(p[1]))
}

// Planar drops the height component.
func Planar(p vec3.T) orb.Point { return orb.Point{float64(p.X), float64(p.Z)} }

// Unit scales v to length 1. The zero vector stays zero.
func Unit(v vec3.T) vec3.T {
	if v.Length() == 0 {
		return v
	}
	return v.Normalized()
}

// FaceNormal is the unit normal of triangle abc. Clockwise triangles seen
// from above face up.
func FaceNormal(a, b, c vec3.T) vec3.T {
	return Unit(vec3.Cross(b.Sub(a), c.Sub(b)))
}

func Array(v vec3.T) [3]float32 { return [3]float32{v.X, v.Y, v.Z} }
