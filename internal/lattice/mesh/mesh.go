package mesh

import (
	"fmt"

	"github.com/johanhenriksson/goworld/math/vec3"

	"trimap.ai/internal/lattice/coords"
	"trimap.ai/internal/lattice/grid"
	"trimap.ai/internal/lattice/slope"
)

// Mesh is the flat-shaded geometry of one chunk. Every triangle owns its
// three vertices, so Vertices, Normals and Colors run in parallel and
// Indices simply counts up.
type Mesh struct {
	Chunk    grid.ChunkID `json:"chunk"`
	Vertices [][3]float32 `json:"vertices"`
	Normals  [][3]float32 `json:"normals"`
	Colors   [][4]float32 `json:"colors"`
	Indices  []uint32     `json:"indices"`
	Bounds   Bounds       `json:"bounds"`

	FlatTriangles  int `json:"flat_triangles"`
	CliffTriangles int `json:"cliff_triangles"`
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min [3]float32 `json:"min"`
	Max [3]float32 `json:"max"`
}

func (m *Mesh) Triangles() int { return len(m.Indices) / 3 }

// Builder triangulates chunks. Its buffers are reused between builds; a
// Builder must not be shared between goroutines.
type Builder struct {
	vertices []vec3.T
	colors   [][4]float32
	flat     int
	cliff    int
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) reset() {
	b.vertices = b.vertices[:0]
	b.colors = b.colors[:0]
	b.flat = 0
	b.cliff = 0
}

// Build triangulates one chunk. The returned mesh does not alias the
// builder's buffers.
func (b *Builder) Build(g *grid.Grid, id grid.ChunkID) (Mesh, error) {
	ch := g.Chunk(id)
	if ch == nil {
		return Mesh{}, fmt.Errorf("chunk %d: %w", id, grid.ErrUnknownEntity)
	}
	b.reset()
	cliff := slope.RGBA32(g.Config().Shader.Palette[slope.Cliff])
	for _, cid := range ch.Cells {
		if err := b.addCell(g, cid, cliff); err != nil {
			return Mesh{}, err
		}
	}
	return b.finish(id), nil
}

// Flush rebuilds every dirty chunk and clears its flag.
func (b *Builder) Flush(g *grid.Grid) ([]Mesh, error) {
	dirty := g.DirtyChunks()
	out := make([]Mesh, 0, len(dirty))
	for _, id := range dirty {
		m, err := b.Build(g, id)
		if err != nil {
			return out, err
		}
		g.ClearDirty(id)
		out = append(out, m)
	}
	return out, nil
}

func (b *Builder) addCell(g *grid.Grid, id grid.CellID, cliff [4]float32) error {
	d, err := g.Resolve(id)
	if err != nil {
		return err
	}
	c := g.Cell(id)
	var p [3]vec3.T
	for i := range p {
		p[i], _ = g.CornerPosition(c.Corner(i))
	}
	b.triangle(p[0], p[1], p[2],
		slope.RGBA32(d.Colors[0]), slope.RGBA32(d.Colors[1]), slope.RGBA32(d.Colors[2]))
	b.flat++

	// Each edge has exactly one positive cell, which emits its wall.
	if !c.Coords.IsPositive() {
		return nil
	}
	for side := 0; side < 3; side++ {
		eid, err := g.CellEdge(id, side)
		if err != nil {
			return err
		}
		if eid == grid.NoEdge || !g.IsCliff(eid) {
			continue
		}
		b.addWall(g, eid, cliff)
	}
	return nil
}

func (b *Builder) addWall(g *grid.Grid, id grid.EdgeID, color [4]float32) {
	e := g.Edge(id)
	var p [4]vec3.T
	for i, r := range e.Corners() {
		p[i], _ = g.CornerPosition(r)
	}
	el := g.EdgeElevations(id)
	wall := func(i, j, k int) {
		b.triangle(p[i], p[j], p[k], color, color, color)
		b.cliff++
	}
	switch {
	case el[0] != el[2] && el[1] != el[3]:
		if g.LowSideIndex(id) == 0 {
			wall(0, 2, 1)
			wall(1, 2, 3)
		} else {
			wall(1, 0, 2)
			wall(2, 3, 1)
		}
	case el[0] != el[2]:
		wall(1, 0, 2)
	default:
		wall(1, 0, 3)
	}
}

func (b *Builder) triangle(p0, p1, p2 vec3.T, c0, c1, c2 [4]float32) {
	b.vertices = append(b.vertices, p0, p1, p2)
	b.colors = append(b.colors, c0, c1, c2)
}

// finish copies the scratch buffers out and computes face normals now that
// every triangle is known.
func (b *Builder) finish(id grid.ChunkID) Mesh {
	n := len(b.vertices)
	m := Mesh{
		Chunk:          id,
		Vertices:       make([][3]float32, n),
		Normals:        make([][3]float32, n),
		Colors:         make([][4]float32, n),
		Indices:        make([]uint32, n),
		FlatTriangles:  b.flat,
		CliffTriangles: b.cliff,
	}
	copy(m.Colors, b.colors)
	if n > 0 {
		m.Bounds = Bounds{
			Min: [3]float32{1e10, 1e10, 1e10},
			Max: [3]float32{-1e10, -1e10, -1e10},
		}
	}
	for i := 0; i < n; i += 3 {
		normal := coords.Array(coords.FaceNormal(b.vertices[i], b.vertices[i+1], b.vertices[i+2]))
		for k := i; k < i+3; k++ {
			m.Vertices[k] = coords.Array(b.vertices[k])
			m.Normals[k] = normal
			m.Indices[k] = uint32(k)
			updateBounds(&m.Bounds, m.Vertices[k])
		}
	}
	return m
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
