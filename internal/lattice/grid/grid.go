package grid

import (
	"fmt"

	"github.com/johanhenriksson/goworld/math/vec3"

	"trimap.ai/internal/lattice/coords"
	"trimap.ai/internal/lattice/slope"
)

type Config struct {
	ChunkSizeX, ChunkSizeZ   int
	ChunkCountX, ChunkCountZ int
	Layout                   coords.Layout
	Metrics                  coords.Metrics
	Shader                   slope.Shader
	DefaultElevation         int
}

func DefaultConfig() Config {
	return Config{
		ChunkSizeX:  5,
		ChunkSizeZ:  5,
		ChunkCountX: 4,
		ChunkCountZ: 3,
		Layout:      coords.OddRowsShifted,
		Metrics:     coords.DefaultMetrics(),
		Shader:      slope.DefaultShader(),
	}
}

func (c Config) Validate() error {
	if c.ChunkSizeX <= 0 || c.ChunkSizeZ <= 0 {
		return fmt.Errorf("grid: chunk size %dx%d must be positive", c.ChunkSizeX, c.ChunkSizeZ)
	}
	if c.ChunkCountX <= 0 || c.ChunkCountZ <= 0 {
		return fmt.Errorf("grid: chunk count %dx%d must be positive", c.ChunkCountX, c.ChunkCountZ)
	}
	if c.PointsX() < 2 || c.PointsZ() < 2 {
		return fmt.Errorf("grid: %dx%d points cannot hold a triangle", c.PointsX(), c.PointsZ())
	}
	if c.Metrics.OuterRadius <= 0 {
		return fmt.Errorf("grid: outer radius must be > 0")
	}
	return c.Shader.Thresholds.Validate()
}

func (c Config) PointsX() int { return c.ChunkSizeX * c.ChunkCountX }
func (c Config) PointsZ() int { return c.ChunkSizeZ * c.ChunkCountZ }

// Grid owns every entity of the map. It is not safe for concurrent use.
type Grid struct {
	cfg Config

	points []Point
	cells  []TriCell
	edges  []Edge
	chunks []Chunk

	pointAt map[coords.Vertex]PointID
	stacks  map[coords.Cell]*GridCell
}

func (g *Grid) Config() Config          { return g.cfg }
func (g *Grid) Metrics() coords.Metrics { return g.cfg.Metrics }

func (g *Grid) NumPoints() int { return len(g.points) }
func (g *Grid) NumCells() int  { return len(g.cells) }
func (g *Grid) NumEdges() int  { return len(g.edges) }
func (g *Grid) NumChunks() int { return len(g.chunks) }

// Point returns nil for an id outside the arena. The same holds for Cell,
// Edge and Chunk.
func (g *Grid) Point(id PointID) *Point {
	if id < 0 || int(id) >= len(g.points) {
		return nil
	}
	return &g.points[id]
}

func (g *Grid) Cell(id CellID) *TriCell {
	if id < 0 || int(id) >= len(g.cells) {
		return nil
	}
	return &g.cells[id]
}

func (g *Grid) Edge(id EdgeID) *Edge {
	if id < 0 || int(id) >= len(g.edges) {
		return nil
	}
	return &g.edges[id]
}

func (g *Grid) Chunk(id ChunkID) *Chunk {
	if id < 0 || int(id) >= len(g.chunks) {
		return nil
	}
	return &g.chunks[id]
}

func (g *Grid) point(id PointID) (*Point, error) {
	if p := g.Point(id); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("point %d: %w", id, ErrUnknownEntity)
}

func (g *Grid) cell(id CellID) (*TriCell, error) {
	if c := g.Cell(id); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("cell %d: %w", id, ErrUnknownEntity)
}

func (g *Grid) PointAtVertex(v coords.Vertex) PointID {
	if id, ok := g.pointAt[v]; ok {
		return id
	}
	return NoPoint
}

func (g *Grid) PointAtOffset(col, row int) PointID {
	return g.PointAtVertex(coords.VertexFromOffset(col, row, g.cfg.Layout))
}

func (g *Grid) Stack(c coords.Cell) *GridCell { return g.stacks[c] }

func (g *Grid) CellAtCoords(c coords.Cell, l Layer) CellID {
	s := g.stacks[c]
	if s == nil {
		return NoCell
	}
	return s.Layer(l)
}

// CornerPosition places a corner in world space.
func (g *Grid) CornerPosition(r CornerRef) (vec3.T, error) {
	c, err := g.cell(r.Cell)
	if err != nil {
		return vec3.T{}, err
	}
	if r.Index < 0 || r.Index > 2 {
		return vec3.T{}, fmt.Errorf("corner %d of cell %d: %w", r.Index, r.Cell, ErrUnknownEntity)
	}
	return g.cornerPosition(c, r.Index), nil
}

func (g *Grid) cornerPosition(c *TriCell, i int) vec3.T {
	return g.cfg.Metrics.Position3(g.points[c.points[i]].Coords, c.elevation[i])
}

// Elevation returns the elevation stored on one corner.
func (g *Grid) Elevation(r CornerRef) (int, error) {
	c, err := g.cell(r.Cell)
	if err != nil {
		return 0, err
	}
	if r.Index < 0 || r.Index > 2 {
		return 0, fmt.Errorf("corner %d of cell %d: %w", r.Index, r.Cell, ErrUnknownEntity)
	}
	return c.elevation[r.Index], nil
}
