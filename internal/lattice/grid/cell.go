package grid

import (
	"github.com/johanhenriksson/goworld/math/vec3"
	"github.com/lucasb-eyer/go-colorful"

	"trimap.ai/internal/lattice/coords"
	"trimap.ai/internal/lattice/slope"
)

// Derived holds everything computed from a cell's corner elevations.
type Derived struct {
	Type   slope.TriType
	Normal vec3.T
	// AvgY is the mean corner elevation.
	AvgY   float64
	Colors [3]colorful.Color
}

type cacheState uint8

const (
	cacheDirty cacheState = iota
	cacheClean
)

// TriCell is one triangle of the map. Corners run clockwise from the point
// the cell is centered on.
type TriCell struct {
	ID     CellID
	Coords coords.Cell
	Layer  Layer
	Chunk  ChunkID

	points    [3]PointID
	elevation [3]int
	paint     colorful.Color

	state   cacheState
	derived Derived
}

func (c *TriCell) Point(i int) PointID { return c.points[i%3] }

func (c *TriCell) Points() [3]PointID { return c.points }

func (c *TriCell) Elevation(i int) int { return c.elevation[i%3] }

func (c *TriCell) Elevations() [3]int { return c.elevation }

func (c *TriCell) Paint() colorful.Color { return c.paint }

func (c *TriCell) Dirty() bool { return c.state == cacheDirty }

func (c *TriCell) Corner(i int) CornerRef { return CornerRef{Cell: c.ID, Index: i % 3} }

func (c *TriCell) invalidate() { c.state = cacheDirty }

// CornerRef addresses one corner of one cell. Corners of different cells
// meeting at the same point are independent.
type CornerRef struct {
	Cell  CellID `json:"cell"`
	Index int    `json:"index"`
}

func (r CornerRef) Next() CornerRef { return CornerRef{Cell: r.Cell, Index: (r.Index + 1) % 3} }

func (r CornerRef) Prev() CornerRef { return CornerRef{Cell: r.Cell, Index: (r.Index + 2) % 3} }

// Opposite returns the third corner of the triangle, given two distinct
// corners of the same cell.
func (r CornerRef) Opposite(other CornerRef) (CornerRef, error) {
	if other.Cell != r.Cell || other.Index == r.Index {
		return CornerRef{}, ErrUnknownEntity
	}
	return CornerRef{Cell: r.Cell, Index: 3 - r.Index - other.Index}, nil
}

// GridCell is the stack of cells sharing one 2D coordinate, alternating
// floor and ceiling from the bottom.
type GridCell struct {
	Coords coords.Cell
	Layers []CellID
}

func (s *GridCell) Floor() CellID {
	if len(s.Layers) == 0 {
		return NoCell
	}
	return s.Layers[0]
}

func (s *GridCell) Top() CellID {
	if len(s.Layers) == 0 {
		return NoCell
	}
	return s.Layers[len(s.Layers)-1]
}

// Layer returns the topmost cell of the given layer.
func (s *GridCell) Layer(l Layer) CellID {
	for i := len(s.Layers) - 1; i >= 0; i-- {
		if Layer(i%2) == l {
			return s.Layers[i]
		}
	}
	return NoCell
}
