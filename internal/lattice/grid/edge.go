package grid

import "trimap.ai/internal/lattice/coords"

// Edge joins two points and separates two cells. Origin is the point that
// leaves along Orientation.Direction(); Far is the other end.
type Edge struct {
	ID          EdgeID
	Orientation coords.EdgeOrientation
	Origin, Far PointID
	Top, Bottom CellID
}

// Side returns Top for 0 and Bottom for 1.
func (e *Edge) Side(i int) CellID {
	if i == 0 {
		return e.Top
	}
	return e.Bottom
}

// Other returns the cell across the edge from c.
func (e *Edge) Other(c CellID) CellID {
	switch c {
	case e.Top:
		return e.Bottom
	case e.Bottom:
		return e.Top
	}
	return NoCell
}

// Corners lists the two top corners then the two bottom corners. Entries
// 0 and 2 sit on Far, 1 and 3 on Origin.
func (e *Edge) Corners() [4]CornerRef {
	idx := e.Orientation.CornerIndices()
	return [4]CornerRef{
		{Cell: e.Top, Index: idx[0]},
		{Cell: e.Top, Index: idx[1]},
		{Cell: e.Bottom, Index: idx[2]},
		{Cell: e.Bottom, Index: idx[3]},
	}
}

// sideAnchor locates the edge on side i of a cell: it leaves the cell's
// corner `corner` toward dir, and the cell is its top or bottom.
type sideAnchor struct {
	corner int
	dir    coords.EdgeDirection
	top    bool
}

// Indexed like coords.Cell.Sides.
var (
	positiveAnchors = [3]sideAnchor{
		{corner: 2, dir: coords.EdgeE, top: true},
		{corner: 2, dir: coords.EdgeNE, top: false},
		{corner: 0, dir: coords.EdgeSE, top: false},
	}
	negativeAnchors = [3]sideAnchor{
		{corner: 1, dir: coords.EdgeE, top: false},
		{corner: 0, dir: coords.EdgeNE, top: true},
		{corner: 1, dir: coords.EdgeSE, top: true},
	}
)

func anchorsFor(c coords.Cell) *[3]sideAnchor {
	if c.IsPositive() {
		return &positiveAnchors
	}
	return &negativeAnchors
}

// EdgeElevations returns the corner elevations in Edge.Corners order.
func (g *Grid) EdgeElevations(id EdgeID) [4]int {
	var out [4]int
	e := g.Edge(id)
	if e == nil {
		return out
	}
	for i, r := range e.Corners() {
		out[i] = g.cells[r.Cell].elevation[r.Index]
	}
	return out
}

// IsCliff reports whether the two cells disagree on the height of either
// shared point.
func (g *Grid) IsCliff(id EdgeID) bool {
	e := g.Edge(id)
	if e == nil || e.Top == NoCell || e.Bottom == NoCell {
		return false
	}
	c := g.EdgeElevations(id)
	return c[0] != c[2] || c[1] != c[3]
}

// LowSideIndex is 0 when the top cell is lower at either shared point,
// else 1. A crossed cliff (top lower at one end, higher at the other)
// reports 0.
func (g *Grid) LowSideIndex(id EdgeID) int {
	c := g.EdgeElevations(id)
	if c[0] < c[2] || c[1] < c[3] {
		return 0
	}
	return 1
}
