package grid

import (
	"fmt"

	"trimap.ai/internal/lattice/coords"
)

// LinkNeighbors records that b lies in direction d from a, and a in the
// opposite direction from b.
func (g *Grid) LinkNeighbors(a PointID, d coords.EdgeDirection, b PointID) error {
	pa, err := g.point(a)
	if err != nil {
		return err
	}
	pb, err := g.point(b)
	if err != nil {
		return err
	}
	if !d.Valid() || pa.Coords.Step(d) != pb.Coords {
		return fmt.Errorf("link %s -%s-> %s: %w", pa.Coords, d, pb.Coords, coords.ErrInvalidDirection)
	}
	if pa.neighbors[d] != NoPoint || pb.neighbors[d.Opposite()] != NoPoint {
		return fmt.Errorf("link %s -%s-> %s: %w", pa.Coords, d, pb.Coords, ErrDuplicateAssembly)
	}
	pa.neighbors[d] = b
	pb.neighbors[d.Opposite()] = a
	return nil
}

// LinkEdge attaches e to a in direction d and to a's neighbor in that
// direction, opposite.
func (g *Grid) LinkEdge(a PointID, d coords.EdgeDirection, e EdgeID) error {
	pa, err := g.point(a)
	if err != nil {
		return err
	}
	if g.Edge(e) == nil {
		return fmt.Errorf("edge %d: %w", e, ErrUnknownEntity)
	}
	if !d.Valid() {
		return fmt.Errorf("edge at %s: %w", pa.Coords, coords.ErrInvalidDirection)
	}
	b := pa.neighbors[d]
	if b == NoPoint {
		return fmt.Errorf("edge at %s toward %s: %w", pa.Coords, d, ErrMissingNeighbor)
	}
	pb := &g.points[b]
	if pa.edges[d] != NoEdge || pb.edges[d.Opposite()] != NoEdge {
		return fmt.Errorf("edge at %s toward %s: %w", pa.Coords, d, ErrDuplicateAssembly)
	}
	pa.edges[d] = e
	pb.edges[d.Opposite()] = e
	return nil
}

// CellEdge returns the edge on side i of a cell (see coords.Cell.Sides), or
// NoEdge on the map boundary.
func (g *Grid) CellEdge(id CellID, side int) (EdgeID, error) {
	c, err := g.cell(id)
	if err != nil {
		return NoEdge, err
	}
	if side < 0 || side > 2 {
		return NoEdge, fmt.Errorf("cell %s side %d: %w", c.Coords, side, coords.ErrInvalidDirection)
	}
	a := anchorsFor(c.Coords)[side]
	return g.points[c.points[a.corner]].edges[a.dir], nil
}

// CellNeighbor returns the cell sharing an edge with id in direction d.
// Only the three edge-crossing directions of the cell's parity are valid.
// NoCell means the side is on the map boundary.
func (g *Grid) CellNeighbor(id CellID, d coords.CellDirection) (CellID, error) {
	c, err := g.cell(id)
	if err != nil {
		return NoCell, err
	}
	side, err := c.Coords.SideIndex(d)
	if err != nil {
		return NoCell, err
	}
	e, _ := g.CellEdge(id, side)
	if e == NoEdge {
		return NoCell, nil
	}
	return g.edges[e].Other(id), nil
}

// CellNeighborAt looks up the twelve-way neighbor in the same layer.
func (g *Grid) CellNeighborAt(id CellID, d coords.GridDirection) (CellID, error) {
	c, err := g.cell(id)
	if err != nil {
		return NoCell, err
	}
	if !d.Valid() {
		return NoCell, fmt.Errorf("cell %s toward %d: %w", c.Coords, d, coords.ErrInvalidDirection)
	}
	return g.CellAtCoords(c.Coords.Neighbor(d), c.Layer), nil
}

// CellNeighbors lists the existing neighbors of the given degrees in
// GridDirection order. No degrees means all twelve.
func (g *Grid) CellNeighbors(id CellID, degrees ...coords.NeighborDegree) ([]CellID, error) {
	c, err := g.cell(id)
	if err != nil {
		return nil, err
	}
	want := [3]bool{len(degrees) == 0, len(degrees) == 0, len(degrees) == 0}
	for _, d := range degrees {
		if d > coords.Tertiary {
			return nil, fmt.Errorf("neighbor degree %d: %w", d, coords.ErrInvalidDirection)
		}
		want[d] = true
	}
	var out []CellID
	for d := coords.GridN; d <= coords.GridNNW; d++ {
		if !want[c.Coords.Degree(d)] {
			continue
		}
		if n := g.CellAtCoords(c.Coords.Neighbor(d), c.Layer); n != NoCell {
			out = append(out, n)
		}
	}
	return out, nil
}
