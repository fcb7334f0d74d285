package grid

import "trimap.ai/internal/lattice/coords"

// Point is a lattice vertex. Cell slots are indexed by the CellDirection in
// which the cell lies from the point; neighbor and edge slots by
// EdgeDirection.
type Point struct {
	ID     PointID
	Coords coords.Vertex
	Chunk  ChunkID

	floor     [6]CellID
	ceiling   [6]CellID
	neighbors [6]PointID
	edges     [6]EdgeID
}

func newPoint(id PointID, v coords.Vertex, chunk ChunkID) Point {
	p := Point{ID: id, Coords: v, Chunk: chunk}
	for i := 0; i < 6; i++ {
		p.floor[i] = NoCell
		p.ceiling[i] = NoCell
		p.neighbors[i] = NoPoint
		p.edges[i] = NoEdge
	}
	return p
}

func (p *Point) Neighbor(d coords.EdgeDirection) PointID { return p.neighbors[d%6] }

func (p *Point) Edge(d coords.EdgeDirection) EdgeID { return p.edges[d%6] }

func (p *Point) Cell(d coords.CellDirection, l Layer) CellID {
	if l == Ceiling {
		return p.ceiling[d%6]
	}
	return p.floor[d%6]
}

func (p *Point) cellSlots(l Layer) *[6]CellID {
	if l == Ceiling {
		return &p.ceiling
	}
	return &p.floor
}
