package coords

import "fmt"

// EdgeDirection points from a Point toward one of its six neighboring Points.
type EdgeDirection uint8

const (
	EdgeNE EdgeDirection = iota
	EdgeE
	EdgeSE
	EdgeSW
	EdgeW
	EdgeNW
)

var EdgeDirections = [6]EdgeDirection{EdgeNE, EdgeE, EdgeSE, EdgeSW, EdgeW, EdgeNW}

var edgeDirectionNames = [6]string{"NE", "E", "SE", "SW", "W", "NW"}

// (dX, dZ) between neighboring vertices.
var vertexSteps = [6][2]int{
	{0, 1},
	{1, 0},
	{1, -1},
	{0, -1},
	{-1, 0},
	{-1, 1},
}

func (d EdgeDirection) Valid() bool { return d < 6 }

func (d EdgeDirection) Opposite() EdgeDirection { return (d + 3) % 6 }

// Forward reports whether d is one of NE, E, SE. Edges are owned by the
// Point they leave in a forward direction.
func (d EdgeDirection) Forward() bool { return d < 3 }

// Orientation folds opposite directions onto the same edge orientation.
func (d EdgeDirection) Orientation() EdgeOrientation { return EdgeOrientation(d % 3) }

func (d EdgeDirection) Grid() GridDirection { return GridDirection(2*d + 1) }

func (d EdgeDirection) String() string {
	if !d.Valid() {
		return "EdgeDirection(?)"
	}
	return edgeDirectionNames[d]
}

// CellDirection names the six triangles around a Point, and the six
// directions one triangle can be from another.
type CellDirection uint8

const (
	CellN CellDirection = iota
	CellNE
	CellSE
	CellS
	CellSW
	CellNW
)

var CellDirections = [6]CellDirection{CellN, CellNE, CellSE, CellS, CellSW, CellNW}

var cellDirectionNames = [6]string{"N", "NE", "SE", "S", "SW", "NW"}

// Cube offset from a vertex (X, Y, Z) to the cell lying in that direction.
var cellsAroundVertex = [6][3]int{
	{-1, 1, 0},
	{0, 1, 0},
	{0, 1, -1},
	{0, 2, -1},
	{-1, 2, -1},
	{-1, 2, 0},
}

// Index of the shared vertex among the corners of the cell lying in that
// direction from it.
var centerCornerIndex = [6]int{0, 2, 1, 0, 2, 1}

func (d CellDirection) Valid() bool { return d < 6 }

func (d CellDirection) Opposite() CellDirection { return (d + 3) % 6 }

func (d CellDirection) Grid() GridDirection { return GridDirection(2 * d) }

// CenterCornerIndex is the corner index, within the cell lying in direction
// d from a vertex, that sits on that vertex.
func (d CellDirection) CenterCornerIndex() int { return centerCornerIndex[d] }

func (d CellDirection) String() string {
	if !d.Valid() {
		return "CellDirection(?)"
	}
	return cellDirectionNames[d]
}

func ParseCellDirection(s string) (CellDirection, error) {
	for i, n := range cellDirectionNames {
		if n == s {
			return CellDirection(i), nil
		}
	}
	return 0, fmt.Errorf("%w: cell direction %q", ErrInvalidDirection, s)
}

// GridDirection is the twelve-way neighborhood of a cell: even values are
// cell directions, odd values are edge directions.
type GridDirection uint8

const (
	GridN GridDirection = iota
	GridNNE
	GridNEE
	GridE
	GridSEE
	GridSSE
	GridS
	GridSSW
	GridSWW
	GridW
	GridNWW
	GridNNW
)

var gridDirectionNames = [12]string{"N", "NNE", "NEE", "E", "SEE", "SSE", "S", "SSW", "SWW", "W", "NWW", "NNW"}

func (d GridDirection) Valid() bool { return d < 12 }

func (d GridDirection) Opposite() GridDirection { return (d + 6) % 12 }

func (d GridDirection) IsCellDirection() bool { return d%2 == 0 }

func (d GridDirection) ToCellDirection() (CellDirection, error) {
	if !d.Valid() || !d.IsCellDirection() {
		return 0, ErrInvalidDirection
	}
	return CellDirection(d / 2), nil
}

func (d GridDirection) ToEdgeDirection() (EdgeDirection, error) {
	if !d.Valid() || d.IsCellDirection() {
		return 0, ErrInvalidDirection
	}
	return EdgeDirection((d - 1) / 2), nil
}

func (d GridDirection) String() string {
	if !d.Valid() {
		return "GridDirection(?)"
	}
	return gridDirectionNames[d]
}

// EdgeOrientation is shared by the two opposite EdgeDirections of an edge.
type EdgeOrientation uint8

const (
	OrientSWNE EdgeOrientation = iota
	OrientEW
	OrientNWSE
)

var edgeOrientationNames = [3]string{"SWNE", "EW", "NWSE"}

// Corner indices of the top cell (first pair) and bottom cell (second pair)
// of an edge. Entries 0 and 2 sit on the far Point, 1 and 3 on the origin.
var edgeCornerIndices = [3][4]int{
	{2, 0, 0, 2},
	{1, 2, 2, 1},
	{0, 1, 1, 0},
}

func (o EdgeOrientation) Valid() bool { return o < 3 }

func (o EdgeOrientation) CornerIndices() [4]int { return edgeCornerIndices[o] }

// Direction is the forward EdgeDirection with this orientation.
func (o EdgeOrientation) Direction() EdgeDirection { return EdgeDirection(o) }

func (o EdgeOrientation) String() string {
	if !o.Valid() {
		return "EdgeOrientation(?)"
	}
	return edgeOrientationNames[o]
}

// NeighborDegree groups the twelve cell neighbors: Primary share an edge,
// Secondary share a vertex in a cell direction, Tertiary share a vertex in
// an edge direction.
type NeighborDegree uint8

const (
	Primary NeighborDegree = iota
	Secondary
	Tertiary
)
