package coords

import "fmt"

// Cell is a triangle in axial cube form. X+Y+Z is 1 for positive
// (upward-pointing) triangles and 0 for negative ones.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func NewCell(x, y, z int) (Cell, error) {
	if s := x + y + z; s != 0 && s != 1 {
		return Cell{}, fmt.Errorf("cell (%d, %d, %d): %w", x, y, z, ErrInvalidCoordinate)
	}
	return Cell{X: x, Y: y, Z: z}, nil
}

func (c Cell) Valid() bool {
	s := c.X + c.Y + c.Z
	return s == 0 || s == 1
}

func (c Cell) IsPositive() bool { return c.X+c.Y+c.Z == 1 }

func (c Cell) Cube() [3]int { return [3]int{c.X, c.Y, c.Z} }

func (c Cell) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// Corners returns the three vertices clockwise, starting at the vertex the
// cell is centered on: the apex for positive cells, the bottom point for
// negative ones.
func (c Cell) Corners() [3]Vertex {
	if c.IsPositive() {
		return [3]Vertex{
			{X: c.X, Z: c.Z + 1},
			{X: c.X + 1, Z: c.Z},
			{X: c.X, Z: c.Z},
		}
	}
	return [3]Vertex{
		{X: c.X + 1, Z: c.Z},
		{X: c.X, Z: c.Z + 1},
		{X: c.X + 1, Z: c.Z + 1},
	}
}

var (
	positiveSides = [3]CellDirection{CellS, CellNW, CellNE}
	negativeSides = [3]CellDirection{CellN, CellSE, CellSW}
)

// Sides lists the directions whose neighbors share an edge with c. Side i
// is the edge opposite corner i. The same list gives, for each corner i,
// the direction in which c lies from that corner's vertex.
func (c Cell) Sides() [3]CellDirection {
	if c.IsPositive() {
		return positiveSides
	}
	return negativeSides
}

// SideIndex returns i such that Sides()[i] == d.
func (c Cell) SideIndex(d CellDirection) (int, error) {
	for i, s := range c.Sides() {
		if s == d {
			return i, nil
		}
	}
	return 0, fmt.Errorf("cell %s side %s: %w", c, d, ErrInvalidDirection)
}

// CrossesEdge reports whether moving from c toward d passes through an edge.
func (c Cell) CrossesEdge(d CellDirection) bool {
	_, err := c.SideIndex(d)
	return err == nil
}

var (
	positiveCornerToward = [6]int{CellN: 0, CellNE: -1, CellSE: 1, CellS: -1, CellSW: 2, CellNW: -1}
	negativeCornerToward = [6]int{CellN: -1, CellNE: 2, CellSE: -1, CellS: 0, CellSW: -1, CellNW: 1}
)

// CornerToward returns the corner index pointing in direction d. Only the
// three directions that cross a vertex are valid for each parity. A ceiling
// cell winds the other way, swapping corners 1 and 2.
func (c Cell) CornerToward(d CellDirection, ceiling bool) (int, error) {
	if !d.Valid() {
		return 0, fmt.Errorf("cell %s corner %d: %w", c, d, ErrInvalidDirection)
	}
	var i int
	if c.IsPositive() {
		i = positiveCornerToward[d]
	} else {
		i = negativeCornerToward[d]
	}
	if i < 0 {
		return 0, fmt.Errorf("cell %s corner %s: %w", c, d, ErrInvalidDirection)
	}
	if ceiling && i > 0 {
		i = 3 - i
	}
	return i, nil
}

// Cube offsets of the twelve neighbors of a positive cell, by
// GridDirection. A negative cell uses the negated offset of the opposite
// direction.
var positiveNeighborOffsets = [12][3]int{
	{-1, -1, 1},
	{0, -1, 1},
	{0, -1, 0},
	{1, -1, 0},
	{1, -1, -1},
	{1, 0, -1},
	{0, 0, -1},
	{0, 1, -1},
	{-1, 1, -1},
	{-1, 1, 0},
	{-1, 0, 0},
	{-1, 0, 1},
}

// Neighbor returns the cell in direction d of the twelve-way neighborhood.
func (c Cell) Neighbor(d GridDirection) Cell {
	var o [3]int
	if c.IsPositive() {
		o = positiveNeighborOffsets[d%12]
	} else {
		p := positiveNeighborOffsets[(d+6)%12]
		o = [3]int{-p[0], -p[1], -p[2]}
	}
	return Cell{X: c.X + o[0], Y: c.Y + o[1], Z: c.Z + o[2]}
}

// Step moves to the adjacent cell in direction d, through an edge or a
// vertex depending on c's parity.
func (c Cell) Step(d CellDirection) Cell { return c.Neighbor(d.Grid()) }

// Degree classifies a GridDirection relative to c.
func (c Cell) Degree(d GridDirection) NeighborDegree {
	if !d.IsCellDirection() {
		return Tertiary
	}
	cd, _ := d.ToCellDirection()
	if c.CrossesEdge(cd) {
		return Primary
	}
	return Secondary
}

// Per EdgeDirection, the edge-crossing cell direction taken from a positive
// cell and from a negative cell so that repeated steps zigzag along d.
var zigzag = [6][2]CellDirection{
	EdgeNE: {CellNE, CellN},
	EdgeE:  {CellNE, CellSE},
	EdgeSE: {CellS, CellSE},
	EdgeSW: {CellS, CellSW},
	EdgeW:  {CellNW, CellSW},
	EdgeNW: {CellNW, CellN},
}

// Line walks n steps from c. Cell directions repeat the same step; edge
// directions alternate between the two parities' edge crossings.
func (c Cell) Line(d GridDirection, n int) ([]Cell, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("line %d: %w", d, ErrInvalidDirection)
	}
	out := make([]Cell, 0, n+1)
	out = append(out, c)
	cur := c
	for i := 0; i < n; i++ {
		if d.IsCellDirection() {
			cd, _ := d.ToCellDirection()
			cur = cur.Step(cd)
		} else {
			ed, _ := d.ToEdgeDirection()
			if cur.IsPositive() {
				cur = cur.Step(zigzag[ed][0])
			} else {
				cur = cur.Step(zigzag[ed][1])
			}
		}
		out = append(out, cur)
	}
	return out, nil
}

func (c Cell) Manhattan(o Cell) int { return manhattan(c.Cube(), o.Cube()) }

func (c Cell) Radial(o Cell) int { return radial(c.Cube(), o.Cube()) }

func (c Cell) Componentwise(o Cell) [3]int { return componentwise(c.Cube(), o.Cube()) }
