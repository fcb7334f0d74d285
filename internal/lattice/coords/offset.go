package coords

import (
	"fmt"

	"trimap.ai/internal/mathx"
)

// Layout selects which rows of an offset grid are shifted half a step east.
type Layout uint8

const (
	OddRowsShifted Layout = iota
	EvenRowsShifted
)

func ParseLayout(s string) (Layout, error) {
	switch s {
	case "", "odd_rows":
		return OddRowsShifted, nil
	case "even_rows":
		return EvenRowsShifted, nil
	}
	return 0, fmt.Errorf("offset layout %q: %w", s, ErrInvalidCoordinate)
}

func (l Layout) String() string {
	if l == EvenRowsShifted {
		return "even_rows"
	}
	return "odd_rows"
}

// rowOffset is how far row's column 0 sits from axial X = 0.
func (l Layout) rowOffset(row int) int {
	if l == EvenRowsShifted {
		return -mathx.FloorDiv(-row, 2)
	}
	return mathx.FloorDiv(row, 2)
}

// rowShift is 1 when the strip above row starts half a step east of it.
func (l Layout) rowShift(row int) int {
	return l.rowOffset(row+1) - l.rowOffset(row)
}

func VertexFromOffset(col, row int, l Layout) Vertex {
	return Vertex{X: col - l.rowOffset(row), Z: row}
}

func (v Vertex) Offset(l Layout) (col, row int) {
	return v.X + l.rowOffset(v.Z), v.Z
}

// CellFromOffset addresses the triangle strip between vertex rows row and
// row+1. Columns alternate parity, starting with a positive cell when the
// strip's lower row is not shifted.
func CellFromOffset(col, row int, l Layout) Cell {
	m := col - l.rowShift(row)
	x := mathx.FloorDiv(m, 2) - l.rowOffset(row)
	up := 0
	if mathx.Mod(m, 2) == 0 {
		up = 1
	}
	return Cell{X: x, Y: up - x - row, Z: row}
}

func (c Cell) Offset(l Layout) (col, row int) {
	col = 2*(c.X+l.rowOffset(c.Z)) + l.rowShift(c.Z)
	if !c.IsPositive() {
		col++
	}
	return col, c.Z
}

// CellColumns is the number of cell columns per strip for a grid nx points
// wide.
func CellColumns(nx int) int {
	if nx < 2 {
		return 0
	}
	return 2 * (nx - 1)
}
