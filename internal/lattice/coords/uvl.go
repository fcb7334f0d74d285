package coords

import "fmt"

// UVL addresses a cell by its rhombus (U, V) and the layer L within it:
// 1 for the positive triangle, 0 for the negative one.
type UVL struct {
	U int `json:"u"`
	V int `json:"v"`
	L int `json:"l"`
}

func NewUVL(u, v, l int) (UVL, error) {
	if l != 0 && l != 1 {
		return UVL{}, fmt.Errorf("uvl (%d, %d, %d): %w", u, v, l, ErrInvalidCoordinate)
	}
	return UVL{U: u, V: v, L: l}, nil
}

func (c Cell) UVL() UVL {
	return UVL{U: c.X, V: c.Z, L: c.X + c.Y + c.Z}
}

func (u UVL) Cell() Cell {
	return Cell{X: u.U, Y: u.L - u.U - u.V, Z: u.V}
}
