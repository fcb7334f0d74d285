package coords

import "fmt"

// Continuous names a cell by the components its corner vertices share: X is
// the X value common to two of the corners, and likewise for Y and Z.
// Positive cells sum to -1, negative cells to +1.
type Continuous struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (c Cell) Continuous() Continuous {
	if c.IsPositive() {
		return Continuous{X: c.X, Y: c.Y - 2, Z: c.Z}
	}
	return Continuous{X: c.X + 1, Y: c.Y - 1, Z: c.Z + 1}
}

func (k Continuous) Cell() (Cell, error) {
	switch k.X + k.Y + k.Z {
	case -1:
		return Cell{X: k.X, Y: k.Y + 2, Z: k.Z}, nil
	case 1:
		return Cell{X: k.X - 1, Y: k.Y + 1, Z: k.Z - 1}, nil
	}
	return Cell{}, fmt.Errorf("continuous (%d, %d, %d): %w", k.X, k.Y, k.Z, ErrInvalidCoordinate)
}

// CellFromVertices finds the cell whose corners are a, b and c, in any order.
func CellFromVertices(a, b, c Vertex) (Cell, error) {
	ca, cb, cc := a.Cube(), b.Cube(), c.Cube()
	var k [3]int
	for axis := 0; axis < 3; axis++ {
		switch {
		case ca[axis] == cb[axis]:
			k[axis] = ca[axis]
		case ca[axis] == cc[axis]:
			k[axis] = ca[axis]
		case cb[axis] == cc[axis]:
			k[axis] = cb[axis]
		default:
			return Cell{}, fmt.Errorf("vertices %s %s %s: %w", a, b, c, ErrAmbiguousSharedCoordinate)
		}
	}
	cell, err := Continuous{X: k[0], Y: k[1], Z: k[2]}.Cell()
	if err != nil {
		return Cell{}, fmt.Errorf("vertices %s %s %s: %w", a, b, c, ErrAmbiguousSharedCoordinate)
	}
	want := map[Vertex]bool{a: true, b: true, c: true}
	for _, v := range cell.Corners() {
		if !want[v] {
			return Cell{}, fmt.Errorf("vertices %s %s %s: %w", a, b, c, ErrAmbiguousSharedCoordinate)
		}
	}
	return cell, nil
}
