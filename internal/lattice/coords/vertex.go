package coords

import "fmt"

// Vertex is a lattice point in axial form. The third cube component is
// implied: Y = -X - Z.
type Vertex struct {
	X int `json:"x"`
	Z int `json:"z"`
}

func NewVertexCube(x, y, z int) (Vertex, error) {
	if x+y+z != 0 {
		return Vertex{}, fmt.Errorf("vertex (%d, %d, %d): %w", x, y, z, ErrInvalidCoordinate)
	}
	return Vertex{X: x, Z: z}, nil
}

func (v Vertex) Y() int { return -v.X - v.Z }

func (v Vertex) Cube() [3]int { return [3]int{v.X, v.Y(), v.Z} }

func (v Vertex) Step(d EdgeDirection) Vertex {
	s := vertexSteps[d%6]
	return Vertex{X: v.X + s[0], Z: v.Z + s[1]}
}

// Neighbors lists the six adjacent vertices in EdgeDirection order.
func (v Vertex) Neighbors() [6]Vertex {
	var out [6]Vertex
	for i, d := range EdgeDirections {
		out[i] = v.Step(d)
	}
	return out
}

// CellAround returns the cell lying in direction d from v. v is that cell's
// corner d.CenterCornerIndex().
func (v Vertex) CellAround(d CellDirection) Cell {
	o := cellsAroundVertex[d%6]
	return Cell{X: v.X + o[0], Y: v.Y() + o[1], Z: v.Z + o[2]}
}

func (v Vertex) Manhattan(o Vertex) int { return manhattan(v.Cube(), o.Cube()) }

func (v Vertex) Radial(o Vertex) int { return radial(v.Cube(), o.Cube()) }

func (v Vertex) Componentwise(o Vertex) [3]int { return componentwise(v.Cube(), o.Cube()) }

func (v Vertex) String() string {
	return fmt.Sprintf("(%d, %d, %d)", v.X, v.Y(), v.Z)
}

func manhattan(a, b [3]int) int {
	d := componentwise(a, b)
	return d[0] + d[1] + d[2]
}

func radial(a, b [3]int) int {
	d := componentwise(a, b)
	m := d[0]
	if d[1] > m {
		m = d[1]
	}
	if d[2] > m {
		m = d[2]
	}
	return m
}

func componentwise(a, b [3]int) [3]int {
	var d [3]int
	for i := range d {
		x := a[i] - b[i]
		if x < 0 {
			x = -x
		}
		d[i] = x
	}
	return d
}
