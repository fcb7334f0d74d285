package coords

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestOffsetRoundTrip_BothLayouts(t *testing.T) {
	for _, l := range []Layout{OddRowsShifted, EvenRowsShifted} {
		for row := -7; row <= 7; row++ {
			for col := -7; col <= 7; col++ {
				v := VertexFromOffset(col, row, l)
				if c, r := v.Offset(l); c != col || r != row {
					t.Fatalf("%s vertex (%d,%d) -> %s -> (%d,%d)", l, col, row, v, c, r)
				}
				cell := CellFromOffset(col, row, l)
				if !cell.Valid() {
					t.Fatalf("%s cell (%d,%d) -> %s has bad sum", l, col, row, cell)
				}
				if c, r := cell.Offset(l); c != col || r != row {
					t.Fatalf("%s cell (%d,%d) -> %s -> (%d,%d)", l, col, row, cell, c, r)
				}
			}
		}
	}
}

func TestCellFromOffset_StripCornersStayInGrid(t *testing.T) {
	const nx, nz = 6, 5
	for _, l := range []Layout{OddRowsShifted, EvenRowsShifted} {
		for row := 0; row < nz-1; row++ {
			for col := 0; col < CellColumns(nx); col++ {
				cell := CellFromOffset(col, row, l)
				for _, v := range cell.Corners() {
					c, r := v.Offset(l)
					if c < 0 || c >= nx || r < row || r > row+1 {
						t.Fatalf("%s cell %s corner %s at offset (%d,%d) outside strip", l, cell, v, c, r)
					}
				}
			}
		}
	}
}

func TestNewCell_SumInvariant(t *testing.T) {
	if _, err := NewCell(1, 0, 0); err != nil {
		t.Fatalf("positive: %v", err)
	}
	if _, err := NewCell(1, -1, 0); err != nil {
		t.Fatalf("negative: %v", err)
	}
	if _, err := NewCell(1, 1, 0); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if _, err := NewVertexCube(1, 1, -1); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if _, err := NewUVL(0, 0, 2); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestCellAround_CenterCorner(t *testing.T) {
	v := Vertex{X: 2, Z: -3}
	for _, d := range CellDirections {
		c := v.CellAround(d)
		if !c.Valid() {
			t.Fatalf("%s: invalid cell %s", d, c)
		}
		if got := c.Corners()[d.CenterCornerIndex()]; got != v {
			t.Fatalf("%s: corner %d = %s, want %s", d, d.CenterCornerIndex(), got, v)
		}
		// The cell lies in direction d from its center corner.
		idx := d.CenterCornerIndex()
		if c.Sides()[idx] != d {
			t.Fatalf("%s: sides[%d] = %s", d, idx, c.Sides()[idx])
		}
	}
	if !v.CellAround(CellNE).IsPositive() || v.CellAround(CellN).IsPositive() {
		t.Fatalf("unexpected parity around %s", v)
	}
}

func TestCornersAreClockwise(t *testing.T) {
	m := DefaultMetrics()
	for _, c := range []Cell{{0, 1, 0}, {0, 0, 0}, {-3, 2, 2}, {4, -1, -3}} {
		cs := c.Corners()
		a, b, d := m.VertexPosition(cs[0]), m.VertexPosition(cs[1]), m.VertexPosition(cs[2])
		cross := (b[0]-a[0])*(d[1]-a[1]) - (b[1]-a[1])*(d[0]-a[0])
		if cross >= 0 {
			t.Fatalf("cell %s corners not clockwise (cross=%v)", c, cross)
		}
	}
}

func TestNeighbor_EdgeAndVertexSharing(t *testing.T) {
	for _, c := range []Cell{{0, 1, 0}, {0, 0, 0}, {5, -7, 3}, {-2, 5, -3}} {
		mine := map[Vertex]bool{}
		for _, v := range c.Corners() {
			mine[v] = true
		}
		for d := GridDirection(0); d < 12; d++ {
			n := c.Neighbor(d)
			if !n.Valid() || n.IsPositive() == c.IsPositive() && c.Degree(d) == Primary {
				t.Fatalf("%s %s -> %s: bad parity", c, d, n)
			}
			shared := 0
			for _, v := range n.Corners() {
				if mine[v] {
					shared++
				}
			}
			want := 1
			if c.Degree(d) == Primary {
				want = 2
			}
			if shared != want {
				t.Fatalf("%s %s -> %s shares %d vertices, want %d", c, d, n, shared, want)
			}
			if back := n.Neighbor(d.Opposite()); back != c {
				t.Fatalf("%s %s -> %s, opposite -> %s", c, d, n, back)
			}
		}
	}
}

func TestCornerToward_ParityAndCeiling(t *testing.T) {
	pos := Cell{0, 1, 0}
	if i, err := pos.CornerToward(CellN, false); err != nil || i != 0 {
		t.Fatalf("positive N: %d %v", i, err)
	}
	if i, err := pos.CornerToward(CellSE, false); err != nil || i != 1 {
		t.Fatalf("positive SE: %d %v", i, err)
	}
	if i, err := pos.CornerToward(CellSE, true); err != nil || i != 2 {
		t.Fatalf("positive SE ceiling: %d %v", i, err)
	}
	if _, err := pos.CornerToward(CellS, false); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("positive S: expected ErrInvalidDirection, got %v", err)
	}
	neg := Cell{0, 0, 0}
	if i, err := neg.CornerToward(CellNE, false); err != nil || i != 2 {
		t.Fatalf("negative NE: %d %v", i, err)
	}
	if _, err := neg.CornerToward(CellN, false); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("negative N: expected ErrInvalidDirection, got %v", err)
	}
}

func TestMetricAxioms(t *testing.T) {
	cells := []Cell{{0, 1, 0}, {0, 0, 0}, {3, -1, -2}, {-4, 6, -1}, {2, 2, -3}}
	for _, a := range cells {
		if a.Manhattan(a) != 0 || a.Radial(a) != 0 {
			t.Fatalf("d(%s,%s) != 0", a, a)
		}
		for _, b := range cells {
			if a.Manhattan(b) != b.Manhattan(a) || a.Radial(b) != b.Radial(a) {
				t.Fatalf("asymmetric distance %s %s", a, b)
			}
			if a != b && (a.Manhattan(b) <= 0 || a.Radial(b) <= 0) {
				t.Fatalf("non-positive distance %s %s", a, b)
			}
			for _, c := range cells {
				if a.Manhattan(c) > a.Manhattan(b)+b.Manhattan(c) {
					t.Fatalf("manhattan triangle inequality %s %s %s", a, b, c)
				}
				if a.Radial(c) > a.Radial(b)+b.Radial(c) {
					t.Fatalf("radial triangle inequality %s %s %s", a, b, c)
				}
			}
		}
	}
	v := Vertex{}
	for _, n := range v.Neighbors() {
		if v.Manhattan(n) != 2 || v.Radial(n) != 1 {
			t.Fatalf("neighbor %s: manhattan=%d radial=%d", n, v.Manhattan(n), v.Radial(n))
		}
	}
}

func TestUVLAndContinuous(t *testing.T) {
	for _, c := range []Cell{{0, 1, 0}, {0, 0, 0}, {3, -1, -2}, {-4, 4, 0}} {
		u := c.UVL()
		if u.Cell() != c {
			t.Fatalf("uvl %v -> %s, want %s", u, u.Cell(), c)
		}
		k := c.Continuous()
		want := 1
		if c.IsPositive() {
			want = -1
		}
		if k.X+k.Y+k.Z != want {
			t.Fatalf("continuous %v sum %d, want %d", k, k.X+k.Y+k.Z, want)
		}
		back, err := k.Cell()
		if err != nil || back != c {
			t.Fatalf("continuous %v -> %s %v, want %s", k, back, err, c)
		}
		cs := c.Corners()
		got, err := CellFromVertices(cs[2], cs[0], cs[1])
		if err != nil || got != c {
			t.Fatalf("from vertices of %s: %s %v", c, got, err)
		}
	}
}

func TestCellFromVertices_Ambiguous(t *testing.T) {
	_, err := CellFromVertices(Vertex{0, 0}, Vertex{2, 0}, Vertex{5, -3})
	if !errors.Is(err, ErrAmbiguousSharedCoordinate) {
		t.Fatalf("expected ErrAmbiguousSharedCoordinate, got %v", err)
	}
	// Shares one component per axis but is not a triangle of the lattice.
	_, err = CellFromVertices(Vertex{0, 0}, Vertex{0, 2}, Vertex{2, 0})
	if !errors.Is(err, ErrAmbiguousSharedCoordinate) {
		t.Fatalf("expected ErrAmbiguousSharedCoordinate, got %v", err)
	}
}

func TestVertexFromPosition_RoundTrip(t *testing.T) {
	m := DefaultMetrics()
	for x := -4; x <= 4; x++ {
		for z := -4; z <= 4; z++ {
			v := Vertex{X: x, Z: z}
			p := m.VertexPosition(v)
			jitter := orb.Point{p[0] + 0.3*m.InnerRadius(), p[1] - 0.2*m.OuterRadius}
			if got := m.VertexFromPosition(p); got != v {
				t.Fatalf("exact %s -> %s", v, got)
			}
			if got := m.VertexFromPosition(jitter); got != v {
				t.Fatalf("jittered %s -> %s", v, got)
			}
		}
	}
}

func TestCellFromPosition_Centroid(t *testing.T) {
	m := DefaultMetrics()
	for _, c := range []Cell{{0, 1, 0}, {0, 0, 0}, {3, -1, -2}, {-4, 4, 0}, {-2, 3, 0}} {
		if got := m.CellFromPosition(m.CellCenter(c)); got != c {
			t.Fatalf("centroid of %s -> %s", c, got)
		}
	}
}

func TestLine_EdgeDirectionZigzag(t *testing.T) {
	start := Cell{0, 1, 0}
	cells, err := start.Line(GridE, 4)
	if err != nil {
		t.Fatalf("line: %v", err)
	}
	if len(cells) != 5 {
		t.Fatalf("len = %d", len(cells))
	}
	for i := 1; i < len(cells); i++ {
		if cells[i].Z != 0 {
			t.Fatalf("east walk left the strip: %s", cells[i])
		}
		if cells[i].IsPositive() == cells[i-1].IsPositive() {
			t.Fatalf("east walk did not alternate parity at %d", i)
		}
	}
	if _, err := start.Line(GridDirection(12), 1); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
	m := DefaultMetrics()
	if math.Abs(m.CellCenter(cells[2])[0]-m.CellCenter(start)[0]-m.EdgeLength()) > 1e-9 {
		t.Fatalf("two east steps should move one edge length")
	}
}

func TestParseCellDirection(t *testing.T) {
	for d := CellN; d <= CellNW; d++ {
		got, err := ParseCellDirection(d.String())
		if err != nil || got != d {
			t.Fatalf("parse %s: got %v err %v", d, got, err)
		}
	}
	if _, err := ParseCellDirection("E"); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
}
