package grid

import (
	"fmt"
	"math"

	"github.com/johanhenriksson/goworld/math/vec3"
	"github.com/paulmach/orb/planar"

	"trimap.ai/internal/lattice/coords"
	"trimap.ai/internal/mathx"
)

// SelectMode picks which kind of entity a Query resolves.
type SelectMode uint8

const (
	SelectTri SelectMode = iota
	SelectPoint
	SelectEdge
	SelectCorner
)

var selectModeNames = [4]string{"tri", "point", "edge", "corner"}

func (m SelectMode) String() string {
	if int(m) < len(selectModeNames) {
		return selectModeNames[m]
	}
	return fmt.Sprintf("SelectMode(%d)", uint8(m))
}

func ParseSelectMode(s string) (SelectMode, error) {
	for i, n := range selectModeNames {
		if n == s {
			return SelectMode(i), nil
		}
	}
	return 0, fmt.Errorf("select mode %q: %w", s, coords.ErrInvalidDirection)
}

// Target is the result of a pick. Only the field matching Mode is set; the
// others hold their None value. Side is 0 for the edge's top cell and 1 for
// its bottom cell.
type Target struct {
	Mode   SelectMode
	Cell   CellID
	Point  PointID
	Edge   EdgeID
	Side   int
	Corner CornerRef
}

// Surfaces this close to vertical count as cliff walls.
const wallEpsilon = 1e-3

func (g *Grid) Query(pos, normal vec3.T, mode SelectMode) (Target, error) {
	t := Target{Mode: mode, Cell: NoCell, Point: NoPoint, Edge: NoEdge, Corner: CornerRef{Cell: NoCell}}
	var err error
	switch mode {
	case SelectTri:
		t.Cell, err = g.CellAt(pos, normal)
	case SelectPoint:
		t.Point, err = g.PointAt(pos)
	case SelectEdge:
		t.Edge, t.Side, err = g.EdgeAt(pos, normal)
	case SelectCorner:
		t.Corner, err = g.CornerAt(pos, normal)
	default:
		err = fmt.Errorf("select mode %d: %w", mode, coords.ErrInvalidDirection)
	}
	return t, err
}

// PointAt returns the point nearest to pos in the ground plane.
func (g *Grid) PointAt(pos vec3.T) (PointID, error) {
	v := g.cfg.Metrics.VertexFromPosition(coords.Planar(pos))
	if id := g.PointAtVertex(v); id != NoPoint {
		return id, nil
	}
	return NoPoint, fmt.Errorf("point %s: %w", v, ErrOutsideGrid)
}

// CellAt returns the cell under pos. A downward normal selects the ceiling
// when the stack has one.
func (g *Grid) CellAt(pos, normal vec3.T) (CellID, error) {
	cc := g.cfg.Metrics.CellFromPosition(coords.Planar(pos))
	s := g.stacks[cc]
	if s == nil {
		return NoCell, fmt.Errorf("cell %s: %w", cc, ErrOutsideGrid)
	}
	if normal.Y < 0 {
		if id := s.Layer(Ceiling); id != NoCell {
			return id, nil
		}
	}
	return s.Floor(), nil
}

// EdgeAt finds the edge of the nearest point that passes closest to pos,
// and which of its two cells was hit. On a cliff wall the side comes from
// the hit height: the lower half of the wall belongs to the low side.
func (g *Grid) EdgeAt(pos, normal vec3.T) (EdgeID, int, error) {
	pid, err := g.PointAt(pos)
	if err != nil {
		return NoEdge, 0, err
	}
	p := &g.points[pid]
	flat := coords.Planar(pos)
	best, bestDist := NoEdge, math.Inf(1)
	for _, d := range coords.EdgeDirections {
		e := p.edges[d]
		if e == NoEdge {
			continue
		}
		a := g.cfg.Metrics.VertexPosition(p.Coords)
		b := g.cfg.Metrics.VertexPosition(p.Coords.Step(d))
		if dist := planar.DistanceFromSegment(a, b, flat); dist < bestDist {
			best, bestDist = e, dist
		}
	}
	if best == NoEdge {
		return NoEdge, 0, fmt.Errorf("edge near %s: %w", p.Coords, ErrOutsideGrid)
	}
	e := &g.edges[best]

	if math.Abs(float64(coords.Unit(normal).Y)) < wallEpsilon {
		low := g.LowSideIndex(best)
		high := 1 - low
		cs := e.Corners()
		top := math.Min(g.mustHeight(cs[2*high]), g.mustHeight(cs[2*high+1]))
		bottom := math.Max(g.mustHeight(cs[2*low]), g.mustHeight(cs[2*low+1]))
		if mathx.InverseLerp(bottom, top, float64(pos.Y)) < 0.5 {
			return best, low, nil
		}
		return best, high, nil
	}

	hit := g.cfg.Metrics.CellFromPosition(flat)
	if g.cells[e.Top].Coords == hit {
		return best, 0, nil
	}
	return best, 1, nil
}

// CornerAt returns the corner of the cell under pos nearest to it in 3D.
func (g *Grid) CornerAt(pos, normal vec3.T) (CornerRef, error) {
	cid, err := g.CellAt(pos, normal)
	if err != nil {
		return CornerRef{Cell: NoCell}, err
	}
	c := &g.cells[cid]
	best, bestDist := 0, float32(math.MaxFloat32)
	for i := 0; i < 3; i++ {
		if d := vec3.Distance(g.cornerPosition(c, i), pos); d < bestDist {
			best, bestDist = i, d
		}
	}
	return CornerRef{Cell: cid, Index: best}, nil
}

func (g *Grid) mustHeight(r CornerRef) float64 {
	return float64(g.cornerPosition(&g.cells[r.Cell], r.Index).Y)
}
