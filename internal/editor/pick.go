package editor

import (
	"github.com/johanhenriksson/goworld/math/vec3"

	"trimap.ai/internal/lattice/coords"
	"trimap.ai/internal/lattice/grid"
	"trimap.ai/internal/protocol"
)

// handlePick resolves a hit position against the current grid. Picks do not
// wait for a frame; they see every edit applied so far.
func (s *Session) handlePick(p protocol.PickMsg) protocol.PickResultMsg {
	res := protocol.PickResultMsg{
		Type:            protocol.TypePickResult,
		ProtocolVersion: protocol.Version,
		PickID:          p.PickID,
		Mode:            p.Mode,
	}
	mode, err := grid.ParseSelectMode(p.Mode)
	if err != nil {
		res.Code = CodeFor(err)
		return res
	}
	t, err := s.grid.Query(worldVec(p.Position), worldVec(p.Normal), mode)
	if err != nil {
		res.Code = CodeFor(err)
		return res
	}
	if err := s.describe(&res, t); err != nil {
		res.Code = CodeFor(err)
		return res
	}
	res.OK = true
	return res
}

func (s *Session) describe(res *protocol.PickResultMsg, t grid.Target) error {
	switch t.Mode {
	case grid.SelectTri:
		c := s.grid.Cell(t.Cell)
		cube := c.Coords.Cube()
		res.Cell = &cube
		d, err := s.grid.Resolve(t.Cell)
		if err != nil {
			return err
		}
		res.TriType = d.Type.String()

	case grid.SelectPoint:
		p := s.grid.Point(t.Point)
		xz := [2]int{p.Coords.X, p.Coords.Z}
		res.Point = &xz
		if h, ok := s.pointElevation(t.Point); ok {
			res.Elevation = &h
		}

	case grid.SelectEdge:
		e := s.grid.Edge(t.Edge)
		origin := s.grid.Point(e.Origin).Coords
		res.Edge = &protocol.EdgeRef{
			Origin:    [2]int{origin.X, origin.Z},
			Direction: e.Orientation.Direction().String(),
			Side:      t.Side,
			Cells: [2][3]int{
				s.grid.Cell(e.Top).Coords.Cube(),
				s.grid.Cell(e.Bottom).Coords.Cube(),
			},
			Cliff: s.grid.IsCliff(t.Edge),
		}
		cube := s.grid.Cell(e.Side(t.Side)).Coords.Cube()
		res.Cell = &cube

	case grid.SelectCorner:
		cube := s.grid.Cell(t.Corner.Cell).Coords.Cube()
		res.Corner = &protocol.CornerRef{Cell: cube, Index: t.Corner.Index}
		h, err := s.grid.Elevation(t.Corner)
		if err != nil {
			return err
		}
		res.Elevation = &h
	}
	return nil
}

// pointElevation reports the highest floor corner meeting at a point.
func (s *Session) pointElevation(id grid.PointID) (int, bool) {
	p := s.grid.Point(id)
	best, found := 0, false
	for _, d := range coords.CellDirections {
		cid := p.Cell(d, grid.Floor)
		if cid == grid.NoCell {
			continue
		}
		c := s.grid.Cell(cid)
		for i, pid := range c.Points() {
			if pid == id && (!found || c.Elevation(i) > best) {
				best, found = c.Elevation(i), true
			}
		}
	}
	return best, found
}

func worldVec(v [3]float64) vec3.T {
	return vec3.New(float32(v[0]), float32(v[1]), float32(v[2]))
}
