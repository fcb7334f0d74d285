package editor

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"trimap.ai/internal/lattice/coords"
	"trimap.ai/internal/lattice/grid"
	"trimap.ai/internal/persistence/editlog"
	"trimap.ai/internal/protocol"
)

var errBadRequest = errors.New("bad request")

// CodeFor maps an edit or pick failure onto a protocol error code.
func CodeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errBadRequest):
		return protocol.ErrBadRequest
	case errors.Is(err, coords.ErrInvalidCoordinate):
		return protocol.ErrInvalidCoordinate
	case errors.Is(err, coords.ErrInvalidDirection):
		return protocol.ErrInvalidDirection
	case errors.Is(err, coords.ErrAmbiguousSharedCoordinate):
		return protocol.ErrAmbiguousSharedCoordinate
	case errors.Is(err, grid.ErrOutsideGrid):
		return protocol.ErrOutsideGrid
	case errors.Is(err, grid.ErrUnknownEntity):
		return protocol.ErrUnknownEntity
	case errors.Is(err, grid.ErrMissingNeighbor):
		return protocol.ErrMissingNeighbor
	case errors.Is(err, grid.ErrDuplicateAssembly):
		return protocol.ErrDuplicateAssembly
	default:
		return protocol.ErrInternal
	}
}

// applyEdit runs every op of one batch. A failed op does not stop the ones
// after it.
func (s *Session) applyEdit(frame uint64, at string, env EditEnvelope) []protocol.OpResult {
	results := make([]protocol.OpResult, 0, len(env.Edit.Ops))
	for i, op := range env.Edit.Ops {
		res := protocol.OpResult{Index: i, OK: true}
		target, err := applyOp(s.grid, op)
		if err != nil {
			res.OK = false
			res.Code = CodeFor(err)
			res.Message = err.Error()
		}
		results = append(results, res)
		if s.journal != nil {
			s.journal.RecordEdit(editlog.Entry{
				Frame:     frame,
				SessionID: env.SessionID,
				Op:        op.Op,
				Target:    target,
				Value:     op.Elevation,
				Color:     op.Color,
				Code:      res.Code,
				At:        at,
			})
		}
	}
	return results
}

// applyOp returns a printable name of the entity it addressed, even on
// failure when the address itself was readable.
func applyOp(g *grid.Grid, op protocol.EditOp) (string, error) {
	switch op.Op {
	case protocol.OpSetCellElevation:
		id, name, err := lookupCell(g, op.Cell)
		if err != nil {
			return name, err
		}
		return name, g.SetCellElevation(id, op.Elevation)

	case protocol.OpSetCornerElevation:
		id, name, err := lookupCell(g, op.Cell)
		if err != nil {
			return name, err
		}
		if op.Corner == nil {
			return name, fmt.Errorf("%s needs corner: %w", op.Op, errBadRequest)
		}
		name = fmt.Sprintf("%s#%d", name, *op.Corner)
		return name, g.SetCornerElevation(grid.CornerRef{Cell: id, Index: *op.Corner}, op.Elevation)

	case protocol.OpSetCornerToward:
		id, name, err := lookupCell(g, op.Cell)
		if err != nil {
			return name, err
		}
		d, err := coords.ParseCellDirection(op.Direction)
		if err != nil {
			return name, err
		}
		name = fmt.Sprintf("%s@%s", name, d)
		return name, g.SetCornerToward(id, d, op.Elevation)

	case protocol.OpSetPointElevation:
		if op.Point == nil {
			return "", fmt.Errorf("%s needs point: %w", op.Op, errBadRequest)
		}
		v := coords.Vertex{X: op.Point[0], Z: op.Point[1]}
		id := g.PointAtVertex(v)
		if id == grid.NoPoint {
			return v.String(), fmt.Errorf("point %s: %w", v, grid.ErrOutsideGrid)
		}
		return v.String(), g.SetPointElevation(id, op.Elevation)

	case protocol.OpSetColor:
		id, name, err := lookupCell(g, op.Cell)
		if err != nil {
			return name, err
		}
		paint, err := colorful.Hex(op.Color)
		if err != nil {
			return name, fmt.Errorf("color %q: %w", op.Color, errBadRequest)
		}
		return name, g.SetColor(id, paint)
	}
	return "", fmt.Errorf("op %q: %w", op.Op, errBadRequest)
}

func lookupCell(g *grid.Grid, ref *[3]int) (grid.CellID, string, error) {
	if ref == nil {
		return grid.NoCell, "", fmt.Errorf("missing cell: %w", errBadRequest)
	}
	cc, err := coords.NewCell(ref[0], ref[1], ref[2])
	if err != nil {
		return grid.NoCell, fmt.Sprint(*ref), err
	}
	id := g.CellAtCoords(cc, grid.Floor)
	if id == grid.NoCell {
		return grid.NoCell, cc.String(), fmt.Errorf("cell %s: %w", cc, grid.ErrOutsideGrid)
	}
	return id, cc.String(), nil
}
