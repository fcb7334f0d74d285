package grid

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"trimap.ai/internal/lattice/coords"
	"trimap.ai/internal/lattice/slope"
)

// Resolve returns the cell's derived values, recomputing them if any corner
// or the paint changed since the last call.
func (g *Grid) Resolve(id CellID) (Derived, error) {
	c, err := g.cell(id)
	if err != nil {
		return Derived{}, err
	}
	if c.state == cacheClean {
		return c.derived, nil
	}
	d := Derived{
		Normal: coords.FaceNormal(g.cornerPosition(c, 0), g.cornerPosition(c, 1), g.cornerPosition(c, 2)),
		Type:   slope.Classify(slope.Spread(c.elevation[:]...), g.cfg.Shader.Thresholds),
		AvgY:   float64(c.elevation[0]+c.elevation[1]+c.elevation[2]) / 3,
	}
	for i := range d.Colors {
		d.Colors[i] = slope.Tint(g.cfg.Shader.CornerColor(d.Type, c.elevation[i]), c.paint)
	}
	c.derived = d
	c.state = cacheClean
	return d, nil
}

// SetCellElevation moves all three corners of a cell at once.
func (g *Grid) SetCellElevation(id CellID, elevation int) error {
	c, err := g.cell(id)
	if err != nil {
		return err
	}
	c.elevation = [3]int{elevation, elevation, elevation}
	c.invalidate()
	g.touch(c, 0, 1, 2)
	return nil
}

func (g *Grid) SetCornerElevation(r CornerRef, elevation int) error {
	c, err := g.cell(r.Cell)
	if err != nil {
		return err
	}
	if r.Index < 0 || r.Index > 2 {
		return fmt.Errorf("corner %d of cell %s: %w", r.Index, c.Coords, ErrUnknownEntity)
	}
	c.elevation[r.Index] = elevation
	c.invalidate()
	g.touch(c, r.Index)
	return nil
}

// SetCornerToward sets the corner of a cell that points in direction d.
func (g *Grid) SetCornerToward(id CellID, d coords.CellDirection, elevation int) error {
	c, err := g.cell(id)
	if err != nil {
		return err
	}
	i, err := c.Coords.CornerToward(d, c.Layer == Ceiling)
	if err != nil {
		return err
	}
	return g.SetCornerElevation(CornerRef{Cell: id, Index: i}, elevation)
}

// SetPointElevation moves every corner meeting at a point, floor and
// ceiling alike.
func (g *Grid) SetPointElevation(id PointID, elevation int) error {
	p, err := g.point(id)
	if err != nil {
		return err
	}
	for _, l := range []Layer{Floor, Ceiling} {
		for _, d := range coords.CellDirections {
			cid := p.Cell(d, l)
			if cid == NoCell {
				continue
			}
			c := &g.cells[cid]
			for i, pid := range c.points {
				if pid == id {
					c.elevation[i] = elevation
					c.invalidate()
					g.touch(c, i)
				}
			}
		}
	}
	return nil
}

// SetColor paints a cell. The paint multiplies the slope-derived colors.
func (g *Grid) SetColor(id CellID, paint colorful.Color) error {
	c, err := g.cell(id)
	if err != nil {
		return err
	}
	c.paint = paint
	c.invalidate()
	g.chunks[c.Chunk].dirty = true
	return nil
}

// touch marks the chunks whose meshes depend on the given corners of c.
// Wall triangles belong to the positive cell of each edge, so a negative
// cell also dirties the positive cells across the sides meeting at those
// corners.
func (g *Grid) touch(c *TriCell, corners ...int) {
	g.chunks[c.Chunk].dirty = true
	if c.Coords.IsPositive() {
		return
	}
	for side := 0; side < 3; side++ {
		adjacent := false
		for _, i := range corners {
			if i != side {
				adjacent = true
			}
		}
		if !adjacent {
			continue
		}
		e, _ := g.CellEdge(c.ID, side)
		if e == NoEdge {
			continue
		}
		if o := g.edges[e].Other(c.ID); o != NoCell {
			g.chunks[g.cells[o].Chunk].dirty = true
		}
	}
}

func (g *Grid) DirtyChunks() []ChunkID {
	var out []ChunkID
	for i := range g.chunks {
		if g.chunks[i].dirty {
			out = append(out, g.chunks[i].ID)
		}
	}
	return out
}

func (g *Grid) ClearDirty(id ChunkID) {
	if ch := g.Chunk(id); ch != nil {
		ch.dirty = false
	}
}

func (g *Grid) MarkAllDirty() {
	for i := range g.chunks {
		g.chunks[i].dirty = true
	}
}
