// Package overlay exports a grid as GeoJSON in the ground plane, for
// inspecting maps in ordinary GIS viewers.
package overlay

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"trimap.ai/internal/lattice/grid"
)

type Options struct {
	Points bool // one Point feature per lattice point
	Cliffs bool // one LineString feature per cliff edge
}

// Export builds one Polygon feature per cell, plus the optional layers.
func Export(g *grid.Grid, opt Options) (*geojson.FeatureCollection, error) {
	m := g.Metrics()
	fc := geojson.NewFeatureCollection()

	for i := 0; i < g.NumCells(); i++ {
		c := g.Cell(grid.CellID(i))
		d, err := g.Resolve(c.ID)
		if err != nil {
			return nil, err
		}
		ring := make(orb.Ring, 0, 4)
		for _, v := range c.Coords.Corners() {
			ring = append(ring, m.VertexPosition(v))
		}
		ring = append(ring, ring[0])

		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties["kind"] = "cell"
		f.Properties["cell"] = c.Coords.Cube()
		f.Properties["layer"] = c.Layer.String()
		f.Properties["chunk"] = int(c.Chunk)
		f.Properties["tri_type"] = d.Type.String()
		f.Properties["elevations"] = c.Elevations()
		f.Properties["fill"] = d.Colors[0].Clamped().Hex()
		fc.Append(f)
	}

	if opt.Points {
		for i := 0; i < g.NumPoints(); i++ {
			p := g.Point(grid.PointID(i))
			f := geojson.NewFeature(m.VertexPosition(p.Coords))
			f.Properties["kind"] = "point"
			f.Properties["vertex"] = [2]int{p.Coords.X, p.Coords.Z}
			f.Properties["label"] = p.Coords.String()
			f.Properties["chunk"] = int(p.Chunk)
			fc.Append(f)
		}
	}

	if opt.Cliffs {
		for i := 0; i < g.NumEdges(); i++ {
			id := grid.EdgeID(i)
			if !g.IsCliff(id) {
				continue
			}
			e := g.Edge(id)
			line := orb.LineString{
				m.VertexPosition(g.Point(e.Origin).Coords),
				m.VertexPosition(g.Point(e.Far).Coords),
			}
			f := geojson.NewFeature(line)
			f.Properties["kind"] = "cliff"
			f.Properties["orientation"] = e.Orientation.String()
			f.Properties["low_side"] = g.LowSideIndex(id)
			fc.Append(f)
		}
	}
	return fc, nil
}
