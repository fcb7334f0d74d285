package grid

import (
	"fmt"

	"trimap.ai/internal/lattice/coords"
	"trimap.ai/internal/lattice/slope"
)

// Build assembles the floor layer of a rectangular map. Points are created
// row by row from the bottom; each links only to neighbors that already
// exist (W, SW, SE) and creates the two cells it completes.
func Build(cfg Config) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	nx, nz := cfg.PointsX(), cfg.PointsZ()
	g := &Grid{
		cfg:     cfg,
		points:  make([]Point, 0, nx*nz),
		cells:   make([]TriCell, 0, 2*(nx-1)*(nz-1)),
		edges:   make([]Edge, 0, 3*(nx-1)*(nz-1)),
		chunks:  make([]Chunk, 0, cfg.ChunkCountX*cfg.ChunkCountZ),
		pointAt: make(map[coords.Vertex]PointID, nx*nz),
		stacks:  make(map[coords.Cell]*GridCell, 2*(nx-1)*(nz-1)),
	}
	for cz := 0; cz < cfg.ChunkCountZ; cz++ {
		for cx := 0; cx < cfg.ChunkCountX; cx++ {
			g.chunks = append(g.chunks, Chunk{ID: ChunkID(len(g.chunks)), X: cx, Z: cz, dirty: true})
		}
	}
	if err := g.assemble(); err != nil {
		return nil, err
	}
	return g, nil
}

// assemble adds every point in row order; each point closes the cells and
// edges behind it.
func (g *Grid) assemble() error {
	nx, nz := g.cfg.PointsX(), g.cfg.PointsZ()
	for row := 0; row < nz; row++ {
		for col := 0; col < nx; col++ {
			if err := g.addPoint(col, row); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Grid) chunkAt(col, row int) ChunkID {
	cx, cz := col/g.cfg.ChunkSizeX, row/g.cfg.ChunkSizeZ
	return ChunkID(cz*g.cfg.ChunkCountX + cx)
}

func (g *Grid) addPoint(col, row int) error {
	v := coords.VertexFromOffset(col, row, g.cfg.Layout)
	if _, ok := g.pointAt[v]; ok {
		return fmt.Errorf("point %s: %w", v, ErrDuplicateAssembly)
	}
	id := PointID(len(g.points))
	chunk := g.chunkAt(col, row)
	g.points = append(g.points, newPoint(id, v, chunk))
	g.pointAt[v] = id
	g.chunks[chunk].Points = append(g.chunks[chunk].Points, id)

	for _, d := range []coords.EdgeDirection{coords.EdgeW, coords.EdgeSW, coords.EdgeSE} {
		if n, ok := g.pointAt[v.Step(d)]; ok {
			if err := g.LinkNeighbors(id, d, n); err != nil {
				return err
			}
		}
	}
	p := &g.points[id]
	if p.neighbors[coords.EdgeSW] != NoPoint && p.neighbors[coords.EdgeSE] != NoPoint {
		if err := g.addCell(v.CellAround(coords.CellS)); err != nil {
			return err
		}
	}
	if p.neighbors[coords.EdgeW] != NoPoint && p.neighbors[coords.EdgeSW] != NoPoint {
		if err := g.addCell(v.CellAround(coords.CellSW)); err != nil {
			return err
		}
	}
	return nil
}

func (g *Grid) addCell(cc coords.Cell) error {
	if _, ok := g.stacks[cc]; ok {
		return fmt.Errorf("cell %s: %w", cc, ErrDuplicateAssembly)
	}
	id := CellID(len(g.cells))
	c := TriCell{ID: id, Coords: cc, Layer: Floor, paint: slope.White}
	sides := cc.Sides()
	for i, v := range cc.Corners() {
		pid, ok := g.pointAt[v]
		if !ok {
			return fmt.Errorf("cell %s corner %s: %w", cc, v, ErrMissingNeighbor)
		}
		if g.points[pid].cellSlots(Floor)[sides[i]] != NoCell {
			return fmt.Errorf("cell %s at point %s: %w", cc, v, ErrDuplicateAssembly)
		}
		c.points[i] = pid
		c.elevation[i] = g.cfg.DefaultElevation
	}
	// Slots are claimed only once every corner checked out.
	for i, pid := range c.points {
		g.points[pid].cellSlots(Floor)[sides[i]] = id
	}
	c.Chunk = g.points[c.points[0]].Chunk
	g.cells = append(g.cells, c)
	g.stacks[cc] = &GridCell{Coords: cc, Layers: []CellID{id}}
	g.chunks[c.Chunk].Cells = append(g.chunks[c.Chunk].Cells, id)

	for i, a := range anchorsFor(cc) {
		other := g.CellAtCoords(cc.Step(sides[i]), Floor)
		if other == NoCell {
			continue
		}
		origin := c.points[a.corner]
		eid := EdgeID(len(g.edges))
		e := Edge{
			ID:          eid,
			Orientation: a.dir.Orientation(),
			Origin:      origin,
			Far:         g.points[origin].neighbors[a.dir],
			Top:         id,
			Bottom:      other,
		}
		if !a.top {
			e.Top, e.Bottom = other, id
		}
		g.edges = append(g.edges, e)
		if err := g.LinkEdge(origin, a.dir, eid); err != nil {
			return err
		}
	}
	return nil
}
