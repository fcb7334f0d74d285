package grid

// Chunk is the rectangular block of points, and the cells centered on them,
// that a single mesh is built from.
type Chunk struct {
	ID     ChunkID
	X, Z   int
	Points []PointID
	Cells  []CellID

	dirty bool
}

func (c *Chunk) Dirty() bool { return c.dirty }
