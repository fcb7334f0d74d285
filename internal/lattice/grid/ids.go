package grid

// Entities live in arenas owned by Grid and refer to each other by index.
type (
	PointID int32
	CellID  int32
	EdgeID  int32
	ChunkID int32
)

const (
	NoPoint PointID = -1
	NoCell  CellID  = -1
	NoEdge  EdgeID  = -1
	NoChunk ChunkID = -1
)

func (id PointID) Valid() bool { return id >= 0 }
func (id CellID) Valid() bool  { return id >= 0 }
func (id EdgeID) Valid() bool  { return id >= 0 }
func (id ChunkID) Valid() bool { return id >= 0 }

// Layer separates the floor triangle of a stack from the ceiling above it.
type Layer uint8

const (
	Floor Layer = iota
	Ceiling
)

func (l Layer) String() string {
	if l == Ceiling {
		return "ceiling"
	}
	return "floor"
}
