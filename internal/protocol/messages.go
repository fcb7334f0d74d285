package protocol

// Cells travel as cube coordinates [x, y, z]; points as axial [x, z].

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
	// When false the client only receives results, never MESH frames.
	SubscribeMeshes bool `json:"subscribe_meshes"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	SessionID       string     `json:"session_id"`
	Frame           uint64     `json:"frame"`
	GridParams      GridParams `json:"grid_params"`
}

type GridParams struct {
	FrameRateHz     int     `json:"frame_rate_hz"`
	ChunkSize       [2]int  `json:"chunk_size"`
	ChunkCount      [2]int  `json:"chunk_count"`
	OffsetLayout    string  `json:"offset_layout"`
	OuterRadius     float64 `json:"outer_radius"`
	ElevationStep   float64 `json:"elevation_step"`
	SlopeThresholds [2]int  `json:"slope_thresholds"`
	MaxElevation    int     `json:"max_elevation"`
}

// EDIT (client -> server)
type EditMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	EditID          string   `json:"edit_id"`
	Ops             []EditOp `json:"ops"`
}

type EditOp struct {
	Op        string  `json:"op"`
	Cell      *[3]int `json:"cell,omitempty"`
	Corner    *int    `json:"corner,omitempty"`
	Direction string  `json:"direction,omitempty"`
	Point     *[2]int `json:"point,omitempty"`
	Elevation int     `json:"elevation,omitempty"`
	Color     string  `json:"color,omitempty"`
}

// EDIT_RESULT (server -> client)
type EditResultMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	EditID          string     `json:"edit_id"`
	Frame           uint64     `json:"frame"`
	Results         []OpResult `json:"results"`
}

type OpResult struct {
	Index   int    `json:"index"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// PICK (client -> server)
type PickMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	PickID          string     `json:"pick_id"`
	Mode            string     `json:"mode"`
	Position        [3]float64 `json:"position"`
	Normal          [3]float64 `json:"normal"`
}

// PICK_RESULT (server -> client)
type PickResultMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	PickID          string     `json:"pick_id"`
	Mode            string     `json:"mode"`
	OK              bool       `json:"ok"`
	Code            string     `json:"code,omitempty"`
	Cell            *[3]int    `json:"cell,omitempty"`
	Point           *[2]int    `json:"point,omitempty"`
	Edge            *EdgeRef   `json:"edge,omitempty"`
	Corner          *CornerRef `json:"corner,omitempty"`
	Elevation       *int       `json:"elevation,omitempty"`
	TriType         string     `json:"tri_type,omitempty"`
}

type EdgeRef struct {
	Origin    [2]int    `json:"origin"`
	Direction string    `json:"direction"`
	Side      int       `json:"side"`
	Cells     [2][3]int `json:"cells"`
	Cliff     bool      `json:"cliff"`
}

type CornerRef struct {
	Cell  [3]int `json:"cell"`
	Index int    `json:"index"`
}

// MESH (server -> client), one chunk per message.
type MeshMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Frame           uint64       `json:"frame"`
	Chunk           int          `json:"chunk"`
	ChunkPos        [2]int       `json:"chunk_pos"`
	Vertices        [][3]float32 `json:"vertices"`
	Normals         [][3]float32 `json:"normals"`
	Colors          [][4]float32 `json:"colors"`
	Indices         []uint32     `json:"indices"`
	FlatTriangles   int          `json:"flat_triangles"`
	CliffTriangles  int          `json:"cliff_triangles"`
}

// ERROR (server -> client) for messages that could not be routed.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}
