package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello      = "HELLO"
	TypeWelcome    = "WELCOME"
	TypeEdit       = "EDIT"
	TypeEditResult = "EDIT_RESULT"
	TypePick       = "PICK"
	TypePickResult = "PICK_RESULT"
	TypeMesh       = "MESH"
	TypeError      = "ERROR"
)

// Edit operations.
const (
	OpSetCellElevation   = "SET_CELL_ELEVATION"
	OpSetCornerElevation = "SET_CORNER_ELEVATION"
	OpSetCornerToward    = "SET_CORNER_TOWARD"
	OpSetPointElevation  = "SET_POINT_ELEVATION"
	OpSetColor           = "SET_COLOR"
)

// Pick modes.
const (
	ModeTri    = "tri"
	ModePoint  = "point"
	ModeEdge   = "edge"
	ModeCorner = "corner"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
