package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"trimap.ai/internal/protocol"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	p := filepath.Join("..", "..", "schemas", name)
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

// asJSON round-trips a Go message into the generic form jsonschema validates.
func asJSON(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestSchemas_ValidateSamples(t *testing.T) {
	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "client_name":"painter",
	  "subscribe_meshes":true
	}`), &hello)
	validate(compileSchema(t, "hello.schema.json"), hello)

	var edit any
	_ = json.Unmarshal([]byte(`{
	  "type":"EDIT",
	  "protocol_version":"1.0",
	  "edit_id":"e1",
	  "ops":[
	    {"op":"SET_CELL_ELEVATION","cell":[1,0,0],"elevation":3},
	    {"op":"SET_CORNER_TOWARD","cell":[1,0,-1],"direction":"SE","elevation":2},
	    {"op":"SET_POINT_ELEVATION","point":[2,3],"elevation":1},
	    {"op":"SET_COLOR","cell":[0,1,0],"color":"#33aa55"}
	  ]
	}`), &edit)
	validate(compileSchema(t, "edit.schema.json"), edit)

	var pick any
	_ = json.Unmarshal([]byte(`{
	  "type":"PICK",
	  "protocol_version":"1.0",
	  "pick_id":"p1",
	  "mode":"edge",
	  "position":[4.2,0,7.5],
	  "normal":[0,1,0]
	}`), &pick)
	validate(compileSchema(t, "pick.schema.json"), pick)
}

func TestSchemas_ServerMessagesConform(t *testing.T) {
	corner := 2
	elev := 5

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       "S1",
		GridParams: protocol.GridParams{
			FrameRateHz:     30,
			ChunkSize:       [2]int{5, 5},
			ChunkCount:      [2]int{4, 3},
			OffsetLayout:    "odd_rows",
			OuterRadius:     5,
			ElevationStep:   5,
			SlopeThresholds: [2]int{2, 5},
			MaxElevation:    20,
		},
	}
	if err := compileSchema(t, "welcome.schema.json").Validate(asJSON(t, welcome)); err != nil {
		t.Fatalf("welcome: %v", err)
	}

	res := protocol.EditResultMsg{
		Type:            protocol.TypeEditResult,
		ProtocolVersion: protocol.Version,
		EditID:          "e1",
		Frame:           12,
		Results: []protocol.OpResult{
			{Index: 0, OK: true},
			{Index: 1, OK: false, Code: protocol.ErrOutsideGrid, Message: "no such cell"},
		},
	}
	if err := compileSchema(t, "edit_result.schema.json").Validate(asJSON(t, res)); err != nil {
		t.Fatalf("edit_result: %v", err)
	}

	pick := protocol.PickResultMsg{
		Type:            protocol.TypePickResult,
		ProtocolVersion: protocol.Version,
		PickID:          "p1",
		Mode:            protocol.ModeCorner,
		OK:              true,
		Corner:          &protocol.CornerRef{Cell: [3]int{1, 0, 0}, Index: corner},
		Elevation:       &elev,
		TriType:         "cost",
	}
	if err := compileSchema(t, "pick_result.schema.json").Validate(asJSON(t, pick)); err != nil {
		t.Fatalf("pick_result: %v", err)
	}

	mesh := protocol.MeshMsg{
		Type:            protocol.TypeMesh,
		ProtocolVersion: protocol.Version,
		Frame:           3,
		Chunk:           1,
		ChunkPos:        [2]int{1, 0},
		Vertices:        [][3]float32{{0, 0, 0}, {5, 0, 0}, {2.5, 0, 4.33}},
		Normals:         [][3]float32{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		Colors:          [][4]float32{{1, 1, 1, 1}, {1, 1, 1, 1}, {1, 1, 1, 1}},
		Indices:         []uint32{0, 1, 2},
		FlatTriangles:   1,
	}
	if err := compileSchema(t, "mesh.schema.json").Validate(asJSON(t, mesh)); err != nil {
		t.Fatalf("mesh: %v", err)
	}
}

func TestSchemas_RejectMalformedEdit(t *testing.T) {
	s := compileSchema(t, "edit.schema.json")
	var bad any
	_ = json.Unmarshal([]byte(`{
	  "type":"EDIT",
	  "protocol_version":"1.0",
	  "edit_id":"e1",
	  "ops":[{"op":"SET_CORNER_TOWARD","cell":[1,0],"direction":"E"}]
	}`), &bad)
	if err := s.Validate(bad); err == nil {
		t.Fatalf("expected short cell and edge direction to be rejected")
	}
}
