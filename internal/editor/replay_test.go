package editor

import (
	"testing"

	"trimap.ai/internal/lattice/grid"
	"trimap.ai/internal/persistence/mapdata"
	"trimap.ai/internal/protocol"
)

func TestReplay_ReproducesSession(t *testing.T) {
	live := newTestSession(t)
	fl := &fakeFrameLog{}
	live.SetFrameLogger(fl)
	id := live.handleJoin(JoinRequest{Out: make(chan []byte, 64)}).Welcome.SessionID

	c := interiorCell(t, live)
	cube := c.Coords.Cube()
	p := live.grid.Point(c.Point(0)).Coords
	xz := [2]int{p.X, p.Z}
	bad := [3]int{2, 2, 2}
	live.step([]EditEnvelope{{SessionID: id, Edit: protocol.EditMsg{EditID: "a", Ops: []protocol.EditOp{
		{Op: protocol.OpSetCellElevation, Cell: &cube, Elevation: 2},
		{Op: protocol.OpSetCellElevation, Cell: &bad, Elevation: 2},
	}}}})
	live.step([]EditEnvelope{{SessionID: id, Edit: protocol.EditMsg{EditID: "b", Ops: []protocol.EditOp{
		{Op: protocol.OpSetPointElevation, Point: &xz, Elevation: 4},
		{Op: protocol.OpSetCornerToward, Cell: &cube, Direction: "NE", Elevation: 1},
	}}}})
	if len(fl.entries) != 2 {
		t.Fatalf("logged frames = %d", len(fl.entries))
	}

	cfg := grid.DefaultConfig()
	cfg.ChunkCountX, cfg.ChunkCountZ = 2, 2
	fresh, err := grid.Build(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	st, err := Replay(fresh, fl.entries)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if st.Frames != 2 || st.Ops != 4 || st.Rejected != 1 {
		t.Fatalf("stats = %+v", st)
	}
	want, got := mapdata.Capture(live.grid), mapdata.Capture(fresh)
	for i := range want.Heights {
		if want.Heights[i] != got.Heights[i] {
			t.Fatalf("height %d: live %d, replay %d", i, want.Heights[i], got.Heights[i])
		}
	}
	for i := 0; i < fresh.NumCells(); i++ {
		if live.grid.Cell(grid.CellID(i)).Elevations() != fresh.Cell(grid.CellID(i)).Elevations() {
			t.Fatalf("cell %d differs after replay", i)
		}
	}
}

func TestReplay_DetectsDivergence(t *testing.T) {
	cfg := grid.DefaultConfig()
	cfg.ChunkCountX, cfg.ChunkCountZ = 1, 1
	g, err := grid.Build(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	far := [3]int{50, -50, 0}
	frames := []FrameLogEntry{{
		Frame: 1,
		Edits: []RecordedEdit{{
			Edit:    protocol.EditMsg{EditID: "x", Ops: []protocol.EditOp{{Op: protocol.OpSetCellElevation, Cell: &far}}},
			Results: []protocol.OpResult{{Index: 0, OK: true}},
		}},
	}}
	if _, err := Replay(g, frames); err == nil {
		t.Fatalf("expected divergence error")
	}
}
