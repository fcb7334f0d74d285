package editor

import (
	"context"
	"testing"
	"time"

	"trimap.ai/internal/persistence/snapshot"
	"trimap.ai/internal/protocol"
)

func TestSession_PeriodicSnapshot(t *testing.T) {
	s := newTestSession(t)
	s.cfg.SnapshotEveryFrames = 2
	sink := make(chan snapshot.SnapshotV1, 4)
	s.SetSnapshotSink(sink)

	c := interiorCell(t, s)
	cube := c.Coords.Cube()
	s.step([]EditEnvelope{{Edit: protocol.EditMsg{
		EditID: "e1",
		Ops:    []protocol.EditOp{{Op: protocol.OpSetCellElevation, Cell: &cube, Elevation: 4}},
	}}})
	if len(sink) != 0 {
		t.Fatalf("snapshot emitted on frame 1")
	}
	s.step(nil)

	select {
	case snap := <-sink:
		if snap.Header.Frame != 2 {
			t.Fatalf("snapshot frame = %d", snap.Header.Frame)
		}
		if snap.Cells[c.ID].Elevations != [3]int{4, 4, 4} {
			t.Fatalf("snapshot missed edit: %+v", snap.Cells[c.ID])
		}
	default:
		t.Fatalf("no snapshot on frame 2")
	}
}

func TestSession_RequestSnapshot(t *testing.T) {
	s := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	reqCtx, reqCancel := context.WithTimeout(ctx, 2*time.Second)
	defer reqCancel()
	if _, err := s.RequestSnapshot(reqCtx); err == nil {
		t.Fatalf("expected error without a sink")
	}

	cancel()
	s2 := newTestSession(t)
	sink := make(chan snapshot.SnapshotV1, 1)
	s2.SetSnapshotSink(sink)
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	go func() { _ = s2.Run(ctx2) }()

	reqCtx2, reqCancel2 := context.WithTimeout(ctx2, 2*time.Second)
	defer reqCancel2()
	if _, err := s2.RequestSnapshot(reqCtx2); err != nil {
		t.Fatalf("request: %v", err)
	}
	if snap := <-sink; len(snap.Cells) != s2.grid.NumCells() {
		t.Fatalf("snapshot has %d cells", len(snap.Cells))
	}
	// Sink is full now; the loop must not block.
	sink <- snapshot.SnapshotV1{}
	if _, err := s2.RequestSnapshot(reqCtx2); err == nil {
		t.Fatalf("expected backpressure error")
	}
}
