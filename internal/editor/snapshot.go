package editor

import (
	"context"
	"errors"

	"trimap.ai/internal/persistence/snapshot"
)

type snapshotReq struct {
	Resp chan snapshotResp
}

type snapshotResp struct {
	Frame uint64
	Err   string
}

// SetSnapshotSink receives a capture every SnapshotEveryFrames frames and on
// RequestSnapshot. Sends never block the frame loop.
func (s *Session) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { s.snapshotSink = ch }

// RequestSnapshot asks the Run goroutine to capture the grid now.
// Safe to call from other goroutines.
func (s *Session) RequestSnapshot(ctx context.Context) (uint64, error) {
	resp := make(chan snapshotResp, 1)
	select {
	case s.snapshots <- snapshotReq{Resp: resp}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case r := <-resp:
		if r.Err != "" {
			return r.Frame, errors.New(r.Err)
		}
		return r.Frame, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (s *Session) handleSnapshotRequest(req snapshotReq) {
	frame := s.frame.Load()
	resp := snapshotResp{Frame: frame}
	if err := s.emitSnapshot(frame); err != nil {
		resp.Err = err.Error()
	}
	select {
	case req.Resp <- resp:
	default:
	}
}

func (s *Session) emitSnapshot(frame uint64) error {
	if s.snapshotSink == nil {
		return errors.New("snapshot sink not configured")
	}
	select {
	case s.snapshotSink <- snapshot.Capture(s.grid, frame):
		return nil
	default:
		return errors.New("snapshot sink backpressure")
	}
}
