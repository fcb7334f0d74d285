package editor

import (
	"fmt"

	"trimap.ai/internal/lattice/grid"
)

type ReplayStats struct {
	Frames   int
	Ops      int
	Rejected int
}

// Replay re-applies logged frames to g in order and checks that every op
// fails or succeeds exactly as it did live. g should hold the map the
// logging session started from.
func Replay(g *grid.Grid, frames []FrameLogEntry) (ReplayStats, error) {
	var st ReplayStats
	var last uint64
	for _, f := range frames {
		if st.Frames > 0 && f.Frame <= last {
			return st, fmt.Errorf("frame %d after frame %d: log out of order", f.Frame, last)
		}
		last = f.Frame
		st.Frames++
		for _, rec := range f.Edits {
			for i, op := range rec.Edit.Ops {
				_, err := applyOp(g, op)
				code := CodeFor(err)
				st.Ops++
				if err != nil {
					st.Rejected++
				}
				if i < len(rec.Results) && rec.Results[i].Code != code {
					return st, fmt.Errorf("frame %d edit %q op %d: replay code %q, logged %q",
						f.Frame, rec.Edit.EditID, i, code, rec.Results[i].Code)
				}
			}
		}
	}
	return st, nil
}
