package editlog

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestJournal_RecordAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edits.sqlite")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	j.RecordEdit(Entry{Frame: 1, SessionID: "S1", Op: "SET_CELL_ELEVATION", Target: `{"x":0,"y":1,"z":0}`, Value: 3})
	j.RecordEdit(Entry{Frame: 2, SessionID: "S1", Op: "SET_COLOR", Target: `{"x":0,"y":1,"z":0}`, Color: "#ff0000"})
	j.RecordFrame(FrameRow{Frame: 2, Edits: 1, RebuiltChunks: 1})
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	got, err := ReadRecent(context.Background(), path, 10)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0].Op != "SET_COLOR" || got[1].Value != 3 || got[0].Color != "#ff0000" {
		t.Fatalf("unexpected entries %+v", got)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql open: %v", err)
	}
	defer db.Close()
	var rebuilt int
	if err := db.QueryRow(`SELECT rebuilt_chunks FROM frames WHERE frame=2`).Scan(&rebuilt); err != nil {
		t.Fatalf("query frames: %v", err)
	}
	if rebuilt != 1 {
		t.Fatalf("rebuilt_chunks=%d", rebuilt)
	}
}

func TestJournal_QueueDropStats(t *testing.T) {
	j := &Journal{ch: make(chan req, 1)}
	j.ch <- req{edit: &Entry{Frame: 1}}

	j.RecordEdit(Entry{Frame: 2})
	j.RecordFrame(FrameRow{Frame: 2})

	st := j.Stats()
	if st.DropEdits != 1 || st.DropFrames != 1 {
		t.Fatalf("drops = %+v", st)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}

	var nilJournal *Journal
	nilJournal.RecordEdit(Entry{})
	if nilJournal.Stats() != (Stats{}) {
		t.Fatalf("nil journal stats should be zero")
	}
}
