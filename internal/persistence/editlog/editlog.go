package editlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one edit operation as the session applied (or rejected) it.
type Entry struct {
	Frame     uint64 `json:"frame"`
	SessionID string `json:"session_id"`
	Op        string `json:"op"`
	Target    string `json:"target"`
	Value     int    `json:"value,omitempty"`
	Color     string `json:"color,omitempty"`
	Code      string `json:"code,omitempty"`
	At        string `json:"at"`
}

// FrameRow summarizes one frame step.
type FrameRow struct {
	Frame         uint64 `json:"frame"`
	Edits         int    `json:"edits"`
	Rejected      int    `json:"rejected"`
	RebuiltChunks int    `json:"rebuilt_chunks"`
	At            string `json:"at"`
}

type Stats struct {
	QueueDepth    int    `json:"queue_depth"`
	QueueCapacity int    `json:"queue_capacity"`
	DropEdits     uint64 `json:"drop_edits"`
	DropFrames    uint64 `json:"drop_frames"`
}

// Journal appends edits to sqlite from a single writer goroutine. Producers
// never block: when the queue is full the record is dropped and counted.
type Journal struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed     atomic.Bool
	dropEdits  atomic.Uint64
	dropFrames atomic.Uint64
}

type req struct {
	edit  *Entry
	frame *FrameRow
}

func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	j := &Journal{db: db, ch: make(chan req, 65536)}
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.loop()
	}()
	return j, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS edits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			frame INTEGER NOT NULL,
			session_id TEXT NOT NULL,
			op TEXT NOT NULL,
			target TEXT NOT NULL,
			value INTEGER NOT NULL,
			color TEXT,
			code TEXT,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_edits_frame ON edits(frame);`,
		`CREATE INDEX IF NOT EXISTS idx_edits_session ON edits(session_id, frame);`,
		`CREATE TABLE IF NOT EXISTS frames (
			frame INTEGER PRIMARY KEY,
			edits INTEGER NOT NULL,
			rejected INTEGER NOT NULL,
			rebuilt_chunks INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) Close() error {
	var err error
	j.once.Do(func() {
		j.closed.Store(true)
		close(j.ch)
		j.wg.Wait()
		err = j.db.Close()
	})
	return err
}

func (j *Journal) RecordEdit(e Entry) {
	if j == nil || j.closed.Load() {
		return
	}
	if e.At == "" {
		e.At = time.Now().UTC().Format(time.RFC3339Nano)
	}
	select {
	case j.ch <- req{edit: &e}:
	default:
		j.dropEdits.Add(1)
	}
}

func (j *Journal) RecordFrame(f FrameRow) {
	if j == nil || j.closed.Load() {
		return
	}
	if f.At == "" {
		f.At = time.Now().UTC().Format(time.RFC3339Nano)
	}
	select {
	case j.ch <- req{frame: &f}:
	default:
		j.dropFrames.Add(1)
	}
}

func (j *Journal) Stats() Stats {
	if j == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(j.ch),
		QueueCapacity: cap(j.ch),
		DropEdits:     j.dropEdits.Load(),
		DropFrames:    j.dropFrames.Load(),
	}
}

func (j *Journal) loop() {
	ctx := context.Background()
	var tx *sql.Tx
	commit := func() {
		if tx != nil {
			_ = tx.Commit()
			tx = nil
		}
	}
	for r := range j.ch {
		if tx == nil {
			t, err := j.db.BeginTx(ctx, nil)
			if err != nil {
				time.Sleep(50 * time.Millisecond)
				continue
			}
			tx = t
		}
		var err error
		switch {
		case r.edit != nil:
			e := r.edit
			_, err = tx.Exec(`INSERT INTO edits(frame,session_id,op,target,value,color,code,recorded_at) VALUES(?,?,?,?,?,?,?,?)`,
				int64(e.Frame), e.SessionID, e.Op, e.Target, e.Value, e.Color, e.Code, e.At)
		case r.frame != nil:
			f := r.frame
			_, err = tx.Exec(`INSERT OR REPLACE INTO frames(frame,edits,rejected,rebuilt_chunks,recorded_at) VALUES(?,?,?,?,?)`,
				int64(f.Frame), f.Edits, f.Rejected, f.RebuiltChunks, f.At)
		}
		if err != nil {
			_ = tx.Rollback()
			tx = nil
			continue
		}
		// Commit once the burst is drained so readers see whole frames.
		if len(j.ch) == 0 {
			commit()
		}
	}
	commit()
}

// Recent returns up to limit edits, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return recent(ctx, j.db, limit)
}

// ReadRecent opens a journal file read-side only, for offline tools.
func ReadRecent(ctx context.Context, path string, limit int) ([]Entry, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return recent(ctx, db, limit)
}

func recent(ctx context.Context, db *sql.DB, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx,
		`SELECT frame,session_id,op,target,value,COALESCE(color,''),COALESCE(code,''),recorded_at FROM edits ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var frame int64
		if err := rows.Scan(&frame, &e.SessionID, &e.Op, &e.Target, &e.Value, &e.Color, &e.Code, &e.At); err != nil {
			return nil, err
		}
		e.Frame = uint64(frame)
		out = append(out, e)
	}
	return out, rows.Err()
}
