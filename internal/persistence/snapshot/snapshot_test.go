package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"trimap.ai/internal/lattice/coords"
	"trimap.ai/internal/lattice/grid"
)

func buildGrid(t *testing.T, cx, cz int) *grid.Grid {
	t.Helper()
	cfg := grid.DefaultConfig()
	cfg.ChunkCountX, cfg.ChunkCountZ = cx, cz
	g, err := grid.Build(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return g
}

func TestSnapshot_WriteReadRestore(t *testing.T) {
	src := buildGrid(t, 2, 1)
	p := src.Point(src.PointAtOffset(3, 3))
	neg := p.Cell(coords.CellN, grid.Floor)
	pos := p.Cell(coords.CellS, grid.Floor)
	if err := src.SetCornerElevation(grid.CornerRef{Cell: neg, Index: 1}, 7); err != nil {
		t.Fatalf("corner: %v", err)
	}
	red := colorful.Color{R: 0.9, G: 0.1, B: 0.2}
	if err := src.SetColor(pos, red); err != nil {
		t.Fatalf("color: %v", err)
	}

	path := PathFor(filepath.Join(t.TempDir(), "snapshots"), 42)
	if err := WriteSnapshot(path, Capture(src, 42)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
	snap, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if snap.Header.Frame != 42 || len(snap.Cells) != src.NumCells() {
		t.Fatalf("header %+v, cells %d", snap.Header, len(snap.Cells))
	}

	dst := buildGrid(t, 2, 1)
	if err := Restore(dst, snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	for i := 0; i < dst.NumCells(); i++ {
		a, b := src.Cell(grid.CellID(i)), dst.Cell(grid.CellID(i))
		if a.Elevations() != b.Elevations() || a.Paint() != b.Paint() {
			t.Fatalf("cell %s differs after restore", a.Coords)
		}
	}
	if dst.Cell(neg).Elevation(1) != 7 || dst.Cell(pos).Paint() != red {
		t.Fatalf("edited cells not restored")
	}
}

func TestRestore_ShapeMismatch(t *testing.T) {
	snap := Capture(buildGrid(t, 1, 1), 1)
	if err := Restore(buildGrid(t, 2, 1), snap); !errors.Is(err, grid.ErrOutsideGrid) {
		t.Fatalf("expected ErrOutsideGrid, got %v", err)
	}
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()
	if Latest(dir) != "" {
		t.Fatalf("empty dir should have no latest snapshot")
	}
	for _, name := range []string{"9.snap.zst", "120.snap.zst", "30.snap.zst", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if got := Latest(dir); got != filepath.Join(dir, "120.snap.zst") {
		t.Fatalf("latest = %s", got)
	}
}
