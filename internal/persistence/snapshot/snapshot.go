package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/lucasb-eyer/go-colorful"

	"trimap.ai/internal/lattice/coords"
	"trimap.ai/internal/lattice/grid"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	Frame   uint64 `json:"frame"`
}

// SnapshotV1 is the full editable state of a grid: what MapData cannot
// hold, such as per-corner elevations that disagree at a point and paint.
type SnapshotV1 struct {
	Header Header `json:"header"`

	ChunkSize    [2]int `json:"chunk_size"`
	ChunkCount   [2]int `json:"chunk_count"`
	OffsetLayout string `json:"offset_layout"`

	Cells []CellV1 `json:"cells"`
}

type CellV1 struct {
	Cube       [3]int     `json:"cube"`
	Layer      uint8      `json:"layer"`
	Elevations [3]int     `json:"elevations"`
	Paint      [3]float64 `json:"paint"`
}

// Capture copies every cell of g. Cells are stored in arena order.
func Capture(g *grid.Grid, frame uint64) SnapshotV1 {
	cfg := g.Config()
	snap := SnapshotV1{
		Header:       Header{Version: Version, Frame: frame},
		ChunkSize:    [2]int{cfg.ChunkSizeX, cfg.ChunkSizeZ},
		ChunkCount:   [2]int{cfg.ChunkCountX, cfg.ChunkCountZ},
		OffsetLayout: cfg.Layout.String(),
		Cells:        make([]CellV1, 0, g.NumCells()),
	}
	for i := 0; i < g.NumCells(); i++ {
		c := g.Cell(grid.CellID(i))
		p := c.Paint()
		snap.Cells = append(snap.Cells, CellV1{
			Cube:       c.Coords.Cube(),
			Layer:      uint8(c.Layer),
			Elevations: c.Elevations(),
			Paint:      [3]float64{p.R, p.G, p.B},
		})
	}
	return snap
}

// Restore writes snap into g. The grid must have the snapshot's shape.
func Restore(g *grid.Grid, snap SnapshotV1) error {
	if snap.Header.Version != Version {
		return fmt.Errorf("snapshot version %d unsupported", snap.Header.Version)
	}
	cfg := g.Config()
	if snap.ChunkSize != [2]int{cfg.ChunkSizeX, cfg.ChunkSizeZ} ||
		snap.ChunkCount != [2]int{cfg.ChunkCountX, cfg.ChunkCountZ} ||
		snap.OffsetLayout != cfg.Layout.String() {
		return fmt.Errorf("snapshot shape %v x %v %s does not match grid: %w",
			snap.ChunkSize, snap.ChunkCount, snap.OffsetLayout, grid.ErrOutsideGrid)
	}
	for _, cs := range snap.Cells {
		cc, err := coords.NewCell(cs.Cube[0], cs.Cube[1], cs.Cube[2])
		if err != nil {
			return err
		}
		id := g.CellAtCoords(cc, grid.Layer(cs.Layer))
		if id == grid.NoCell {
			return fmt.Errorf("snapshot cell %s: %w", cc, grid.ErrOutsideGrid)
		}
		for i, e := range cs.Elevations {
			if err := g.SetCornerElevation(grid.CornerRef{Cell: id, Index: i}, e); err != nil {
				return err
			}
		}
		paint := colorful.Color{R: cs.Paint[0], G: cs.Paint[1], B: cs.Paint[2]}
		if err := g.SetColor(id, paint); err != nil {
			return err
		}
	}
	return nil
}

func WriteSnapshot(path string, snap SnapshotV1) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	// Write to a temp file so a crash never leaves a torn snapshot behind.
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The header line is for tools; gob carries it too.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

// PathFor names a snapshot file by frame.
func PathFor(dir string, frame uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%d.snap.zst", frame))
}

// Latest returns the snapshot with the highest frame in dir, or "".
func Latest(dir string) string {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var frames []uint64
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		n, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		frames = append(frames, n)
	}
	if len(frames) == 0 {
		return ""
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i] < frames[j] })
	return PathFor(dir, frames[len(frames)-1])
}
