package mapdata

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"trimap.ai/internal/lattice/coords"
	"trimap.ai/internal/lattice/grid"
)

// MapData seeds point heights. Heights run row by row from the bottom row,
// Width values per row, in offset order.
type MapData struct {
	Width   int   `json:"width"`
	Height  int   `json:"height"`
	Heights []int `json:"heights"`
}

func (m MapData) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("mapdata: size %dx%d must be positive", m.Width, m.Height)
	}
	if len(m.Heights) != m.Width*m.Height {
		return fmt.Errorf("mapdata: %d heights for a %dx%d map", len(m.Heights), m.Width, m.Height)
	}
	return nil
}

func (m MapData) At(col, row int) int { return m.Heights[row*m.Width+col] }

func compressed(path string) bool { return strings.HasSuffix(path, ".zst") }

// Write stores m as JSON, zstd-compressed when path ends in .zst.
func Write(path string, m MapData) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := encode(f, &m, compressed(path)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// encode writes m to w and closes the zstd frame, so a failed final block
// surfaces here instead of as a truncated file.
func encode(w io.Writer, m *MapData, zst bool) error {
	if !zst {
		bw := bufio.NewWriterSize(w, 256*1024)
		if err := json.NewEncoder(bw).Encode(m); err != nil {
			return fmt.Errorf("mapdata encode: %w", err)
		}
		return bw.Flush()
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)
	if err := json.NewEncoder(bw).Encode(m); err != nil {
		_ = enc.Close()
		return fmt.Errorf("mapdata encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func Read(path string) (MapData, error) {
	var m MapData
	f, err := os.Open(path)
	if err != nil {
		return m, err
	}
	defer f.Close()

	var r io.Reader = f
	if compressed(path) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return m, err
		}
		defer dec.Close()
		r = dec
	}
	if err := json.NewDecoder(bufio.NewReaderSize(r, 256*1024)).Decode(&m); err != nil {
		return m, fmt.Errorf("mapdata decode: %w", err)
	}
	return m, m.Validate()
}

// Apply raises every point of g to its seeded height. The map must match
// the grid's point dimensions exactly; nothing is written otherwise.
func Apply(g *grid.Grid, m MapData) error {
	if err := m.Validate(); err != nil {
		return err
	}
	cfg := g.Config()
	if m.Width != cfg.PointsX() || m.Height != cfg.PointsZ() {
		return fmt.Errorf("mapdata: %dx%d does not fit a %dx%d grid: %w",
			m.Width, m.Height, cfg.PointsX(), cfg.PointsZ(), grid.ErrOutsideGrid)
	}
	for row := 0; row < m.Height; row++ {
		for col := 0; col < m.Width; col++ {
			if err := g.SetPointElevation(g.PointAtOffset(col, row), m.At(col, row)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Capture reads point heights back out of g. Where corners meeting at a
// point disagree, the highest one wins.
func Capture(g *grid.Grid) MapData {
	cfg := g.Config()
	m := MapData{Width: cfg.PointsX(), Height: cfg.PointsZ()}
	m.Heights = make([]int, 0, m.Width*m.Height)
	for row := 0; row < m.Height; row++ {
		for col := 0; col < m.Width; col++ {
			m.Heights = append(m.Heights, pointHeight(g, g.PointAtOffset(col, row)))
		}
	}
	return m
}

func pointHeight(g *grid.Grid, id grid.PointID) int {
	p := g.Point(id)
	h, found := 0, false
	for _, d := range coords.CellDirections {
		cid := p.Cell(d, grid.Floor)
		if cid == grid.NoCell {
			continue
		}
		e := g.Cell(cid).Elevation(d.CenterCornerIndex())
		if !found || e > h {
			h, found = e, true
		}
	}
	return h
}

// Flat fills a width x height map with one elevation.
func Flat(width, height, elevation int) MapData {
	m := MapData{Width: width, Height: height, Heights: make([]int, width*height)}
	for i := range m.Heights {
		m.Heights[i] = elevation
	}
	return m
}

// Ramp rises by step every `every` columns, west to east.
func Ramp(width, height, step, every int) MapData {
	if every <= 0 {
		every = 1
	}
	m := MapData{Width: width, Height: height, Heights: make([]int, width*height)}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			m.Heights[row*width+col] = (col / every) * step
		}
	}
	return m
}
