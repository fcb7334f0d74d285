package tuning

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"trimap.ai/internal/lattice/coords"
	"trimap.ai/internal/lattice/grid"
	"trimap.ai/internal/lattice/slope"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`
	FrameRateHz     int    `yaml:"frame_rate_hz"`
	// Zero disables periodic snapshots.
	SnapshotEveryFrames int `yaml:"snapshot_every_frames"`

	Grid      Grid              `yaml:"grid"`
	Metrics   Metrics           `yaml:"metrics"`
	Elevation Elevation         `yaml:"elevation"`
	Palette   map[string]string `yaml:"palette"`
}

type Grid struct {
	ChunkSize    []int  `yaml:"chunk_size"`
	ChunkCount   []int  `yaml:"chunk_count"`
	OffsetLayout string `yaml:"offset_layout"`
}

type Metrics struct {
	OuterRadius   float64 `yaml:"outer_radius"`
	ElevationStep float64 `yaml:"elevation_step"`
}

type Elevation struct {
	SlopeThresholds []int `yaml:"slope_thresholds"`
	MaxElevation    int   `yaml:"max_elevation"`
	Default         int   `yaml:"default"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		FrameRateHz:     30,

		SnapshotEveryFrames: 1800,
		Grid: Grid{
			ChunkSize:    []int{5, 5},
			ChunkCount:   []int{4, 3},
			OffsetLayout: "odd_rows",
		},
		Metrics: Metrics{OuterRadius: 5, ElevationStep: 5},
		Elevation: Elevation{
			SlopeThresholds: []int{2, 5},
			MaxElevation:    20,
		},
		Palette: slope.DefaultPalette().Hex(),
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if strings.TrimSpace(path) == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t *Tuning) Normalize() {
	t.ProtocolVersion = strings.TrimSpace(t.ProtocolVersion)
	if t.FrameRateHz <= 0 {
		t.FrameRateHz = 30
	}
	t.Grid.OffsetLayout = strings.ToLower(strings.TrimSpace(t.Grid.OffsetLayout))
	if t.Grid.OffsetLayout == "" {
		t.Grid.OffsetLayout = "odd_rows"
	}
}

func (t Tuning) Validate() error {
	if t.ProtocolVersion == "" {
		return fmt.Errorf("protocol_version is required")
	}
	if t.SnapshotEveryFrames < 0 {
		return fmt.Errorf("snapshot_every_frames must be >= 0")
	}
	if len(t.Grid.ChunkSize) != 2 || len(t.Grid.ChunkCount) != 2 {
		return fmt.Errorf("grid.chunk_size and grid.chunk_count need two values")
	}
	if _, err := coords.ParseLayout(t.Grid.OffsetLayout); err != nil {
		return fmt.Errorf("grid.offset_layout: %w", err)
	}
	if len(t.Elevation.SlopeThresholds) != 2 {
		return fmt.Errorf("elevation.slope_thresholds needs two values")
	}
	if t.Elevation.MaxElevation <= 0 {
		return fmt.Errorf("elevation.max_elevation must be > 0")
	}
	if t.Metrics.ElevationStep <= 0 {
		return fmt.Errorf("metrics.elevation_step must be > 0")
	}
	if _, err := slope.ParsePalette(t.Palette); err != nil {
		return err
	}
	cfg, err := t.GridConfig()
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// GridConfig converts the tuning into an assembly config.
func (t Tuning) GridConfig() (grid.Config, error) {
	var cfg grid.Config
	if len(t.Grid.ChunkSize) != 2 || len(t.Grid.ChunkCount) != 2 || len(t.Elevation.SlopeThresholds) != 2 {
		return cfg, fmt.Errorf("grid: malformed tuning")
	}
	layout, err := coords.ParseLayout(t.Grid.OffsetLayout)
	if err != nil {
		return cfg, err
	}
	palette, err := slope.ParsePalette(t.Palette)
	if err != nil {
		return cfg, err
	}
	cfg = grid.Config{
		ChunkSizeX:  t.Grid.ChunkSize[0],
		ChunkSizeZ:  t.Grid.ChunkSize[1],
		ChunkCountX: t.Grid.ChunkCount[0],
		ChunkCountZ: t.Grid.ChunkCount[1],
		Layout:      layout,
		Metrics: coords.Metrics{
			OuterRadius:   t.Metrics.OuterRadius,
			ElevationStep: t.Metrics.ElevationStep,
		},
		Shader: slope.Shader{
			Thresholds: slope.Thresholds{
				Low:  t.Elevation.SlopeThresholds[0],
				High: t.Elevation.SlopeThresholds[1],
			},
			MaxElevation: t.Elevation.MaxElevation,
			Palette:      palette,
		},
		DefaultElevation: t.Elevation.Default,
	}
	return cfg, nil
}
