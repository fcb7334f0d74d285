package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"trimap.ai/internal/lattice/coords"
	"trimap.ai/internal/lattice/slope"
)

func findRepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find repo root from %s", dir)
		}
		dir = parent
	}
}

func TestLoad_RepoConfig(t *testing.T) {
	tun, err := Load(filepath.Join(findRepoRoot(t), "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg, err := tun.GridConfig()
	if err != nil {
		t.Fatalf("grid config: %v", err)
	}
	if cfg.PointsX() != 20 || cfg.PointsZ() != 15 {
		t.Fatalf("points = %dx%d", cfg.PointsX(), cfg.PointsZ())
	}
	if cfg.Layout != coords.OddRowsShifted {
		t.Fatalf("layout = %s", cfg.Layout)
	}
	if cfg.Shader.Thresholds != (slope.Thresholds{Low: 2, High: 5}) {
		t.Fatalf("thresholds = %+v", cfg.Shader.Thresholds)
	}
	if tun.SnapshotEveryFrames != 1800 {
		t.Fatalf("snapshot_every_frames = %d", tun.SnapshotEveryFrames)
	}
}

func TestLoad_EmptyPathIsDefaults(t *testing.T) {
	tun, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := tun.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"layout":     "grid:\n  offset_layout: diagonal\n",
		"thresholds": "elevation:\n  slope_thresholds: [5, 2]\n",
		"palette":    "palette:\n  lava: \"#ff0000\"\n",
		"chunks":     "grid:\n  chunk_count: [0, 3]\n",
		"snapshots":  "snapshot_every_frames: -1\n",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "tuning.yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
