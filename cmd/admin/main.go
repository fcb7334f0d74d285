package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trimap.ai/internal/lattice/grid"
	"trimap.ai/internal/lattice/mesh"
	"trimap.ai/internal/lattice/slope"
	"trimap.ai/internal/overlay"
	"trimap.ai/internal/persistence/editlog"
	persistlog "trimap.ai/internal/persistence/log"
	"trimap.ai/internal/persistence/mapdata"
	"trimap.ai/internal/persistence/snapshot"
	"trimap.ai/internal/tuning"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "geojson":
			geojsonCmd(os.Args[2:])
			return
		case "seed":
			seedCmd(os.Args[2:])
			return
		case "history":
			historyCmd(os.Args[2:])
			return
		case "frames":
			framesCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "snapshot":
			snapshotCmd(os.Args[2:])
			return
		}
	}
	statsCmd(os.Args[1:])
}

// loadGrid builds the grid described by a tuning file, optionally seeded
// from a MapData blob or a server snapshot (*.snap.zst).
func loadGrid(tuningPath, seedPath string) (*grid.Grid, error) {
	tune, err := tuning.Load(tuningPath)
	if err != nil {
		return nil, err
	}
	cfg, err := tune.GridConfig()
	if err != nil {
		return nil, err
	}
	g, err := grid.Build(cfg)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(seedPath, ".snap.zst") {
		snap, err := snapshot.ReadSnapshot(seedPath)
		if err != nil {
			return nil, err
		}
		return g, snapshot.Restore(g, snap)
	}
	if strings.TrimSpace(seedPath) != "" {
		m, err := mapdata.Read(seedPath)
		if err != nil {
			return nil, err
		}
		if err := mapdata.Apply(g, m); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func statsCmd(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	tuningPath := fs.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
	seedPath := fs.String("seed", "", "MapData blob or snapshot to apply (optional)")
	_ = fs.Parse(args)

	g, err := loadGrid(*tuningPath, *seedPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load:", err)
		os.Exit(1)
	}

	var types [5]int
	for i := 0; i < g.NumCells(); i++ {
		d, err := g.Resolve(grid.CellID(i))
		if err != nil {
			fmt.Fprintln(os.Stderr, "resolve:", err)
			os.Exit(1)
		}
		types[d.Type]++
	}
	cliffs := 0
	for i := 0; i < g.NumEdges(); i++ {
		if g.IsCliff(grid.EdgeID(i)) {
			cliffs++
		}
	}
	meshes, err := mesh.NewBuilder().Flush(g)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mesh:", err)
		os.Exit(1)
	}
	var flat, walls int
	for _, m := range meshes {
		flat += m.FlatTriangles
		walls += m.CliffTriangles
	}

	out := map[string]any{
		"points":          g.NumPoints(),
		"cells":           g.NumCells(),
		"edges":           g.NumEdges(),
		"cliff_edges":     cliffs,
		"chunks":          g.NumChunks(),
		"flat_triangles":  flat,
		"cliff_triangles": walls,
	}
	byType := map[string]int{}
	for t, n := range types {
		byType[slope.TriType(t).String()] = n
	}
	out["tri_types"] = byType
	_ = json.NewEncoder(os.Stdout).Encode(out)
}

func geojsonCmd(args []string) {
	fs := flag.NewFlagSet("geojson", flag.ExitOnError)
	tuningPath := fs.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
	seedPath := fs.String("seed", "", "MapData blob or snapshot to apply (optional)")
	points := fs.Bool("points", false, "include lattice points")
	cliffs := fs.Bool("cliffs", true, "include cliff edges")
	outPath := fs.String("out", "", "output path (default: stdout)")
	_ = fs.Parse(args)

	g, err := loadGrid(*tuningPath, *seedPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load:", err)
		os.Exit(1)
	}
	fc, err := overlay.Export(g, overlay.Options{Points: *points, Cliffs: *cliffs})
	if err != nil {
		fmt.Fprintln(os.Stderr, "export:", err)
		os.Exit(1)
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		fmt.Fprintln(os.Stderr, "marshal:", err)
		os.Exit(1)
	}
	if *outPath == "" {
		_, _ = os.Stdout.Write(append(b, '\n'))
		return
	}
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "mkdir:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, b, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d features)\n", *outPath, len(fc.Features))
}

func seedCmd(args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	tuningPath := fs.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml (sets the map size)")
	shape := fs.String("shape", "flat", "flat|ramp")
	elevation := fs.Int("elevation", 0, "flat: elevation of every point")
	step := fs.Int("step", 1, "ramp: elevation gained per band")
	every := fs.Int("every", 2, "ramp: columns per band")
	outPath := fs.String("out", "./data/seed.json.zst", "output path (.json or .json.zst)")
	_ = fs.Parse(args)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load tuning:", err)
		os.Exit(1)
	}
	cfg, err := tune.GridConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "grid config:", err)
		os.Exit(1)
	}

	var m mapdata.MapData
	switch *shape {
	case "flat":
		m = mapdata.Flat(cfg.PointsX(), cfg.PointsZ(), *elevation)
	case "ramp":
		m = mapdata.Ramp(cfg.PointsX(), cfg.PointsZ(), *step, *every)
	default:
		fmt.Fprintln(os.Stderr, "unknown -shape:", *shape)
		os.Exit(2)
	}
	if err := mapdata.Write(*outPath, m); err != nil {
		fmt.Fprintln(os.Stderr, "write:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%dx%d)\n", *outPath, m.Width, m.Height)
}

func historyCmd(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (default: <data>/index/edits.sqlite)")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "edits.sqlite")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	entries, err := editlog.ReadRecent(ctx, path, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "history:", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	for _, e := range entries {
		_ = enc.Encode(e)
	}
}

func framesCmd(args []string) {
	fs := flag.NewFlagSet("frames", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	limit := fs.Int("limit", 20, "show only the last N frames (0 = all)")
	_ = fs.Parse(args)

	frames, err := persistlog.ReadFrames(*dataDir, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "frames:", err)
		os.Exit(1)
	}
	for _, f := range frames {
		ops, rejected := 0, 0
		for _, e := range f.Edits {
			for _, r := range e.Results {
				ops++
				if !r.OK {
					rejected++
				}
			}
		}
		fmt.Printf("frame=%d at=%s edits=%d ops=%d rejected=%d rebuilt=%v\n", f.Frame, f.At, len(f.Edits), ops, rejected, f.RebuiltChunks)
	}
}
