package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"trimap.ai/internal/editor"
	"trimap.ai/internal/lattice/grid"
	persistlog "trimap.ai/internal/persistence/log"
	"trimap.ai/internal/persistence/mapdata"
	"trimap.ai/internal/persistence/snapshot"
	"trimap.ai/internal/tuning"
)

func main() {
	var (
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml the server ran with")
		seedPath   = flag.String("seed", "", "MapData blob the server started from (optional)")
		snapPath   = flag.String("snapshot", "", "snapshot to start from; frames at or before it are skipped (optional)")
		dataDir    = flag.String("data", "./data", "runtime data directory holding frames/")
		fromFrame  = flag.Uint64("from_frame", 0, "skip frames before this one (inclusive start, optional)")
		toFrame    = flag.Uint64("to_frame", 0, "stop after this frame (inclusive, optional)")
		outPath    = flag.String("out", "", "write the replayed map as MapData (optional)")
	)
	flag.Parse()

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
	g, err := grid.Build(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build grid:", err)
		os.Exit(1)
	}
	if p := strings.TrimSpace(*snapPath); p != "" {
		snap, err := snapshot.ReadSnapshot(p)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read snapshot:", err)
			os.Exit(1)
		}
		if err := snapshot.Restore(g, snap); err != nil {
			fmt.Fprintln(os.Stderr, "restore snapshot:", err)
			os.Exit(1)
		}
		if *fromFrame <= snap.Header.Frame {
			*fromFrame = snap.Header.Frame + 1
		}
	} else if sp := strings.TrimSpace(*seedPath); sp != "" {
		m, err := mapdata.Read(sp)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read seed:", err)
			os.Exit(1)
		}
		if err := mapdata.Apply(g, m); err != nil {
			fmt.Fprintln(os.Stderr, "apply seed:", err)
			os.Exit(1)
		}
	}

	frames, err := persistlog.ReadFrames(*dataDir, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read frames:", err)
		os.Exit(1)
	}
	if len(frames) == 0 {
		fmt.Fprintln(os.Stderr, "no frame log found under", *dataDir)
		os.Exit(1)
	}
	frames = window(frames, *fromFrame, *toFrame)

	st, err := editor.Replay(g, frames)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: frames=%d ops=%d rejected=%d\n", st.Frames, st.Ops, st.Rejected)

	if *outPath != "" {
		if err := mapdata.Write(*outPath, mapdata.Capture(g)); err != nil {
			fmt.Fprintln(os.Stderr, "write map:", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *outPath)
	}
}

func window(frames []editor.FrameLogEntry, from, to uint64) []editor.FrameLogEntry {
	out := frames[:0]
	for _, f := range frames {
		if f.Frame < from || (to != 0 && f.Frame > to) {
			continue
		}
		out = append(out, f)
	}
	return out
}
