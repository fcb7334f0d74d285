package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"trimap.ai/internal/editor"
	"trimap.ai/internal/lattice/grid"
	"trimap.ai/internal/persistence/editlog"
	persistlog "trimap.ai/internal/persistence/log"
	"trimap.ai/internal/persistence/mapdata"
	"trimap.ai/internal/persistence/snapshot"
	"trimap.ai/internal/transport/ws"
	"trimap.ai/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		seedPath   = flag.String("seed", "", "MapData blob (.json or .json.zst) to start from (optional)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite edit journal")
		disableLog = flag.Bool("disable_frame_log", false, "disable the compressed frame log")
		snapPath   = flag.String("snapshot", "", "path to snapshot to resume from (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "resume from the latest snapshot in the data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	cfg, err := tune.GridConfig()
	if err != nil {
		logger.Fatalf("grid config: %v", err)
	}

	g, err := grid.Build(cfg)
	if err != nil {
		logger.Fatalf("build grid: %v", err)
	}
	snapDir := filepath.Join(*dataDir, "snapshots")
	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = snapshot.Latest(snapDir)
	}

	var startFrame uint64
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if err := snapshot.Restore(g, snap); err != nil {
			logger.Fatalf("restore snapshot: %v", err)
		}
		startFrame = snap.Header.Frame
		logger.Printf("resumed from snapshot=%s frame=%d", filepath.Base(snapshotToLoad), startFrame)
	} else if sp := strings.TrimSpace(*seedPath); sp != "" {
		m, err := mapdata.Read(sp)
		if err != nil {
			logger.Fatalf("read seed: %v", err)
		}
		if err := mapdata.Apply(g, m); err != nil {
			logger.Fatalf("apply seed: %v", err)
		}
		logger.Printf("seeded from %s (%dx%d)", filepath.Base(sp), m.Width, m.Height)
	}
	logger.Printf("grid: points=%d cells=%d edges=%d chunks=%d", g.NumPoints(), g.NumCells(), g.NumEdges(), g.NumChunks())

	sess, err := editor.New(editor.Config{
		FrameRateHz:         tune.FrameRateHz,
		StartFrame:          startFrame,
		SnapshotEveryFrames: uint64(tune.SnapshotEveryFrames),
		Params:              editor.ParamsFor(cfg, tune.FrameRateHz),
	}, g, log.New(os.Stdout, "[editor] ", log.LstdFlags|log.Lmicroseconds))
	if err != nil {
		logger.Fatalf("editor: %v", err)
	}

	var journal *editlog.Journal
	if !*disableDB {
		journal, err = editlog.Open(filepath.Join(*dataDir, "index", "edits.sqlite"))
		if err != nil {
			logger.Fatalf("open edit journal: %v", err)
		}
		defer journal.Close()
		sess.SetJournal(journal)
	} else {
		logger.Printf("edit journal disabled")
	}
	if !*disableLog {
		frameLog := persistlog.NewFrameLogger(*dataDir)
		defer frameLog.Close()
		sess.SetFrameLogger(frameLog)
	}

	ctx, cancel := signalContext()
	defer cancel()

	// The editor, the snapshot writer and the http server share one
	// lifetime; journal and frame log close only after the editor stops.
	grp, gctx := errgroup.WithContext(ctx)

	snapCh := make(chan snapshot.SnapshotV1, 2)
	sess.SetSnapshotSink(snapCh)
	grp.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case snap := <-snapCh:
				path := snapshot.PathFor(snapDir, snap.Header.Frame)
				if err := snapshot.WriteSnapshot(path, snap); err != nil {
					logger.Printf("snapshot write: %v", err)
					continue
				}
				logger.Printf("snapshot frame=%d path=%s", snap.Header.Frame, path)
			}
		}
	})
	grp.Go(func() error {
		if err := sess.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("editor stopped: %w", err)
		}
		return nil
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, sess.Metrics(), journal)
	})
	mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		resp := struct {
			Frame   uint64                `json:"frame"`
			Metrics editor.SessionMetrics `json:"metrics"`
			Journal *editlog.Stats        `json:"journal,omitempty"`
		}{
			Frame:   sess.CurrentFrame(),
			Metrics: sess.Metrics(),
		}
		if journal != nil {
			st := journal.Stats()
			resp.Journal = &st
		}
		_ = json.NewEncoder(rw).Encode(resp)
	})
	mux.HandleFunc("/admin/v1/snapshot", func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel2()
		frame, err := sess.RequestSnapshot(ctx2)
		rw.Header().Set("Content-Type", "application/json")
		if err != nil {
			rw.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "frame": frame, "error": err.Error()})
			return
		}
		_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "frame": frame, "path": snapshot.PathFor(snapDir, frame)})
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(sess, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	grp.Go(func() error {
		<-gctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		return srv.Shutdown(ctx2)
	})
	grp.Go(func() error {
		logger.Printf("listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("ListenAndServe: %w", err)
		}
		return nil
	})

	if err := grp.Wait(); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}

func writeMetrics(rw http.ResponseWriter, m editor.SessionMetrics, j *editlog.Journal) {
	fmt.Fprintf(rw, "# HELP trimap_frame Current editor frame.\n")
	fmt.Fprintf(rw, "# TYPE trimap_frame gauge\n")
	fmt.Fprintf(rw, "trimap_frame %d\n", m.Frame)

	fmt.Fprintf(rw, "# HELP trimap_clients Connected clients.\n")
	fmt.Fprintf(rw, "# TYPE trimap_clients gauge\n")
	fmt.Fprintf(rw, "trimap_clients %d\n", m.Clients)

	fmt.Fprintf(rw, "# HELP trimap_queue_depth Channel backlog depth.\n")
	fmt.Fprintf(rw, "# TYPE trimap_queue_depth gauge\n")
	fmt.Fprintf(rw, "trimap_queue_depth{queue=%q} %d\n", "inbox", m.QueueDepths.Inbox)
	fmt.Fprintf(rw, "trimap_queue_depth{queue=%q} %d\n", "picks", m.QueueDepths.Picks)
	fmt.Fprintf(rw, "trimap_queue_depth{queue=%q} %d\n", "join", m.QueueDepths.Join)
	fmt.Fprintf(rw, "trimap_queue_depth{queue=%q} %d\n", "leave", m.QueueDepths.Leave)

	fmt.Fprintf(rw, "# HELP trimap_step_ms Last frame step duration in milliseconds.\n")
	fmt.Fprintf(rw, "# TYPE trimap_step_ms gauge\n")
	fmt.Fprintf(rw, "trimap_step_ms %.3f\n", m.StepMS)

	fmt.Fprintf(rw, "# HELP trimap_ops_total Edit ops by outcome.\n")
	fmt.Fprintf(rw, "# TYPE trimap_ops_total counter\n")
	fmt.Fprintf(rw, "trimap_ops_total{outcome=%q} %d\n", "applied", m.OpsApplied)
	fmt.Fprintf(rw, "trimap_ops_total{outcome=%q} %d\n", "rejected", m.OpsRejected)

	fmt.Fprintf(rw, "# HELP trimap_meshes_total Chunk meshes rebuilt.\n")
	fmt.Fprintf(rw, "# TYPE trimap_meshes_total counter\n")
	fmt.Fprintf(rw, "trimap_meshes_total %d\n", m.MeshesBuilt)

	if j == nil {
		return
	}
	st := j.Stats()
	fmt.Fprintf(rw, "# HELP trimap_journal_queue_depth Edit journal queue depth.\n")
	fmt.Fprintf(rw, "# TYPE trimap_journal_queue_depth gauge\n")
	fmt.Fprintf(rw, "trimap_journal_queue_depth %d\n", st.QueueDepth)
	fmt.Fprintf(rw, "# HELP trimap_journal_dropped_total Journal records dropped on a full queue.\n")
	fmt.Fprintf(rw, "# TYPE trimap_journal_dropped_total counter\n")
	fmt.Fprintf(rw, "trimap_journal_dropped_total{kind=%q} %d\n", "edit", st.DropEdits)
	fmt.Fprintf(rw, "trimap_journal_dropped_total{kind=%q} %d\n", "frame", st.DropFrames)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
