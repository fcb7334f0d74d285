package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"trimap.ai/internal/editor"
	"trimap.ai/internal/persistence/editlog"
)

// stateResponse mirrors the server's /admin/v1/state body.
type stateResponse struct {
	Frame   uint64                `json:"frame"`
	Metrics editor.SessionMetrics `json:"metrics"`
	Journal *editlog.Stats        `json:"journal,omitempty"`
}

type snapshotResponse struct {
	OK    bool   `json:"ok"`
	Frame uint64 `json:"frame"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

func adminURL(base, path string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + path
}

// decodeAdmin decodes a JSON admin body. Non-2xx replies still decode so the
// caller can print the server's error.
func decodeAdmin(resp *http.Response, v any) error {
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}

func fetchState(cl *http.Client, base string) (stateResponse, error) {
	var st stateResponse
	resp, err := cl.Get(adminURL(base, "/admin/v1/state"))
	if err != nil {
		return st, err
	}
	if err := decodeAdmin(resp, &st); err != nil {
		return st, err
	}
	if resp.StatusCode/100 != 2 {
		return st, fmt.Errorf("status %d", resp.StatusCode)
	}
	return st, nil
}

func requestSnapshot(cl *http.Client, base string) (snapshotResponse, error) {
	var sr snapshotResponse
	resp, err := cl.Post(adminURL(base, "/admin/v1/snapshot"), "application/json", nil)
	if err != nil {
		return sr, err
	}
	if err := decodeAdmin(resp, &sr); err != nil {
		return sr, err
	}
	if !sr.OK {
		if sr.Error == "" {
			sr.Error = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return sr, fmt.Errorf("snapshot at frame %d: %s", sr.Frame, sr.Error)
	}
	return sr, nil
}

func printState(w io.Writer, st stateResponse) {
	m := st.Metrics
	fmt.Fprintf(w, "frame=%d clients=%d step_ms=%.2f\n", st.Frame, m.Clients, m.StepMS)
	fmt.Fprintf(w, "ops applied=%d rejected=%d meshes_built=%d\n", m.OpsApplied, m.OpsRejected, m.MeshesBuilt)
	q := m.QueueDepths
	fmt.Fprintf(w, "queues inbox=%d picks=%d join=%d leave=%d\n", q.Inbox, q.Picks, q.Join, q.Leave)
	if j := st.Journal; j != nil {
		fmt.Fprintf(w, "journal queue=%d/%d drop_edits=%d drop_frames=%d\n", j.QueueDepth, j.QueueCapacity, j.DropEdits, j.DropFrames)
	} else {
		fmt.Fprintln(w, "journal disabled")
	}
}

func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	st, err := fetchState(&http.Client{Timeout: 5 * time.Second}, *baseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "state:", err)
		os.Exit(1)
	}
	printState(os.Stdout, st)
}

func snapshotCmd(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	sr, err := requestSnapshot(&http.Client{Timeout: 10 * time.Second}, *baseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if sr.Path != "" {
		fmt.Printf("snapshot frame=%d path=%s\n", sr.Frame, sr.Path)
		return
	}
	fmt.Printf("snapshot frame=%d\n", sr.Frame)
}
