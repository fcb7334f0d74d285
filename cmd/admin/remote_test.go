package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trimap.ai/internal/editor"
	"trimap.ai/internal/persistence/editlog"
)

func TestFetchState_PrintsSummary(t *testing.T) {
	hs := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/v1/state" {
			http.NotFound(rw, r)
			return
		}
		_ = json.NewEncoder(rw).Encode(stateResponse{
			Frame: 42,
			Metrics: editor.SessionMetrics{
				Frame: 42, Clients: 3, OpsApplied: 17, OpsRejected: 2, MeshesBuilt: 9,
			},
			Journal: &editlog.Stats{QueueDepth: 1, QueueCapacity: 64, DropEdits: 5},
		})
	}))
	defer hs.Close()

	st, err := fetchState(hs.Client(), hs.URL+"/")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	var buf bytes.Buffer
	printState(&buf, st)
	out := buf.String()
	for _, want := range []string{"frame=42", "clients=3", "applied=17", "rejected=2", "meshes_built=9", "drop_edits=5", "queue=1/64"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFetchState_Forbidden(t *testing.T) {
	hs := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		http.Error(rw, "forbidden", http.StatusForbidden)
	}))
	defer hs.Close()

	if _, err := fetchState(hs.Client(), hs.URL); err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestRequestSnapshot(t *testing.T) {
	fail := false
	hs := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if fail {
			rw.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(rw).Encode(snapshotResponse{Frame: 7, Error: "snapshot sink backpressure"})
			return
		}
		_ = json.NewEncoder(rw).Encode(snapshotResponse{OK: true, Frame: 7, Path: "data/snapshots/7.snap.zst"})
	}))
	defer hs.Close()

	sr, err := requestSnapshot(hs.Client(), hs.URL)
	if err != nil || sr.Frame != 7 || sr.Path != "data/snapshots/7.snap.zst" {
		t.Fatalf("snapshot = %+v, %v", sr, err)
	}
	fail = true
	if _, err := requestSnapshot(hs.Client(), hs.URL); err == nil || !strings.Contains(err.Error(), "backpressure") {
		t.Fatalf("expected backpressure error, got %v", err)
	}
}
