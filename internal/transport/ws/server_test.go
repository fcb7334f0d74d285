package ws

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"trimap.ai/internal/editor"
	"trimap.ai/internal/lattice/coords"
	"trimap.ai/internal/lattice/grid"
	"trimap.ai/internal/protocol"
)

func startServer(t *testing.T) (*websocket.Conn, [3]int) {
	t.Helper()
	_, conn, cube := startSession(t)
	return conn, cube
}

func startSession(t *testing.T) (*editor.Session, *websocket.Conn, [3]int) {
	t.Helper()
	cfg := grid.DefaultConfig()
	cfg.ChunkCountX, cfg.ChunkCountZ = 2, 2
	g, err := grid.Build(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	p := g.Point(g.PointAtOffset(4, 4))
	cube := g.Cell(p.Cell(coords.CellS, grid.Floor)).Coords.Cube()

	logger := log.New(io.Discard, "", 0)
	sess, err := editor.New(editor.Config{FrameRateHz: 50, Params: editor.ParamsFor(cfg, 50)}, g, logger)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = sess.Run(ctx) }()

	hs := httptest.NewServer(NewServer(sess, logger).Handler())
	t.Cleanup(func() {
		hs.Close()
		cancel()
	})

	url := "ws" + strings.TrimPrefix(hs.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return sess, conn, cube
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readUntil skips messages until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string, into any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read waiting for %s: %v", typ, err)
		}
		base, err := protocol.DecodeBase(b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if base.Type == typ {
			if err := json.Unmarshal(b, into); err != nil {
				t.Fatalf("unmarshal %s: %v", typ, err)
			}
			return
		}
	}
}

func TestServer_HelloEditPick(t *testing.T) {
	conn, cube := startServer(t)

	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "t", SubscribeMeshes: true})
	var welcome protocol.WelcomeMsg
	readUntil(t, conn, protocol.TypeWelcome, &welcome)
	if welcome.SessionID == "" || welcome.GridParams.FrameRateHz != 50 {
		t.Fatalf("welcome: %+v", welcome)
	}
	var first protocol.MeshMsg
	readUntil(t, conn, protocol.TypeMesh, &first)
	if first.FlatTriangles == 0 || len(first.Indices) != 3*first.FlatTriangles {
		t.Fatalf("initial mesh: %d flat, %d indices", first.FlatTriangles, len(first.Indices))
	}

	send(t, conn, protocol.EditMsg{
		Type:            protocol.TypeEdit,
		ProtocolVersion: protocol.Version,
		EditID:          "e1",
		Ops:             []protocol.EditOp{{Op: protocol.OpSetCellElevation, Cell: &cube, Elevation: 2}},
	})
	var res protocol.EditResultMsg
	readUntil(t, conn, protocol.TypeEditResult, &res)
	if res.EditID != "e1" || len(res.Results) != 1 || !res.Results[0].OK {
		t.Fatalf("edit result: %+v", res)
	}
	var rebuilt protocol.MeshMsg
	readUntil(t, conn, protocol.TypeMesh, &rebuilt)
	if rebuilt.Frame != res.Frame || rebuilt.CliffTriangles == 0 {
		t.Fatalf("rebuilt mesh frame %d (edit frame %d), %d walls", rebuilt.Frame, res.Frame, rebuilt.CliffTriangles)
	}

	send(t, conn, protocol.PickMsg{
		Type:            protocol.TypePick,
		ProtocolVersion: protocol.Version,
		PickID:          "p1",
		Mode:            protocol.ModeTri,
		Position:        [3]float64{-500, 0, -500},
		Normal:          [3]float64{0, 1, 0},
	})
	var pick protocol.PickResultMsg
	readUntil(t, conn, protocol.TypePickResult, &pick)
	if pick.PickID != "p1" || pick.OK || pick.Code != protocol.ErrOutsideGrid {
		t.Fatalf("pick: %+v", pick)
	}
}

func TestServer_RejectsWrongVersion(t *testing.T) {
	conn, _ := startServer(t)

	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version})
	var welcome protocol.WelcomeMsg
	readUntil(t, conn, protocol.TypeWelcome, &welcome)

	send(t, conn, map[string]any{"type": protocol.TypeEdit, "protocol_version": "0.9", "edit_id": "x"})
	var e protocol.ErrorMsg
	readUntil(t, conn, protocol.TypeError, &e)
	if e.Code != protocol.ErrProtoVersion {
		t.Fatalf("error: %+v", e)
	}
}

func TestServer_HandshakeRequiresHello(t *testing.T) {
	conn, _ := startServer(t)
	send(t, conn, map[string]any{"type": protocol.TypePick, "protocol_version": protocol.Version})
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy close, got %v", err)
	}
}

func TestServer_HelloAfterSessionStopped(t *testing.T) {
	sess, conn, _ := startSession(t)
	sess.Stop()
	sess.Stop()
	select {
	case <-sess.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not stop")
	}

	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "late"})
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("expected going-away close, got %v", err)
	}
}
