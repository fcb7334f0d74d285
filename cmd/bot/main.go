package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"trimap.ai/internal/protocol"
)

// bot is a load client: it picks random spots on the map and sculpts the
// cells it hits.
func main() {
	var (
		url      = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name     = flag.String("name", "bot", "client name")
		interval = flag.Duration("interval", 500*time.Millisecond, "time between picks")
		meshes   = flag.Bool("meshes", false, "subscribe to MESH frames")
		seed     = flag.Int64("seed", 0, "random seed (0 = time based)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      *name,
		SubscribeMeshes: *meshes,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(*seed))

	msgs := make(chan []byte, 64)
	go func() {
		defer close(msgs)
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				return
			}
			msgs <- b
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	var params *protocol.GridParams
	var seq int
	var meshCount int
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if params == nil {
				continue
			}
			seq++
			_ = conn.WriteJSON(randomPick(r, *params, seq))
		case b, ok := <-msgs:
			if !ok {
				return
			}
			base, err := protocol.DecodeBase(b)
			if err != nil {
				continue
			}
			switch base.Type {
			case protocol.TypeWelcome:
				var w protocol.WelcomeMsg
				if err := json.Unmarshal(b, &w); err != nil {
					continue
				}
				params = &w.GridParams
				logger.Printf("WELCOME session=%s frame_rate=%d chunks=%v", w.SessionID, w.GridParams.FrameRateHz, w.GridParams.ChunkCount)

			case protocol.TypePickResult:
				var p protocol.PickResultMsg
				if err := json.Unmarshal(b, &p); err != nil || !p.OK || p.Cell == nil {
					continue
				}
				cell := *p.Cell
				edit := protocol.EditMsg{
					Type:            protocol.TypeEdit,
					ProtocolVersion: protocol.Version,
					EditID:          fmt.Sprintf("E_%d", seq),
					Ops: []protocol.EditOp{
						{Op: protocol.OpSetCellElevation, Cell: &cell, Elevation: r.Intn(params.MaxElevation + 1)},
					},
				}
				_ = conn.WriteJSON(edit)

			case protocol.TypeEditResult:
				var res protocol.EditResultMsg
				if err := json.Unmarshal(b, &res); err != nil {
					continue
				}
				for _, op := range res.Results {
					if !op.OK {
						logger.Printf("edit %s op %d rejected: %s %s", res.EditID, op.Index, op.Code, op.Message)
					}
				}

			case protocol.TypeMesh:
				meshCount++
				if meshCount%100 == 0 {
					logger.Printf("received %d meshes", meshCount)
				}

			case protocol.TypeError:
				logger.Printf("ERROR %s", string(b))
			}
		}
	}
}

func randomPick(r *rand.Rand, p protocol.GridParams, seq int) protocol.PickMsg {
	edge := p.OuterRadius * math.Sqrt(3)
	cols := float64(p.ChunkSize[0]*p.ChunkCount[0] - 1)
	rows := float64(p.ChunkSize[1]*p.ChunkCount[1] - 1)
	return protocol.PickMsg{
		Type:            protocol.TypePick,
		ProtocolVersion: protocol.Version,
		PickID:          fmt.Sprintf("P_%d", seq),
		Mode:            protocol.ModeTri,
		Position:        [3]float64{r.Float64() * cols * edge, 0, r.Float64() * rows * 1.5 * p.OuterRadius},
		Normal:          [3]float64{0, 1, 0},
	}
}
