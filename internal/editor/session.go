package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"trimap.ai/internal/lattice/grid"
	"trimap.ai/internal/lattice/mesh"
	"trimap.ai/internal/persistence/editlog"
	"trimap.ai/internal/persistence/snapshot"
	"trimap.ai/internal/protocol"
)

type Config struct {
	FrameRateHz int
	// StartFrame resumes numbering after a snapshot restore.
	StartFrame uint64
	// Zero disables periodic snapshots.
	SnapshotEveryFrames uint64
	// Grid parameters echoed to clients in WELCOME.
	Params protocol.GridParams
}

type JoinRequest struct {
	Name            string
	SubscribeMeshes bool
	Out             chan []byte
	Resp            chan JoinResponse
}

// JoinResponse carries the welcome and one MESH per chunk so a new client
// can draw the whole map before the next frame.
type JoinResponse struct {
	Welcome protocol.WelcomeMsg
	Meshes  []protocol.MeshMsg
}

type EditEnvelope struct {
	SessionID string
	Edit      protocol.EditMsg
}

type PickRequest struct {
	SessionID string
	Pick      protocol.PickMsg
	Resp      chan protocol.PickResultMsg
}

// Journal receives every applied or rejected op and one row per frame.
// Implemented by persistence/editlog.
type Journal interface {
	RecordEdit(e editlog.Entry)
	RecordFrame(f editlog.FrameRow)
}

type FrameLogger interface {
	WriteFrame(entry FrameLogEntry) error
}

type FrameLogEntry struct {
	Frame         uint64         `json:"frame"`
	At            string         `json:"at"`
	Edits         []RecordedEdit `json:"edits,omitempty"`
	RebuiltChunks []int          `json:"rebuilt_chunks,omitempty"`
}

type RecordedEdit struct {
	SessionID string              `json:"session_id"`
	Edit      protocol.EditMsg    `json:"edit"`
	Results   []protocol.OpResult `json:"results"`
}

type client struct {
	name   string
	out    chan []byte
	meshes bool
}

// Session is the single-threaded owner of a grid. All grid access happens
// on the Run goroutine; other goroutines talk to it through channels.
type Session struct {
	cfg     Config
	grid    *grid.Grid
	builder *mesh.Builder
	log     *log.Logger

	frame atomic.Uint64

	// totals is owned by the Run goroutine; metrics is its published copy.
	totals  SessionMetrics
	metrics atomic.Value

	// Latest MESH per chunk, replayed to joining clients.
	meshes []protocol.MeshMsg

	clients map[string]*client

	inbox     chan EditEnvelope
	picks     chan PickRequest
	join      chan JoinRequest
	leave     chan string
	snapshots chan snapshotReq
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
	doneOnce  sync.Once

	// Optional sinks (may be nil).
	journal      Journal
	frameLogger  FrameLogger
	snapshotSink chan<- snapshot.SnapshotV1
}

// New meshes every chunk of g once. The session takes ownership of g.
func New(cfg Config, g *grid.Grid, logger *log.Logger) (*Session, error) {
	if cfg.FrameRateHz <= 0 {
		return nil, fmt.Errorf("editor: frame rate must be > 0")
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[editor] ", log.LstdFlags|log.Lmicroseconds)
	}
	s := &Session{
		cfg:       cfg,
		grid:      g,
		builder:   mesh.NewBuilder(),
		log:       logger,
		meshes:    make([]protocol.MeshMsg, g.NumChunks()),
		clients:   map[string]*client{},
		inbox:     make(chan EditEnvelope, 1024),
		picks:     make(chan PickRequest, 64),
		join:      make(chan JoinRequest, 64),
		leave:     make(chan string, 64),
		snapshots: make(chan snapshotReq, 8),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	s.frame.Store(cfg.StartFrame)
	g.MarkAllDirty()
	built, err := s.builder.Flush(g)
	if err != nil {
		return nil, fmt.Errorf("editor: initial mesh: %w", err)
	}
	for i := range built {
		s.storeMesh(&built[i], cfg.StartFrame)
	}
	return s, nil
}

func (s *Session) SetJournal(j Journal)         { s.journal = j }
func (s *Session) SetFrameLogger(l FrameLogger) { s.frameLogger = l }
func (s *Session) Inbox() chan<- EditEnvelope   { return s.inbox }
func (s *Session) Picks() chan<- PickRequest    { return s.picks }
func (s *Session) Join() chan<- JoinRequest     { return s.join }
func (s *Session) Leave() chan<- string         { return s.leave }
func (s *Session) CurrentFrame() uint64         { return s.frame.Load() }
func (s *Session) Params() protocol.GridParams  { return s.cfg.Params }

// Run serves the session until ctx ends or Stop is called. Done is closed
// once it returns.
func (s *Session) Run(ctx context.Context) error {
	defer s.doneOnce.Do(func() { close(s.done) })
	interval := time.Second / time.Duration(s.cfg.FrameRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pending []EditEnvelope

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case req := <-s.join:
			req.Resp <- s.handleJoin(req)
		case id := <-s.leave:
			delete(s.clients, id)
		case req := <-s.picks:
			req.Resp <- s.handlePick(req.Pick)
		case req := <-s.snapshots:
			s.handleSnapshotRequest(req)
		case env := <-s.inbox:
			pending = append(pending, env)
		case <-ticker.C:
			s.step(pending)
			pending = pending[:0]
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (s *Session) Stop() { s.stopOnce.Do(func() { close(s.stop) }) }

// Done is closed after Run returns. Senders on Join, Leave and Picks select
// on it so they never wait on a loop that is gone.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) handleJoin(req JoinRequest) JoinResponse {
	id := uuid.NewString()
	s.clients[id] = &client{name: req.Name, out: req.Out, meshes: req.SubscribeMeshes}
	s.log.Printf("join session=%s name=%q meshes=%v", id, req.Name, req.SubscribeMeshes)

	resp := JoinResponse{
		Welcome: protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			SessionID:       id,
			Frame:           s.frame.Load(),
			GridParams:      s.cfg.Params,
		},
	}
	if req.SubscribeMeshes {
		resp.Meshes = append(resp.Meshes, s.meshes...)
	}
	return resp
}

// step advances one frame: edits in arrival order, then a flush of every
// chunk they dirtied.
func (s *Session) step(edits []EditEnvelope) {
	start := time.Now()
	frame := s.frame.Add(1)
	now := start.UTC().Format(time.RFC3339Nano)

	entry := FrameLogEntry{Frame: frame, At: now}
	applied, rejected := 0, 0
	for _, env := range edits {
		results := s.applyEdit(frame, now, env)
		for _, r := range results {
			if r.OK {
				applied++
			} else {
				rejected++
			}
		}
		entry.Edits = append(entry.Edits, RecordedEdit{SessionID: env.SessionID, Edit: env.Edit, Results: results})
		s.send(env.SessionID, protocol.EditResultMsg{
			Type:            protocol.TypeEditResult,
			ProtocolVersion: protocol.Version,
			EditID:          env.Edit.EditID,
			Frame:           frame,
			Results:         results,
		})
	}

	built, err := s.builder.Flush(s.grid)
	if err != nil {
		s.log.Printf("frame %d: mesh flush: %v", frame, err)
	}
	for i := range built {
		msg := s.storeMesh(&built[i], frame)
		entry.RebuiltChunks = append(entry.RebuiltChunks, msg.Chunk)
		s.broadcastMesh(msg)
	}

	if s.journal != nil && (applied+rejected > 0 || len(built) > 0) {
		s.journal.RecordFrame(editlog.FrameRow{
			Frame:         frame,
			Edits:         applied,
			Rejected:      rejected,
			RebuiltChunks: len(built),
			At:            now,
		})
	}
	if s.frameLogger != nil && (len(entry.Edits) > 0 || len(entry.RebuiltChunks) > 0) {
		if err := s.frameLogger.WriteFrame(entry); err != nil {
			s.log.Printf("frame %d: frame log: %v", frame, err)
		}
	}

	if s.cfg.SnapshotEveryFrames > 0 && frame%s.cfg.SnapshotEveryFrames == 0 && s.snapshotSink != nil {
		if err := s.emitSnapshot(frame); err != nil {
			s.log.Printf("frame %d: %v", frame, err)
		}
	}

	s.totals.OpsApplied += uint64(applied)
	s.totals.OpsRejected += uint64(rejected)
	s.totals.MeshesBuilt += uint64(len(built))
	s.publishMetrics(frame, float64(time.Since(start).Microseconds())/1000)
}

func (s *Session) storeMesh(m *mesh.Mesh, frame uint64) protocol.MeshMsg {
	msg := meshMsg(s.grid, m, frame)
	s.meshes[m.Chunk] = msg
	return msg
}

func (s *Session) broadcastMesh(msg protocol.MeshMsg) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.log.Printf("encode mesh %d: %v", msg.Chunk, err)
		return
	}
	for _, c := range s.clients {
		if c.meshes {
			trySend(c.out, b)
		}
	}
}

func (s *Session) send(sessionID string, v any) {
	c := s.clients[sessionID]
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Printf("encode for %s: %v", sessionID, err)
		return
	}
	if !trySend(c.out, b) {
		s.log.Printf("session %s: outbound queue full, dropped message", sessionID)
	}
}

// trySend never blocks the frame loop.
func trySend(ch chan []byte, b []byte) bool {
	select {
	case ch <- b:
		return true
	default:
		return false
	}
}
