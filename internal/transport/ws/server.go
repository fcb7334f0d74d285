package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"trimap.ai/internal/editor"
	"trimap.ai/internal/protocol"
)

const outboundQueue = 256

type Server struct {
	session *editor.Session
	log     *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(s *editor.Session, logger *log.Logger) *Server {
	return &Server{
		session: s,
		log:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 256 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID, out := s.handshake(r.Context(), conn)
		if sessionID == "" {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if !s.route(ctx, sessionID, msg, out) {
				break
			}
		}

		cancel()
		s.leave(r.Context(), sessionID)
	}
}

// leave tells the session a client is gone unless the session or the request
// has already ended.
func (s *Server) leave(ctx context.Context, sessionID string) {
	select {
	case s.session.Leave() <- sessionID:
	case <-s.session.Done():
	case <-ctx.Done():
	}
}

// route hands one client message to the session. It returns false when the
// connection should close.
func (s *Server) route(ctx context.Context, sessionID string, msg []byte, out chan []byte) bool {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		reply(out, errorMsg(protocol.ErrProtoBadRequest, "malformed json"))
		return true
	}
	if base.ProtocolVersion != protocol.Version {
		reply(out, errorMsg(protocol.ErrProtoVersion, "bad protocol_version"))
		return true
	}

	switch base.Type {
	case protocol.TypeEdit:
		var edit protocol.EditMsg
		if err := json.Unmarshal(msg, &edit); err != nil {
			reply(out, errorMsg(protocol.ErrProtoBadRequest, "bad EDIT"))
			return true
		}
		select {
		case s.session.Inbox() <- editor.EditEnvelope{SessionID: sessionID, Edit: edit}:
		default:
			reply(out, protocol.EditResultMsg{
				Type:            protocol.TypeEditResult,
				ProtocolVersion: protocol.Version,
				EditID:          edit.EditID,
				Frame:           s.session.CurrentFrame(),
				Results:         busyResults(len(edit.Ops)),
			})
		}

	case protocol.TypePick:
		var pick protocol.PickMsg
		if err := json.Unmarshal(msg, &pick); err != nil {
			reply(out, errorMsg(protocol.ErrProtoBadRequest, "bad PICK"))
			return true
		}
		resp := make(chan protocol.PickResultMsg, 1)
		select {
		case s.session.Picks() <- editor.PickRequest{SessionID: sessionID, Pick: pick, Resp: resp}:
		case <-s.session.Done():
			return false
		case <-ctx.Done():
			return false
		}
		select {
		case res := <-resp:
			reply(out, res)
		case <-s.session.Done():
			return false
		case <-ctx.Done():
			return false
		}

	default:
		reply(out, errorMsg(protocol.ErrProtoBadRequest, "unexpected type "+base.Type))
	}
	return true
}

func (s *Server) handshake(ctx context.Context, conn *websocket.Conn) (sessionID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closePolicy(conn, "expected HELLO")
		return "", nil
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		closePolicy(conn, "bad HELLO")
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		closePolicy(conn, "bad protocol_version")
		return "", nil
	}
	if hello.ClientName == "" {
		hello.ClientName = "client"
	}

	out = make(chan []byte, outboundQueue)
	respCh := make(chan editor.JoinResponse, 1)
	req := editor.JoinRequest{
		Name:            hello.ClientName,
		SubscribeMeshes: hello.SubscribeMeshes,
		Out:             out,
		Resp:            respCh,
	}
	select {
	case s.session.Join() <- req:
	case <-s.session.Done():
		closeGoingAway(conn)
		return "", nil
	case <-ctx.Done():
		return "", nil
	}
	var resp editor.JoinResponse
	select {
	case resp = <-respCh:
	case <-s.session.Done():
		closeGoingAway(conn)
		return "", nil
	case <-ctx.Done():
		return "", nil
	}

	// Welcome and the current meshes go out before the writer starts.
	if err := writeJSON(conn, resp.Welcome); err != nil {
		s.leave(ctx, resp.Welcome.SessionID)
		return "", nil
	}
	for _, m := range resp.Meshes {
		if err := writeJSON(conn, m); err != nil {
			s.leave(ctx, resp.Welcome.SessionID)
			return "", nil
		}
	}
	if s.log != nil {
		s.log.Printf("ws: session %s connected (%s)", resp.Welcome.SessionID, hello.ClientName)
	}
	return resp.Welcome.SessionID, out
}

func busyResults(n int) []protocol.OpResult {
	out := make([]protocol.OpResult, n)
	for i := range out {
		out[i] = protocol.OpResult{Index: i, Code: protocol.ErrBusy, Message: "edit queue full"}
	}
	return out
}

func errorMsg(code, message string) protocol.ErrorMsg {
	return protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	}
}

// reply queues v without blocking the reader; a full queue drops it.
func reply(out chan []byte, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}

func closePolicy(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func closeGoingAway(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "session stopped"), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
