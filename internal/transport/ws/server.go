package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rolesphere/relay-service/internal/domain"
	"github.com/rolesphere/relay-service/internal/relay"

	"github.com/gorilla/websocket"
)

type Config struct {
	PingEvery  time.Duration // default 15s
	WriteWait  time.Duration // default 5s
	ReadLimit  int64         // default 64KiB
	SendBuffer int           // default 256
}

type Server struct {
	upgrader websocket.Upgrader
	sessions *relay.Sessions

	pingEvery  time.Duration
	writeWait  time.Duration
	readLimit  int64
	sendBuffer int
}

func NewServer(sessions *relay.Sessions, cfg Config) *Server {
	if cfg.PingEvery <= 0 {
		cfg.PingEvery = 15 * time.Second
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 5 * time.Second
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = 64 << 10
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	return &Server{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery:  cfg.PingEvery,
		writeWait:  cfg.WriteWait,
		readLimit:  cfg.ReadLimit,
		sendBuffer: cfg.SendBuffer,
	}
}

// WS endpoint: GET /ws?room=...&name=...
// Both query params are optional: rooms can be joined later over the
// socket, the display name defaults to "Anonymous".
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("name"))
	roomID := strings.TrimSpace(q.Get("room"))

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, s.sendBuffer)
	sess := s.sessions.Connect(c, name)
	if roomID != "" {
		_ = sess.Join(roomID)
	}
	slog.Info("ws connected", "conn", string(sess.ID()), "room", roomID)

	go s.writeLoop(r.Context(), c)
	s.readLoop(c, sess)

	sess.Disconnect()
	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "conn", string(sess.ID()), "err", err)
	}
	slog.Info("ws disconnected", "conn", string(sess.ID()))
}

func (s *Server) readLoop(c *wsConn, sess *relay.Session) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(s.readLimit)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case TypeJoin:
			var p JoinPayload
			if decode(msg.Payload, &p) != nil || p.RoomID == "" {
				c.sendError(codeBadFrame, "join_room needs room_id")
				continue
			}
			_ = sess.Join(p.RoomID)

		case TypeLeave:
			var p LeavePayload
			if decode(msg.Payload, &p) == nil && p.RoomID != "" {
				sess.Leave(p.RoomID)
			}

		case TypeChat:
			var p ChatPayload
			if decode(msg.Payload, &p) != nil || p.RoomID == "" {
				c.sendError(codeBadFrame, "chat_message needs room_id")
				continue
			}
			if p.DisplayName != "" {
				sess.Rename(p.DisplayName)
			}
			if _, err := sess.Send(p.RoomID, p.Body); err != nil {
				slog.Debug("ws chat rejected", "conn", string(sess.ID()), "room", p.RoomID, "err", err)
				c.sendError(errCode(err), err.Error())
			}

		default:
			// ignore
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(s.writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeWait))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

func errCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotMember):
		return codeNotMember
	case errors.Is(err, domain.ErrEmptyMessage):
		return codeEmptyMessage
	case errors.Is(err, domain.ErrMessageTooLong):
		return codeMessageTooLong
	default:
		return codeBadFrame
	}
}

// --- helpers ---

func decode(payload interface{}, dst interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, dst)
}

type wsConn struct {
	conn   *websocket.Conn
	out    chan Message
	closed chan struct{}
}

func newWsConn(conn *websocket.Conn, buf int) *wsConn {
	return &wsConn{
		conn:   conn,
		out:    make(chan Message, buf),
		closed: make(chan struct{}),
	}
}

// Enqueue implements relay.Sink. The buffered channel keeps delivery
// FIFO per connection; a full buffer drops the frame instead of
// blocking the broadcast.
func (c *wsConn) Enqueue(msg domain.Message) bool {
	return c.trySend(Message{
		Type: TypeChat,
		Payload: ChatPayload{
			RoomID:      msg.RoomID,
			Body:        msg.Body,
			DisplayName: msg.SenderName,
			SenderID:    string(msg.SenderID),
			TSUnix:      msg.SentAt.Unix(),
		},
	})
}

func (c *wsConn) sendError(code, reason string) {
	_ = c.trySend(Message{Type: TypeError, Payload: ErrorPayload{Code: code, Reason: reason}})
}

func (c *wsConn) trySend(msg Message) bool {
	select {
	case c.out <- msg:
		return true
	default:
		return false
	}
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}
