package relay

import (
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rolesphere/relay-service/internal/domain"
)

const defaultMaxBodyChars = 4000

// Sessions builds the per-connection protocol handlers on top of the
// registry, the membership table and the broadcaster.
type Sessions struct {
	registry *Registry
	table    *Table
	bcast    *Broadcaster

	maxBodyChars int
}

func NewSessions(registry *Registry, table *Table, bcast *Broadcaster, maxBodyChars int) *Sessions {
	if maxBodyChars <= 0 {
		maxBodyChars = defaultMaxBodyChars
	}
	return &Sessions{
		registry:     registry,
		table:        table,
		bcast:        bcast,
		maxBodyChars: maxBodyChars,
	}
}

// Connect registers the connection and returns its session. name may be
// empty, the display name then defaults to "Anonymous".
func (s *Sessions) Connect(sink Sink, name string) *Session {
	id := s.registry.Register(sink)
	if name = strings.TrimSpace(name); name != "" {
		s.registry.SetDisplayName(id, name)
	}
	return &Session{id: id, svc: s}
}

// Session is the protocol state machine of one connection. All methods
// are safe for concurrent use; after Disconnect every mutating call
// reports domain.ErrUnknownConnection.
type Session struct {
	id   domain.ConnID
	svc  *Sessions
	done atomic.Bool
}

func (s *Session) ID() domain.ConnID { return s.id }

// Rename updates the display name held by the registry. Harmless after
// disconnect (the registry ignores unknown ids).
func (s *Session) Rename(name string) {
	s.svc.registry.SetDisplayName(s.id, strings.TrimSpace(name))
}

func (s *Session) Join(roomID string) error {
	if s.done.Load() {
		return domain.ErrUnknownConnection
	}
	s.svc.table.Join(roomID, s.id)
	return nil
}

func (s *Session) Leave(roomID string) {
	s.svc.table.Leave(roomID, s.id)
}

// Send validates the body, checks membership and fans the message out
// to the room, sender included. Sender id and display name are stamped
// from the registry; identity claimed inside a frame is never trusted.
func (s *Session) Send(roomID, body string) (domain.Message, error) {
	if s.done.Load() {
		return domain.Message{}, domain.ErrUnknownConnection
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return domain.Message{}, domain.ErrEmptyMessage
	}
	if utf8.RuneCountInString(body) > s.svc.maxBodyChars {
		return domain.Message{}, domain.ErrMessageTooLong
	}
	if !s.svc.table.IsMember(roomID, s.id) {
		return domain.Message{}, domain.ErrNotMember
	}

	name, ok := s.svc.registry.DisplayName(s.id)
	if !ok {
		return domain.Message{}, domain.ErrUnknownConnection
	}

	msg := domain.Message{
		RoomID:     roomID,
		SenderID:   s.id,
		SenderName: name,
		Body:       body,
		SentAt:     time.Now().UTC(),
	}
	s.svc.bcast.Broadcast(roomID, msg, "")

	return msg, nil
}

// Disconnect removes the connection from every room and from the
// registry. The first call wins; duplicates from the transport layer
// are no-ops.
func (s *Session) Disconnect() {
	if !s.done.CompareAndSwap(false, true) {
		return
	}
	s.svc.table.DropConnection(s.id)
	_ = s.svc.registry.Unregister(s.id)
}
