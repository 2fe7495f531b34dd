package ws

// Event types carried over the socket
const (
	TypeJoin  = "join_room"    // client -> server
	TypeLeave = "leave_room"   // client -> server
	TypeChat  = "chat_message" // both directions
	TypeError = "error"        // server -> client
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type JoinPayload struct {
	RoomID string `json:"room_id"`
}

type LeavePayload struct {
	RoomID string `json:"room_id"`
}

type ChatPayload struct {
	RoomID string `json:"room_id"`
	Body   string `json:"body"`

	// inbound: optional display name refresh.
	// outbound: the sender's name as held by the registry.
	DisplayName string `json:"display_name,omitempty"`

	// outbound only, stamped by the relay, never echoed from the frame
	SenderID string `json:"sender_id,omitempty"`
	TSUnix   int64  `json:"ts_unix,omitempty"`
}

type ErrorPayload struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

const (
	codeNotMember      = "not_member"
	codeEmptyMessage   = "empty_message"
	codeMessageTooLong = "message_too_long"
	codeBadFrame       = "bad_frame"
)
