package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rolesphere/relay-service/internal/relay"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRelay(t *testing.T) (*relay.Table, *httptest.Server) {
	t.Helper()
	registry := relay.NewRegistry()
	table := relay.NewTable()
	sessions := relay.NewSessions(registry, table, relay.NewBroadcaster(registry, table), 0)
	server := NewServer(sessions, Config{})

	srv := httptest.NewServer(http.HandlerFunc(server.HandleWS))
	t.Cleanup(srv.Close)
	return table, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &env))
	return env.Type, env.Payload
}

func TestChatOverSocket(t *testing.T) {
	table, srv := newTestRelay(t)

	c1 := dial(t, srv, "room=r1&name=xenia")
	c2 := dial(t, srv, "room=r1&name=yuri")

	require.Eventually(t, func() bool {
		return len(table.MembersOf("r1")) == 2
	}, 2*time.Second, 10*time.Millisecond, "both joins visible server-side")

	err := c1.WriteJSON(Message{
		Type:    TypeChat,
		Payload: ChatPayload{RoomID: "r1", Body: "hi"},
	})
	require.NoError(t, err)

	for _, conn := range []*websocket.Conn{c1, c2} {
		typ, raw := readEnvelope(t, conn)
		require.Equal(t, TypeChat, typ)

		var p ChatPayload
		require.NoError(t, json.Unmarshal(raw, &p))
		assert.Equal(t, "r1", p.RoomID)
		assert.Equal(t, "hi", p.Body)
		assert.Equal(t, "xenia", p.DisplayName, "sender name stamped from the registry")
		assert.NotEmpty(t, p.SenderID)
		assert.NotZero(t, p.TSUnix)
	}
}

func TestChatNotMemberRejected(t *testing.T) {
	_, srv := newTestRelay(t)

	c := dial(t, srv, "name=zoe")
	err := c.WriteJSON(Message{
		Type:    TypeChat,
		Payload: ChatPayload{RoomID: "r9", Body: "knock knock"},
	})
	require.NoError(t, err)

	typ, raw := readEnvelope(t, c)
	require.Equal(t, TypeError, typ)

	var p ErrorPayload
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, codeNotMember, p.Code)
}

func TestJoinLeaveOverSocket(t *testing.T) {
	table, srv := newTestRelay(t)

	c := dial(t, srv, "name=ada")
	require.NoError(t, c.WriteJSON(Message{Type: TypeJoin, Payload: JoinPayload{RoomID: "r1"}}))

	require.Eventually(t, func() bool {
		return len(table.MembersOf("r1")) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.WriteJSON(Message{Type: TypeLeave, Payload: LeavePayload{RoomID: "r1"}}))

	require.Eventually(t, func() bool {
		return len(table.MembersOf("r1")) == 0
	}, 2*time.Second, 10*time.Millisecond, "empty room garbage-collected")
}

func TestDisconnectCleansMembership(t *testing.T) {
	table, srv := newTestRelay(t)

	c := dial(t, srv, "room=r1&name=bob")
	require.Eventually(t, func() bool {
		return len(table.MembersOf("r1")) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Close())

	require.Eventually(t, func() bool {
		return len(table.MembersOf("r1")) == 0
	}, 2*time.Second, 10*time.Millisecond, "disconnect removes the connection everywhere")
}
