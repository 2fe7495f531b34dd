package relay

import (
	"sync"

	"github.com/rolesphere/relay-service/internal/domain"
)

// Table maps rooms to member connections and back. Both directions
// mutate under the same lock, so a member set and the matching room set
// can never be observed torn. Rooms are created on first join and
// removed when the last member leaves.
type Table struct {
	mu     sync.RWMutex
	rooms  map[string]map[domain.ConnID]struct{}
	byConn map[domain.ConnID]map[string]struct{}
}

func NewTable() *Table {
	return &Table{
		rooms:  make(map[string]map[domain.ConnID]struct{}),
		byConn: make(map[domain.ConnID]map[string]struct{}),
	}
}

// Join is idempotent: rejoining a room the connection is already in is
// a no-op.
func (t *Table) Join(roomID string, id domain.ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rs, ok := t.rooms[roomID]
	if !ok {
		rs = make(map[domain.ConnID]struct{})
		t.rooms[roomID] = rs
	}
	rs[id] = struct{}{}

	cs, ok := t.byConn[id]
	if !ok {
		cs = make(map[string]struct{})
		t.byConn[id] = cs
	}
	cs[roomID] = struct{}{}
}

func (t *Table) Leave(roomID string, id domain.ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.leaveLocked(roomID, id)
}

func (t *Table) leaveLocked(roomID string, id domain.ConnID) {
	if rs, ok := t.rooms[roomID]; ok {
		delete(rs, id)
		if len(rs) == 0 {
			delete(t.rooms, roomID)
		}
	}
	if cs, ok := t.byConn[id]; ok {
		delete(cs, roomID)
		if len(cs) == 0 {
			delete(t.byConn, id)
		}
	}
}

func (t *Table) IsMember(roomID string, id domain.ConnID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.rooms[roomID][id]
	return ok
}

// MembersOf returns a snapshot copy, safe to iterate while the table
// keeps mutating.
func (t *Table) MembersOf(roomID string) []domain.ConnID {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rs := t.rooms[roomID]
	out := make([]domain.ConnID, 0, len(rs))
	for id := range rs {
		out = append(out, id)
	}
	return out
}

func (t *Table) RoomsOf(id domain.ConnID) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cs := t.byConn[id]
	out := make([]string, 0, len(cs))
	for roomID := range cs {
		out = append(out, roomID)
	}
	return out
}

// DropConnection removes the connection from every room it is in and
// returns those rooms. Used for disconnect cleanup.
func (t *Table) DropConnection(id domain.ConnID) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	cs := t.byConn[id]
	out := make([]string, 0, len(cs))
	for roomID := range cs {
		out = append(out, roomID)
	}
	for _, roomID := range out {
		t.leaveLocked(roomID, id)
	}
	return out
}

func (t *Table) Rooms() []domain.RoomInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.RoomInfo, 0, len(t.rooms))
	for roomID, rs := range t.rooms {
		out = append(out, domain.RoomInfo{ID: roomID, Members: len(rs)})
	}
	return out
}
