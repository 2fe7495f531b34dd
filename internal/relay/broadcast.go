package relay

import "github.com/rolesphere/relay-service/internal/domain"

// Broadcaster fans one message out to the current members of a room.
// Delivery is fire-and-forget: a member that disconnected between the
// membership snapshot and delivery is skipped, and a member whose
// outbound buffer is full loses the frame. It never blocks on a slow
// recipient.
type Broadcaster struct {
	registry *Registry
	table    *Table
}

func NewBroadcaster(registry *Registry, table *Table) *Broadcaster {
	return &Broadcaster{registry: registry, table: table}
}

// Broadcast delivers msg to every member of roomID except exclude
// (pass "" to deliver to all, sender included).
func (b *Broadcaster) Broadcast(roomID string, msg domain.Message, exclude domain.ConnID) {
	for _, id := range b.table.MembersOf(roomID) {
		if exclude != "" && id == exclude {
			continue
		}
		sink, ok := b.registry.Sink(id)
		if !ok {
			continue // gone between snapshot and delivery
		}
		_ = sink.Enqueue(msg) // best-effort
	}
}
