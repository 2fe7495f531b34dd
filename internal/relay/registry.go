package relay

import (
	"sync"

	"github.com/rolesphere/relay-service/internal/domain"

	"github.com/google/uuid"
)

// Sink is the outbound side of one connection. Enqueue must not block;
// it reports false when the frame was dropped.
type Sink interface {
	Enqueue(msg domain.Message) bool
}

type record struct {
	name string
	sink Sink
}

// Registry owns the connection records. Membership lives in Table; the
// two may disagree briefly during a disconnect race, and readers of one
// must tolerate a miss in the other.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*record
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnID]*record)}
}

func (r *Registry) Register(sink Sink) domain.ConnID {
	id := domain.ConnID(uuid.NewString())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &record{name: domain.DefaultDisplayName, sink: sink}

	return id
}

// SetDisplayName is a no-op for unknown ids: the connection may already
// be gone, disconnect races are expected here.
func (r *Registry) SetDisplayName(id domain.ConnID, name string) {
	if name == "" {
		name = domain.DefaultDisplayName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.conns[id]; ok {
		rec.name = name
	}
}

func (r *Registry) DisplayName(id domain.ConnID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.conns[id]
	if !ok {
		return "", false
	}
	return rec.name, true
}

func (r *Registry) Sink(id domain.ConnID) (Sink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return rec.sink, true
}

// Unregister removes the record. A second call for the same id returns
// domain.ErrUnknownConnection so double-disconnects stay detectable.
func (r *Registry) Unregister(id domain.ConnID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[id]; !ok {
		return domain.ErrUnknownConnection
	}
	delete(r.conns, id)

	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}
