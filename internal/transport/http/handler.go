package http

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/rolesphere/relay-service/internal/relay"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	registry *relay.Registry
	table    *relay.Table
}

func NewHandler(registry *relay.Registry, table *relay.Table) *Handler {
	return &Handler{registry: registry, table: table}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /rooms
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.table.Rooms()
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })

	resp := RoomsListResponse{Items: make([]RoomItem, 0, len(rooms))}
	for _, rm := range rooms {
		resp.Items = append(resp.Items, RoomItem{ID: rm.ID, Members: rm.Members})
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /rooms/{id}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// empty rooms are garbage-collected, so no members means no room
	members := h.table.MembersOf(id)
	if len(members) == 0 {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}

	resp := RoomDetailResponse{ID: id, Members: make([]MemberItem, 0, len(members))}
	for _, connID := range members {
		name, ok := h.registry.DisplayName(connID)
		if !ok {
			continue // disconnected mid-listing
		}
		resp.Members = append(resp.Members, MemberItem{ConnID: string(connID), DisplayName: name})
	}
	sort.Slice(resp.Members, func(i, j int) bool { return resp.Members[i].ConnID < resp.Members[j].ConnID })

	writeJSON(w, http.StatusOK, resp)
}
