package http

type RoomItem struct {
	ID      string `json:"id"`
	Members int    `json:"members"`
}

type RoomsListResponse struct {
	Items []RoomItem `json:"items"`
}

type MemberItem struct {
	ConnID      string `json:"conn_id"`
	DisplayName string `json:"display_name"`
}

type RoomDetailResponse struct {
	ID      string       `json:"id"`
	Members []MemberItem `json:"members"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
