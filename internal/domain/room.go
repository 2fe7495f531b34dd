package domain

type RoomInfo struct {
	ID      string
	Members int
}
