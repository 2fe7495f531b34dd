package domain

import "time"

// Message is transient: it exists only between validation and fan-out.
// Nothing is stored after delivery.
type Message struct {
	RoomID     string
	SenderID   ConnID
	SenderName string
	Body       string
	SentAt     time.Time
}
