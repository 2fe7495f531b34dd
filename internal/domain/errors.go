package domain

import "errors"

var (
	ErrUnknownConnection = errors.New("unknown connection")
	ErrNotMember         = errors.New("connection not in the room")
	ErrEmptyMessage      = errors.New("empty message")
	ErrMessageTooLong    = errors.New("message too long")
)
