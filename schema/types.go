package schema

import "strconv"

// RoomID identifies a chat room. Stable for the room's lifetime.
type RoomID int64

// String renders the room id for URLs and log fields.
func (r RoomID) String() string {
	return strconv.FormatInt(int64(r), 10)
}

// Valid reports whether the id is a positive room identifier.
func (r RoomID) Valid() bool {
	return r > 0
}

// UserID identifies a user in the community.
type UserID string

// MessageID identifies a single room message.
type MessageID string

// JobID identifies a background AI job.
type JobID string

// Nickname is the user-facing display name of a sender.
type Nickname string

// SenderRole marks special senders inside a room (host, moderator, bot).
type SenderRole string

// ConnectionStatus describes the lifecycle state of a room connection.
type ConnectionStatus string

const (
	// StatusIdle is the pre-connect state.
	StatusIdle ConnectionStatus = "idle"
	// StatusConnecting means a dial is in flight.
	StatusConnecting ConnectionStatus = "connecting"
	// StatusConnected means the stream is live.
	StatusConnected ConnectionStatus = "connected"
	// StatusDisconnected means a close event was observed with no pending error.
	StatusDisconnected ConnectionStatus = "disconnected"
	// StatusError means a transport-level failure was observed.
	StatusError ConnectionStatus = "error"
)
