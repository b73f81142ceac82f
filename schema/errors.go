package schema

import "errors"

var (
	// ErrInvalidRoom indicates a missing or non-positive room identifier.
	ErrInvalidRoom = errors.New("invalid room")
	// ErrRoomLimit indicates the open-room cap has been reached.
	ErrRoomLimit = errors.New("open room limit reached")
	// ErrRoomNotOpen indicates the room is not in the open set.
	ErrRoomNotOpen = errors.New("room not open")
	// ErrNotConnected indicates the room stream is not in connected status.
	ErrNotConnected = errors.New("room not connected")
	// ErrClientClosed indicates the client has been torn down.
	ErrClientClosed = errors.New("client closed")
	// ErrEmptyMessage indicates the outbound message text was empty.
	ErrEmptyMessage = errors.New("empty message")
	// ErrJobUnavailable indicates no job endpoint is configured.
	ErrJobUnavailable = errors.New("job endpoint not configured")
)
