package schema

// OpenRoomRequest asks the client to open a room panel and its stream.
type OpenRoomRequest struct {
	RoomID RoomID
}

// OpenRoomResponse reports the dock state after opening.
type OpenRoomResponse struct {
	Room RoomSnapshot
}

// CloseRoomRequest closes a room panel and tears down its stream.
type CloseRoomRequest struct {
	RoomID RoomID
}

// CloseRoomResponse acknowledges a close.
type CloseRoomResponse struct{}

// MinimizeRoomRequest hides an open room panel without closing its stream.
type MinimizeRoomRequest struct {
	RoomID RoomID
}

// MinimizeRoomResponse acknowledges a minimize.
type MinimizeRoomResponse struct{}

// RestoreRoomRequest brings a minimized room panel back into view.
type RestoreRoomRequest struct {
	RoomID RoomID
}

// RestoreRoomResponse acknowledges a restore.
type RestoreRoomResponse struct{}

// ListRoomsRequest asks for a snapshot of the dock.
type ListRoomsRequest struct{}

// RoomSnapshot is a transport-friendly view of one open room.
type RoomSnapshot struct {
	RoomID    RoomID
	Minimized bool
	Status    ConnectionStatus
	Attempts  int
}

// ListRoomsResponse lists open rooms in dock order.
type ListRoomsResponse struct {
	Rooms []RoomSnapshot
}

// SendTextRequest submits user-authored text for a room. Text that starts
// with a known command alias is routed to the AI job endpoint; anything else
// is posted as a plain chat message.
type SendTextRequest struct {
	RoomID RoomID
	Text   string
	// AsCommand forces command resolution even when the first token is not
	// a known alias (the whole-text summary fallback).
	AsCommand bool
}

// SendTextResponse reports how the text was routed.
type SendTextResponse struct {
	Command *ResolvedCommand
	Job     *JobResponse
}

// SendRawRequest pushes raw text over the room stream, best effort.
type SendRawRequest struct {
	RoomID RoomID
	Text   string
}

// SendRawResponse acknowledges a raw send.
type SendRawResponse struct{}

// PostMessageRequest is the REST message-send payload.
type PostMessageRequest struct {
	RoomID    RoomID  `json:"roomId"`
	Text      string  `json:"text"`
	RequestID string  `json:"requestId,omitempty"`
	ReplyTo   *string `json:"replyToMsgId,omitempty"`
}
