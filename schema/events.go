package schema

// StatusEvent reports a room connection status change.
type StatusEvent struct {
	RoomID  RoomID
	Status  ConnectionStatus
	Attempt int
	// Final is set when the connection has exhausted its reconnect budget
	// and will not self-heal; the caller may offer a manual retry.
	Final bool
}

// MessageEvent delivers one inbound room message to the UI layer.
type MessageEvent struct {
	RoomID  RoomID
	Message InboundMessage
}

// NoticeKind classifies transient user-facing notices.
type NoticeKind string

const (
	// NoticeRoomLimit is emitted when opening a room past the cap.
	NoticeRoomLimit NoticeKind = "room_limit"
	// NoticeSendUnavailable is emitted when a send is attempted while the
	// room stream is not connected.
	NoticeSendUnavailable NoticeKind = "send_unavailable"
	// NoticeReconnectExhausted is emitted when a room stops retrying.
	NoticeReconnectExhausted NoticeKind = "reconnect_exhausted"
)

// NoticeEvent is a transient, user-visible notice tied to a room.
type NoticeEvent struct {
	RoomID RoomID
	Kind   NoticeKind
	Text   string
}
