package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType is the kind of an inbound room message.
type MessageType string

const (
	// MessageText is a plain text message.
	MessageText MessageType = "text"
	// MessageImage carries an image URL.
	MessageImage MessageType = "image"
	// MessageFile carries a file attachment.
	MessageFile MessageType = "file"
	// MessageSystemCommand is a server-issued room control message.
	MessageSystemCommand MessageType = "system_command"
	// MessageAIResult carries a completed AI job result.
	MessageAIResult MessageType = "ai_result"
	// MessageUpdate revises a previously delivered message (e.g. deletion).
	MessageUpdate MessageType = "update"
)

// MessageBody carries the type-dependent payload of an inbound message.
// Fields are populated according to the message type; the raw AI payload is
// kept undecoded so the rendering layer can pick its own shape.
type MessageBody struct {
	Text     string          `json:"text,omitempty"`
	ImageURL string          `json:"imageUrl,omitempty"`
	FileURL  string          `json:"fileUrl,omitempty"`
	FileName string          `json:"fileName,omitempty"`
	Command  string          `json:"command,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// InboundMessage is one frame received on a room stream. Immutable once
// received; a deletion arrives as a later update-typed message that carries
// the same id and a deletedAt timestamp.
type InboundMessage struct {
	ID             MessageID   `json:"id"`
	RoomID         RoomID      `json:"roomId"`
	SenderID       UserID      `json:"senderId"`
	SenderNickname Nickname    `json:"senderNickname"`
	SenderRole     SenderRole  `json:"senderRole,omitempty"`
	Type           MessageType `json:"type"`
	Body           MessageBody `json:"body"`
	ReplyToMsgID   MessageID   `json:"replyToMsgId,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	DeletedAt      *time.Time  `json:"deletedAt,omitempty"`
}

// ParseInboundMessage decodes a wire frame into an InboundMessage. Frames
// that do not decode, or that name no room or type, are rejected; callers
// drop such frames without touching the connection.
func ParseInboundMessage(data []byte) (InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return InboundMessage{}, fmt.Errorf("decode inbound frame: %w", err)
	}
	if !msg.RoomID.Valid() {
		return InboundMessage{}, fmt.Errorf("inbound frame: %w", ErrInvalidRoom)
	}
	if msg.Type == "" {
		return InboundMessage{}, fmt.Errorf("inbound frame: missing type")
	}
	return msg, nil
}
