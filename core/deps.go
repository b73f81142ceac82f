package core

import (
	"context"
	"errors"

	"github.com/readmoa/moachat/schema"
	"pkt.systems/pslog"
)

// ErrStreamClosed is returned by Conn.ReadMessage when the peer closed the
// stream (as opposed to a transport-level failure). Transports wrap their
// close events in this sentinel so the multiplexer can pick the right
// terminal status.
var ErrStreamClosed = errors.New("stream closed")

// TokenSource yields the current bearer credential. It is read at every
// connect attempt and never cached across reconnects; rotating the token
// therefore takes effect on the next (re)connect, not retroactively.
type TokenSource interface {
	Token() string
}

// Conn is one live bidirectional stream to one room.
type Conn interface {
	// ReadMessage blocks for the next inbound frame. It returns an error
	// wrapping ErrStreamClosed when a close event was observed.
	ReadMessage() ([]byte, error)
	// WriteText pushes raw text over the stream, best effort.
	WriteText(text string) error
	// Close shuts the stream down. clean marks a client-initiated normal
	// closure; unclean closes carry a going-away code.
	Close(clean bool) error
}

// Dialer opens a stream to a single room.
type Dialer interface {
	Dial(ctx context.Context, roomID schema.RoomID, token string) (Conn, error)
}

// RestClient submits AI jobs and plain chat messages over the REST path.
type RestClient interface {
	SubmitJob(ctx context.Context, req schema.JobRequest) (schema.JobResponse, error)
	PostMessage(ctx context.Context, req schema.PostMessageRequest) error
}

// EventSink receives room events from the connection core. Implementations
// must not block and must not call back into the core.
type EventSink interface {
	OnStatus(event schema.StatusEvent)
	OnMessage(event schema.MessageEvent)
	OnNotice(event schema.NoticeEvent)
}

// MuxDeps carries the collaborators of the connection multiplexer.
type MuxDeps struct {
	Dialer Dialer
	Tokens TokenSource
	Sink   EventSink
	Logger pslog.Logger
}

// ServiceDeps carries the collaborators of the client service.
type ServiceDeps struct {
	Dialer Dialer
	Tokens TokenSource
	Rest   RestClient
	Sink   EventSink
	Logger pslog.Logger
}
