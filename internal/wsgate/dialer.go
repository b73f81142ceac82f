// Package wsgate provides the websocket transport for room streams.
package wsgate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/readmoa/moachat/core"
	"github.com/readmoa/moachat/schema"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
)

// Dialer opens one websocket stream per room against the chat gateway. The
// bearer token travels as a query parameter because browsers cannot set
// arbitrary headers on a websocket handshake, and the server keeps a single
// auth path for all clients.
type Dialer struct {
	base      *url.URL
	readLimit int64
	ws        *websocket.Dialer
}

// NewDialer constructs a dialer for the given ws:// or wss:// base URL.
func NewDialer(base string, readLimit int64) (*Dialer, error) {
	parsed, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return nil, fmt.Errorf("parse ws base url: %w", err)
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return nil, fmt.Errorf("ws base url must use ws or wss scheme, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("ws base url must include a host")
	}
	if readLimit <= 0 {
		readLimit = schema.DefaultReadLimit
	}
	return &Dialer{
		base:      parsed,
		readLimit: readLimit,
		ws:        &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
	}, nil
}

// Dial connects to the room's stream endpoint. The token is whatever the
// caller read from its token source for this attempt; an empty token makes
// an anonymous attempt.
func (d *Dialer) Dial(ctx context.Context, roomID schema.RoomID, token string) (core.Conn, error) {
	target := d.RoomURL(roomID, token)
	conn, resp, err := d.ws.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("dial room %s: %w (http %d)", roomID, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial room %s: %w", roomID, err)
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
	conn.SetReadLimit(d.readLimit)
	return &wsConn{conn: conn}, nil
}

// RoomURL builds the per-room endpoint with the token as a query parameter.
func (d *Dialer) RoomURL(roomID schema.RoomID, token string) string {
	u := *d.base
	u.Path = path.Join(u.Path, "ws", "chat", "rooms", roomID.String())
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// wsConn adapts a gorilla connection to the core.Conn contract.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes data writes; control frames are safe concurrently
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if isCloseEvent(err) {
				return nil, fmt.Errorf("%w: %v", core.ErrStreamClosed, err)
			}
			return nil, err
		}
		// Inbound frames are JSON text; anything else is not ours to handle.
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		return data, nil
	}
}

func (c *wsConn) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *wsConn) Close(clean bool) error {
	code := websocket.CloseNormalClosure
	if !clean {
		code = websocket.CloseGoingAway
	}
	deadline := time.Now().Add(writeTimeout)
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, ""), deadline)
	return c.conn.Close()
}

// isCloseEvent reports whether the read error represents an observed close
// event rather than a transport failure.
func isCloseEvent(err error) bool {
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		return true
	}
	return errors.Is(err, net.ErrClosed)
}
