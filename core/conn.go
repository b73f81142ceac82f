package core

import (
	"time"

	"github.com/readmoa/moachat/schema"
)

// roomConn tracks the state of a single room stream. All fields are guarded
// by the owning multiplexer's mutex; nothing else writes to them. The
// generation counter invalidates dial results, read loops, and reconnect
// timers that outlive the attempt they belong to.
type roomConn struct {
	id       schema.RoomID
	status   schema.ConnectionStatus
	conn     Conn
	attempts int
	retry    *time.Timer
	closed   bool
	gen      uint64
}

func newRoomConn(id schema.RoomID) *roomConn {
	return &roomConn{id: id, status: schema.StatusIdle}
}

// cancelRetry stops a pending reconnect timer, if any.
func (rc *roomConn) cancelRetry() {
	if rc.retry != nil {
		rc.retry.Stop()
		rc.retry = nil
	}
}

// invalidate bumps the generation so in-flight callbacks become no-ops.
func (rc *roomConn) invalidate() uint64 {
	rc.gen++
	return rc.gen
}
