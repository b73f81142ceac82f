package logx

import (
	"context"

	"github.com/readmoa/moachat/schema"
	"pkt.systems/pslog"
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithRoom annotates the logger with the room id if present.
func WithRoom(log pslog.Logger, roomID schema.RoomID) pslog.Logger {
	if roomID.Valid() {
		return log.With("room", roomID.String())
	}
	return log
}

// WithUser annotates the logger with the user id if present.
func WithUser(log pslog.Logger, userID schema.UserID) pslog.Logger {
	if userID != "" {
		return log.With("user", userID)
	}
	return log
}

// WithJob annotates the logger with a job id when available.
func WithJob(log pslog.Logger, jobID schema.JobID) pslog.Logger {
	if jobID != "" {
		return log.With("job", jobID)
	}
	return log
}
