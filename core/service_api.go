package core

import (
	"context"

	"github.com/readmoa/moachat/schema"
)

// Service is the transport-agnostic API for managing open rooms, their live
// streams, and outbound chat text.
type Service interface {
	OpenRoom(ctx context.Context, req schema.OpenRoomRequest) (schema.OpenRoomResponse, error)
	CloseRoom(ctx context.Context, req schema.CloseRoomRequest) (schema.CloseRoomResponse, error)
	MinimizeRoom(ctx context.Context, req schema.MinimizeRoomRequest) (schema.MinimizeRoomResponse, error)
	RestoreRoom(ctx context.Context, req schema.RestoreRoomRequest) (schema.RestoreRoomResponse, error)
	ListRooms(ctx context.Context, req schema.ListRoomsRequest) (schema.ListRoomsResponse, error)
	SendText(ctx context.Context, req schema.SendTextRequest) (schema.SendTextResponse, error)
	SendRaw(ctx context.Context, req schema.SendRawRequest) (schema.SendRawResponse, error)
	Teardown(ctx context.Context) error
}
