package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/readmoa/moachat/internal/format"
	"github.com/readmoa/moachat/internal/logx"
	"github.com/readmoa/moachat/schema"
	"pkt.systems/pslog"
)

// service implements the client service behavior: dock mutations drive the
// multiplexer's desired set, and outbound text is routed through command
// resolution before it leaves the client.
type service struct {
	cfg  schema.ClientConfig
	mux  *Mux
	rest RestClient
	sink EventSink
	log  pslog.Logger

	mu   sync.Mutex
	dock *Dock
	down bool
}

// NewService constructs the client service implementation.
func NewService(cfg schema.ClientConfig, deps ServiceDeps) (Service, error) {
	normalized, err := schema.NormalizeClientConfig(cfg)
	if err != nil {
		return nil, err
	}
	cfg = normalized
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	mux, err := NewMux(cfg, MuxDeps{
		Dialer: deps.Dialer,
		Tokens: deps.Tokens,
		Sink:   deps.Sink,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	return &service{
		cfg:  cfg,
		mux:  mux,
		rest: deps.Rest,
		sink: deps.Sink,
		log:  logger,
		dock: NewDock(cfg.MaxOpenRooms),
	}, nil
}

func (s *service) OpenRoom(ctx context.Context, req schema.OpenRoomRequest) (schema.OpenRoomResponse, error) {
	if !req.RoomID.Valid() {
		return schema.OpenRoomResponse{}, schema.ErrInvalidRoom
	}
	log := logx.WithRoom(s.log, req.RoomID)

	s.mu.Lock()
	if s.down {
		s.mu.Unlock()
		return schema.OpenRoomResponse{}, schema.ErrClientClosed
	}
	if err := s.dock.Open(req.RoomID); err != nil {
		limit := s.dock.Cap()
		s.mu.Unlock()
		log.Warn("room open rejected", "err", err, "limit", limit)
		s.emitNotice(schema.NoticeEvent{
			RoomID: req.RoomID,
			Kind:   schema.NoticeRoomLimit,
			Text:   fmt.Sprintf("at most %d rooms can be open at once", limit),
		})
		return schema.OpenRoomResponse{}, err
	}
	ids := s.dock.OpenIDs()
	minimized := s.dock.IsMinimized(req.RoomID)
	s.mu.Unlock()

	s.mux.Reconcile(ids)
	status, attempts := s.mux.RoomStatus(req.RoomID)
	log.Info("room open", "status", status)
	return schema.OpenRoomResponse{Room: schema.RoomSnapshot{
		RoomID:    req.RoomID,
		Minimized: minimized,
		Status:    status,
		Attempts:  attempts,
	}}, nil
}

func (s *service) CloseRoom(ctx context.Context, req schema.CloseRoomRequest) (schema.CloseRoomResponse, error) {
	if !req.RoomID.Valid() {
		return schema.CloseRoomResponse{}, schema.ErrInvalidRoom
	}
	s.mu.Lock()
	if s.down {
		s.mu.Unlock()
		return schema.CloseRoomResponse{}, schema.ErrClientClosed
	}
	s.dock.Close(req.RoomID)
	ids := s.dock.OpenIDs()
	s.mu.Unlock()

	s.mux.Reconcile(ids)
	logx.WithRoom(s.log, req.RoomID).Info("room close")
	return schema.CloseRoomResponse{}, nil
}

func (s *service) MinimizeRoom(ctx context.Context, req schema.MinimizeRoomRequest) (schema.MinimizeRoomResponse, error) {
	if !req.RoomID.Valid() {
		return schema.MinimizeRoomResponse{}, schema.ErrInvalidRoom
	}
	s.mu.Lock()
	s.dock.Minimize(req.RoomID)
	s.mu.Unlock()
	return schema.MinimizeRoomResponse{}, nil
}

func (s *service) RestoreRoom(ctx context.Context, req schema.RestoreRoomRequest) (schema.RestoreRoomResponse, error) {
	if !req.RoomID.Valid() {
		return schema.RestoreRoomResponse{}, schema.ErrInvalidRoom
	}
	s.mu.Lock()
	s.dock.Restore(req.RoomID)
	s.mu.Unlock()
	return schema.RestoreRoomResponse{}, nil
}

func (s *service) ListRooms(ctx context.Context, req schema.ListRoomsRequest) (schema.ListRoomsResponse, error) {
	s.mu.Lock()
	ids := s.dock.OpenIDs()
	minimized := make(map[schema.RoomID]bool, len(ids))
	for _, id := range ids {
		minimized[id] = s.dock.IsMinimized(id)
	}
	s.mu.Unlock()

	rooms := make([]schema.RoomSnapshot, 0, len(ids))
	for _, id := range ids {
		status, attempts := s.mux.RoomStatus(id)
		rooms = append(rooms, schema.RoomSnapshot{
			RoomID:    id,
			Minimized: minimized[id],
			Status:    status,
			Attempts:  attempts,
		})
	}
	return schema.ListRoomsResponse{Rooms: rooms}, nil
}

// SendText routes user-authored text. Text whose first token is a known
// command alias (or text explicitly marked as a command) becomes an AI job
// submission; everything else is posted as a plain chat message. The job
// result is rendered back into the room stream as an ai_result message.
func (s *service) SendText(ctx context.Context, req schema.SendTextRequest) (schema.SendTextResponse, error) {
	if !req.RoomID.Valid() {
		return schema.SendTextResponse{}, schema.ErrInvalidRoom
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return schema.SendTextResponse{}, schema.ErrEmptyMessage
	}

	s.mu.Lock()
	down := s.down
	open := s.dock.IsOpen(req.RoomID)
	s.mu.Unlock()
	if down {
		return schema.SendTextResponse{}, schema.ErrClientClosed
	}
	if !open {
		return schema.SendTextResponse{}, schema.ErrRoomNotOpen
	}
	if s.rest == nil {
		return schema.SendTextResponse{}, schema.ErrJobUnavailable
	}
	log := logx.WithRoom(s.log, req.RoomID)

	if req.AsCommand || schema.KnownAlias(text) {
		resolved := schema.ResolveCommand(text)
		log.Info("job submit", "command", resolved.Command)
		job, err := s.rest.SubmitJob(ctx, schema.JobRequest{
			RoomID:    req.RoomID,
			Command:   resolved.Command,
			Note:      resolved.Note,
			RequestID: uuid.NewString(),
		})
		if err != nil {
			log.Warn("job submit failed", "command", resolved.Command, "err", err)
			return schema.SendTextResponse{Command: &resolved}, fmt.Errorf("submit job: %w", err)
		}
		s.publishJobResult(req.RoomID, resolved.Command, job)
		return schema.SendTextResponse{Command: &resolved, Job: &job}, nil
	}

	err := s.rest.PostMessage(ctx, schema.PostMessageRequest{
		RoomID:    req.RoomID,
		Text:      text,
		RequestID: uuid.NewString(),
	})
	if err != nil {
		log.Warn("message post failed", "err", err)
		return schema.SendTextResponse{}, fmt.Errorf("post message: %w", err)
	}
	return schema.SendTextResponse{}, nil
}

func (s *service) SendRaw(ctx context.Context, req schema.SendRawRequest) (schema.SendRawResponse, error) {
	if !req.RoomID.Valid() {
		return schema.SendRawResponse{}, schema.ErrInvalidRoom
	}
	if strings.TrimSpace(req.Text) == "" {
		return schema.SendRawResponse{}, schema.ErrEmptyMessage
	}
	if err := s.mux.Send(req.RoomID, req.Text); err != nil {
		return schema.SendRawResponse{}, err
	}
	return schema.SendRawResponse{}, nil
}

func (s *service) Teardown(ctx context.Context) error {
	s.mu.Lock()
	if s.down {
		s.mu.Unlock()
		return nil
	}
	s.down = true
	s.mu.Unlock()

	s.mux.TeardownAll()
	s.log.Info("client teardown complete")
	return nil
}

// publishJobResult renders a completed job back into the room's message
// stream as a synthetic ai_result message.
func (s *service) publishJobResult(roomID schema.RoomID, cmd schema.AICommand, job schema.JobResponse) {
	if s.sink == nil {
		return
	}
	var payload []byte
	if job.Payload != nil {
		payload = job.Payload.Raw
	}
	s.sink.OnMessage(schema.MessageEvent{
		RoomID: roomID,
		Message: schema.InboundMessage{
			ID:             schema.MessageID(uuid.NewString()),
			RoomID:         roomID,
			SenderNickname: "AI",
			SenderRole:     "bot",
			Type:           schema.MessageAIResult,
			Body: schema.MessageBody{
				Text:    format.JobMessage(cmd, job),
				Command: string(cmd),
				Payload: payload,
			},
			CreatedAt: time.Now(),
		},
	})
}

func (s *service) emitNotice(ev schema.NoticeEvent) {
	if s.sink != nil {
		s.sink.OnNotice(ev)
	}
}
