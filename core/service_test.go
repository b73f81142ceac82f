package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/readmoa/moachat/schema"
)

func newTestService(t *testing.T, dialer *fakeDialer, rest RestClient, sink EventSink) Service {
	t.Helper()
	svc, err := NewService(testMuxConfig(), ServiceDeps{
		Dialer: dialer,
		Rest:   rest,
		Sink:   sink,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Teardown(context.Background()) })
	return svc
}

func TestOpenRoomDrivesConnection(t *testing.T) {
	dialer := newFakeDialer()
	svc := newTestService(t, dialer, nil, &recordSink{})

	resp, err := svc.OpenRoom(context.Background(), schema.OpenRoomRequest{RoomID: 11})
	if err != nil {
		t.Fatalf("open room: %v", err)
	}
	if resp.Room.RoomID != 11 {
		t.Fatalf("unexpected snapshot room %s", resp.Room.RoomID)
	}
	waitFor(t, "room 11 to dial", func() bool { return dialer.dialCount(11) == 1 })

	// Opening again must not spawn a second connection.
	if _, err := svc.OpenRoom(context.Background(), schema.OpenRoomRequest{RoomID: 11}); err != nil {
		t.Fatalf("re-open room: %v", err)
	}
	waitFor(t, "room 11 to connect", func() bool {
		list, err := svc.ListRooms(context.Background(), schema.ListRoomsRequest{})
		return err == nil && len(list.Rooms) == 1 && list.Rooms[0].Status == schema.StatusConnected
	})
	if got := dialer.dialCount(11); got != 1 {
		t.Fatalf("expected one dial for room 11, got %d", got)
	}
}

func TestOpenRoomLimitProducesNotice(t *testing.T) {
	dialer := newFakeDialer()
	sink := &recordSink{}
	svc := newTestService(t, dialer, nil, sink)

	for id := schema.RoomID(1); id <= 5; id++ {
		if _, err := svc.OpenRoom(context.Background(), schema.OpenRoomRequest{RoomID: id}); err != nil {
			t.Fatalf("open room %s: %v", id, err)
		}
	}
	if _, err := svc.OpenRoom(context.Background(), schema.OpenRoomRequest{RoomID: 6}); !errors.Is(err, schema.ErrRoomLimit) {
		t.Fatalf("expected ErrRoomLimit, got %v", err)
	}

	kinds := sink.noticeKinds(6)
	if len(kinds) != 1 || kinds[0] != schema.NoticeRoomLimit {
		t.Fatalf("expected room_limit notice, got %v", kinds)
	}
	list, err := svc.ListRooms(context.Background(), schema.ListRoomsRequest{})
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if len(list.Rooms) != 5 {
		t.Fatalf("expected 5 open rooms, got %d", len(list.Rooms))
	}
	// No connection side effects for the rejected room.
	if got := dialer.dialCount(6); got != 0 {
		t.Fatalf("rejected open must not dial, got %d", got)
	}
}

func TestMinimizeKeepsStreamAndReopenRestores(t *testing.T) {
	dialer := newFakeDialer()
	svc := newTestService(t, dialer, nil, &recordSink{})

	if _, err := svc.OpenRoom(context.Background(), schema.OpenRoomRequest{RoomID: 21}); err != nil {
		t.Fatalf("open room: %v", err)
	}
	waitFor(t, "room 21 to dial", func() bool { return dialer.dialCount(21) == 1 })

	if _, err := svc.MinimizeRoom(context.Background(), schema.MinimizeRoomRequest{RoomID: 21}); err != nil {
		t.Fatalf("minimize: %v", err)
	}
	list, _ := svc.ListRooms(context.Background(), schema.ListRoomsRequest{})
	if len(list.Rooms) != 1 || !list.Rooms[0].Minimized {
		t.Fatalf("expected minimized open room, got %+v", list.Rooms)
	}
	// Minimizing keeps the stream: no close happened.
	if conn := dialer.conn(21, 0); conn != nil && conn.closedClean() {
		t.Fatalf("minimize must not close the stream")
	}

	if _, err := svc.OpenRoom(context.Background(), schema.OpenRoomRequest{RoomID: 21}); err != nil {
		t.Fatalf("re-open: %v", err)
	}
	list, _ = svc.ListRooms(context.Background(), schema.ListRoomsRequest{})
	if len(list.Rooms) != 1 || list.Rooms[0].Minimized {
		t.Fatalf("expected re-open to clear minimized, got %+v", list.Rooms)
	}
}

func TestSendTextRoutesCommandToJobEndpoint(t *testing.T) {
	dialer := newFakeDialer()
	sink := &recordSink{}
	rest := &fakeRest{jobResp: schema.JobResponse{
		Status:    schema.JobDone,
		Payload:   &schema.JobPayload{Summary: "오늘 이야기 요약"},
		JobID:     "job-1",
		LatencyMs: 120,
	}}
	svc := newTestService(t, dialer, rest, sink)

	if _, err := svc.OpenRoom(context.Background(), schema.OpenRoomRequest{RoomID: 31}); err != nil {
		t.Fatalf("open room: %v", err)
	}

	resp, err := svc.SendText(context.Background(), schema.SendTextRequest{
		RoomID: 31,
		Text:   "summary 오늘 이야기 정리해줘",
	})
	if err != nil {
		t.Fatalf("send text: %v", err)
	}
	if resp.Command == nil || resp.Command.Command != schema.CommandPublicSummary {
		t.Fatalf("expected public summary command, got %+v", resp.Command)
	}
	jobs := rest.submitted()
	if len(jobs) != 1 {
		t.Fatalf("expected one job submission, got %d", len(jobs))
	}
	if jobs[0].Note != "오늘 이야기 정리해줘" {
		t.Fatalf("unexpected note %q", jobs[0].Note)
	}
	if jobs[0].RequestID == "" {
		t.Fatalf("expected request id to be set")
	}
	if len(rest.posted()) != 0 {
		t.Fatalf("command text must not be posted as a plain message")
	}

	// The job result is rendered back into the room stream.
	waitFor(t, "ai_result message", func() bool { return sink.messageCount() == 1 })
	sink.mu.Lock()
	msg := sink.messages[0].Message
	sink.mu.Unlock()
	if msg.Type != schema.MessageAIResult || msg.RoomID != 31 {
		t.Fatalf("unexpected synthetic message %+v", msg)
	}
	if !strings.Contains(msg.Body.Text, "오늘 이야기 요약") {
		t.Fatalf("expected formatted summary in body, got %q", msg.Body.Text)
	}
}

func TestSendTextPostsPlainMessages(t *testing.T) {
	dialer := newFakeDialer()
	rest := &fakeRest{}
	svc := newTestService(t, dialer, rest, &recordSink{})

	if _, err := svc.OpenRoom(context.Background(), schema.OpenRoomRequest{RoomID: 32}); err != nil {
		t.Fatalf("open room: %v", err)
	}
	if _, err := svc.SendText(context.Background(), schema.SendTextRequest{
		RoomID: 32,
		Text:   "안녕하세요 반갑습니다",
	}); err != nil {
		t.Fatalf("send text: %v", err)
	}

	posted := rest.posted()
	if len(posted) != 1 || posted[0].Text != "안녕하세요 반갑습니다" {
		t.Fatalf("expected one plain message, got %+v", posted)
	}
	if len(rest.submitted()) != 0 {
		t.Fatalf("plain text must not submit a job")
	}
}

func TestSendTextForcedCommandUsesFallbackResolution(t *testing.T) {
	dialer := newFakeDialer()
	rest := &fakeRest{jobResp: schema.JobResponse{Status: schema.JobDone}}
	svc := newTestService(t, dialer, rest, &recordSink{})

	if _, err := svc.OpenRoom(context.Background(), schema.OpenRoomRequest{RoomID: 33}); err != nil {
		t.Fatalf("open room: %v", err)
	}
	if _, err := svc.SendText(context.Background(), schema.SendTextRequest{
		RoomID:    33,
		Text:      "안녕하세요 반갑습니다",
		AsCommand: true,
	}); err != nil {
		t.Fatalf("send text: %v", err)
	}

	jobs := rest.submitted()
	if len(jobs) != 1 {
		t.Fatalf("expected one job submission, got %d", len(jobs))
	}
	if jobs[0].Command != schema.CommandPublicSummary {
		t.Fatalf("expected fallback to public summary, got %s", jobs[0].Command)
	}
	if jobs[0].Note != "안녕하세요 반갑습니다" {
		t.Fatalf("fallback must keep the whole text as note, got %q", jobs[0].Note)
	}
}

func TestSendTextRequiresOpenRoom(t *testing.T) {
	svc := newTestService(t, newFakeDialer(), &fakeRest{}, &recordSink{})
	_, err := svc.SendText(context.Background(), schema.SendTextRequest{RoomID: 50, Text: "hi"})
	if !errors.Is(err, schema.ErrRoomNotOpen) {
		t.Fatalf("expected ErrRoomNotOpen, got %v", err)
	}
}

func TestTeardownIsIdempotentAndFinal(t *testing.T) {
	dialer := newFakeDialer()
	svc := newTestService(t, dialer, nil, &recordSink{})

	if _, err := svc.OpenRoom(context.Background(), schema.OpenRoomRequest{RoomID: 41}); err != nil {
		t.Fatalf("open room: %v", err)
	}
	waitFor(t, "room 41 to dial", func() bool { return dialer.dialCount(41) == 1 })

	if err := svc.Teardown(context.Background()); err != nil {
		t.Fatalf("teardown: %v", err)
	}
	if err := svc.Teardown(context.Background()); err != nil {
		t.Fatalf("second teardown: %v", err)
	}
	if _, err := svc.OpenRoom(context.Background(), schema.OpenRoomRequest{RoomID: 42}); !errors.Is(err, schema.ErrClientClosed) {
		t.Fatalf("expected ErrClientClosed after teardown, got %v", err)
	}
}
