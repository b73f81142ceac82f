package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/readmoa/moachat/schema"
)

type fakeFrame struct {
	data []byte
	err  error
}

// fakeConn is a scriptable room stream: tests push frames or errors and
// observe writes and close codes.
type fakeConn struct {
	frames chan fakeFrame
	done   chan struct{}
	once   sync.Once

	mu     sync.Mutex
	closes []bool
	wrote  []string
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames: make(chan fakeFrame, 16),
		done:   make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case frame := <-c.frames:
		return frame.data, frame.err
	case <-c.done:
		return nil, fmt.Errorf("%w: connection closed", ErrStreamClosed)
	}
}

func (c *fakeConn) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wrote = append(c.wrote, text)
	return nil
}

func (c *fakeConn) Close(clean bool) error {
	c.mu.Lock()
	c.closes = append(c.closes, clean)
	c.mu.Unlock()
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *fakeConn) deliver(data []byte) {
	c.frames <- fakeFrame{data: data}
}

func (c *fakeConn) fail(err error) {
	c.frames <- fakeFrame{err: err}
}

func (c *fakeConn) closedClean() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.closes) > 0 && c.closes[0]
}

func (c *fakeConn) sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.wrote))
	copy(out, c.wrote)
	return out
}

// fakeDialer hands out fakeConns and records every dial attempt.
type fakeDialer struct {
	mu     sync.Mutex
	dials  map[schema.RoomID]int
	conns  map[schema.RoomID][]*fakeConn
	tokens []string
	errFor map[schema.RoomID]error
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{
		dials:  make(map[schema.RoomID]int),
		conns:  make(map[schema.RoomID][]*fakeConn),
		errFor: make(map[schema.RoomID]error),
	}
}

func (d *fakeDialer) Dial(ctx context.Context, roomID schema.RoomID, token string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials[roomID]++
	d.tokens = append(d.tokens, token)
	if err := d.errFor[roomID]; err != nil {
		return nil, err
	}
	conn := newFakeConn()
	d.conns[roomID] = append(d.conns[roomID], conn)
	return conn, nil
}

func (d *fakeDialer) failWith(roomID schema.RoomID, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errFor[roomID] = err
}

func (d *fakeDialer) dialCount(roomID schema.RoomID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials[roomID]
}

func (d *fakeDialer) conn(roomID schema.RoomID, n int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns[roomID]) <= n {
		return nil
	}
	return d.conns[roomID][n]
}

func (d *fakeDialer) seenTokens() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.tokens))
	copy(out, d.tokens)
	return out
}

// recordSink captures every event the core emits.
type recordSink struct {
	mu       sync.Mutex
	statuses []schema.StatusEvent
	messages []schema.MessageEvent
	notices  []schema.NoticeEvent
}

func (s *recordSink) OnStatus(event schema.StatusEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, event)
}

func (s *recordSink) OnMessage(event schema.MessageEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, event)
}

func (s *recordSink) OnNotice(event schema.NoticeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, event)
}

func (s *recordSink) messageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *recordSink) lastStatus(roomID schema.RoomID) (schema.StatusEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.statuses) - 1; i >= 0; i-- {
		if s.statuses[i].RoomID == roomID {
			return s.statuses[i], true
		}
	}
	return schema.StatusEvent{}, false
}

func (s *recordSink) noticeKinds(roomID schema.RoomID) []schema.NoticeKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kinds []schema.NoticeKind
	for _, notice := range s.notices {
		if notice.RoomID == roomID {
			kinds = append(kinds, notice.Kind)
		}
	}
	return kinds
}

// fakeRest records REST submissions.
type fakeRest struct {
	mu       sync.Mutex
	jobs     []schema.JobRequest
	messages []schema.PostMessageRequest
	jobResp  schema.JobResponse
	jobErr   error
	postErr  error
}

func (r *fakeRest) SubmitJob(ctx context.Context, req schema.JobRequest) (schema.JobResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, req)
	if r.jobErr != nil {
		return schema.JobResponse{}, r.jobErr
	}
	return r.jobResp, nil
}

func (r *fakeRest) PostMessage(ctx context.Context, req schema.PostMessageRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, req)
	return r.postErr
}

func (r *fakeRest) submitted() []schema.JobRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]schema.JobRequest, len(r.jobs))
	copy(out, r.jobs)
	return out
}

func (r *fakeRest) posted() []schema.PostMessageRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]schema.PostMessageRequest, len(r.messages))
	copy(out, r.messages)
	return out
}

// fakeTokens returns queued token values, repeating the last one.
type fakeTokens struct {
	mu     sync.Mutex
	queue  []string
	offset int
}

func (f *fakeTokens) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return ""
	}
	token := f.queue[f.offset]
	if f.offset < len(f.queue)-1 {
		f.offset++
	}
	return token
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func testMuxConfig() schema.ClientConfig {
	return schema.ClientConfig{
		MaxReconnectAttempts: schema.DefaultMaxReconnectAttempts,
		ReconnectDelay:       5 * time.Millisecond,
	}
}
