package core

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/readmoa/moachat/internal/logx"
	"github.com/readmoa/moachat/schema"
	"pkt.systems/pslog"
)

// Mux reconciles a desired set of room ids against a registry of live room
// connections. It is the only owner of per-room connection state: dial
// results, read loops, and reconnect timers all funnel their state changes
// through the Mux mutex, and callbacks that outlive their connection
// generation are discarded.
type Mux struct {
	cfg    schema.ClientConfig
	dialer Dialer
	tokens TokenSource
	sink   EventSink
	log    pslog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	conns   map[schema.RoomID]*roomConn
	desired map[schema.RoomID]struct{}
	down    bool
}

// NewMux constructs a connection multiplexer.
func NewMux(cfg schema.ClientConfig, deps MuxDeps) (*Mux, error) {
	normalized, err := schema.NormalizeClientConfig(cfg)
	if err != nil {
		return nil, err
	}
	if deps.Dialer == nil {
		return nil, errors.New("dialer is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Mux{
		cfg:     normalized,
		dialer:  deps.Dialer,
		tokens:  deps.Tokens,
		sink:    deps.Sink,
		log:     logger,
		ctx:     ctx,
		cancel:  cancel,
		conns:   make(map[schema.RoomID]*roomConn),
		desired: make(map[schema.RoomID]struct{}),
	}, nil
}

// Reconcile brings the live connection registry in line with the desired
// room set: absent ids are opened, removed ids are closed, and ids present
// in both the old and new sets are left untouched even mid-reconnect. A
// failure in one room never affects another.
func (m *Mux) Reconcile(desired []schema.RoomID) {
	want := make(map[schema.RoomID]struct{}, len(desired))
	for _, id := range desired {
		if id.Valid() {
			want[id] = struct{}{}
		}
	}

	var events []schema.StatusEvent
	m.mu.Lock()
	if m.down {
		m.mu.Unlock()
		return
	}
	for id, rc := range m.conns {
		if _, ok := want[id]; ok {
			continue
		}
		events = append(events, m.closeLocked(rc))
		delete(m.conns, id)
	}
	for _, id := range desired {
		if !id.Valid() {
			continue
		}
		if _, ok := m.conns[id]; ok {
			continue
		}
		rc := newRoomConn(id)
		m.conns[id] = rc
		gen := rc.invalidate()
		rc.status = schema.StatusConnecting
		events = append(events, m.statusEventLocked(rc))
		go m.run(rc, gen)
	}
	m.desired = want
	m.mu.Unlock()

	for _, ev := range events {
		m.emitStatus(ev)
	}
}

// TeardownAll cancels every pending reconnect timer and closes every live
// connection, regardless of the desired set. Safe to call repeatedly; a
// callback firing afterwards is a guarded no-op.
func (m *Mux) TeardownAll() {
	var events []schema.StatusEvent
	m.mu.Lock()
	m.down = true
	for id, rc := range m.conns {
		if !rc.closed {
			events = append(events, m.closeLocked(rc))
		}
		delete(m.conns, id)
	}
	m.desired = make(map[schema.RoomID]struct{})
	m.mu.Unlock()
	m.cancel()

	for _, ev := range events {
		m.emitStatus(ev)
	}
	m.log.Debug("mux teardown complete", "rooms", len(events))
}

// Send pushes raw text over a room stream. Sends attempted while the room is
// not in connected status are rejected, never queued.
func (m *Mux) Send(roomID schema.RoomID, text string) error {
	m.mu.Lock()
	rc := m.conns[roomID]
	var conn Conn
	if rc != nil && rc.status == schema.StatusConnected {
		conn = rc.conn
	}
	m.mu.Unlock()

	if conn == nil {
		logx.WithRoom(m.log, roomID).Warn("send rejected while not connected")
		m.emitNotice(schema.NoticeEvent{
			RoomID: roomID,
			Kind:   schema.NoticeSendUnavailable,
			Text:   "room stream not connected",
		})
		return schema.ErrNotConnected
	}
	return conn.WriteText(text)
}

// RoomStatus reports the current status and reconnect attempt count for a
// room; absent rooms report idle.
func (m *Mux) RoomStatus(roomID schema.RoomID) (schema.ConnectionStatus, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rc := m.conns[roomID]
	if rc == nil {
		return schema.StatusIdle, 0
	}
	return rc.status, rc.attempts
}

// LiveRooms lists the room ids currently in the registry, sorted.
func (m *Mux) LiveRooms() []schema.RoomID {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]schema.RoomID, 0, len(m.conns))
	for id := range m.conns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// run dials the room and, on success, enters the read loop. gen pins the
// attempt this goroutine belongs to; a close or redial in the meantime
// invalidates it.
func (m *Mux) run(rc *roomConn, gen uint64) {
	log := logx.WithRoom(m.log, rc.id)
	var token string
	if m.tokens != nil {
		token = m.tokens.Token()
	}
	log.Debug("room connect start")

	conn, err := m.dialer.Dial(m.ctx, rc.id, token)

	m.mu.Lock()
	if m.down || rc.closed || rc.gen != gen {
		m.mu.Unlock()
		if err == nil {
			_ = conn.Close(true)
		}
		return
	}
	if err != nil {
		ev, notice := m.failLocked(rc, schema.StatusError)
		m.mu.Unlock()
		log.Warn("room connect failed", "err", err)
		m.emitStatus(ev)
		if notice != nil {
			m.emitNotice(*notice)
		}
		return
	}
	rc.conn = conn
	rc.attempts = 0
	rc.status = schema.StatusConnected
	ev := m.statusEventLocked(rc)
	m.mu.Unlock()

	log.Info("room connect ok")
	m.emitStatus(ev)
	m.readLoop(rc, conn, gen, log)
}

// readLoop delivers inbound frames in transport order. A frame that fails to
// parse is dropped and logged; it never tears the connection down.
func (m *Mux) readLoop(rc *roomConn, conn Conn, gen uint64, log pslog.Logger) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			m.mu.Lock()
			if m.down || rc.closed || rc.gen != gen {
				m.mu.Unlock()
				return
			}
			status := schema.StatusError
			if errors.Is(err, ErrStreamClosed) {
				status = schema.StatusDisconnected
			}
			ev, notice := m.failLocked(rc, status)
			m.mu.Unlock()

			if status == schema.StatusDisconnected {
				log.Info("room stream closed", "err", err)
			} else {
				log.Warn("room stream failed", "err", err)
			}
			m.emitStatus(ev)
			if notice != nil {
				m.emitNotice(*notice)
			}
			return
		}
		msg, perr := schema.ParseInboundMessage(data)
		if perr != nil {
			log.Warn("inbound frame drop", "err", perr)
			continue
		}
		if m.sink != nil {
			m.sink.OnMessage(schema.MessageEvent{RoomID: rc.id, Message: msg})
		}
	}
}

// failLocked records a terminal-until-retried status and, when the room is
// still desired and the attempt budget allows, schedules a fixed-delay
// reconnect. When the budget is exhausted the event is marked final and a
// user notice is produced; the connection stops self-healing.
func (m *Mux) failLocked(rc *roomConn, status schema.ConnectionStatus) (schema.StatusEvent, *schema.NoticeEvent) {
	rc.conn = nil
	rc.status = status
	ev := m.statusEventLocked(rc)
	if m.down || rc.closed {
		return ev, nil
	}
	if _, ok := m.desired[rc.id]; !ok {
		return ev, nil
	}
	if rc.attempts >= m.cfg.MaxReconnectAttempts {
		ev.Final = true
		notice := &schema.NoticeEvent{
			RoomID: rc.id,
			Kind:   schema.NoticeReconnectExhausted,
			Text:   "connection lost, automatic retries exhausted",
		}
		return ev, notice
	}
	rc.attempts++
	ev.Attempt = rc.attempts
	gen := rc.gen
	rc.retry = time.AfterFunc(m.cfg.ReconnectDelay, func() { m.redial(rc, gen) })
	return ev, nil
}

// redial fires from a reconnect timer. It re-checks the current desired
// membership and generation rather than trusting the state at schedule time.
func (m *Mux) redial(rc *roomConn, gen uint64) {
	m.mu.Lock()
	if m.down || rc.closed || rc.gen != gen {
		m.mu.Unlock()
		return
	}
	if _, ok := m.desired[rc.id]; !ok {
		m.mu.Unlock()
		return
	}
	rc.retry = nil
	next := rc.invalidate()
	rc.status = schema.StatusConnecting
	ev := m.statusEventLocked(rc)
	m.mu.Unlock()

	m.emitStatus(ev)
	go m.run(rc, next)
}

// closeLocked performs a clean client-initiated shutdown: cancel any pending
// reconnect timer first, then close the transport with a normal-closure
// code. Idempotent; a clean close never triggers a reconnect.
func (m *Mux) closeLocked(rc *roomConn) schema.StatusEvent {
	rc.closed = true
	rc.cancelRetry()
	rc.invalidate()
	if rc.conn != nil {
		_ = rc.conn.Close(true)
		rc.conn = nil
	}
	rc.status = schema.StatusDisconnected
	return m.statusEventLocked(rc)
}

func (m *Mux) statusEventLocked(rc *roomConn) schema.StatusEvent {
	return schema.StatusEvent{RoomID: rc.id, Status: rc.status, Attempt: rc.attempts}
}

func (m *Mux) emitStatus(ev schema.StatusEvent) {
	if m.sink != nil {
		m.sink.OnStatus(ev)
	}
}

func (m *Mux) emitNotice(ev schema.NoticeEvent) {
	if m.sink != nil {
		m.sink.OnNotice(ev)
	}
}
