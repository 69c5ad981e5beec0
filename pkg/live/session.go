package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vireo-ui/vireo/pkg/component"
	"github.com/vireo-ui/vireo/pkg/dom"
	"github.com/vireo-ui/vireo/pkg/protocol"
	"github.com/vireo-ui/vireo/pkg/reactive"
	"github.com/vireo-ui/vireo/pkg/telemetry"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// RootFunc builds the root component for one session. It is called once
// per session on the runtime task loop, so the returned options may
// close over per-session state.
type RootFunc func() *component.Options

// SessionState tracks a session through its life.
type SessionState int32

const (
	// StateNew means the session was created for a page render and no
	// socket has attached yet.
	StateNew SessionState = iota

	// StateActive means a websocket is attached.
	StateActive

	// StateDetached means the socket dropped; the session keeps running
	// and can be resumed until the idle timeout expires it.
	StateDetached

	// StateClosed means the session is torn down for good.
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateActive:
		return "active"
	case StateDetached:
		return "detached"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// outFrame is one encoded patch frame awaiting delivery.
type outFrame struct {
	seq     uint64
	payload []byte
	patches int
}

// Session is one live UI instance: a server-side document, the mounted
// root component driving it, and the delivery state for one client.
//
// All mutation, diffing, and patch recording happens on the runtime
// task loop, which serializes every session in the process. The socket
// read goroutine decodes inbound frames and posts work onto the loop;
// a per-connection writer goroutine drains outbound bytes so a slow
// client never stalls the loop.
type Session struct {
	// ID is the session identifier handed to the client in the page.
	ID string

	cfg     *SessionConfig
	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer

	// Task-loop confined.
	rec           *Recorder
	patcher       *vdom.Patcher
	inst          *component.Instance
	bodyHTML      string
	lastEventSeq  uint64
	queue         []outFrame
	queuedPatches int
	needResync    bool
	history       *PatchHistory

	state    atomic.Int32
	sendSeq  atomic.Uint64
	acked    atomic.Uint64
	window   atomic.Uint64
	lastSeen atomic.Int64
	conn     atomic.Pointer[connHandle]

	closeOnce sync.Once
	done      chan struct{}

	onClose func(*Session)
}

func newSession(id string, cfg *Config) *Session {
	s := &Session{
		ID:      id,
		cfg:     cfg.Session,
		logger:  cfg.Logger.With("session_id", id),
		metrics: cfg.Metrics,
		tracer:  cfg.Tracer,
		history: NewPatchHistory(cfg.Session.HistorySize),
		done:    make(chan struct{}),
	}
	s.rec = NewRecorder(dom.NewDocument())
	s.patcher = vdom.NewPatcher(s.rec)
	s.window.Store(protocol.DefaultWindow)
	s.touch()
	s.metrics.SessionsTotal.Inc()
	s.metrics.DetachedSessions.Inc()
	return s
}

// start mounts the root component on the task loop and waits for the
// result. After start returns, BodyHTML carries the rendered page body.
func (s *Session) start(root RootFunc) error {
	errCh := make(chan error, 1)
	reactive.PostTask(func() {
		errCh <- s.mount(root)
	})
	return <-errCh
}

func (s *Session) mount(root RootFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("live: mount panic: %v", r)
		}
	}()

	s.inst = component.Mount(root(), s.patcher)
	elm, ok := s.inst.Elm().(dom.Node)
	if !ok {
		return errors.New("live: root component produced no element")
	}

	// Attaching the freshly built tree to the body is the page baseline
	// the client receives as HTML, so it goes through the document
	// directly and records nothing.
	s.rec.Document().Body.Append(elm)
	s.rec.Drain()
	s.bodyHTML = s.rec.Document().Body.InnerHTML()

	s.rec.OnRecord(func() {
		reactive.NextTick(func() { s.flush() })
	})
	return nil
}

// BodyHTML returns the rendered body markup captured at mount.
func (s *Session) BodyHTML() string { return s.bodyHTML }

// NextSeq returns the sequence number the next patch frame will carry.
func (s *Session) NextSeq() uint64 { return s.sendSeq.Load() + 1 }

// State returns the session's current lifecycle state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// LastSeen returns the time of the last client activity.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

func (s *Session) setState(next SessionState) {
	prev := SessionState(s.state.Swap(int32(next)))
	if prev == next {
		return
	}
	if prev == StateActive {
		s.metrics.ActiveSessions.Dec()
	}
	if prev == StateNew || prev == StateDetached {
		s.metrics.DetachedSessions.Dec()
	}
	if next == StateActive {
		s.metrics.ActiveSessions.Inc()
	}
	if next == StateNew || next == StateDetached {
		s.metrics.DetachedSessions.Inc()
	}
}

// ============================================================================
// Connection lifecycle
// ============================================================================

// attach binds a connection to the session. An existing connection is
// closed first; the newest socket always wins.
func (s *Session) attach(ch *connHandle) error {
	if s.State() == StateClosed {
		return sessionErr(s.ID, "attach", ErrSessionClosed)
	}
	prev := s.State()
	if old := s.conn.Swap(ch); old != nil {
		old.shutdown(protocol.CloseGoingAway, "superseded by new connection")
	}
	s.setState(StateActive)
	if prev == StateDetached || prev == StateActive {
		s.metrics.ResumesTotal.Inc()
	}
	s.touch()
	return nil
}

// detach clears the connection if ch is still the current one. The
// session stays alive for resumption.
func (s *Session) detach(ch *connHandle) {
	if !s.conn.CompareAndSwap(ch, nil) {
		return
	}
	if s.State() == StateClosed {
		return
	}
	s.setState(StateDetached)
	s.touch()
	s.logger.Info("session detached")
}

// Close tears the session down: the connection receives a close frame,
// the component tree is destroyed on the task loop, and the manager
// forgets the ID. Safe to call from any goroutine, repeatedly.
func (s *Session) Close(reason protocol.CloseReason, message string) {
	s.closeOnce.Do(func() {
		if ch := s.conn.Swap(nil); ch != nil {
			ch.shutdown(reason, message)
		}
		s.setState(StateClosed)
		close(s.done)
		reactive.PostTask(func() {
			if s.inst != nil {
				s.inst.Destroy()
			}
			s.queue = nil
			s.queuedPatches = 0
			s.history.Clear()
		})
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} { return s.done }

// resume replays what the client missed since lastSeq and restarts
// delivery. Called after attach, off the socket goroutine.
func (s *Session) resume(lastSeq uint64) {
	reactive.PostTask(func() {
		if s.State() == StateClosed {
			return
		}
		if lastSeq < s.sendSeq.Load() {
			s.resync(lastSeq)
		}
		s.pump()
	})
}

// forceResync queues a full HTML resync, used when the client presented
// a session ID the server no longer knows.
func (s *Session) forceResync() {
	reactive.PostTask(func() {
		if ch := s.conn.Load(); ch != nil {
			s.resyncFull(ch)
		}
	})
}

// ============================================================================
// Inbound
// ============================================================================

// handleMessage processes one reassembled inbound message. It runs on
// the socket read goroutine; anything touching session state is posted
// to the task loop.
func (s *Session) handleMessage(ft protocol.FrameType, payload []byte) {
	s.touch()
	switch ft {
	case protocol.FrameEvent:
		ev, err := protocol.DecodeEvent(payload)
		if err != nil {
			s.metrics.SocketErrors.WithLabelValues("decode").Inc()
			s.sendError(protocol.NewError(protocol.ErrInvalidEvent, "malformed event"))
			return
		}
		reactive.PostTask(func() { s.dispatchEvent(ev) })

	case protocol.FrameAck:
		ack, err := protocol.DecodeAck(payload)
		if err != nil {
			s.metrics.SocketErrors.WithLabelValues("decode").Inc()
			return
		}
		s.handleAck(ack)

	case protocol.FrameControl:
		ct, body, err := protocol.DecodeControl(payload)
		if err != nil {
			s.metrics.SocketErrors.WithLabelValues("decode").Inc()
			return
		}
		s.handleControl(ct, body)

	default:
		s.metrics.SocketErrors.WithLabelValues("frame_type").Inc()
		s.sendError(protocol.NewError(protocol.ErrInvalidFrame, "unexpected frame type "+ft.String()))
	}
}

func (s *Session) handleAck(ack *protocol.Ack) {
	// Acks only ever advance; a stale ack after a resync reset is
	// ignored.
	for {
		cur := s.acked.Load()
		if ack.LastSeq <= cur {
			break
		}
		if s.acked.CompareAndSwap(cur, ack.LastSeq) {
			break
		}
	}
	if ack.Window > 0 {
		s.window.Store(ack.Window)
	}
	reactive.PostTask(s.pump)
}

func (s *Session) handleControl(ct protocol.ControlType, body any) {
	switch ct {
	case protocol.ControlPing:
		if p, ok := body.(*protocol.PingPong); ok {
			s.sendControl(protocol.NewPong(p.Timestamp))
		}

	case protocol.ControlPong:
		// Heartbeat reply; the touch in handleMessage is the point.

	case protocol.ControlResyncRequest:
		if req, ok := body.(*protocol.ResyncRequest); ok {
			s.logger.Info("client requested resync", "last_seq", req.LastSeq)
			reactive.PostTask(func() {
				if s.State() != StateClosed {
					s.resync(req.LastSeq)
				}
			})
		}

	case protocol.ControlClose:
		// A departing client detaches rather than closes, so navigating
		// back within the idle window resumes the same session.
		if ch := s.conn.Load(); ch != nil {
			ch.shutdown(protocol.CloseNormal, "")
			s.detach(ch)
		}
	}
}

// dispatchEvent resolves and runs the listener for one client event.
// Task-loop only.
func (s *Session) dispatchEvent(ev *protocol.Event) {
	if s.State() == StateClosed {
		return
	}
	if ev.Seq != 0 && ev.Seq <= s.lastEventSeq {
		s.metrics.EventsTotal.WithLabelValues(ev.Type.String(), "duplicate").Inc()
		return
	}
	if ev.Seq != 0 {
		s.lastEventSeq = ev.Seq
	}

	name := ev.Type.DOMName()
	if cd, ok := ev.Payload.(*protocol.CustomEventData); ok && cd.Name != "" {
		name = cd.Name
	}

	_, span := s.tracer.StartEvent(context.Background(), s.ID, name, ev.HID)
	start := time.Now()
	finish := func(status string, err error, patches int) {
		s.metrics.EventsTotal.WithLabelValues(ev.Type.String(), status).Inc()
		s.metrics.EventDuration.WithLabelValues(ev.Type.String()).Observe(time.Since(start).Seconds())
		telemetry.EndSpan(span, err, patches)
	}

	el := s.rec.Lookup(ev.HID)
	if el == nil {
		s.sendError(protocol.NewError(protocol.ErrListenerNotFound, "no element for id "+ev.HID))
		finish("unknown_target", nil, 0)
		return
	}
	handler := el.Listener(name)
	if handler == nil {
		s.sendError(protocol.NewError(protocol.ErrListenerNotFound, "no "+name+" listener on "+ev.HID))
		finish("no_listener", nil, 0)
		return
	}

	err := invokeListener(handler, ev)
	status := "ok"
	if err != nil {
		status = "error"
		s.logger.Error("listener failed", "event", name, "hid", ev.HID, "err", err)
		s.sendError(protocol.NewError(protocol.ErrListenerPanic, "listener failed"))
	}

	// The scheduler flush this event triggered is already queued ahead
	// of this callback, so the flush here sees the re-rendered tree.
	reactive.NextTick(func() {
		n := s.flush()
		finish(status, err, n)
	})
}

// invokeListener calls a registered handler, accepting the same shapes
// component templates bind: niladic, single-argument, and variadic
// functions, plus handlers that want the full event.
func invokeListener(handler any, ev *protocol.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("live: listener panic: %v", r)
		}
	}()
	switch h := handler.(type) {
	case func():
		h()
	case func(any):
		h(ev.Payload)
	case func(...any):
		h(ev.Payload)
	case func(*protocol.Event):
		h(ev)
	default:
		err = fmt.Errorf("live: unsupported listener type %T", handler)
	}
	return
}

// ============================================================================
// Outbound
// ============================================================================

// flush drains recorded patches into one sequenced frame and pumps the
// queue. Returns the number of patches drained. Task-loop only.
func (s *Session) flush() int {
	patches := s.rec.Drain()
	if len(patches) == 0 {
		s.pump()
		return 0
	}
	if s.State() == StateClosed {
		return 0
	}

	seq := s.sendSeq.Add(1)
	payload := protocol.EncodePatches(&protocol.PatchesFrame{Seq: seq, Patches: patches})
	s.history.Add(seq, patches)
	s.queue = append(s.queue, outFrame{seq: seq, payload: payload, patches: len(patches)})
	s.queuedPatches += len(patches)

	// A client too far behind to drain the queue gets a resync instead
	// of an unbounded buffer.
	if s.queuedPatches > s.cfg.MaxQueuedPatches {
		s.logger.Warn("patch queue overflow, scheduling resync",
			"queued", s.queuedPatches, "frames", len(s.queue))
		s.metrics.SocketErrors.WithLabelValues("overflow").Inc()
		s.queue = s.queue[:0]
		s.queuedPatches = 0
		s.needResync = true
	}

	s.pump()
	return len(patches)
}

// pump sends queued frames as far as the ack window allows. Task-loop
// only.
func (s *Session) pump() {
	ch := s.conn.Load()
	if ch == nil {
		return
	}
	if s.needResync {
		s.needResync = false
		s.resync(s.acked.Load())
		return
	}

	acked := s.acked.Load()
	window := s.window.Load()
	for len(s.queue) > 0 {
		next := s.queue[0]
		if next.seq <= acked {
			s.queue = s.queue[1:]
			s.queuedPatches -= next.patches
			continue
		}
		if window > 0 && next.seq > acked+window {
			return
		}
		if err := s.sendFrame(ch, protocol.FramePatches, next.payload); err != nil {
			s.dropSlowConn(ch, err)
			return
		}
		s.queue = s.queue[1:]
		s.queuedPatches -= next.patches
		s.metrics.PatchesSent.Add(float64(next.patches))
		s.metrics.PatchBytesSent.Add(float64(len(next.payload)))
	}
}

// resync brings the client back in step: a patch replay when history
// still covers the gap, otherwise the full rendered body. Task-loop
// only.
func (s *Session) resync(lastSeq uint64) {
	ch := s.conn.Load()
	if ch == nil {
		s.needResync = true
		return
	}
	if patches, from, ok := s.history.Since(lastSeq); ok {
		ct, resp := protocol.NewResyncPatches(from, patches)
		if err := s.sendFrame(ch, protocol.FrameControl, protocol.EncodeControl(ct, resp)); err != nil {
			s.dropSlowConn(ch, err)
			return
		}
		s.logger.Info("resynced with patch replay", "from_seq", from, "patches", len(patches))
	} else {
		s.resyncFull(ch)
		return
	}
	s.resetDelivery()
}

// resyncFull replaces the client's document body outright. Anything
// recorded before this point is superseded by the snapshot, so queue
// and history reset with it. Task-loop only.
func (s *Session) resyncFull(ch *connHandle) {
	html := s.rec.Document().Body.InnerHTML()
	ct, resp := protocol.NewResyncFull(html)
	if err := s.sendFrame(ch, protocol.FrameControl, protocol.EncodeControl(ct, resp)); err != nil {
		s.dropSlowConn(ch, err)
		return
	}
	s.history.Clear()
	s.resetDelivery()
	s.logger.Info("resynced with full snapshot", "bytes", len(html))
}

func (s *Session) resetDelivery() {
	s.queue = s.queue[:0]
	s.queuedPatches = 0
	s.acked.Store(s.sendSeq.Load())
}

// sendFrame encodes payload as one or more frames on ch. Safe from any
// goroutine.
func (s *Session) sendFrame(ch *connHandle, ft protocol.FrameType, payload []byte) error {
	var flags protocol.FrameFlags
	if s.cfg.Checksums {
		flags |= protocol.FlagChecksum
	}
	frames := protocol.SplitPayload(ft, flags, payload)
	if len(frames) > protocol.MaxFramesPerMessage {
		return sessionErr(s.ID, "send", protocol.ErrMessageTooLarge)
	}
	for _, f := range frames {
		if err := ch.send(f.Encode()); err != nil {
			return err
		}
		s.metrics.FramesSent.Inc()
	}
	return nil
}

func (s *Session) sendControl(ct protocol.ControlType, body any) {
	ch := s.conn.Load()
	if ch == nil {
		return
	}
	if err := s.sendFrame(ch, protocol.FrameControl, protocol.EncodeControl(ct, body)); err != nil {
		s.dropSlowConn(ch, err)
	}
}

func (s *Session) sendError(em *protocol.ErrorMessage) {
	ch := s.conn.Load()
	if ch == nil {
		return
	}
	if err := s.sendFrame(ch, protocol.FrameError, protocol.EncodeErrorMessage(em)); err != nil {
		s.dropSlowConn(ch, err)
	}
}

// dropSlowConn disconnects a client whose outbound queue filled up.
// Whatever it missed replays through resync on reconnect.
func (s *Session) dropSlowConn(ch *connHandle, err error) {
	if !errors.Is(err, ErrOutboundFull) {
		return
	}
	s.logger.Warn("outbound queue full, dropping connection")
	s.metrics.SocketErrors.WithLabelValues("slow_client").Inc()
	ch.shutdown(protocol.CloseError, "client too slow")
	s.detach(ch)
}

// ============================================================================
// Imperative control
// ============================================================================

// Update runs fn on the task loop with the session still open, then
// flushes whatever it changed. Servers use it to push state into a
// session from outside an event handler, a ticker or a broadcast.
func (s *Session) Update(fn func()) {
	reactive.PostTask(func() {
		if s.State() == StateClosed {
			return
		}
		fn()
		reactive.NextTick(func() { s.flush() })
	})
}

// Focus asks the client to focus the element. No-op while detached.
func (s *Session) Focus(el *dom.Element) {
	reactive.PostTask(func() {
		if s.State() == StateClosed {
			return
		}
		s.rec.Focus(el)
		reactive.NextTick(func() { s.flush() })
	})
}

// Blur asks the client to blur the element. No-op while detached.
func (s *Session) Blur(el *dom.Element) {
	reactive.PostTask(func() {
		if s.State() == StateClosed {
			return
		}
		s.rec.Blur(el)
		reactive.NextTick(func() { s.flush() })
	})
}

// Instance returns the mounted root component.
func (s *Session) Instance() *component.Instance { return s.inst }

// Document returns the session's server-side document.
func (s *Session) Document() *dom.Document { return s.rec.Document() }
