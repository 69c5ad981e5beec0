package live

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vireo-ui/vireo/pkg/protocol"
)

// connHandle owns one websocket connection. A writer goroutine drains
// the outbound channel and emits heartbeat pings; shutdown delivers a
// protocol close frame at most once. Sends never block the caller.
type connHandle struct {
	conn     *websocket.Conn
	cfg      *SessionConfig
	outbound chan []byte

	closeOnce sync.Once
	done      chan struct{}
	writeMu   sync.Mutex
}

func newConnHandle(conn *websocket.Conn, cfg *SessionConfig) *connHandle {
	return &connHandle{
		conn:     conn,
		cfg:      cfg,
		outbound: make(chan []byte, cfg.OutboundQueue),
		done:     make(chan struct{}),
	}
}

// send queues data for the writer goroutine. It fails fast with
// ErrOutboundFull instead of blocking, so the task loop is never held
// hostage by one congested client.
func (ch *connHandle) send(data []byte) error {
	select {
	case <-ch.done:
		return ErrNoConnection
	default:
	}
	select {
	case ch.outbound <- data:
		return nil
	case <-ch.done:
		return ErrNoConnection
	default:
		return ErrOutboundFull
	}
}

// writeLoop drains the outbound queue and pings the client on the
// heartbeat interval. It runs until the connection shuts down.
func (ch *connHandle) writeLoop() {
	ticker := time.NewTicker(ch.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-ch.outbound:
			if err := ch.write(data); err != nil {
				ch.teardown()
				return
			}

		case <-ticker.C:
			ct, pp := protocol.NewPing(uint64(time.Now().UnixMilli()))
			f := protocol.NewFrame(protocol.FrameControl, protocol.EncodeControl(ct, pp))
			if err := ch.write(f.Encode()); err != nil {
				ch.teardown()
				return
			}

		case <-ch.done:
			// Best-effort drain of what was queued before shutdown.
			for {
				select {
				case data := <-ch.outbound:
					if ch.write(data) != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (ch *connHandle) write(data []byte) error {
	ch.writeMu.Lock()
	defer ch.writeMu.Unlock()
	ch.conn.SetWriteDeadline(time.Now().Add(ch.cfg.WriteTimeout))
	return ch.conn.WriteMessage(websocket.BinaryMessage, data)
}

// shutdown sends a protocol close frame and closes the socket. Safe
// from any goroutine, idempotent.
func (ch *connHandle) shutdown(reason protocol.CloseReason, message string) {
	ch.closeOnce.Do(func() {
		close(ch.done)
		ct, cm := protocol.NewClose(reason, message)
		f := protocol.NewFrame(protocol.FrameControl, protocol.EncodeControl(ct, cm))
		_ = ch.write(f.Encode())
		_ = ch.conn.Close()
	})
}

// teardown closes the socket without a close frame, for connections
// already known dead.
func (ch *connHandle) teardown() {
	ch.closeOnce.Do(func() {
		close(ch.done)
		_ = ch.conn.Close()
	})
}

// ============================================================================
// Server socket handling
// ============================================================================

// handleSocket upgrades the request, performs the protocol handshake,
// and reads frames until the connection drops.
func (srv *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := srv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		srv.logger.Warn("websocket upgrade failed", "err", err, "remote", r.RemoteAddr)
		return
	}
	conn.SetReadLimit(srv.cfg.Session.MaxMessageSize)
	ch := newConnHandle(conn, srv.cfg.Session)

	sess, err := srv.handshake(conn, ch)
	if err != nil {
		srv.logger.Warn("handshake failed", "err", err, "remote", r.RemoteAddr)
		ch.teardown()
		return
	}

	go ch.writeLoop()
	srv.readLoop(sess, ch)
}

// handshake reads the client hello, resolves the session, and replies.
// The connection is attached to the session on success.
func (srv *Server) handshake(conn *websocket.Conn, ch *connHandle) (*Session, error) {
	conn.SetReadDeadline(time.Now().Add(srv.cfg.Session.HandshakeTimeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read hello: %w", err)
	}

	f, err := protocol.DecodeFrame(msg)
	if err != nil || f.Type != protocol.FrameHandshake {
		srv.rejectHandshake(ch, protocol.HandshakeInvalidFormat)
		return nil, fmt.Errorf("%w: expected handshake frame", ErrHandshakeFailed)
	}
	hello, err := protocol.DecodeClientHello(f.Payload)
	if err != nil {
		srv.rejectHandshake(ch, protocol.HandshakeInvalidFormat)
		return nil, fmt.Errorf("%w: %v", ErrHandshakeFailed, err)
	}
	if !hello.Version.Compatible() {
		srv.rejectHandshake(ch, protocol.HandshakeVersionMismatch)
		return nil, fmt.Errorf("%w: client version %d.%d", ErrHandshakeFailed,
			hello.Version.Major, hello.Version.Minor)
	}

	// A known session resumes; an unknown or absent ID gets a fresh
	// session. A stale ID also means the client is looking at a page
	// this server never rendered, so it gets a full resync on top.
	var sess *Session
	staleID := false
	if hello.SessionID != "" {
		if existing, ok := srv.manager.Get(hello.SessionID); ok {
			sess = existing
		} else {
			staleID = true
		}
	}
	resumed := sess != nil
	if sess == nil {
		sess, err = srv.manager.Create()
		if err != nil {
			status := protocol.HandshakeInternalError
			if errors.Is(err, ErrMaxSessionsReached) {
				status = protocol.HandshakeServerBusy
			}
			srv.rejectHandshake(ch, status)
			return nil, err
		}
	}

	reply := protocol.NewServerHello(sess.ID, seq32(sess.NextSeq()), uint64(time.Now().UnixMilli()))
	if srv.cfg.Session.Checksums {
		reply.Flags |= protocol.ServerFlagChecksums
	}
	if staleID {
		reply.Flags |= protocol.ServerFlagResync
	}
	rf := protocol.NewFrame(protocol.FrameHandshake, protocol.EncodeServerHello(reply))
	if err := ch.write(rf.Encode()); err != nil {
		return nil, fmt.Errorf("write hello: %w", err)
	}

	if err := sess.attach(ch); err != nil {
		return nil, err
	}
	if staleID {
		sess.forceResync()
	} else {
		sess.resume(uint64(hello.LastSeq))
	}

	srv.logger.Info("session connected",
		"session_id", sess.ID,
		"resumed", resumed,
		"last_seq", hello.LastSeq)
	return sess, nil
}

func (srv *Server) rejectHandshake(ch *connHandle, status protocol.HandshakeStatus) {
	reply := protocol.NewServerHelloError(status)
	f := protocol.NewFrame(protocol.FrameHandshake, protocol.EncodeServerHello(reply))
	_ = ch.write(f.Encode())
}

// seq32 narrows a sequence number for the hello, saturating rather
// than wrapping.
func seq32(seq uint64) uint32 {
	if seq > 1<<32-1 {
		return 1<<32 - 1
	}
	return uint32(seq)
}

// readLoop reads, reassembles, and routes inbound frames until the
// connection errors out, then detaches it from the session.
func (srv *Server) readLoop(sess *Session, ch *connHandle) {
	defer func() {
		ch.teardown()
		sess.detach(ch)
	}()

	var asm protocol.FrameAssembler
	for {
		ch.conn.SetReadDeadline(time.Now().Add(srv.cfg.Session.ReadTimeout))
		_, msg, err := ch.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				srv.logger.Warn("read error", "session_id", sess.ID, "err", err)
				srv.cfg.Metrics.SocketErrors.WithLabelValues("read").Inc()
			}
			return
		}

		f, err := protocol.DecodeFrame(msg)
		if err != nil {
			srv.cfg.Metrics.SocketErrors.WithLabelValues("decode").Inc()
			sess.sendError(protocol.NewError(protocol.ErrInvalidFrame, "malformed frame"))
			continue
		}

		payload, complete, err := asm.Add(f)
		if err != nil {
			srv.cfg.Metrics.SocketErrors.WithLabelValues("assemble").Inc()
			sess.sendError(protocol.NewError(protocol.ErrInvalidFrame, "fragment reassembly failed"))
			continue
		}
		if !complete {
			continue
		}
		sess.handleMessage(f.Type, payload)
	}
}
