package broker

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"chatd/internal/constants"
	"chatd/internal/protocol"
)

// SessionState is the lifecycle state of one connection.
type SessionState int32

const (
	SessionStateUnbound SessionState = iota // connected, no identity yet
	SessionStateBound                       // logged in as exactly one user
	SessionStateClosing                     // teardown started
	SessionStateClosed                      // terminal
)

// maxDroppedFramesBeforeDisconnect is the threshold for cutting off
// clients that stop draining their socket.
const maxDroppedFramesBeforeDisconnect = 100

// Session is one client connection. Its read loop decodes frames and runs
// them through the dispatcher inline, so a response is always written
// after the request's side effects and before the next request from the
// same connection is serviced. Outbound frames go through a buffered
// channel drained by a single writer, which keeps per-session writes
// serialized and FIFO.
type Session struct {
	id         string
	hub        *Hub
	dispatcher *Dispatcher
	tr         Transport

	send       chan any
	sendMu     sync.RWMutex
	sendClosed bool

	state atomic.Int32

	mu       sync.RWMutex
	username string

	// DroppedFrames counts frames discarded because the send buffer was
	// full.
	DroppedFrames int64
}

func NewSession(hub *Hub, dispatcher *Dispatcher, tr Transport) *Session {
	s := &Session{
		id:         uuid.New().String(),
		hub:        hub,
		dispatcher: dispatcher,
		tr:         tr,
		send:       make(chan any, constants.SessionSendBufferSize),
	}
	s.state.Store(int32(SessionStateUnbound))
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) RemoteAddr() net.Addr {
	return s.tr.RemoteAddr()
}

// Username returns the bound username, or "" for an unbound session.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

func (s *Session) setUsername(name string) {
	s.mu.Lock()
	s.username = name
	s.mu.Unlock()
}

func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

func (s *Session) IsBound() bool {
	return s.State() == SessionStateBound
}

func (s *Session) IsClosed() bool {
	state := s.State()
	return state == SessionStateClosing || state == SessionStateClosed
}

func isValidSessionTransition(from, to SessionState) bool {
	switch from {
	case SessionStateUnbound:
		return to == SessionStateBound || to == SessionStateClosing
	case SessionStateBound:
		return to == SessionStateClosing
	case SessionStateClosing:
		return to == SessionStateClosed
	case SessionStateClosed:
		return false
	}
	return false
}

func (s *Session) transitionTo(newState SessionState) bool {
	for {
		current := SessionState(s.state.Load())
		if !isValidSessionTransition(current, newState) {
			return false
		}
		if s.state.CompareAndSwap(int32(current), int32(newState)) {
			return true
		}
	}
}

// ReadPump owns the inbound side: read a frame, decode the action, run the
// handler, repeat until the connection dies. Unparseable frames and frames
// without an action are discarded without tearing the connection down.
func (s *Session) ReadPump() {
	defer func() {
		s.hub.HandleDisconnect(s)
		s.Close()
	}()

	for {
		line, err := s.tr.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) && !s.IsClosed() {
				log.Printf("session %s read error: %v", s.id, err)
			}
			return
		}

		action, ok := protocol.DecodeAction(line)
		if !ok {
			continue
		}
		s.dispatcher.Dispatch(s, action, line)
	}
}

// WritePump drains the send channel onto the transport. It is the only
// writer, so frames never interleave. When the channel is closed it
// finishes the backlog and tears the connection down.
func (s *Session) WritePump() {
	defer s.Close()

	for frame := range s.send {
		b, err := json.Marshal(frame)
		if err != nil {
			slog.Error("frame marshal failed", "component", "session", "session_id", s.id, "error", err)
			continue
		}
		if err := s.tr.WriteFrame(b); err != nil {
			return
		}
	}
}

// queue enqueues a frame for delivery, never blocking. Frames to a full
// buffer are dropped; a session that keeps falling behind is closed.
func (s *Session) queue(frame any) {
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()

	if s.sendClosed {
		return
	}
	select {
	case s.send <- frame:
	default:
		dropped := atomic.AddInt64(&s.DroppedFrames, 1)
		if dropped%10 == 1 {
			slog.Warn("dropping frames for slow session", "component", "session", "session_id", s.id, "dropped", dropped)
		}
		if dropped >= maxDroppedFramesBeforeDisconnect {
			slog.Warn("disconnecting slow session", "component", "session", "session_id", s.id, "dropped", dropped)
			go s.Close()
		}
	}
}

func (s *Session) closeSend() {
	s.sendMu.Lock()
	if !s.sendClosed {
		s.sendClosed = true
		close(s.send)
	}
	s.sendMu.Unlock()
}

// CloseSend stops accepting outbound frames; the write pump finishes the
// backlog and then closes the transport. Used for graceful eviction.
func (s *Session) CloseSend() {
	s.transitionTo(SessionStateClosing)
	s.closeSend()
}

// Close tears the session down immediately.
func (s *Session) Close() {
	s.transitionTo(SessionStateClosing)
	s.closeSend()
	s.tr.Close()
	s.transitionTo(SessionStateClosed)
}
