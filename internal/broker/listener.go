package broker

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// Server accepts TCP connections and spawns a session per connection.
// Listener failure is fatal; session failures only kill their session.
type Server struct {
	addr       string
	hub        *Hub
	dispatcher *Dispatcher

	mu      sync.Mutex
	ln      net.Listener
	closing bool
}

func NewServer(addr string, hub *Hub, dispatcher *Dispatcher) *Server {
	return &Server{
		addr:       addr,
		hub:        hub,
		dispatcher: dispatcher,
	}
}

// ListenAndServe binds the chat port and accepts until Shutdown. It
// returns nil on a clean shutdown and the accept error otherwise.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("binding chat listener: %w", err)
	}

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		ln.Close()
		return nil
	}
	s.ln = ln
	s.mu.Unlock()

	slog.Info("chat listener started", "component", "listener", "addr", s.addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}
		s.Serve(conn)
	}
}

// Serve starts a session on an already-established connection.
func (s *Server) Serve(conn net.Conn) {
	session := NewSession(s.hub, s.dispatcher, NewTCPTransport(conn))
	s.hub.Add(session)
	go session.WritePump()
	go session.ReadPump()
}

// Shutdown stops accepting and closes every open session.
func (s *Server) Shutdown() {
	s.mu.Lock()
	s.closing = true
	ln := s.ln
	s.mu.Unlock()

	if ln != nil {
		ln.Close()
	}
	s.hub.Shutdown()
}
