package broker

import (
	"net"
	"testing"

	"chatd/internal/directory"
)

func TestSessionStateTransitionTable(t *testing.T) {
	testCases := []struct {
		name string
		from SessionState
		to   SessionState
		ok   bool
	}{
		{name: "unbound_to_bound", from: SessionStateUnbound, to: SessionStateBound, ok: true},
		{name: "unbound_to_closing", from: SessionStateUnbound, to: SessionStateClosing, ok: true},
		{name: "bound_to_closing", from: SessionStateBound, to: SessionStateClosing, ok: true},
		{name: "closing_to_closed", from: SessionStateClosing, to: SessionStateClosed, ok: true},
		{name: "bound_to_unbound_invalid", from: SessionStateBound, to: SessionStateUnbound, ok: false},
		{name: "closed_is_terminal", from: SessionStateClosed, to: SessionStateClosing, ok: false},
		{name: "unbound_to_closed_invalid", from: SessionStateUnbound, to: SessionStateClosed, ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isValidSessionTransition(tc.from, tc.to); got != tc.ok {
				t.Fatalf("expected %v, got %v for transition %d -> %d", tc.ok, got, tc.from, tc.to)
			}
		})
	}
}

func TestQueueAfterCloseIsANoOp(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	hub := NewHub(directory.New())
	s := NewSession(hub, NewDispatcher(hub), NewTCPTransport(serverConn))

	s.Close()
	// Must not panic or block.
	s.queue("frame")

	if !s.IsClosed() {
		t.Fatal("session should be closed")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	hub := NewHub(directory.New())
	s := NewSession(hub, NewDispatcher(hub), NewTCPTransport(serverConn))

	s.CloseSend()
	s.Close()
	s.Close()

	if s.State() != SessionStateClosed {
		t.Fatalf("expected closed state, got %d", s.State())
	}
}
