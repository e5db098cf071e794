package broker

import (
	"net"

	"chatd/internal/protocol"
)

// Transport abstracts one client connection: a sequence of inbound frames
// and a sink for outbound ones. The TCP transport frames with newlines;
// the WebSocket gateway frames with messages. Sessions don't care which.
type Transport interface {
	// ReadFrame blocks for the next complete frame. The returned bytes
	// are only valid until the following call.
	ReadFrame() ([]byte, error)
	// WriteFrame sends one serialized frame, adding its own framing.
	WriteFrame(b []byte) error
	Close() error
	RemoteAddr() net.Addr
}

type tcpTransport struct {
	conn net.Conn
	lr   *protocol.LineReader
}

// NewTCPTransport wraps a raw connection with newline-delimited framing.
func NewTCPTransport(conn net.Conn) Transport {
	return &tcpTransport{conn: conn, lr: protocol.NewLineReader(conn)}
}

func (t *tcpTransport) ReadFrame() ([]byte, error) {
	return t.lr.Next()
}

func (t *tcpTransport) WriteFrame(b []byte) error {
	_, err := t.conn.Write(append(b, '\n'))
	return err
}

func (t *tcpTransport) Close() error {
	return t.conn.Close()
}

func (t *tcpTransport) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}
