package broker

import (
	"net"

	"github.com/gorilla/websocket"
)

// wsTransport carries the broker protocol over a WebSocket connection:
// one JSON object per text message, no newline framing needed.
type wsTransport struct {
	conn *websocket.Conn
}

func NewWebSocketTransport(conn *websocket.Conn) Transport {
	return &wsTransport{conn: conn}
}

func (t *wsTransport) ReadFrame() ([]byte, error) {
	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if msgType != websocket.TextMessage || len(data) == 0 {
			continue
		}
		return data, nil
	}
}

func (t *wsTransport) WriteFrame(b []byte) error {
	return t.conn.WriteMessage(websocket.TextMessage, b)
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}

func (t *wsTransport) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}
