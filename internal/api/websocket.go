package api

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"chatd/internal/broker"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades a connection and hands it to the broker as a
// regular session. One JSON frame per text message; everything else is
// identical to the TCP port.
type WebSocketHandler struct {
	hub        *broker.Hub
	dispatcher *broker.Dispatcher
}

func NewWebSocketHandler(hub *broker.Hub, dispatcher *broker.Dispatcher) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, dispatcher: dispatcher}
}

func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	session := broker.NewSession(h.hub, h.dispatcher, broker.NewWebSocketTransport(conn))
	h.hub.Add(session)

	go session.WritePump()
	go session.ReadPump()
}
