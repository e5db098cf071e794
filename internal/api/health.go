package api

import (
	"net/http"

	"chatd/internal/broker"
)

type HealthHandler struct {
	hub *broker.Hub
}

func NewHealthHandler(hub *broker.Hub) *HealthHandler {
	return &HealthHandler{hub: hub}
}

// The broker holds no external resources, so health is liveness plus a
// couple of gauges.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.hub.SessionCount(),
		"online":   h.hub.OnlineCount(),
	})
}
