package api

import (
	"net/http"

	"chatd/internal/broker"
)

type StatsHandler struct {
	hub *broker.Hub
}

func NewStatsHandler(hub *broker.Hub) *StatsHandler {
	return &StatsHandler{hub: hub}
}

type StatsResponse struct {
	Users    int `json:"users"`
	Groups   int `json:"groups"`
	Online   int `json:"online"`
	Sessions int `json:"sessions"`
}

// GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	users, groups := h.hub.Directory().Counts()
	writeJSON(w, http.StatusOK, StatsResponse{
		Users:    users,
		Groups:   groups,
		Online:   h.hub.OnlineCount(),
		Sessions: h.hub.SessionCount(),
	})
}
