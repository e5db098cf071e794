package api

import (
	"net/http"

	"chatd/internal/constants"
)

type ServerInfoHandler struct {
	serverName string
}

func NewServerInfoHandler(name string) *ServerInfoHandler {
	return &ServerInfoHandler{serverName: name}
}

type ServerInfoResponse struct {
	Name               string `json:"name"`
	MaxTransferBytes   int64  `json:"maxTransferBytes"`
	MaxInlineFileBytes int64  `json:"maxInlineFileBytes"`
}

// GET /api/v1/server/info
func (h *ServerInfoHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ServerInfoResponse{
		Name:               h.serverName,
		MaxTransferBytes:   constants.MaxTransferSize,
		MaxInlineFileBytes: constants.MaxInlineFileSize,
	})
}
