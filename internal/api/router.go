// Package api is the broker's HTTP side: health and stats endpoints for
// operators, and a WebSocket gateway speaking the same frame protocol as
// the TCP port.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"chatd/internal/broker"
	"chatd/internal/config"
)

type Server struct {
	router *chi.Mux
	hub    *broker.Hub
}

func NewServer(cfg *config.Config, hub *broker.Hub, dispatcher *broker.Dispatcher) *Server {
	healthHandler := NewHealthHandler(hub)
	infoHandler := NewServerInfoHandler(cfg.Server.Name)
	statsHandler := NewStatsHandler(hub)
	wsHandler := NewWebSocketHandler(hub, dispatcher)

	r := chi.NewRouter()
	r.Use(slogRequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", healthHandler.Check)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(120, time.Minute))
		r.Get("/server/info", infoHandler.GetInfo)
		r.Get("/stats", statsHandler.Get)
	})

	r.With(httprate.LimitByIP(10, time.Minute)).Get("/ws", wsHandler.ServeWS)

	return &Server{router: r, hub: hub}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func slogRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"remote", r.RemoteAddr,
		)
	})
}
