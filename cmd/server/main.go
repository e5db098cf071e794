package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatd/internal/api"
	"chatd/internal/broker"
	"chatd/internal/config"
	"chatd/internal/directory"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting broker", "name", cfg.Server.Name)

	dir := directory.New()
	hub := broker.NewHub(dir)
	dispatcher := broker.NewDispatcher(hub)
	chatServer := broker.NewServer(cfg.Addr(), hub, dispatcher)

	go func() {
		slog.Info("chat server listening", "addr", cfg.Addr())
		if err := chatServer.ListenAndServe(); err != nil {
			slog.Error("chat server failed", "error", err)
			os.Exit(1)
		}
	}()

	adminServer := &http.Server{
		Addr:    cfg.AdminAddr(),
		Handler: api.NewServer(cfg, hub, dispatcher),
	}

	go func() {
		slog.Info("admin server listening", "addr", cfg.AdminAddr())
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("admin server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down")

	chatServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := adminServer.Shutdown(ctx); err != nil {
		slog.Error("admin server shutdown error", "error", err)
	}

	slog.Info("broker stopped")
}
