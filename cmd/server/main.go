package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"groupchat/internal/chat"
	"groupchat/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run wires the process together and owns its lifecycle, so deferred
// cleanup executes and the exit path stays testable.
func run() error {
	cfg, err := server.LoadConfig()
	if err != nil {
		return err
	}
	logger := server.NewLogger(cfg.LogLevel)

	registry := chat.NewRegistry()
	jokes := chat.NewJokeClient(cfg.JokeURL, cfg.JokeTimeout)
	gateway := server.NewGateway(logger)

	ws := server.NewWebSocketHandler(cfg, gateway, registry, jokes, logger)
	srv := server.CreateServer(cfg.Addr(), server.SetupRoutes(ws))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := server.ShutdownServer(srv, cfg.ShutdownTimeout); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := gateway.Shutdown(cfg.ShutdownTimeout); err != nil {
		logger.Warn("client connections still draining", "error", err)
	}
	return nil
}
