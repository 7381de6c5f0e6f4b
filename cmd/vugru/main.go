package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vugru/internal/auth"
	"vugru/internal/config"
	"vugru/internal/server"
	"vugru/internal/storage/sqlite"
	"vugru/internal/watch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("unable to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	addrFlag := flag.String("addr", cfg.Addr, "HTTP listen address")
	dbFlag := flag.String("db", cfg.DBPath, "Path to sqlite database file")
	staticFlag := flag.String("static", cfg.StaticDir, "Directory with built frontend")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Info("vugru quoting portal v1.0.0")

	store, err := sqlite.Open(*dbFlag, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	bus := watch.New(store.ListProjectsFor, logger)
	defer bus.Close()

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL, time.Now)
	srv := server.New(store, bus, tokens, logger, *staticFlag)

	httpServer := &http.Server{
		Addr:    *addrFlag,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
