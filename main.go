// ChessClub - a chess club server: accounts, games against friends or the
// computer, history and post-game analysis over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hailam/chessclub/internal/config"
	"github.com/hailam/chessclub/internal/httpapi"
	"github.com/hailam/chessclub/internal/logging"
	"github.com/hailam/chessclub/internal/service"
	"github.com/hailam/chessclub/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "chessclub:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Logs)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var store *storage.Storage
	if cfg.Storage.InMemory {
		store, err = storage.OpenInMemory()
	} else {
		store, err = storage.Open(cfg.Storage.DataDir)
	}
	if err != nil {
		return err
	}
	defer store.Close()

	svc := service.New(store, service.Options{
		Game:   cfg.Game,
		Logger: logger,
	})
	defer svc.Close()

	if !logger.Core().Enabled(zap.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.NewRouter(svc, logger, cfg.HTTP.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
