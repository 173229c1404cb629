package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vbonduro/lostfound/internal/auth"
	"github.com/vbonduro/lostfound/internal/config"
	"github.com/vbonduro/lostfound/internal/web"
)

const shutdownTimeout = 15 * time.Second

var serveSeed bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "load demo data first when the store has no users")
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn("JWT_SECRET is not set; using the development secret")
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveSeed {
		if _, err := seedDemo(ctx, a); err != nil {
			return err
		}
	}

	srv := web.NewServer(a.services, auth.NewTokens(cfg.JWTSecret), logger).HTTPServer(cfg.ListenAddr)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		return err
	}
	return nil
}
