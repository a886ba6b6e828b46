package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stockdash/internal/api"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Start the HTTP server exposing:
  GET /health       liveness probe
  GET /api/indices  index quotes and exchange rate

Examples:
  stockdash serve
  stockdash serve --port 9090
  stockdash serve --config ./config.json --log-level debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "server port (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	if servePort != "" {
		a.cfg.Server.Port = servePort
	}

	s := api.NewServer(a.agg,
		api.WithLogger(a.log),
		api.WithRequestTimeout(time.Duration(a.cfg.Server.RequestTimeoutSec)*time.Second),
		api.WithCORSOrigins(a.cfg.Server.CORSOrigins),
	)

	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      time.Duration(a.cfg.Server.RequestTimeoutSec+10) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("address", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.WithError(err).Error("server shutdown")
		return err
	}
	a.log.Info("server stopped")
	return nil
}
