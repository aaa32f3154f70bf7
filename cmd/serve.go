package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/voxtutor/internal/api"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		srv := api.NewServer(api.Deps{
			Orchestrator: e.orch,
			Analyzer:     e.analyzer,
			Planner:      e.planner,
			Coordinator:  e.coord,
			Profiles:     e.store.ProfileRepo(),
			Sessions:     e.store.SessionRepo(),
			Events:       e.store.EventRepo(),
			States:       e.states,
			Log:          log,
		}).NewHTTPServer(cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info("server starting", zap.String("addr", srv.Addr), zap.String("state_backend", cfg.State.Backend))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server: %w", err)
			}
		case <-ctx.Done():
		}

		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		log.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
