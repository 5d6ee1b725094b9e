package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vaibhavi8/autoplay/core"
	"github.com/vaibhavi8/autoplay/server"
)

func newServeCmd() *cobra.Command {
	var romPath string
	var noAutostart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(romPath)
			if err != nil {
				return err
			}
			logger, err := buildLogger(cfg)
			if err != nil {
				return err
			}
			session, cleanup, err := buildSession(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if !noAutostart {
				if err := session.Start(); err != nil {
					return err
				}
			}

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           server.New(session, func(o *server.Options) { o.Logger = logger }).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("server shutdown", "error", err)
			}
			if session.Status() == core.StatusRunning {
				if err := session.Stop(); err != nil {
					logger.Warn("session stop", "error", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&romPath, "rom", "", "path to the game ROM (overrides AUTOPLAY_ROM)")
	cmd.Flags().BoolVar(&noAutostart, "no-autostart", false, "do not start the session until POST /api/start")
	return cmd
}
