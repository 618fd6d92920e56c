package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/codewith-ram/task-manager/api"
	"github.com/codewith-ram/task-manager/board"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(flags *flagOverrides) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := log.StandardLogger()
			be, err := openBackend(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer be.Close()

			store := board.NewStore(ctx, be.adapter, board.WithLogger(logger))
			hub := api.NewHub()
			ctrl := board.NewController(store, hub, api.RequestConfirmer{}, logger)

			var deduper api.Deduper
			if be.redis != nil {
				deduper = api.NewRedisDeduper(be.redis, cfg.DeduperTTL)
			}

			e := echo.New()
			e.HideBanner = true
			e.Use(middleware.Recover())
			e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
				AllowOrigins: []string{"*"},
				AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderContentEncoding, "Idempotency-Key"},
			}))
			api.Register(e, ctrl, hub, deduper, logger)

			errc := make(chan error, 1)
			go func() {
				logger.WithField("addr", cfg.ListenAddr).Info("serving board")
				errc <- e.Start(cfg.ListenAddr)
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
}
