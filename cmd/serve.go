package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sangnt1552314/ytscout/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(env *runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve the search form over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := env.logger.Named("http")

			finder, err := env.newFinder(ctx)
			if err != nil {
				return err
			}
			srv := server.NewServer(finder, logger,
				server.WithAddr(env.cfg.Addr),
				server.WithLimit(env.cfg.Limit),
			)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", zap.String("addr", env.cfg.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return goerr.Wrap(err, "HTTP server failed")
				}
				return nil
			case <-ctx.Done():
				logger.Info("shutting down HTTP server")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}
			logger.Info("server shutdown complete")
			return nil
		},
	}
}
