package main

import (
	"context"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sangnt1552314/ytscout/internal/config"
	"github.com/sangnt1552314/ytscout/internal/logging"
	"github.com/sangnt1552314/ytscout/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runtimeEnv is what every subcommand gets once the persistent pre-run has
// loaded the configuration.
type runtimeEnv struct {
	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() (*cobra.Command, *runtimeEnv) {
	env := &runtimeEnv{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:           "ytscout",
		Short:         "Find YouTube channels within a subscriber range",
		Long:          `Search YouTube channels by keyword, keep the ones whose subscriber count is inside a range and export them as CSV.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), env)
		},
	}
	env.cfg.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newTUICmd(env), newServeCmd(env), newSearchCmd(env))
	return rootCmd, env
}

func (e *runtimeEnv) load(cmd *cobra.Command) error {
	loaded, err := config.LoadEnvFile(e.cfg.EnvFile)
	if err != nil {
		return err
	}
	if err := e.cfg.ApplyEnv(cmd.Flags(), nil); err != nil {
		return err
	}

	logger, err := logging.New(e.cfg.LogFile, e.cfg.LogLevel)
	if err != nil {
		return err
	}
	e.logger = logger

	if !loaded {
		logger.Debug("env file not found", zap.String("path", e.cfg.EnvFile))
	}
	return e.cfg.Validate()
}

func (e *runtimeEnv) newFinder(ctx context.Context) (*services.Finder, error) {
	client, err := services.NewDataAPIClient(ctx, e.cfg.APIKey)
	if err != nil {
		return nil, err
	}

	var uploads services.UploadsSource = client
	switch e.cfg.UploadsSource {
	case config.UploadsSourceWeb:
		uploads = services.NewWebUploadsSource(&http.Client{Timeout: 30 * time.Second})
	case config.UploadsSourceAPI:
	default:
		return nil, goerr.New("unknown uploads source", goerr.V("uploads_source", e.cfg.UploadsSource))
	}

	e.logger.Info("finder configured",
		zap.String("uploads_source", e.cfg.UploadsSource),
		zap.Int("workers", e.cfg.Workers),
		zap.Int("limit", e.cfg.Limit),
	)
	return services.NewFinder(client, uploads, e.logger.Named("finder"), services.WithWorkers(e.cfg.Workers)), nil
}
