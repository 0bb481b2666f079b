package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sangnt1552314/ytscout/internal/config"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for cleanup
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-c
		cancel()
	}()

	rootCmd, env := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	defer env.logger.Sync()

	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			fmt.Fprintln(os.Stderr, "❌ "+config.ErrMissingAPIKey.Error())
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		env.logger.Error("execution failed", zap.Error(err))
		env.logger.Sync()
		os.Exit(1)
	}
}
