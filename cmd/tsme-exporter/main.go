package main

import (
	"context"
	"os"
	"os/signal"

	"go.uber.org/zap"
)

var zapCfg = zap.NewDevelopmentConfig()

func main() {
	logger, err := zapCfg.Build()
	if err != nil {
		panic("failed to init zap: " + err.Error())
	}
	zap.ReplaceGlobals(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		zap.L().Fatal("command failed", zap.Error(err))
	}
}
