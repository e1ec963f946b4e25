// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/authgate/internal/config"
	"github.com/yourusername/authgate/internal/logging"
	"github.com/yourusername/authgate/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("authgate: %v", err)
	}
}

func run() error {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.LogLevel, !cfg.IsRelease())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.PprofAddr != "" {
		pprofSrv := server.StartPprofServer(cfg.PprofAddr, logger)
		defer pprofSrv.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		return err
	}
	return nil
}
