package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StartPprofServer は別ポートで pprof サーバーを起動します。外部に公開しないでください。
func StartPprofServer(addr string, logger *zap.Logger) *http.Server {
	pprofRouter := gin.New()
	pprof.Register(pprofRouter)

	srv := &http.Server{
		Addr:              addr,
		Handler:           pprofRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting pprof server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("pprof server stopped", zap.Error(err))
		}
	}()
	return srv
}
