// Package server はルーターの組み立てとHTTPサーバーのライフサイクルを扱います。
package server

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/authgate/internal/config"
	"github.com/yourusername/authgate/internal/metrics"
	"github.com/yourusername/authgate/internal/password"
	"github.com/yourusername/authgate/internal/users"
)

const shutdownTimeout = 5 * time.Second

// Server は依存関係を束ねたHTTPサーバーです。
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *users.Store
	metrics *metrics.Metrics
	router  *gin.Engine
}

// New は設定から Server を組み立てます。初期アカウントの登録もここで行います。
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	hasher, err := password.NewBcrypt(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	store := users.NewStore()
	if err := users.Seed(store, hasher, seedAccounts(cfg)...); err != nil {
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}
	logger.Info("credential store ready", zap.Int("users", store.Len()), zap.Bool("demo_users", cfg.SeedDemoUsers))

	secret, err := sessionSecret(cfg, logger)
	if err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	router, err := NewRouter(RouterDeps{
		Config:        cfg,
		Logger:        logger,
		Store:         store,
		Hasher:        hasher,
		Metrics:       m,
		SessionSecret: secret,
	})
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		metrics: m,
		router:  router,
	}, nil
}

// Router はルーターを返します。
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Store は認証情報ストアを返します。
func (s *Server) Store() *users.Store {
	return s.store
}

// HTTPServer は http.Server を作成します。
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}

// Run は ctx がキャンセルされるまでサーバーを動かし、その後グレースフルに停止します。
func (s *Server) Run(ctx context.Context) error {
	httpServer := s.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", httpServer.Addr), zap.String("mode", s.cfg.GinMode))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("server exiting")
	return nil
}

func seedAccounts(cfg *config.Config) []users.SeedAccount {
	var accounts []users.SeedAccount
	// 設定された管理者を先に登録し、デモアカウントとの重複時はこちらを優先する
	if cfg.HasAdmin() {
		accounts = append(accounts, users.SeedAccount{
			Username:     cfg.AdminUsername,
			Email:        cfg.AdminEmail,
			PasswordHash: cfg.AdminPasswordHash,
			Role:         users.RoleAdmin,
		})
	}
	if cfg.SeedDemoUsers {
		accounts = append(accounts, users.DemoAccounts...)
	}
	return accounts
}

func sessionSecret(cfg *config.Config, logger *zap.Logger) ([]byte, error) {
	if cfg.SessionSecret != "" {
		return []byte(cfg.SessionSecret), nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	logger.Warn("SESSION_SECRET is not set; using a random key, sessions will not survive a restart")
	return buf, nil
}
