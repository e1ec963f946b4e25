package server

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/authgate/internal/auth"
	"github.com/yourusername/authgate/internal/config"
	"github.com/yourusername/authgate/internal/dashboard"
	"github.com/yourusername/authgate/internal/logging"
	"github.com/yourusername/authgate/internal/metrics"
	"github.com/yourusername/authgate/internal/password"
	"github.com/yourusername/authgate/internal/users"
	"github.com/yourusername/authgate/internal/web"
)

// RouterDeps はルーター組み立てに必要な依存関係です。Metrics は nil なら無効です。
type RouterDeps struct {
	Config        *config.Config
	Logger        *zap.Logger
	Store         *users.Store
	Hasher        password.Hasher
	Metrics       *metrics.Metrics
	SessionSecret []byte
}

// NewRouter はミドルウェアとルートを登録した gin.Engine を返します。
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	if deps.Config == nil || deps.Store == nil || deps.Hasher == nil {
		return nil, errors.New("router dependencies are incomplete")
	}
	if len(deps.SessionSecret) == 0 {
		return nil, errors.New("session secret is empty")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := deps.Config

	router := gin.New()
	router.Use(logging.RequestID(), logging.AccessLog(logger), gin.Recovery())
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}

	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
		router.Use(cors.New(corsConfig))
	}

	sessionOpts := auth.SessionOptions{
		MaxAgeSeconds: cfg.SessionMaxAgeSeconds,
		Secure:        cfg.IsRelease(),
	}
	router.Use(sessions.Sessions(auth.SessionCookieName, auth.NewSessionStore(deps.SessionSecret, sessionOpts)))

	if err := web.Setup(router); err != nil {
		return nil, err
	}

	authManager := auth.NewManager(deps.Store, deps.Hasher, auth.NewSessionManager(sessionOpts), logger, deps.Metrics)
	router.Use(authManager.LoadSession())

	setupRoutes(router, authManager, dashboard.NewHandler(deps.Store), deps.Metrics)
	return router, nil
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func setupRoutes(router *gin.Engine, authManager *auth.Manager, pages *dashboard.Handler, m *metrics.Metrics) {
	router.GET("/healthz", handleHealth)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	router.GET("/login", authManager.LoginForm)
	router.POST("/login", authManager.Login)
	router.GET("/signup", authManager.SignupForm)
	router.POST("/signup", authManager.Signup)

	router.GET("/", pages.Index)
	router.GET("/landing", authManager.RequireLogin(), pages.Landing)
	router.GET("/admin-dashboard", authManager.RequireAdmin(), pages.AdminDashboard)
	router.POST("/logout", authManager.RequireLogin(), authManager.Logout)
}
