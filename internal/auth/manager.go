// Package auth はログイン・登録・ログアウトとセッションによるアクセス制御を提供します。
package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/authgate/internal/logging"
	"github.com/yourusername/authgate/internal/metrics"
	"github.com/yourusername/authgate/internal/password"
	"github.com/yourusername/authgate/internal/users"
	"github.com/yourusername/authgate/internal/web"
)

// 画面に表示するメッセージ
const (
	msgInvalidCredentials = "Invalid email or password."
	msgEmailTaken         = "Email taken."
	msgTryAgain           = "Error. Try again."
	msgPasswordTooLong    = "Password must be at most 72 bytes."
)

// ログイン成功後のリダイレクト先
const (
	AdminDashboardPath = "/admin-dashboard"
	LandingPath        = "/landing"
	IndexPath          = "/"
)

// Manager は認証処理と依存関係をまとめた構造体です。
type Manager struct {
	store    *users.Store
	hasher   password.Hasher
	sessions *SessionManager
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewManager は認証マネージャーを作成します。metrics は nil でも構いません。
func NewManager(store *users.Store, hasher password.Hasher, sessions *SessionManager, logger *zap.Logger, m *metrics.Metrics) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:    store,
		hasher:   hasher,
		sessions: sessions,
		logger:   logger,
		metrics:  m,
	}
}

// Sessions は SessionManager を返します。
func (m *Manager) Sessions() *SessionManager {
	return m.sessions
}

// LoginForm は GET /login のハンドラーです。
func (m *Manager) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, web.TemplateLogin, web.Page{Title: "Log in"})
}

// Login は POST /login のハンドラーです。
// メールアドレスが存在しない場合とパスワード違いは同じメッセージを返します。
func (m *Manager) Login(c *gin.Context) {
	log := logging.FromContext(c, m.logger)
	form := bindLoginForm(c)

	if err := form.Validate(); err != nil {
		m.metrics.Login(metrics.OutcomeInvalid)
		m.renderLogin(c, http.StatusBadRequest, form, "", fieldErrors(err))
		return
	}

	user, err := m.store.FindByEmail(form.Email)
	if err != nil {
		if !errors.Is(err, users.ErrNotFound) {
			log.Error("failed to look up user", zap.Error(err))
			m.metrics.Login(metrics.OutcomeError)
			m.renderLogin(c, http.StatusInternalServerError, form, msgTryAgain, nil)
			return
		}
		m.metrics.Login(metrics.OutcomeInvalid)
		m.renderLogin(c, http.StatusOK, form, msgInvalidCredentials, nil)
		return
	}

	ok, err := m.hasher.Verify(form.Password, user.PasswordHash)
	if err != nil {
		log.Error("failed to verify password", zap.Int("user_id", user.ID), zap.Error(err))
		m.metrics.Login(metrics.OutcomeError)
		m.renderLogin(c, http.StatusInternalServerError, form, msgTryAgain, nil)
		return
	}
	if !ok {
		m.metrics.Login(metrics.OutcomeInvalid)
		m.renderLogin(c, http.StatusOK, form, msgInvalidCredentials, nil)
		return
	}

	public := user.Public()
	if err := m.sessions.Start(c, public); err != nil {
		log.Error("failed to start session", zap.Int("user_id", user.ID), zap.Error(err))
		m.metrics.Login(metrics.OutcomeError)
		m.renderLogin(c, http.StatusInternalServerError, form, msgTryAgain, nil)
		return
	}
	c.Set(ContextUserKey, public)

	m.metrics.Login(metrics.OutcomeSuccess)
	log.Info("login succeeded", zap.Int("user_id", user.ID), zap.String("role", string(user.Role)))

	if public.IsAdmin() {
		c.Redirect(http.StatusFound, AdminDashboardPath)
		return
	}
	c.Redirect(http.StatusFound, LandingPath)
}

// SignupForm は GET /signup のハンドラーです。
func (m *Manager) SignupForm(c *gin.Context) {
	c.HTML(http.StatusOK, web.TemplateSignup, web.Page{Title: "Sign up"})
}

// Signup は POST /signup のハンドラーです。登録されるロールは常に user です。
func (m *Manager) Signup(c *gin.Context) {
	log := logging.FromContext(c, m.logger)
	form := bindSignupForm(c)

	if role := c.PostForm("role"); role != "" && role != string(users.RoleUser) {
		log.Warn("ignoring client-supplied role on signup", zap.String("role", role))
	}

	if err := form.Validate(); err != nil {
		m.metrics.Signup(metrics.OutcomeInvalid)
		m.renderSignup(c, http.StatusBadRequest, form, "", fieldErrors(err))
		return
	}

	// ハッシュ計算の前に弾けるものは弾く（最終的な一意性は Store.Create が保証する）
	if m.store.Exists(form.Email) {
		m.rejectDuplicate(c, form)
		return
	}

	hash, err := m.hasher.Hash(form.Password)
	if errors.Is(err, password.ErrTooLong) {
		m.metrics.Signup(metrics.OutcomeInvalid)
		m.renderSignup(c, http.StatusBadRequest, form, "", map[string]string{"password": msgPasswordTooLong})
		return
	}
	if err != nil {
		log.Error("failed to hash password during signup", zap.Error(err))
		m.metrics.Signup(metrics.OutcomeError)
		m.renderSignup(c, http.StatusInternalServerError, form, msgTryAgain, nil)
		return
	}

	user, err := m.store.Create(form.Username, form.Email, hash, users.RoleUser)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			m.rejectDuplicate(c, form)
			return
		}
		log.Error("failed to create user", zap.Error(err))
		m.metrics.Signup(metrics.OutcomeError)
		m.renderSignup(c, http.StatusInternalServerError, form, msgTryAgain, nil)
		return
	}

	m.metrics.Signup(metrics.OutcomeCreated)
	log.Info("user registered", zap.Int("user_id", user.ID))
	c.Redirect(http.StatusFound, LoginPath)
}

// Logout は POST /logout のハンドラーです。
// セッション破棄に失敗した場合はログイン状態のまま /landing に戻します。
func (m *Manager) Logout(c *gin.Context) {
	log := logging.FromContext(c, m.logger)

	if err := m.sessions.End(c); err != nil {
		log.Error("failed to end session", zap.Error(err))
		m.metrics.Logout(metrics.OutcomeError)
		c.Redirect(http.StatusFound, LandingPath)
		return
	}

	m.metrics.Logout(metrics.OutcomeSuccess)
	c.Redirect(http.StatusFound, IndexPath)
}

func (m *Manager) rejectDuplicate(c *gin.Context, form signupForm) {
	m.metrics.Signup(metrics.OutcomeDuplicate)
	m.renderSignup(c, http.StatusBadRequest, form, msgEmailTaken, map[string]string{"email": msgEmailTaken})
}

func (m *Manager) renderLogin(c *gin.Context, status int, form loginForm, message string, fields map[string]string) {
	c.HTML(status, web.TemplateLogin, web.Page{
		Title:        "Log in",
		ErrorMessage: message,
		FieldErrors:  fields,
		Email:        form.Email,
	})
}

func (m *Manager) renderSignup(c *gin.Context, status int, form signupForm, message string, fields map[string]string) {
	c.HTML(status, web.TemplateSignup, web.Page{
		Title:        "Sign up",
		ErrorMessage: message,
		FieldErrors:  fields,
		Username:     form.Username,
		Email:        form.Email,
	})
}
