package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/authgate/internal/metrics"
	"github.com/yourusername/authgate/internal/users"
)

// ContextUserKey は、ハンドラー間でログイン済みユーザーを共有するためのキーです。
const ContextUserKey = "auth.user"

// LoginPath は未ログイン時のリダイレクト先です。
const LoginPath = "/login"

// LoadSession は既存のセッションがあればユーザーを gin.Context に載せます。全ルートに適用します。
func (m *Manager) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.resolve(c)
		c.Next()
	}
}

// RequireLogin は未ログインのリクエストをログイン画面へリダイレクトします。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := m.resolve(c); !ok {
			m.metrics.GuardRejected(metrics.GuardAuthenticated)
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin は管理者以外のリクエストを 403 で打ち切ります。未ログインの場合も同様です。
func (m *Manager) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := m.resolve(c)
		if !ok || !user.IsAdmin() {
			m.metrics.GuardRejected(metrics.GuardAdmin)
			c.String(http.StatusForbidden, "Forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser は LoadSession またはガードが載せたユーザーを返します。
func CurrentUser(c *gin.Context) (users.PublicUser, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return users.PublicUser{}, false
	}
	user, ok := v.(users.PublicUser)
	return user, ok
}

func (m *Manager) resolve(c *gin.Context) (users.PublicUser, bool) {
	if user, ok := CurrentUser(c); ok {
		return user, true
	}
	user, err := m.sessions.Current(c)
	if err != nil {
		return users.PublicUser{}, false
	}
	c.Set(ContextUserKey, user)
	return user, true
}
