// Package dashboard はトップページ・ランディング・管理画面のハンドラーを提供します。
package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/authgate/internal/auth"
	"github.com/yourusername/authgate/internal/users"
	"github.com/yourusername/authgate/internal/web"
)

// Handler は画面表示用のハンドラーです。
type Handler struct {
	store *users.Store
}

// NewHandler は Handler を作成します。
func NewHandler(store *users.Store) *Handler {
	return &Handler{store: store}
}

// Index は GET / のハンドラーです。ログイン済みなら /landing へリダイレクトします。
func (h *Handler) Index(c *gin.Context) {
	if _, ok := auth.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, auth.LandingPath)
		return
	}
	c.HTML(http.StatusOK, web.TemplateIndex, web.Page{Title: "Welcome"})
}

// Landing は GET /landing のハンドラーです（RequireLogin の後段）。
// 一覧は管理者にだけ渡し、一般ユーザーには空の一覧を渡します。
func (h *Handler) Landing(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, auth.LoginPath)
		return
	}

	var roster []users.PublicUser
	if user.IsAdmin() {
		roster = h.store.ListPublic()
	}

	c.HTML(http.StatusOK, web.TemplateLanding, web.Page{
		Title: "Landing",
		User:  user,
		Users: roster,
	})
}

// AdminDashboard は GET /admin-dashboard のハンドラーです（RequireAdmin の後段）。
func (h *Handler) AdminDashboard(c *gin.Context) {
	user, _ := auth.CurrentUser(c)
	c.HTML(http.StatusOK, web.TemplateAdmin, web.Page{
		Title: "Admin dashboard",
		User:  user,
		Users: h.store.ListPublic(),
	})
}
