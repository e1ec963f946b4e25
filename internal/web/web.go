// Package web はHTMLテンプレートと静的ファイルを埋め込みで提供します。
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/authgate/internal/users"
)

// テンプレート名
const (
	TemplateIndex   = "index.tmpl"
	TemplateLogin   = "login.tmpl"
	TemplateSignup  = "signup.tmpl"
	TemplateLanding = "landing.tmpl"
	TemplateAdmin   = "admin.tmpl"
)

// StaticPrefix は静的ファイルのURLプレフィックスです。
const StaticPrefix = "/static"

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Templates は全テンプレートをパースして返します。
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.tmpl")
}

// Setup はテンプレートと静的ファイル配信を gin.Engine に登録します。
func Setup(r *gin.Engine) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)

	staticFiles, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	r.StaticFS(StaticPrefix, http.FS(staticFiles))
	return nil
}

// Page はテンプレートに渡すデータです。
type Page struct {
	Title        string
	ErrorMessage string
	FieldErrors  map[string]string

	// フォームの再表示用（パスワードは含めない）
	Username string
	Email    string

	User  users.PublicUser
	Users []users.PublicUser
}
