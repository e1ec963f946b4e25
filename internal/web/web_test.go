package web

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/authgate/internal/users"
)

func TestTemplatesRender(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	admin := users.PublicUser{ID: 1, Username: "AdminUser", Email: "admin@example.com", Role: users.RoleAdmin}
	regular := users.PublicUser{ID: 2, Username: "RegularUser", Email: "user@example.com", Role: users.RoleUser}

	tests := []struct {
		name     string
		page     Page
		contains []string
		excludes []string
	}{
		{name: TemplateIndex, page: Page{Title: "Home"}, contains: []string{"/login", "/signup"}},
		{
			name:     TemplateLogin,
			page:     Page{Title: "Log in", ErrorMessage: "Invalid email or password", Email: "a@x.com"},
			contains: []string{"Invalid email or password", `value="a@x.com"`},
		},
		{
			name:     TemplateSignup,
			page:     Page{Title: "Sign up", FieldErrors: map[string]string{"email": "Email taken."}},
			contains: []string{"Email taken."},
		},
		{
			name:     TemplateLanding,
			page:     Page{Title: "Landing", User: regular},
			contains: []string{"RegularUser"},
			excludes: []string{"admin@example.com", "All users"},
		},
		{
			name:     TemplateLanding,
			page:     Page{Title: "Landing", User: admin, Users: []users.PublicUser{admin, regular}},
			contains: []string{"All users", "user@example.com"},
		},
		{
			name:     TemplateAdmin,
			page:     Page{Title: "Admin", User: admin, Users: []users.PublicUser{admin, regular}},
			contains: []string{"Admin dashboard", "user@example.com", "admin@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tmpl.ExecuteTemplate(&buf, tt.name, tt.page))
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestSetupServesStatic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	require.NoError(t, Setup(router))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, StaticPrefix+"/styles.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".container")
}
