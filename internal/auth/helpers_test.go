package auth

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/authgate/internal/metrics"
	"github.com/yourusername/authgate/internal/password"
	"github.com/yourusername/authgate/internal/users"
	"github.com/yourusername/authgate/internal/web"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type testEnv struct {
	router  *gin.Engine
	store   *users.Store
	hasher  *password.Bcrypt
	metrics *metrics.Metrics
	manager *Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithHasher(t, nil)
}

// newTestEnvWithHasher は hasher が nil なら bcrypt(MinCost) を使います。
func newTestEnvWithHasher(t *testing.T, hasher password.Hasher) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bc, err := password.NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)
	if hasher == nil {
		hasher = bc
	}

	env := &testEnv{
		store:   users.NewStore(),
		hasher:  bc,
		metrics: metrics.New(),
	}

	opts := SessionOptions{MaxAgeSeconds: 3600}
	env.manager = NewManager(env.store, hasher, NewSessionManager(opts), nil, env.metrics)

	router := gin.New()
	router.Use(sessions.Sessions(SessionCookieName, NewSessionStore(testSecret, opts)))
	require.NoError(t, web.Setup(router))
	router.Use(env.manager.LoadSession())

	router.GET("/login", env.manager.LoginForm)
	router.POST("/login", env.manager.Login)
	router.GET("/signup", env.manager.SignupForm)
	router.POST("/signup", env.manager.Signup)
	router.GET("/landing", env.manager.RequireLogin(), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.String(http.StatusOK, "landing:"+user.Email)
	})
	router.GET("/admin-dashboard", env.manager.RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "admin")
	})
	router.POST("/logout", env.manager.RequireLogin(), env.manager.Logout)

	env.router = router
	return env
}

func (e *testEnv) addUser(t *testing.T, username, email, plain string, role users.Role) users.User {
	t.Helper()
	hash, err := e.hasher.Hash(plain)
	require.NoError(t, err)
	u, err := e.store.Create(username, email, hash, role)
	require.NoError(t, err)
	return u
}

// client はレスポンスのクッキーを次のリクエストに引き継ぎます。
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, h http.Handler) *client {
	return &client{t: t, handler: h, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) login(email, plain string) *httptest.ResponseRecorder {
	return c.postForm("/login", url.Values{"email": {email}, "password": {plain}})
}

func (c *client) snapshot() map[string]*http.Cookie {
	out := make(map[string]*http.Cookie, len(c.cookies))
	for k, v := range c.cookies {
		cp := *v
		out[k] = &cp
	}
	return out
}

// fakeSession は保存時のエラーを注入できる sessions.Session です。
// ID の振る舞いは memstore に合わせ、初回保存で発行し、破棄すると空に戻します。
type fakeSession struct {
	id      string
	values  map[any]any
	opts    sessions.Options
	saveErr error
	saves   int
	issued  []string
}

func newFakeSession() *fakeSession {
	return &fakeSession{values: map[any]any{}}
}

func (s *fakeSession) ID() string { return s.id }
func (s *fakeSession) Get(key any) any { return s.values[key] }
func (s *fakeSession) Set(key, val any) { s.values[key] = val }
func (s *fakeSession) Delete(key any) { delete(s.values, key) }
func (s *fakeSession) Clear() { s.values = map[any]any{} }
func (s *fakeSession) AddFlash(any, ...string) {}
func (s *fakeSession) Flashes(...string) []any { return nil }
func (s *fakeSession) Options(o sessions.Options) { s.opts = o }

func (s *fakeSession) Save() error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.opts.MaxAge < 0 {
		s.id = ""
		return nil
	}
	if s.id == "" {
		s.id = fmt.Sprintf("fake-%d", s.saves)
		s.issued = append(s.issued, s.id)
	}
	return nil
}

// withUser はログイン済みの状態を作ります。
func (s *fakeSession) withUser(u users.PublicUser, issuedAt time.Time) *fakeSession {
	s.id = "live"
	s.values[sessionKeyUser] = u
	s.values[sessionKeyIssuedAt] = issuedAt.Unix()
	return s
}

var errStoreDown = errors.New("session store unavailable")

type failingHasher struct {
	password.Hasher
}

func (failingHasher) Hash(string) (string, error) {
	return "", errors.New("hash primitive failed")
}
