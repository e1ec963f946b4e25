package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	gsessions "github.com/gorilla/sessions"

	"github.com/yourusername/authgate/internal/users"
)

const (
	// SessionCookieName はセッションIDを運ぶクッキー名です。
	SessionCookieName = "authgate_session"

	sessionKeyUser     = "auth_user"
	sessionKeyIssuedAt = "issued_at"
)

var (
	// ErrNoSession はリクエストに有効なセッションがないことを表します。
	ErrNoSession = errors.New("no active session")
	// ErrSessionExpired は有効期間を過ぎたセッションです。errors.Is で ErrNoSession とも一致します。
	ErrSessionExpired = fmt.Errorf("session expired: %w", ErrNoSession)
)

// SessionOptions はセッションクッキーの属性です。
type SessionOptions struct {
	MaxAgeSeconds int
	Secure        bool
}

func (o SessionOptions) cookie(maxAge int) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (o SessionOptions) lifetime() time.Duration {
	return time.Duration(o.MaxAgeSeconds) * time.Second
}

// NewSessionStore はサーバー側のメモリにセッション値を保持するストアを作成します。
// クッキーには署名済みのセッションIDだけが入ります。
func NewSessionStore(secret []byte, opts SessionOptions) sessions.Store {
	inner := memstore.NewStore(secret)
	// 署名の有効期限もクッキーの寿命に合わせる
	if codecs, ok := inner.(interface{ MaxAge(int) }); ok {
		codecs.MaxAge(opts.MaxAgeSeconds)
	}
	inner.Options(opts.cookie(opts.MaxAgeSeconds))
	return &rotatingStore{Store: inner}
}

// rotatingStore は memstore のセッションIDの扱いを変えます。
// サーバー側に記録のないIDは引き継がず、破棄したIDは次の保存で使い回しません。
type rotatingStore struct {
	memstore.Store
}

func (s *rotatingStore) Get(r *http.Request, name string) (*gsessions.Session, error) {
	return gsessions.GetRegistry(r).Get(s, name)
}

func (s *rotatingStore) New(r *http.Request, name string) (*gsessions.Session, error) {
	loaded, err := s.Store.New(r, name)
	// Save がこのストアを経由するよう作り直す
	session := gsessions.NewSession(s, name)
	session.Options = loaded.Options
	session.IsNew = loaded.IsNew
	if !loaded.IsNew {
		session.ID = loaded.ID
		session.Values = loaded.Values
	}
	return session, err
}

func (s *rotatingStore) Save(r *http.Request, w http.ResponseWriter, session *gsessions.Session) error {
	if err := s.Store.Save(r, w, session); err != nil {
		return err
	}
	if session.Options.MaxAge < 0 {
		session.ID = ""
	}
	return nil
}

// SessionManager はセッションとログインユーザーの対応を管理します。
type SessionManager struct {
	opts SessionOptions
	open func(c *gin.Context) sessions.Session
	now  func() time.Time
}

// NewSessionManager は sessions.Sessions ミドルウェアが登録済みであることを前提に SessionManager を作成します。
func NewSessionManager(opts SessionOptions) *SessionManager {
	return &SessionManager{
		opts: opts,
		open: sessions.Default,
		now:  time.Now,
	}
}

// Start はログインユーザーの公開情報を新しいセッションIDに結び付け、クッキーを発行します。
// リクエストに生きたセッションがあれば先に破棄します。
func (m *SessionManager) Start(c *gin.Context, user users.PublicUser) error {
	session := m.open(c)
	if session.ID() != "" {
		if err := m.destroy(session); err != nil {
			return fmt.Errorf("failed to rotate session: %w", err)
		}
	}
	session.Clear()
	session.Set(sessionKeyUser, user)
	session.Set(sessionKeyIssuedAt, m.now().Unix())
	session.Options(m.opts.cookie(m.opts.MaxAgeSeconds))
	if err := session.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Current は現在のセッションに結び付いたユーザーを返します。
// 発行から MaxAgeSeconds を過ぎたセッションは破棄して ErrSessionExpired を返します。
func (m *SessionManager) Current(c *gin.Context) (users.PublicUser, error) {
	session := m.open(c)
	user, ok := session.Get(sessionKeyUser).(users.PublicUser)
	if !ok {
		return users.PublicUser{}, ErrNoSession
	}

	issuedAt := readUnix(session.Get(sessionKeyIssuedAt))
	if issuedAt.IsZero() || m.now().Sub(issuedAt) > m.opts.lifetime() {
		_ = m.destroy(session)
		return users.PublicUser{}, ErrSessionExpired
	}
	return user, nil
}

// End はサーバー側のセッションを破棄し、クッキーを失効させます。
// エラーが返った場合、ログアウトは完了していません。
func (m *SessionManager) End(c *gin.Context) error {
	if err := m.destroy(m.open(c)); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

func (m *SessionManager) destroy(session sessions.Session) error {
	session.Clear()
	session.Options(m.opts.cookie(-1))
	return session.Save()
}

func readUnix(v any) time.Time {
	switch t := v.(type) {
	case int64:
		return time.Unix(t, 0)
	case int:
		return time.Unix(int64(t), 0)
	default:
		return time.Time{}
	}
}
