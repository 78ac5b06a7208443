package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// RoleUser はログインユーザーに付与する唯一のロールです。
	RoleUser = "User"

	sessionKeyUser       = "auth_user"
	sessionKeyRole       = "auth_role"
	sessionKeyIssuedAt   = "issued_at"
	sessionKeyLastActive = "last_activity"
	sessionKeyCSRF       = "csrf_token"

	csrfHeader    = "X-CSRF-Token"
	csrfFormField = "csrf_token"

	// LoginPath はログイン画面のパスです。
	LoginPath = "/login"
	// HomePath はログイン後の遷移先です。
	HomePath = "/"
)

// ContextUserKey は、ハンドラー間でログイン済みユーザー名を共有するためのキーです。
const ContextUserKey = "auth.user"

// ログイン結果のラベル
const (
	OutcomeSuccess      = "success"
	OutcomeMissing      = "missing"
	OutcomeInvalid      = "invalid"
	OutcomeLocked       = "locked"
	OutcomeSessionError = "session_error"
	OutcomeMisconfig    = "misconfigured"
)

// LoginRecorder はログイン試行の結果を受け取ります（メトリクス用）。
type LoginRecorder interface {
	ObserveLogin(outcome string)
}

// Principal はセッションに紐づく認証済みの利用者です。
type Principal struct {
	Name string
	Role string
}

// Options は Manager の動作設定です。
type Options struct {
	// Lifetime は最終操作からセッションが有効な時間です（スライディング）。
	Lifetime time.Duration
	Limiter  Limiter
	Recorder LoginRecorder
	Logger   zerolog.Logger
	Now      func() time.Time
}

// Manager は認証処理とセッション検証をまとめた構造体です。
type Manager struct {
	authenticator *Authenticator
	lifetime      time.Duration
	limiter       Limiter
	recorder      LoginRecorder
	logger        zerolog.Logger
	now           func() time.Time
}

// NewManager は認証マネージャーを作成します。
func NewManager(source CredentialSource, opts Options) *Manager {
	if opts.Lifetime <= 0 {
		opts.Lifetime = time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		authenticator: NewAuthenticator(source),
		lifetime:      opts.Lifetime,
		limiter:       opts.Limiter,
		recorder:      opts.Recorder,
		logger:        opts.Logger.With().Str("component", "auth").Logger(),
		now:           opts.Now,
	}
}

// NewSessionStore はセッションCookie用の署名付きストアを作成します。
func NewSessionStore(secret []byte, lifetime time.Duration) sessions.Store {
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(lifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// CurrentPrincipal は RequireLogin を通過したリクエストの利用者を返します。
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	name := c.GetString(ContextUserKey)
	if name == "" {
		return Principal{}, false
	}
	return Principal{Name: name, Role: RoleUser}, true
}

// activeUser はセッションが有効期限内であればユーザー名を返します。セッションは変更しません。
func (m *Manager) activeUser(session sessions.Session) (string, bool) {
	user, ok := session.Get(sessionKeyUser).(string)
	if !ok || user == "" {
		return "", false
	}
	lastActive := readUnix(session.Get(sessionKeyLastActive))
	if lastActive.IsZero() || m.now().Sub(lastActive) > m.lifetime {
		return "", false
	}
	return user, true
}

// cookieOptions はリクエストのスキームに合わせて Secure 属性を決めます。
func (m *Manager) cookieOptions(c *gin.Context, maxAge int) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   isSecureRequest(c.Request),
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) maxAgeSeconds() int {
	return int(m.lifetime.Seconds())
}

// destroySession はセッションを消去し、Cookieを失効させます。
func (m *Manager) destroySession(c *gin.Context, session sessions.Session) error {
	session.Clear()
	session.Options(m.cookieOptions(c, -1))
	return session.Save()
}

func (m *Manager) observe(outcome string) {
	if m.recorder != nil {
		m.recorder.ObserveLogin(outcome)
	}
}

func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func readUnix(v interface{}) time.Time {
	switch t := v.(type) {
	case int64:
		return time.Unix(t, 0)
	case int:
		return time.Unix(int64(t), 0)
	case float64:
		return time.Unix(int64(t), 0)
	default:
		return time.Time{}
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
