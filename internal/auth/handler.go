package auth

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/todo-gate/internal/web"
)

const loginTitle = "Đăng nhập"

// ShowLoginForm は GET /login のハンドラーです。有効なセッションがあれば一覧へ移動します。
func (m *Manager) ShowLoginForm(c *gin.Context) {
	if _, ok := m.activeUser(sessions.Default(c)); ok {
		c.Redirect(http.StatusFound, HomePath)
		return
	}
	m.renderLogin(c, http.StatusOK, "", "")
}

// Login は POST /login のハンドラーです。
func (m *Manager) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	log := m.logger.With().
		Str("username", username).
		Int("password_length", len(password)).
		Str("client_ip", c.ClientIP()).
		Logger()

	if username == "" || password == "" {
		log.Info().Msg("login rejected: missing credentials")
		m.observe(OutcomeMissing)
		m.renderLogin(c, http.StatusBadRequest, username, ErrMissingCredentials.Message)
		return
	}

	ip := c.ClientIP()
	if m.limiter != nil {
		retryAfter, err := m.limiter.Check(c.Request.Context(), ip)
		if err != nil {
			// 制限の確認に失敗しても照合は続ける
			log.Error().Err(err).Msg("failed to check login limiter")
		}
		if retryAfter > 0 {
			log.Warn().Dur("retry_after", retryAfter).Msg("login rejected: too many attempts")
			m.observe(OutcomeLocked)
			c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds())+1, 10))
			m.renderLogin(c, http.StatusTooManyRequests, username, ErrTooManyAttempts.Message)
			return
		}
	}

	if err := m.authenticator.Authenticate(username, password); err != nil {
		if errors.Is(err, ErrNotConfigured) {
			log.Error().Err(err).Msg("login unavailable: credentials not configured")
			m.observe(OutcomeMisconfig)
			web.RenderError(c, http.StatusInternalServerError)
			return
		}

		remaining := -1
		if m.limiter != nil {
			r, limErr := m.limiter.RecordFailure(c.Request.Context(), ip)
			if limErr != nil {
				log.Error().Err(limErr).Msg("failed to record login failure")
			} else {
				remaining = r
			}
		}
		log.Info().Int("remaining_attempts", remaining).Msg("login rejected: invalid credentials")
		m.observe(OutcomeInvalid)
		m.renderLogin(c, http.StatusUnauthorized, username, messageFor(err))
		return
	}

	if m.limiter != nil {
		if err := m.limiter.Reset(c.Request.Context(), ip); err != nil {
			log.Error().Err(err).Msg("failed to reset login limiter")
		}
	}

	if err := m.issueSession(c, username); err != nil {
		log.Error().Err(err).Msg("login failed: could not issue session")
		m.observe(OutcomeSessionError)
		m.renderLogin(c, http.StatusInternalServerError, username, messageFor(err))
		return
	}

	log.Info().Msg("login succeeded")
	m.observe(OutcomeSuccess)
	c.Redirect(http.StatusFound, HomePath)
}

// Logout は POST /logout のハンドラーです。セッションが無くてもエラーにはしません。
func (m *Manager) Logout(c *gin.Context) {
	session := sessions.Default(c)
	if err := m.destroySession(c, session); err != nil {
		m.logger.Error().Err(err).Msg("failed to clear session on logout")
	}
	c.Redirect(http.StatusFound, LoginPath)
}

// issueSession はセッションに利用者情報を書き込み、Cookieとして保存します。
func (m *Manager) issueSession(c *gin.Context, username string) error {
	token, err := generateToken()
	if err != nil {
		return wrapError(ErrSessionIssuance, err)
	}

	session := sessions.Default(c)
	now := m.now()
	session.Clear()
	session.Set(sessionKeyUser, username)
	session.Set(sessionKeyRole, RoleUser)
	session.Set(sessionKeyIssuedAt, now.Unix())
	session.Set(sessionKeyLastActive, now.Unix())
	session.Set(sessionKeyCSRF, token)
	session.Options(m.cookieOptions(c, m.maxAgeSeconds()))

	if err := session.Save(); err != nil {
		// 書き込めなかった値を残さない
		session.Clear()
		return wrapError(ErrSessionIssuance, err)
	}
	return nil
}

func (m *Manager) renderLogin(c *gin.Context, status int, username, message string) {
	web.Render(c, status, web.PageLogin, loginTitle, gin.H{
		"Username": username,
		"Error":    message,
	})
}
