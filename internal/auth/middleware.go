package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/todo-gate/internal/web"
)

// RequireLogin はセッションを検証するミドルウェアを返します。
// 未ログインまたは最終操作から Lifetime を超えた場合はログイン画面へリダイレクトします。
// 有効なセッションは最終操作時刻を更新し、Cookieの有効期限も延長します。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		user, ok := session.Get(sessionKeyUser).(string)
		if !ok || user == "" {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}

		if _, active := m.activeUser(session); !active {
			event := m.logger.Info().Str("username", user)
			if issued := readUnix(session.Get(sessionKeyIssuedAt)); !issued.IsZero() {
				event = event.Dur("session_age", m.now().Sub(issued))
			}
			event.Msg("session expired")
			if err := m.destroySession(c, session); err != nil {
				m.logger.Error().Err(err).Msg("failed to clear expired session")
			}
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}

		session.Set(sessionKeyLastActive, m.now().Unix())
		session.Options(m.cookieOptions(c, m.maxAgeSeconds()))
		if err := session.Save(); err != nil {
			m.logger.Error().Err(err).Msg("failed to refresh session")
		}

		token, _ := session.Get(sessionKeyCSRF).(string)
		web.SetViewer(c, user, token)
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// VerifyCSRF は状態変更リクエストのCSRFトークンを検証するミドルウェアです。
// トークンは X-CSRF-Token ヘッダーまたは csrf_token フォーム値で受け付けます。
// 有効なセッションが無い（未ログイン・期限切れ）場合は検証しません。
func (m *Manager) VerifyCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		session := sessions.Default(c)
		if _, active := m.activeUser(session); !active {
			c.Next()
			return
		}
		expected, ok := session.Get(sessionKeyCSRF).(string)
		if !ok || expected == "" {
			c.Next()
			return
		}

		received := c.GetHeader(csrfHeader)
		if received == "" {
			received = c.PostForm(csrfFormField)
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(received)) != 1 {
			m.logger.Warn().
				Str("path", c.Request.URL.Path).
				Str("client_ip", c.ClientIP()).
				Msg("csrf token mismatch")
			web.RenderError(c, http.StatusForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
