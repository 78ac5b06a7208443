// Package web はHTMLテンプレートの読み込みと画面描画の共通処理を提供します。
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yourusername/todo-gate/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	contextUserKey = "web.user"
	contextCSRFKey = "web.csrf"
)

// 画面名
const (
	PageLogin  = "login.html"
	PageIndex  = "index.html"
	PageCreate = "create.html"
	PageError  = "error.html"
)

// GenericErrorMessage は内部エラー時に利用者へ見せる文言です。
const GenericErrorMessage = "Đã có lỗi xảy ra. Vui lòng thử lại sau."

// Templates は埋め込みテンプレートをパースして返します。
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// SetViewer はヘッダー表示用のログインユーザーとCSRFトークンを保存します。
func SetViewer(c *gin.Context, user, csrfToken string) {
	c.Set(contextUserKey, user)
	c.Set(contextCSRFKey, csrfToken)
}

// Render は共通項目を補ってテンプレートを描画します。
func Render(c *gin.Context, status int, page, title string, data gin.H) {
	view := gin.H{
		"Title":     title,
		"User":      c.GetString(contextUserKey),
		"CSRFToken": c.GetString(contextCSRFKey),
	}
	for k, v := range data {
		view[k] = v
	}
	c.HTML(status, page, view)
}

// RenderError は汎用エラーページを描画します。内部の詳細は表示しません。
func RenderError(c *gin.Context, status int) {
	message := GenericErrorMessage
	if status == http.StatusForbidden {
		message = "Yêu cầu không hợp lệ. Vui lòng tải lại trang và thử lại."
	}
	Render(c, status, PageError, "Lỗi", gin.H{
		"Message":   message,
		"RequestID": logging.RequestID(c),
	})
}

// Recovery は panic をログに残し、汎用エラーページを返すミドルウェアです。
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Str("request_id", logging.RequestID(c)).
			Msg("recovered from panic")
		RenderError(c, http.StatusInternalServerError)
		c.Abort()
	})
}
