package todo

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yourusername/todo-gate/internal/web"
)

const listPath = "/"

// Service はハンドラーが利用するTODO操作です。
type Service interface {
	List() []Item
	Create(title string) (Item, bool)
	Delete(id int) bool
	Toggle(id int) (Item, bool)
}

// RegisterRoutes はTODO関連のルートを登録します。認証ミドルウェアは呼び出し側で付与します。
func RegisterRoutes(r gin.IRoutes, svc Service, logger zerolog.Logger) {
	logger = logger.With().Str("component", "todo").Logger()

	r.GET(listPath, ListHandler(svc))
	r.GET("/create", CreateFormHandler())
	r.POST("/create", CreateHandler(svc, logger))
	r.POST("/delete", DeleteHandler(svc, logger))
	r.POST("/toggle", ToggleHandler(svc, logger))
}

// ListHandler は GET / のハンドラーを返します。
func ListHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		web.Render(c, http.StatusOK, web.PageIndex, "Danh sách", gin.H{
			"Items": svc.List(),
		})
	}
}

// CreateFormHandler は GET /create のハンドラーを返します。
func CreateFormHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		web.Render(c, http.StatusOK, web.PageCreate, "Thêm công việc", nil)
	}
}

// CreateHandler は POST /create のハンドラーを返します。
// 空のタイトルは何もせず一覧へ戻します。
func CreateHandler(svc Service, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if item, ok := svc.Create(c.PostForm("title")); ok {
			logger.Debug().Int("id", item.ID).Msg("todo created")
		} else {
			logger.Debug().Msg("create ignored: blank title")
		}
		c.Redirect(http.StatusFound, listPath)
	}
}

// DeleteHandler は POST /delete のハンドラーを返します。
// 存在しないIDは何もせず一覧へ戻します。
func DeleteHandler(svc Service, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if ok && svc.Delete(id) {
			logger.Debug().Int("id", id).Msg("todo deleted")
		} else {
			logger.Debug().Str("id", rawID(c)).Msg("delete ignored: unknown id")
		}
		c.Redirect(http.StatusFound, listPath)
	}
}

// ToggleHandler は POST /toggle のハンドラーを返します。
// 存在しないIDは何もせず一覧へ戻します。
func ToggleHandler(svc Service, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			logger.Debug().Str("id", rawID(c)).Msg("toggle ignored: invalid id")
			c.Redirect(http.StatusFound, listPath)
			return
		}
		if item, found := svc.Toggle(id); found {
			logger.Debug().Int("id", id).Bool("completed", item.IsCompleted).Msg("todo toggled")
		} else {
			logger.Debug().Int("id", id).Msg("toggle ignored: unknown id")
		}
		c.Redirect(http.StatusFound, listPath)
	}
}

func rawID(c *gin.Context) string {
	if v := strings.TrimSpace(c.PostForm("id")); v != "" {
		return v
	}
	return strings.TrimSpace(c.Query("id"))
}

func parseID(c *gin.Context) (int, bool) {
	raw := rawID(c)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}
