package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yourusername/todo-gate/internal/auth"
	"github.com/yourusername/todo-gate/internal/config"
	"github.com/yourusername/todo-gate/internal/logging"
	"github.com/yourusername/todo-gate/internal/metrics"
	"github.com/yourusername/todo-gate/internal/todo"
	"github.com/yourusername/todo-gate/internal/web"
)

type routerDeps struct {
	store   *todo.Store
	metrics *metrics.Metrics
	limiter auth.Limiter
	now     func() time.Time
}

// setupRouter はミドルウェアとルーティングを構成したエンジンを返します。
func setupRouter(cfg *config.Config, logger zerolog.Logger, deps routerDeps) *gin.Engine {
	router := gin.New()
	router.Use(
		web.Recovery(logger),
		logging.RequestLogger(logger),
		deps.metrics.Middleware(),
	)

	// セッションストアの設定（署名鍵は config.Validate で必ず埋まる）
	store := auth.NewSessionStore([]byte(cfg.Session.Secret), cfg.Session.Lifetime)
	router.Use(sessions.Sessions(cfg.Session.CookieName, store))

	// CORSミドルウェアの設定（許可オリジンが無い場合は付与しない）
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{
			"Origin",
			"Content-Type",
			"Accept",
			"X-CSRF-Token", // CSRF保護用ヘッダー
		}
		corsConfig.ExposeHeaders = []string{logging.RequestIDHeader}
		router.Use(cors.New(corsConfig))
	}

	router.SetHTMLTemplate(web.Templates())
	deps.metrics.RegisterItemGauge(deps.store.Len)

	setupRoutes(router, cfg, logger, deps)
	return router
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "todo-gate",
		"version": "0.1.0",
	})
}

// setupRoutes は認証周りとTODOのルートを配線します。
func setupRoutes(router *gin.Engine, cfg *config.Config, logger zerolog.Logger, deps routerDeps) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(deps.metrics.Handler()))
	}

	authManager := auth.NewManager(cfg, auth.Options{
		Lifetime: cfg.Session.Lifetime,
		Limiter:  deps.limiter,
		Recorder: deps.metrics,
		Logger:   logger,
		Now:      deps.now,
	})

	// ログイン時はセッション未生成なので CSRF 検証は不要
	router.GET(auth.LoginPath, authManager.ShowLoginForm)
	router.POST(auth.LoginPath, authManager.Login)
	// ログアウトはセッションの有無やトークンに関係なく常に破棄して /login へ戻す
	router.POST("/logout", authManager.Logout)

	protected := router.Group("")
	protected.Use(authManager.RequireLogin(), authManager.VerifyCSRF())
	todo.RegisterRoutes(protected, deps.store, logger)

	router.NoRoute(func(c *gin.Context) {
		web.RenderError(c, http.StatusNotFound)
	})
}
