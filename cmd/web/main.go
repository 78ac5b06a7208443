// Package main はTODOアプリのWebサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/todo-gate/internal/config"
	"github.com/yourusername/todo-gate/internal/logging"
	"github.com/yourusername/todo-gate/internal/metrics"
	"github.com/yourusername/todo-gate/internal/todo"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load(os.Getenv("TODO_CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := logging.New(cfg.Logging)
	if cfg.Session.SecretGenerated {
		logger.Warn().Msg("session.secret is empty; using a random key, sessions will not survive a restart")
	}
	if _, err := cfg.Credentials(); err != nil {
		logger.Warn().Msg("default credentials are not configured; every login will fail")
	}

	// Ginのモードを設定
	gin.SetMode(cfg.Server.GinMode)

	limiter, closeLimiter, err := setupLimiter(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up login limiter")
	}
	defer closeLimiter()

	router := setupRouter(cfg, logger, routerDeps{
		store:   todo.NewStore(),
		metrics: metrics.New(),
		limiter: limiter,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("mode", cfg.Server.GinMode).Msg("starting web server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down web server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
