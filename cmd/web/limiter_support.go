package main

import (
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/todo-gate/internal/auth"
	"github.com/yourusername/todo-gate/internal/config"
)

// setupLimiter はログイン試行制限を構成します。
// redis.url が設定されていれば Redis を、無ければプロセス内メモリを使います。
func setupLimiter(cfg *config.Config) (auth.Limiter, func(), error) {
	noop := func() {}
	policy := auth.PolicyFromConfig(cfg.Security.Login)
	if policy.MaxAttempts <= 0 {
		return nil, noop, nil
	}

	if cfg.Redis.URL == "" {
		return auth.NewMemoryLimiter(policy, nil), noop, nil
	}

	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, noop, err
	}
	redisClient := redis.NewClient(opt)
	return auth.NewRedisLimiter(redisClient, policy), func() { _ = redisClient.Close() }, nil
}
