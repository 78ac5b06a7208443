package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	attemptKeyPrefix = "login:attempts:"
	lockKeyPrefix    = "login:lock:"
)

// RedisLimiter は失敗回数とロックを Redis の TTL 付きキーで管理します。
// 複数プロセスで同じ制限を共有する場合に使います。
type RedisLimiter struct {
	rdb    *redis.Client
	policy LimitPolicy
}

// NewRedisLimiter は RedisLimiter を作成します。
func NewRedisLimiter(rdb *redis.Client, policy LimitPolicy) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		policy: policy,
	}
}

func (l *RedisLimiter) Check(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := l.rdb.PTTL(ctx, lockKeyPrefix+key).Result()
	if err != nil {
		return 0, err
	}
	// キーが無い場合は負の値が返る
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

func (l *RedisLimiter) RecordFailure(ctx context.Context, key string) (int, error) {
	attemptKey := attemptKeyPrefix + key

	count, err := l.rdb.Incr(ctx, attemptKey).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, attemptKey, l.policy.Window).Err(); err != nil {
			return 0, err
		}
	}

	if int(count) >= l.policy.MaxAttempts {
		tx := l.rdb.TxPipeline()
		tx.Set(ctx, lockKeyPrefix+key, 1, l.policy.LockDuration)
		tx.Del(ctx, attemptKey)
		if _, err := tx.Exec(ctx); err != nil {
			return 0, err
		}
		return 0, nil
	}

	return l.policy.MaxAttempts - int(count), nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, attemptKeyPrefix+key, lockKeyPrefix+key).Err()
}
