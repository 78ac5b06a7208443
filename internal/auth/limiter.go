package auth

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/todo-gate/internal/config"
)

// Limiter はクライアントごとのログイン失敗回数を管理します。
type Limiter interface {
	// Check はロック中であれば残り時間を返します。ロックされていなければ 0 です。
	Check(ctx context.Context, key string) (time.Duration, error)
	// RecordFailure は失敗を記録し、ロックまでの残り試行回数を返します。
	RecordFailure(ctx context.Context, key string) (int, error)
	// Reset は記録を消去します。
	Reset(ctx context.Context, key string) error
}

// LimitPolicy はロック条件です。
type LimitPolicy struct {
	MaxAttempts  int
	Window       time.Duration
	LockDuration time.Duration
}

// PolicyFromConfig は設定値から LimitPolicy を作成します。
func PolicyFromConfig(cfg config.LoginLimitConfig) LimitPolicy {
	return LimitPolicy{
		MaxAttempts:  cfg.MaxAttempts,
		Window:       cfg.Window,
		LockDuration: cfg.LockDuration,
	}
}

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// MemoryLimiter はプロセス内のマップで失敗回数を管理します。単一プロセス向けです。
type MemoryLimiter struct {
	policy   LimitPolicy
	now      func() time.Time
	lock     sync.Mutex
	attempts map[string]*attemptState
}

// NewMemoryLimiter は MemoryLimiter を作成します。now が nil の場合は time.Now を使います。
func NewMemoryLimiter(policy LimitPolicy, now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{
		policy:   policy,
		now:      now,
		attempts: make(map[string]*attemptState),
	}
}

func (m *MemoryLimiter) Check(_ context.Context, key string) (time.Duration, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	state, ok := m.attempts[key]
	if !ok {
		return 0, nil
	}
	now := m.now()
	if !now.Before(state.lockedUntil) {
		return 0, nil
	}
	return state.lockedUntil.Sub(now), nil
}

func (m *MemoryLimiter) RecordFailure(_ context.Context, key string) (int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := m.now()
	state, ok := m.attempts[key]
	if !ok || now.Sub(state.firstAttempt) > m.policy.Window {
		state = &attemptState{firstAttempt: now}
		if ok {
			state.lockedUntil = m.attempts[key].lockedUntil
		}
		m.attempts[key] = state
	}

	state.count++
	if state.count >= m.policy.MaxAttempts {
		// ロック解除後は回数を数え直す
		m.attempts[key] = &attemptState{firstAttempt: now, lockedUntil: now.Add(m.policy.LockDuration)}
		return 0, nil
	}
	return m.policy.MaxAttempts - state.count, nil
}

func (m *MemoryLimiter) Reset(_ context.Context, key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.attempts, key)
	return nil
}
