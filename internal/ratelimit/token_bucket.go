package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket 令牌桶限流器
type TokenBucket struct {
	rate           float64 // 每秒生成的令牌数
	capacity       float64
	tokens         float64
	lastRefillTime time.Time
	mutex          sync.Mutex

	now func() time.Time
}

// NewTokenBucket 创建令牌桶，容量未指定时取每分钟请求数的一半
func NewTokenBucket(perMinute int, capacity int) *TokenBucket {
	return newTokenBucket(perMinute, capacity, time.Now)
}

func newTokenBucket(perMinute int, capacity int, now func() time.Time) *TokenBucket {
	if perMinute <= 0 {
		perMinute = 1
	}
	if capacity <= 0 {
		capacity = perMinute / 2
		if capacity <= 0 {
			capacity = 1
		}
	}
	return &TokenBucket{
		rate:           float64(perMinute) / 60.0,
		capacity:       float64(capacity),
		tokens:         float64(capacity), // 初始填满
		lastRefillTime: now(),
		now:            now,
	}
}

// refill 按经过的时间补充令牌，调用方持有锁
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefillTime).Seconds()
	if elapsed <= 0 {
		return
	}
	tb.lastRefillTime = now
	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
}

// Allow 尝试消耗一个令牌
func (tb *TokenBucket) Allow() bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// RetryAfter 距离下一个令牌可用的时间
func (tb *TokenBucket) RetryAfter() time.Duration {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		return 0
	}
	return time.Duration((1.0 - tb.tokens) / tb.rate * float64(time.Second))
}

// Wait 阻塞直到有令牌可用或 ctx 结束
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		if tb.Allow() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(tb.RetryAfter()):
		}
	}
}
