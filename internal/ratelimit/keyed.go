package ratelimit

import (
	"sync"
	"time"
)

type keyedEntry struct {
	bucket   *TokenBucket
	lastSeen time.Time
}

// KeyedLimiter 按客户端标识(API Key 或 IP)分别限流
type KeyedLimiter struct {
	perMinute int
	burst     int
	idleTTL   time.Duration

	mu          sync.Mutex
	buckets     map[string]*keyedEntry
	lastCleanup time.Time
	now         func() time.Time
}

// NewKeyedLimiter 创建按键限流器，超过 idleTTL 未访问的桶会被回收
func NewKeyedLimiter(perMinute, burst int, idleTTL time.Duration) *KeyedLimiter {
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &KeyedLimiter{
		perMinute:   perMinute,
		burst:       burst,
		idleTTL:     idleTTL,
		buckets:     make(map[string]*keyedEntry),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow 判断 key 的请求是否放行，拒绝时返回建议的重试等待时间
func (l *KeyedLimiter) Allow(key string) (bool, time.Duration) {
	bucket := l.bucket(key)
	if bucket.Allow() {
		return true, 0
	}
	return false, bucket.RetryAfter()
}

// Len 当前跟踪的客户端数
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *KeyedLimiter) bucket(key string) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastCleanup) >= l.idleTTL {
		for k, e := range l.buckets {
			if now.Sub(e.lastSeen) >= l.idleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastCleanup = now
	}

	e, ok := l.buckets[key]
	if !ok {
		e = &keyedEntry{bucket: newTokenBucket(l.perMinute, l.burst, l.now)}
		l.buckets[key] = e
	}
	e.lastSeen = now
	return e.bucket
}
