package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock 手动推进的时钟
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTokenBucket_Allow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	tb := newTokenBucket(60, 2, clock.Now)

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "容量耗尽")
	assert.Equal(t, time.Second, tb.RetryAfter())

	clock.Advance(time.Second)
	assert.True(t, tb.Allow(), "每秒补充一个令牌")
	assert.False(t, tb.Allow())

	clock.Advance(time.Hour)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "补充不超过容量")
}

func TestNewTokenBucket_DefaultCapacity(t *testing.T) {
	assert.Equal(t, 30.0, NewTokenBucket(60, 0).capacity)
	assert.Equal(t, 1.0, NewTokenBucket(1, 0).capacity)
	assert.Equal(t, 1.0/60.0, NewTokenBucket(0, 0).rate)
}

func TestTokenBucket_WaitCancelled(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tb.Wait(ctx), context.DeadlineExceeded)
}

func TestKeyedLimiter_PerKey(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	l := NewKeyedLimiter(60, 1, time.Minute)
	l.now = clock.Now

	ok, _ := l.Allow("client-a")
	assert.True(t, ok)
	ok, wait := l.Allow("client-a")
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)

	ok, _ = l.Allow("client-b")
	assert.True(t, ok, "不同客户端互不影响")
	assert.Equal(t, 2, l.Len())
}

func TestKeyedLimiter_EvictsIdle(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	l := NewKeyedLimiter(60, 1, time.Minute)
	l.now = clock.Now
	l.lastCleanup = clock.Now()

	l.Allow("a")
	l.Allow("b")
	clock.Advance(30 * time.Second)
	l.Allow("b")
	clock.Advance(40 * time.Second)
	l.Allow("c")

	assert.Equal(t, 2, l.Len(), "a 超过空闲时间被回收")
}
