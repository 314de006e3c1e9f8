package router

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	"github.com/hertz-contrib/keyauth"
	"github.com/rs/zerolog"

	"resume-parser-go/internal/ratelimit"
)

// HeaderRequestID 请求ID头
const HeaderRequestID = "X-Request-ID"

const requestIDKey = "request_id"

var errInvalidAPIKey = errors.New("无效的API Key")

// RequestID 透传或生成请求ID，并写回响应头
func RequestID() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		id := string(ctx.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.New().String()
		}
		ctx.Set(requestIDKey, id)
		ctx.Response.Header.Set(HeaderRequestID, id)
		ctx.Next(c)
	}
}

// AccessLog 记录每个请求的方法、路径、状态码与耗时
func AccessLog(l *zerolog.Logger) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		l.Info().
			Str("request_id", ctx.GetString(requestIDKey)).
			Str("method", string(ctx.Method())).
			Str("path", string(ctx.Path())).
			Int("status", ctx.Response.StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("HTTP请求")
	}
}

// APIKeyAuth 校验请求头中的 API Key
func APIKeyAuth(header string, keys []string) app.HandlerFunc {
	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k != "" {
			allowed[k] = struct{}{}
		}
	}
	return keyauth.New(
		keyauth.WithKeyLookUp("header:"+header, ""),
		keyauth.WithValidator(func(_ context.Context, _ *app.RequestContext, key string) (bool, error) {
			if _, ok := allowed[key]; ok {
				return true, nil
			}
			return false, errInvalidAPIKey
		}),
		keyauth.WithErrorHandler(func(_ context.Context, ctx *app.RequestContext, err error) {
			msg := "缺少或无效的API Key"
			if errors.Is(err, errInvalidAPIKey) {
				msg = err.Error()
			}
			ctx.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": msg})
		}),
	)
}

// RateLimit 按客户端限流。keyHeader 为空时按来源IP标识客户端，
// 非空时该请求头必须已由 APIKeyAuth 校验过
func RateLimit(limiter *ratelimit.KeyedLimiter, keyHeader string) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		var client string
		if keyHeader != "" {
			client = string(ctx.GetHeader(keyHeader))
		}
		if client == "" {
			client = ctx.ClientIP()
		}
		ok, wait := limiter.Allow(client)
		if !ok {
			seconds := int(math.Ceil(wait.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			ctx.Response.Header.Set("Retry-After", strconv.Itoa(seconds))
			ctx.AbortWithStatusJSON(consts.StatusTooManyRequests, utils.H{"error": "请求过于频繁，请稍后重试"})
			return
		}
		ctx.Next(c)
	}
}
