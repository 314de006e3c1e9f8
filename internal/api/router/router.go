package router

import (
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/ratelimit"
)

// RegisterRoutes 注册中间件与 API 路由
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler, cfg config.ServerConfig) {
	h.Use(RequestID(), AccessLog(logger.Named("http")))

	h.GET("/health", resumeHandler.Health)

	var (
		guards   []app.HandlerFunc
		limitKey string
	)
	if len(cfg.APIKeys) > 0 {
		guards = append(guards, APIKeyAuth(cfg.APIKeyHeader, cfg.APIKeys))
		// 只有通过校验的 key 才能作为限流标识
		limitKey = cfg.APIKeyHeader
	}

	// 两个上传路由共用同一个限流器
	parse := []app.HandlerFunc{resumeHandler.ParseResume}
	if cfg.RateLimitPerMinute > 0 {
		limiter := ratelimit.NewKeyedLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, 10*time.Minute)
		parse = append([]app.HandlerFunc{RateLimit(limiter, limitKey)}, parse...)
	}

	// 兼容原有的上传路由
	legacy := h.Group("", guards...)
	legacy.POST("/parse-resume/", parse...)

	api := h.Group("/api/v1", guards...)
	{
		api.POST("/resume/parse", parse...)
		api.GET("/resume/:file_id", resumeHandler.GetResume)
	}
}
