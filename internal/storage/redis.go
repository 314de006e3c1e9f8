package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/tracing"
)

// ErrNotFound is returned when a key is not found in Redis.
// It wraps the underlying redis.Nil error for abstraction.
var ErrNotFound = redis.Nil

// 为Redis操作定义专用tracer
var redisTracer = otel.Tracer("resume-parser/storage/redis")

// Redis wraps the Redis client
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// FormatKey 用动态部分填充 constants 中的 Key 模板
func FormatKey(keyConstant string, parts ...interface{}) string {
	if len(parts) == 0 {
		return keyConstant
	}
	return fmt.Sprintf(keyConstant, parts...)
}

// NewRedisAdapter creates a new Redis client connection
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		// 重试设置
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// GetMD5ExpireDuration 返回配置的MD5记录过期时间
func (r *Redis) GetMD5ExpireDuration() time.Duration {
	days := 0
	if r.config != nil {
		days = r.config.MD5RecordExpireDays
	}
	if days <= 0 {
		days = 365 // 默认1年
	}
	return time.Duration(days) * 24 * time.Hour
}

// CheckAndSetMD5 检查文件MD5是否已处理过。
// 未处理过时登记 md5 -> fileID 并返回 (false, "")；
// 已处理过时返回 (true, 已有的fileID)
func (r *Redis) CheckAndSetMD5(ctx context.Context, md5Hex string, fileID string) (bool, string, error) {
	ctx, span := redisTracer.Start(ctx, "Redis.CheckAndSetMD5",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.operation", "SETNX"),
		attribute.String("db.redis.key", tracing.SafeRedisKey(constants.KeyFileMD5ToFileID)),
		attribute.String("file.md5", md5Hex),
	)

	if r.Client == nil {
		err := fmt.Errorf("redis client is not initialized")
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, "", err
	}

	setKey := constants.KeyFileMD5Set
	mapKey := FormatKey(constants.KeyFileMD5ToFileID, md5Hex)
	expire := r.GetMD5ExpireDuration()

	pipe := r.Client.TxPipeline()
	setNXCmd := pipe.SetNX(ctx, mapKey, fileID, expire)
	pipe.SAdd(ctx, setKey, md5Hex)
	// 确保集合本身也有过期时间
	pipe.Expire(ctx, setKey, expire)
	if _, err := pipe.Exec(ctx); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, "", fmt.Errorf("执行原子添加MD5操作失败: %w", err)
	}

	if setNXCmd.Val() {
		span.SetAttributes(attribute.Bool("already_exists", false))
		span.SetStatus(codes.Ok, "")
		return false, "", nil
	}

	existingID, err := r.Client.Get(ctx, mapKey).Result()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return true, "", fmt.Errorf("获取已存在的file_id失败: %w", err)
	}
	span.SetAttributes(attribute.Bool("already_exists", true))
	span.SetStatus(codes.Ok, "")
	return true, existingID, nil
}

// RemoveFileMD5 删除MD5登记，用于处理失败后的回滚
func (r *Redis) RemoveFileMD5(ctx context.Context, md5Hex string) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	pipe := r.Client.TxPipeline()
	pipe.SRem(ctx, constants.KeyFileMD5Set, md5Hex)
	pipe.Del(ctx, FormatKey(constants.KeyFileMD5ToFileID, md5Hex))
	_, err := pipe.Exec(ctx)
	return err
}

// CacheParsedResume 缓存解析结果JSON
func (r *Redis) CacheParsedResume(ctx context.Context, fileID string, data []byte) error {
	return r.Set(ctx, FormatKey(constants.KeyParsedResume, fileID), string(data), r.GetMD5ExpireDuration())
}

// GetCachedParsedResume 读取缓存的解析结果，不存在时返回 ErrNotFound
func (r *Redis) GetCachedParsedResume(ctx context.Context, fileID string) ([]byte, error) {
	val, err := r.Get(ctx, FormatKey(constants.KeyParsedResume, fileID))
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

// InvalidateParsedResume 删除缓存的解析结果
func (r *Redis) InvalidateParsedResume(ctx context.Context, fileID string) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	return r.Client.Del(ctx, FormatKey(constants.KeyParsedResume, fileID)).Err()
}

// Get 获取键的值
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis客户端未初始化")
	}

	val, err := r.Client.Get(ctx, key).Result()
	if err != nil {
		// 对于key不存在的情况，统一返回 ErrNotFound
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return val, nil
}

// Set 设置键的值
func (r *Redis) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	return r.Client.Set(ctx, key, value, expiration).Err()
}
