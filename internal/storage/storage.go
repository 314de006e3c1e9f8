package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
)

// Storage 存储管理器，聚合所有存储相关依赖。
// 除 Files 外的组件都是可选的，未配置或初始化失败时为 nil
type Storage struct {
	// 本地文件
	Files *FileStore

	// 对象存储
	MinIO *MinIO

	// 消息队列
	RabbitMQ *RabbitMQ

	// 关系型数据库
	MySQL *MySQL

	// 键值存储
	Redis *Redis
}

// NewStorage 创建存储管理器。外部组件初始化失败只记录警告，服务降级为本地模式
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	log := logger.Named("storage")

	files, err := NewFileStore(cfg.Upload.UploadDir, cfg.Upload.OutputDir)
	if err != nil {
		return nil, err
	}
	storage := &Storage{Files: files}

	if cfg.MinIO.Endpoint != "" {
		minioLogger := logger.Named("minio")
		if cfg.Logger.Level != "debug" && !cfg.MinIO.EnableTestLogging {
			quiet := minioLogger.Level(zerolog.InfoLevel)
			minioLogger = &quiet
		}
		storage.MinIO, err = NewMinIO(&cfg.MinIO, minioLogger)
		if err != nil {
			log.Warn().Err(err).Msg("初始化MinIO失败")
		}
	}

	if cfg.RabbitMQ.URL != "" {
		storage.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			log.Warn().Err(err).Msg("初始化RabbitMQ失败")
		} else if err := storage.RabbitMQ.SetupResumeTopology(); err != nil {
			log.Warn().Err(err).Msg("声明RabbitMQ拓扑失败")
		}
	}

	if cfg.MySQL.Host != "" {
		storage.MySQL, err = NewMySQL(&cfg.MySQL)
		if err != nil {
			log.Warn().Err(err).Msg("初始化MySQL失败")
		}
	}

	if cfg.Redis.Address != "" {
		storage.Redis, err = NewRedisAdapter(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("初始化Redis失败")
		}
	} else {
		log.Debug().Msg("Redis未配置, 跳过初始化")
	}

	log.Info().
		Bool("minio", storage.MinIO != nil).
		Bool("rabbitmq", storage.RabbitMQ != nil).
		Bool("mysql", storage.MySQL != nil).
		Bool("redis", storage.Redis != nil).
		Msg("存储组件初始化完成")
	return storage, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	log := logger.Named("storage")
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			log.Error().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			log.Error().Err(err).Msg("关闭MySQL连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("关闭Redis连接失败")
		}
	}
}
