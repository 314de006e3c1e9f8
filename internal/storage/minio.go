package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/tracing"
)

// ErrObjectNotFound 对象不存在
var ErrObjectNotFound = errors.New("对象不存在")

var minioTracer = otel.Tracer("resume-parser/storage/minio")

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	// UploadResumeFile 上传原始简历，返回对象键与文件MD5
	UploadResumeFile(ctx context.Context, fileID, fileExt string, reader io.Reader, fileSize int64) (string, string, error)
	// UploadParsedJSON 上传解析结果JSON
	UploadParsedJSON(ctx context.Context, fileID string, data []byte) (string, error)
	// GetParsedJSON 读取解析结果JSON
	GetParsedJSON(ctx context.Context, fileID string) ([]byte, error)
	// GetResumeFile 读取原始简历
	GetResumeFile(ctx context.Context, objectKey string) ([]byte, error)
}

// 确保MinIO实现了ObjectStorage接口
var _ ObjectStorage = (*MinIO)(nil)

// MinIO 提供对象存储功能
type MinIO struct {
	client         *minio.Client
	cfg            *config.MinIOConfig
	originalBucket string
	parsedBucket   string
	logger         *zerolog.Logger
}

// ResumeObjectKey 原始简历对象键，例如 resume/{fileID}/original.pdf
func ResumeObjectKey(fileID, fileExt string) string {
	return fmt.Sprintf("resume/%s/original%s", fileID, fileExt)
}

// ParsedJSONObjectKey 解析结果对象键，例如 resume/{fileID}/parsed.json
func ParsedJSONObjectKey(fileID string) string {
	return fmt.Sprintf("resume/%s/parsed.json", fileID)
}

// NewMinIO 创建MinIO客户端并确保存储桶存在
func NewMinIO(cfg *config.MinIOConfig, logger *zerolog.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	logger.Debug().
		Str("endpoint", cfg.Endpoint).
		Str("originals_bucket", cfg.OriginalsBucket).
		Str("parsed_bucket", cfg.ParsedJSONBucket).
		Msg("初始化MinIO客户端")

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client:         client,
		cfg:            cfg,
		originalBucket: cfg.OriginalsBucket,
		parsedBucket:   cfg.ParsedJSONBucket,
		logger:         logger,
	}

	ctx := context.Background()
	if err := m.ensureBucketExists(ctx, m.originalBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保原始简历存储桶 %s 存在失败: %w", m.originalBucket, err)
	}
	if err := m.ensureBucketExists(ctx, m.parsedBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保解析结果存储桶 %s 存在失败: %w", m.parsedBucket, err)
	}

	// 设置生命周期规则
	if cfg.OriginalFileExpireDays > 0 || cfg.ParsedJSONExpireDays > 0 {
		if err := m.setupLifecycleRules(ctx); err != nil {
			logger.Warn().Err(err).Msg("设置MinIO生命周期规则失败")
		}
	}

	logger.Info().Str("endpoint", cfg.Endpoint).Msg("MinIO客户端初始化成功")
	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(ctx context.Context, bucketName, location string) error {
	exists, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
	}
	m.logger.Info().Str("bucket", bucketName).Msg("存储桶创建成功")
	return nil
}

// setupLifecycleRules 设置对象生命周期规则
func (m *MinIO) setupLifecycleRules(ctx context.Context) error {
	if m.cfg.OriginalFileExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.originalBucket, "expire-originals", m.cfg.OriginalFileExpireDays); err != nil {
			return fmt.Errorf("为原始文件存储桶 %s 设置生命周期失败: %w", m.originalBucket, err)
		}
	}
	if m.cfg.ParsedJSONExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.parsedBucket, "expire-parsed-json", m.cfg.ParsedJSONExpireDays); err != nil {
			return fmt.Errorf("为解析结果存储桶 %s 设置生命周期失败: %w", m.parsedBucket, err)
		}
	}
	return nil
}

// lifecycleConfig 单条过期规则
func lifecycleConfig(ruleID string, expiryDays int) *lifecycle.Configuration {
	cfg := lifecycle.NewConfiguration()
	cfg.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}
	return cfg
}

// setupBucketLifecycle 为指定存储桶设置生命周期规则
func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	if err := m.client.SetBucketLifecycle(ctx, bucketName, lifecycleConfig(ruleID, expiryDays)); err != nil {
		return err
	}
	m.logger.Debug().Str("bucket", bucketName).Int("expiry_days", expiryDays).Msg("已设置生命周期规则")
	return nil
}

// UploadResumeFile 流式上传原始简历并同时计算MD5
// 返回: objectKey, md5Hex, error
func (m *MinIO) UploadResumeFile(ctx context.Context, fileID, fileExt string, reader io.Reader, fileSize int64) (string, string, error) {
	ctx, span := minioTracer.Start(ctx, "MinIO.UploadResumeFile")
	defer span.End()

	objectName := ResumeObjectKey(fileID, fileExt)
	span.SetAttributes(
		attribute.String("minio.bucket", m.originalBucket),
		attribute.String("minio.object", objectName),
		attribute.Int64("file.size", fileSize),
	)

	md5Hash := md5.New()
	teeReader := io.TeeReader(reader, md5Hash)

	info, err := m.client.PutObject(ctx, m.originalBucket, objectName, teeReader,
		fileSize, minio.PutObjectOptions{ContentType: getContentType(fileExt)})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return "", "", fmt.Errorf("上传文件到MinIO失败: %w", err)
	}

	md5Hex := hex.EncodeToString(md5Hash.Sum(nil))
	if m.cfg.EnableTestLogging {
		m.logger.Debug().Str("object", objectName).Str("etag", info.ETag).Int64("size", info.Size).Str("md5", md5Hex).Msg("原始简历上传成功")
	}
	return objectName, md5Hex, nil
}

// UploadParsedJSON 上传解析结果JSON
func (m *MinIO) UploadParsedJSON(ctx context.Context, fileID string, data []byte) (string, error) {
	ctx, span := minioTracer.Start(ctx, "MinIO.UploadParsedJSON")
	defer span.End()

	objectName := ParsedJSONObjectKey(fileID)
	span.SetAttributes(
		attribute.String("minio.bucket", m.parsedBucket),
		attribute.String("minio.object", objectName),
	)

	_, err := m.client.PutObject(ctx, m.parsedBucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return "", fmt.Errorf("上传解析结果 %s 到存储桶 %s 失败: %w", objectName, m.parsedBucket, err)
	}
	return objectName, nil
}

// GetParsedJSON 读取解析结果JSON，不存在时返回 ErrObjectNotFound
func (m *MinIO) GetParsedJSON(ctx context.Context, fileID string) ([]byte, error) {
	return m.download(ctx, m.parsedBucket, ParsedJSONObjectKey(fileID))
}

// GetResumeFile 从MinIO获取原始简历文件
func (m *MinIO) GetResumeFile(ctx context.Context, objectKey string) ([]byte, error) {
	return m.download(ctx, m.originalBucket, objectKey)
}

func (m *MinIO) download(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	ctx, span := minioTracer.Start(ctx, "MinIO.Download")
	defer span.End()
	span.SetAttributes(
		attribute.String("minio.bucket", bucketName),
		attribute.String("minio.object", objectName),
	)

	obj, err := m.client.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", bucketName, objectName, err)
	}
	defer obj.Close()

	// GetObject 是惰性的，Stat 才会暴露对象不存在
	if _, err := obj.Stat(); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucketName, objectName)
		}
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return nil, fmt.Errorf("获取对象 %s/%s 状态失败: %w", bucketName, objectName, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return nil, fmt.Errorf("读取对象 %s/%s 数据失败: %w", bucketName, objectName, err)
	}
	return data, nil
}

// 获取内容类型
func getContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
