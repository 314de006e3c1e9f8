package processor

import (
	"context"
	"io"

	"resume-parser-go/internal/storage/models"
	"resume-parser-go/internal/types"
)

// TextReader 从文档字节中读取纯文本，失败时返回空串
type TextReader interface {
	ReadBytes(ctx context.Context, data []byte, filename string) string
}

// FieldExtractor 从纯文本中提取结构化字段
type FieldExtractor interface {
	ExtractBasicFields(text string) types.BasicFields
}

// ObjectStore 原始文件与解析结果的对象存储
type ObjectStore interface {
	UploadResumeFile(ctx context.Context, fileID, fileExt string, reader io.Reader, fileSize int64) (string, string, error)
	UploadParsedJSON(ctx context.Context, fileID string, data []byte) (string, error)
	GetParsedJSON(ctx context.Context, fileID string) ([]byte, error)
}

// DedupCache 基于文件MD5的去重登记与解析结果缓存
type DedupCache interface {
	CheckAndSetMD5(ctx context.Context, md5Hex string, fileID string) (bool, string, error)
	RemoveFileMD5(ctx context.Context, md5Hex string) error
	CacheParsedResume(ctx context.Context, fileID string, data []byte) error
	GetCachedParsedResume(ctx context.Context, fileID string) ([]byte, error)
}

// RecordStore 解析记录的持久化
type RecordStore interface {
	SaveParsedResumeWithOutbox(ctx context.Context, record *models.ParsedResume, msg *models.OutboxMessage) error
	GetParsedResume(ctx context.Context, fileID string) (*models.ParsedResume, error)
	FindParsedResumeByMD5(ctx context.Context, md5Hex string) (*models.ParsedResume, error)
}

// OriginalStore 读取已上传的原始文件
type OriginalStore interface {
	GetResumeFile(ctx context.Context, objectKey string) ([]byte, error)
}

// RecordLister 按 file_id 游标遍历解析记录
type RecordLister interface {
	ListParsedResumes(ctx context.Context, afterFileID string, limit int) ([]models.ParsedResume, error)
	SaveParsedResumeWithOutbox(ctx context.Context, record *models.ParsedResume, msg *models.OutboxMessage) error
}

// ParsedJSONUploader 重新上传解析结果JSON
type ParsedJSONUploader interface {
	UploadParsedJSON(ctx context.Context, fileID string, data []byte) (string, error)
}

// ParsedCacheInvalidator 使缓存的解析结果失效
type ParsedCacheInvalidator interface {
	InvalidateParsedResume(ctx context.Context, fileID string) error
}

// Throttle 阻塞直到允许下一次操作或 ctx 结束
type Throttle interface {
	Wait(ctx context.Context) error
}
