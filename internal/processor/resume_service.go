package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/storage/models"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
	"resume-parser-go/pkg/utils"
)

var tracer = otel.Tracer("resume-parser/processor")

// ResumeService 接收上传的简历，完成 读取文本 -> 字段提取 -> 落盘/持久化 的流程。
// 本地 FileStore 必须提供，对象存储、去重缓存、数据库是可选组件
type ResumeService struct {
	cfg       *config.Config
	reader    TextReader
	extractor FieldExtractor
	files     *storage.FileStore
	objects   ObjectStore
	cache     DedupCache
	records   RecordStore
	logger    *zerolog.Logger

	publishEvents bool
}

// NewResumeService 创建简历服务
func NewResumeService(cfg *config.Config, reader TextReader, extractor FieldExtractor, files *storage.FileStore, opts ...ServiceOption) (*ResumeService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	if reader == nil || extractor == nil {
		return nil, fmt.Errorf("文档读取器和字段提取器不能为空")
	}
	if files == nil {
		return nil, fmt.Errorf("本地文件存储不能为空")
	}

	s := &ResumeService{
		cfg:           cfg,
		reader:        reader,
		extractor:     extractor,
		files:         files,
		logger:        logger.Named("resume_service"),
		publishEvents: cfg.RabbitMQ.URL != "",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Parse 处理一份上传的简历
func (s *ResumeService) Parse(ctx context.Context, filename string, r io.Reader) (*types.ParsedResume, error) {
	ctx, span := tracer.Start(ctx, "ResumeService.Parse")
	defer span.End()

	ext := strings.ToLower(utils.SplitExt(filename))
	span.SetAttributes(attribute.String("file.extension", ext))

	if !s.cfg.IsAllowedExtension(ext) {
		err := NewUnsupportedTypeError(filename, ext)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	limit := s.cfg.MaxFileSize()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeFileSystem)
		return nil, fmt.Errorf("读取上传文件失败: %w", err)
	}
	if int64(len(data)) > limit {
		err := NewFileTooLargeError(filename, limit)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}
	span.SetAttributes(attribute.Int("file.size", len(data)))

	id, err := uuid.NewV7()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, fmt.Errorf("生成UUIDv7失败: %w", err)
	}
	fileID := id.String()
	md5Hex := utils.CalculateMD5(data)
	span.SetAttributes(attribute.String("resume.file_id", fileID))

	log := s.logger.With().Str("file_id", fileID).Str("file_name", filename).Logger()

	// 基于MD5去重，已处理过的文件直接返回已有记录
	registered := false
	if s.cfg.Upload.EnableDedup && s.cache != nil {
		exists, existingID, err := s.cache.CheckAndSetMD5(ctx, md5Hex, fileID)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("MD5去重检查失败, 继续处理")
		case exists && existingID != "":
			if record, getErr := s.Get(ctx, existingID); getErr == nil {
				log.Info().Str("existing_file_id", existingID).Msg("文件已处理过, 返回已有解析结果")
				span.SetAttributes(attribute.Bool("resume.duplicate", true))
				return record, nil
			}
			log.Warn().Str("existing_file_id", existingID).Msg("重复文件的解析结果不可用, 重新解析")
		default:
			registered = true
		}
	} else if s.cfg.Upload.EnableDedup && s.records != nil {
		// 没有Redis时退回到数据库按MD5查重
		row, err := s.records.FindParsedResumeByMD5(ctx, md5Hex)
		switch {
		case err == nil:
			log.Info().Str("existing_file_id", row.FileID).Msg("文件已处理过, 返回已有解析结果")
			span.SetAttributes(attribute.Bool("resume.duplicate", true))
			return row.ToParsedResume()
		case !errors.Is(err, storage.ErrRecordNotFound):
			log.Warn().Err(err).Msg("按MD5查询解析记录失败, 继续处理")
		}
	}

	record, err := s.process(ctx, fileID, filename, ext, md5Hex, data, &log)
	if err != nil {
		if registered {
			if rmErr := s.cache.RemoveFileMD5(ctx, md5Hex); rmErr != nil {
				log.Warn().Err(rmErr).Msg("回滚MD5登记失败")
			}
		}
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return record, nil
}

// process 保存原始文件、提取字段并写入各存储
func (s *ResumeService) process(ctx context.Context, fileID, filename, ext, md5Hex string, data []byte, log *zerolog.Logger) (*types.ParsedResume, error) {
	start := time.Now()

	if s.cfg.Upload.SaveLocal {
		if _, err := s.files.SaveUpload(fileID, ext, data); err != nil {
			return nil, NewStoreError(fileID, "save_upload", err)
		}
	}

	var objectKey string
	if s.objects != nil {
		key, _, err := s.objects.UploadResumeFile(ctx, fileID, ext, bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, NewStoreError(fileID, "upload_original", err)
		}
		objectKey = key
	}

	// 读取失败时文本为空，得到一份空记录
	text := s.reader.ReadBytes(ctx, data, fileID+ext)
	record := &types.ParsedResume{
		BasicFields: s.extractor.ExtractBasicFields(text),
		FileName:    filename,
		FileID:      fileID,
	}

	payload, err := storage.MarshalParsedJSON(record)
	if err != nil {
		return nil, NewStoreError(fileID, "marshal", err)
	}
	if s.cfg.Upload.SaveLocal {
		if _, _, err := s.files.SaveParsedJSON(fileID, record); err != nil {
			return nil, NewStoreError(fileID, "save_json", err)
		}
	}
	if s.objects != nil {
		if _, err := s.objects.UploadParsedJSON(ctx, fileID, payload); err != nil {
			return nil, NewStoreError(fileID, "upload_json", err)
		}
	}

	if s.records != nil {
		row := models.NewParsedResume(record)
		row.FileMD5 = md5Hex
		row.ObjectKey = objectKey
		row.TextLength = len(text)
		row.ParserVersion = constants.ParserVersion

		var msg *models.OutboxMessage
		if s.publishEvents {
			msg, err = s.parsedEvent(record, md5Hex, objectKey, len(text))
			if err != nil {
				return nil, NewStoreError(fileID, "build_event", err)
			}
		}
		if err := s.records.SaveParsedResumeWithOutbox(ctx, row, msg); err != nil {
			return nil, NewStoreError(fileID, "persist", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.CacheParsedResume(ctx, fileID, payload); err != nil {
			log.Warn().Err(err).Msg("缓存解析结果失败")
		}
	}

	log.Info().
		Int("text_length", len(text)).
		Int("skills", len(record.Skills)).
		Str("email", tracing.MaskPII(record.Email)).
		Dur("duration", time.Since(start)).
		Msg("简历解析完成")
	return record, nil
}

// parsedEvent 构建 resume.parsed outbox 消息
func (s *ResumeService) parsedEvent(record *types.ParsedResume, md5Hex, objectKey string, textLength int) (*models.OutboxMessage, error) {
	skills := record.Skills
	if skills == nil {
		skills = []string{}
	}
	event := types.ResumeParsedEvent{
		FileID:     record.FileID,
		FileName:   record.FileName,
		MD5:        md5Hex,
		Name:       record.Name,
		Skills:     skills,
		ObjectKey:  objectKey,
		ParsedAt:   time.Now().Unix(),
		TextLength: textLength,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return &models.OutboxMessage{
		AggregateType:    constants.AggregateTypeResume,
		AggregateID:      record.FileID,
		EventType:        constants.EventTypeResumeParsed,
		Payload:          string(payload),
		TargetExchange:   s.cfg.RabbitMQ.ResumeEventsExchange,
		TargetRoutingKey: s.cfg.RabbitMQ.ParsedRoutingKey,
		Status:           models.OutboxStatusPending,
	}, nil
}

// Get 按 file_id 查询解析结果：本地JSON -> Redis缓存 -> MySQL -> MinIO
func (s *ResumeService) Get(ctx context.Context, fileID string) (*types.ParsedResume, error) {
	ctx, span := tracer.Start(ctx, "ResumeService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("resume.file_id", fileID))

	if fileID == "" {
		return nil, NewNotFoundError(fileID)
	}

	if data, err := s.files.LoadParsedJSON(fileID); err == nil {
		return decodeRecord(data)
	} else if !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn().Err(err).Str("file_id", fileID).Msg("读取本地解析结果失败")
	}

	if s.cache != nil {
		if data, err := s.cache.GetCachedParsedResume(ctx, fileID); err == nil {
			return decodeRecord(data)
		} else if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Str("file_id", fileID).Msg("读取缓存解析结果失败")
		}
	}

	if s.records != nil {
		if row, err := s.records.GetParsedResume(ctx, fileID); err == nil {
			return row.ToParsedResume()
		} else if !errors.Is(err, storage.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Str("file_id", fileID).Msg("查询解析记录失败")
		}
	}

	if s.objects != nil {
		if data, err := s.objects.GetParsedJSON(ctx, fileID); err == nil {
			return decodeRecord(data)
		} else if !errors.Is(err, storage.ErrObjectNotFound) {
			s.logger.Warn().Err(err).Str("file_id", fileID).Msg("读取对象存储解析结果失败")
		}
	}

	err := NewNotFoundError(fileID)
	span.SetAttributes(attribute.Bool("resume.found", false))
	return nil, err
}

func decodeRecord(data []byte) (*types.ParsedResume, error) {
	var record types.ParsedResume
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("解析结果JSON格式错误: %w", err)
	}
	if record.Skills == nil {
		record.Skills = []string{}
	}
	return &record, nil
}
