package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/tracing"
)

var tracer = otel.Tracer("resume-parser/parser")

// DocumentReader 按扩展名选择文本提取器。
// 读取失败只记录日志并返回空文本，不向调用方传播错误
type DocumentReader struct {
	extractors map[string]TextExtractor
	logger     *zerolog.Logger
}

// ReaderOption 文档读取器的配置选项
type ReaderOption func(*DocumentReader)

// WithExtractor 为扩展名(如 ".pdf")注册提取器
func WithExtractor(ext string, e TextExtractor) ReaderOption {
	return func(r *DocumentReader) {
		r.extractors[strings.ToLower(ext)] = e
	}
}

// WithReaderLogger 配置自定义日志记录器
func WithReaderLogger(l *zerolog.Logger) ReaderOption {
	return func(r *DocumentReader) {
		r.logger = l
	}
}

// NewDocumentReader 创建文档读取器
func NewDocumentReader(options ...ReaderOption) *DocumentReader {
	r := &DocumentReader{
		extractors: make(map[string]TextExtractor),
		logger:     logger.Named("document_reader"),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// BuildDocumentReader 根据配置构建文档读取器：
// pdf_backend 为 tika 且配置了 tika_url 时 PDF 与 DOCX 都交给 Tika，
// 否则 PDF 使用 Eino，DOCX 本地解析
func BuildDocumentReader(ctx context.Context, cfg config.ReaderConfig) (*DocumentReader, error) {
	timeout := time.Duration(cfg.Timeout) * time.Second

	if cfg.PDFBackend == "tika" && cfg.TikaURL != "" {
		tika := NewTikaTextExtractor(cfg.TikaURL, WithTimeout(timeout), WithMetadata(true))
		logger.Info().Str("tika_url", cfg.TikaURL).Msg("使用Tika文档解析器")
		return NewDocumentReader(
			WithExtractor(".pdf", tika),
			WithExtractor(".docx", tika),
		), nil
	}

	pdfExtractor, err := NewEinoPDFTextExtractor(ctx, WithEinoTimeout(timeout))
	if err != nil {
		return nil, err
	}
	logger.Info().Msg("使用Eino PDF解析器")
	return NewDocumentReader(
		WithExtractor(".pdf", pdfExtractor),
		WithExtractor(".docx", NewDocxTextExtractor()),
	), nil
}

// Supports 判断扩展名是否有对应的提取器
func (r *DocumentReader) Supports(ext string) bool {
	_, ok := r.extractors[strings.ToLower(ext)]
	return ok
}

// ReadFile 读取本地文件的文本
func (r *DocumentReader) ReadFile(ctx context.Context, path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Error().Err(err).Str("path", path).Msg("读取文档文件失败")
		return ""
	}
	return r.ReadBytes(ctx, data, path)
}

// ReadBytes 按 filename 的扩展名提取文本
func (r *DocumentReader) ReadBytes(ctx context.Context, data []byte, filename string) string {
	text, err := r.readBytes(ctx, data, filename)
	if err != nil {
		r.logger.Error().Err(err).Str("file", filename).Msg("文档文本提取失败, 返回空文本")
		return ""
	}
	return text
}

func (r *DocumentReader) readBytes(ctx context.Context, data []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ctx, span := tracer.Start(ctx, "DocumentReader.ReadBytes")
	defer span.End()
	span.SetAttributes(
		attribute.String("document.extension", ext),
		attribute.Int("document.size", len(data)),
	)

	extractor, ok := r.extractors[ext]
	if !ok {
		err := fmt.Errorf("不支持的文档类型: %q", ext)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return "", err
	}

	text, _, err := extractor.ExtractTextFromBytes(ctx, data, filename)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDocument)
		return "", err
	}
	span.SetAttributes(attribute.Int("document.text_length", len(text)))
	return text, nil
}
