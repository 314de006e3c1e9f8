package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/rs/zerolog"

	"resume-parser-go/internal/logger"
)

// EinoPDFTextExtractor 使用 Eino PDF Parser 提取文本
type EinoPDFTextExtractor struct {
	parser  *pdf.PDFParser
	logger  *zerolog.Logger
	timeout time.Duration
}

// EinoPDFOption PDF提取器的配置选项
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithEinoLogger 配置自定义日志记录器
func WithEinoLogger(l *zerolog.Logger) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.logger = l
	}
}

// WithEinoTimeout 配置单次解析超时
func WithEinoTimeout(timeout time.Duration) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

var _ TextExtractor = (*EinoPDFTextExtractor)(nil)

// NewEinoPDFTextExtractor 初始化 Eino PDF 文本提取器
// 默认配置为不按页面分割，以获取整个文档的连续文本
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("创建Eino PDF解析器失败: %w", err)
	}

	extractor := &EinoPDFTextExtractor{
		parser:  p,
		logger:  logger.Named("pdf_extractor"),
		timeout: 30 * time.Second,
	}

	for _, option := range options {
		option(extractor)
	}

	return extractor, nil
}

// ExtractFromFile 从PDF文件提取文本和元数据
func (e *EinoPDFTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("打开PDF文件 %s 失败: %w", filePath, err)
	}
	defer file.Close()

	if fileInfo, err := file.Stat(); err == nil {
		e.logger.Debug().
			Str("file", filePath).
			Float64("size_mb", float64(fileInfo.Size())/1024/1024).
			Msg("开始处理PDF文件")
	}

	return e.ExtractTextFromReader(ctx, file, filePath)
}

// ExtractTextFromReader 从 io.Reader 中提取文本
func (e *EinoPDFTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	extraMeta := map[string]interface{}{
		"source_file_path": uri,
		"extraction_time":  time.Now().Format(time.RFC3339),
	}

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	docs, err := e.parser.Parse(ctx, reader,
		einoParser.WithURI(uri),
		einoParser.WithExtraMeta(extraMeta),
	)

	duration := time.Since(startTime)
	if err != nil {
		return "", extraMeta, fmt.Errorf("eino PDF解析失败 (URI %s): %w", uri, err)
	}
	if len(docs) == 0 {
		return "", extraMeta, fmt.Errorf("eino PDF解析无结果 (URI %s)", uri)
	}

	// 按页返回时逐页拼接
	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(doc.Content)
	}
	fullContent := sb.String()

	finalMetadata := make(map[string]interface{})
	if docs[0].MetaData != nil {
		for k, v := range docs[0].MetaData {
			finalMetadata[k] = v
		}
	}
	for k, v := range extraMeta {
		finalMetadata[k] = v
	}
	finalMetadata["processing_duration_ms"] = duration.Milliseconds()
	finalMetadata["document_count"] = len(docs)
	finalMetadata["text_length"] = len(fullContent)

	e.logger.Debug().
		Str("uri", uri).
		Int("chars", len(fullContent)).
		Dur("duration", duration).
		Msg("PDF文本提取完成")
	return fullContent, finalMetadata, nil
}

// ExtractTextFromBytes 从字节数组提取文本内容
func (e *EinoPDFTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	return e.ExtractTextFromReader(ctx, bytes.NewReader(data), uri)
}
