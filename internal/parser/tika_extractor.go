package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"resume-parser-go/internal/logger"
)

// contentTypes Tika 请求使用的 MIME 类型
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// TikaTextExtractor 是基于Apache Tika服务器的文本提取器，PDF与DOCX通用
type TikaTextExtractor struct {
	// Tika服务器地址，例如 http://localhost:9998
	ServerURL string
	// HTTP客户端，可配置超时等参数
	Client *http.Client
	// 是否提取精简元数据
	extractMetadata bool
	logger          *zerolog.Logger
}

// TikaOption 定义配置选项函数
type TikaOption func(*TikaTextExtractor)

// WithMetadata 配置是否额外请求 /meta 接口
func WithMetadata(extract bool) TikaOption {
	return func(e *TikaTextExtractor) {
		e.extractMetadata = extract
	}
}

// WithTikaLogger 配置自定义日志记录器
func WithTikaLogger(l *zerolog.Logger) TikaOption {
	return func(e *TikaTextExtractor) {
		e.logger = l
	}
}

// WithTimeout 配置HTTP客户端超时时间
func WithTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaTextExtractor) {
		if timeout > 0 {
			e.Client.Timeout = timeout
		}
	}
}

// WithHTTPClient 替换HTTP客户端
func WithHTTPClient(client *http.Client) TikaOption {
	return func(e *TikaTextExtractor) {
		if client != nil {
			e.Client = client
		}
	}
}

var _ TextExtractor = (*TikaTextExtractor)(nil)

// NewTikaTextExtractor 创建一个新的Tika文本提取器
func NewTikaTextExtractor(serverURL string, options ...TikaOption) *TikaTextExtractor {
	extractor := &TikaTextExtractor{
		ServerURL: strings.TrimRight(serverURL, "/"),
		Client:    &http.Client{Timeout: 60 * time.Second},
		logger:    logger.Named("tika_extractor"),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// ExtractTextFromReader 从io.Reader提取文本内容
func (e *TikaTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取文档内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri)
}

// ExtractTextFromBytes 通过 PUT /tika 获取纯文本
func (e *TikaTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	startTime := time.Now()

	metadata := map[string]interface{}{
		"extraction_time":  time.Now().Format(time.RFC3339),
		"source_file_path": uri,
	}

	resp, err := e.put(ctx, "/tika", "text/plain", data, uri)
	if err != nil {
		return "", metadata, err
	}
	defer resp.Body.Close()

	textBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", metadata, fmt.Errorf("读取Tika响应失败: %w", err)
	}
	text := string(textBytes)

	metadata["text_length"] = len(text)
	metadata["processing_duration_ms"] = time.Since(startTime).Milliseconds()

	if e.extractMetadata {
		raw, err := e.fetchMetadata(ctx, data, uri)
		if err != nil {
			e.logger.Warn().Err(err).Str("uri", uri).Msg("元数据提取失败, 继续使用基本元数据")
		} else {
			for k, v := range raw {
				if isImportantMetadata(k) {
					metadata[k] = v
				}
			}
		}
	}

	e.logger.Debug().Str("uri", uri).Int("chars", len(text)).Msg("Tika文本提取完成")
	return text, metadata, nil
}

// fetchMetadata 提取文档元数据
func (e *TikaTextExtractor) fetchMetadata(ctx context.Context, data []byte, uri string) (map[string]interface{}, error) {
	resp, err := e.put(ctx, "/meta", "application/json", data, uri)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var metadata map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("解析元数据JSON失败: %w", err)
	}
	return metadata, nil
}

// put 发送文档到Tika，非200状态码视为错误
func (e *TikaTextExtractor) put(ctx context.Context, path, accept string, data []byte, uri string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.ServerURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}

	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(uri))]; ok {
		req.Header.Set("Content-Type", ct)
	}
	req.Header.Set("Accept", accept)
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", filepath.Base(uri))
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
	}
	return resp, nil
}

// 判断元数据字段是否重要
func isImportantMetadata(key string) bool {
	importantKeys := map[string]bool{
		"xmpTPg:NPages":     true,
		"dcterms:created":   true,
		"dcterms:modified":  true,
		"language":          true,
		"dc:title":          true,
		"dc:creator":        true,
		"Content-Type":      true,
		"meta:page-count":   true,
		"meta:word-count":   true,
		"pdf:PDFVersion":    true,
		"pdf:docinfo:title": true,
	}
	return importantKeys[key]
}
