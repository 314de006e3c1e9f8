package parser

import (
	"context"
	"io"
)

// TextExtractor 从单一格式的文档中提取纯文本
type TextExtractor interface {
	// ExtractTextFromReader 从io.Reader提取文本和元数据
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error)

	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error)
}
