package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEinoPDFTextExtractor(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err, "创建PDF提取器不应返回错误")
	require.NotNil(t, extractor.parser, "PDF提取器内部的parser不应为nil")
	require.NotNil(t, extractor.logger, "PDF提取器应该有默认的logger")
	assert.Equal(t, 30*time.Second, extractor.timeout)

	// 测试带自定义选项的创建
	custom := zerolog.Nop()
	withOptions, err := NewEinoPDFTextExtractor(ctx, WithEinoLogger(&custom), WithEinoTimeout(3*time.Second))
	require.NoError(t, err)
	assert.Same(t, &custom, withOptions.logger, "应该使用提供的自定义logger")
	assert.Equal(t, 3*time.Second, withOptions.timeout)
}

func TestEinoPDFTextExtractor_InvalidPDF(t *testing.T) {
	extractor, err := NewEinoPDFTextExtractor(context.Background())
	require.NoError(t, err)

	_, _, err = extractor.ExtractTextFromBytes(context.Background(), []byte("definitely not a pdf"), "bad.pdf")
	assert.Error(t, err)

	_, _, err = extractor.ExtractFromFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestEinoPDFTextExtractor_FromFile(t *testing.T) {
	// 仓库不附带样例PDF，放置 testdata/resume.pdf 后运行
	testPDFs := []string{
		"testdata/resume.pdf",
		"../../testdata/resume.pdf",
	}

	var filePath string
	for _, path := range testPDFs {
		if _, err := os.Stat(path); err == nil {
			filePath = path
			break
		}
	}
	if filePath == "" {
		t.Skip("找不到测试PDF文件，跳过测试")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err)

	text, metadata, err := extractor.ExtractFromFile(ctx, filePath)
	require.NoError(t, err, "PDF提取不应返回错误")
	assert.NotEmpty(t, text, "提取的文本内容不应为空")
	assert.Equal(t, filePath, metadata["source_file_path"])
	assert.Equal(t, len(text), metadata["text_length"])
}
