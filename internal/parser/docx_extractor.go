package parser

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lukasjarosch/go-docx"
	"github.com/rs/zerolog"

	"resume-parser-go/internal/logger"
)

// documentXMLPath docx 包中正文所在的文件
const documentXMLPath = "word/document.xml"

// ErrNoDocumentBody docx 包中缺少正文
var ErrNoDocumentBody = errors.New("docx文件缺少正文 word/document.xml")

// DocxTextExtractor 提取 docx 正文段落文本。
// 只读取 body 下的直接段落，表格和文本框中的段落不计入。
type DocxTextExtractor struct {
	logger *zerolog.Logger
}

// DocxOption docx 提取器的配置选项
type DocxOption func(*DocxTextExtractor)

// WithDocxLogger 配置自定义日志记录器
func WithDocxLogger(l *zerolog.Logger) DocxOption {
	return func(e *DocxTextExtractor) {
		e.logger = l
	}
}

var _ TextExtractor = (*DocxTextExtractor)(nil)

// NewDocxTextExtractor 创建 docx 文本提取器
func NewDocxTextExtractor(options ...DocxOption) *DocxTextExtractor {
	e := &DocxTextExtractor{logger: logger.Named("docx_extractor")}
	for _, option := range options {
		option(e)
	}
	return e
}

// ExtractTextFromReader 读取全部内容后解析
func (e *DocxTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取docx内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri)
}

// ExtractTextFromBytes 非空段落按原样以换行拼接
func (e *DocxTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	startTime := time.Now()

	doc, err := docx.OpenBytes(data)
	if err != nil {
		return "", nil, fmt.Errorf("打开docx文件失败 (URI %s): %w", uri, err)
	}
	defer doc.Close()

	body := doc.GetFile(documentXMLPath)
	if len(body) == 0 {
		return "", nil, ErrNoDocumentBody
	}

	paragraphs, err := bodyParagraphs(ctx, body)
	if err != nil {
		return "", nil, fmt.Errorf("解析docx正文失败 (URI %s): %w", uri, err)
	}

	kept := paragraphs[:0]
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	text := strings.Join(kept, "\n")

	metadata := map[string]interface{}{
		"source_file_path":       uri,
		"extraction_time":        time.Now().Format(time.RFC3339),
		"paragraph_count":        len(kept),
		"text_length":            len(text),
		"processing_duration_ms": time.Since(startTime).Milliseconds(),
	}
	e.logger.Debug().Str("uri", uri).Int("paragraphs", len(kept)).Msg("docx文本提取完成")
	return text, metadata, nil
}

// bodyParagraphs 流式解析 document.xml，返回 w:body 直接子段落的文本
func bodyParagraphs(ctx context.Context, body []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))

	var (
		stack      []string
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
		skipDepth  int // 大于0时位于文本框等需要忽略的结构内
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			stack = append(stack, name)

			if skipDepth > 0 {
				skipDepth++
				continue
			}
			switch {
			case name == "p" && parent == "body":
				inPara = true
				current.Reset()
			case !inPara:
			case name == "txbxContent" || name == "Fallback":
				skipDepth = 1
			case name == "t":
				inText = true
			case name == "tab":
				current.WriteString("\t")
			case name == "cr":
				current.WriteString("\n")
			case name == "br":
				if breakType(t) == "" || breakType(t) == "textWrapping" {
					current.WriteString("\n")
				}
			case name == "noBreakHyphen":
				current.WriteString("-")
			}

		case xml.EndElement:
			name := t.Name.Local
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if skipDepth > 0 {
				skipDepth--
				continue
			}
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			switch {
			case name == "t":
				inText = false
			case name == "p" && parent == "body" && inPara:
				paragraphs = append(paragraphs, current.String())
				inPara = false
			}

		case xml.CharData:
			if inPara && inText && skipDepth == 0 {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}

func breakType(el xml.StartElement) string {
	for _, attr := range el.Attr {
		if attr.Name.Local == "type" {
			return attr.Value
		}
	}
	return ""
}
