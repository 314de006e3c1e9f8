package parser

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/config"
)

// stubExtractor 返回固定结果的提取器
type stubExtractor struct {
	text  string
	err   error
	calls int
}

func (s *stubExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	data, _ := io.ReadAll(reader)
	return s.ExtractTextFromBytes(ctx, data, uri)
}

func (s *stubExtractor) ExtractTextFromBytes(_ context.Context, _ []byte, _ string) (string, map[string]interface{}, error) {
	s.calls++
	return s.text, nil, s.err
}

func TestDocumentReader_Dispatch(t *testing.T) {
	pdf := &stubExtractor{text: "pdf text"}
	docx := &stubExtractor{text: "docx text"}
	r := NewDocumentReader(WithExtractor(".PDF", pdf), WithExtractor(".docx", docx))

	assert.True(t, r.Supports(".pdf"))
	assert.True(t, r.Supports(".DOCX"))
	assert.False(t, r.Supports(".txt"))

	assert.Equal(t, "pdf text", r.ReadBytes(context.Background(), []byte("x"), "Resume.Pdf"))
	assert.Equal(t, "docx text", r.ReadBytes(context.Background(), []byte("x"), "resume.docx"))
	assert.Equal(t, 1, pdf.calls)
	assert.Equal(t, 1, docx.calls)
}

func TestDocumentReader_FailuresYieldEmptyText(t *testing.T) {
	failing := &stubExtractor{text: "partial", err: errors.New("损坏的文件")}
	r := NewDocumentReader(WithExtractor(".pdf", failing))

	assert.Empty(t, r.ReadBytes(context.Background(), []byte("x"), "broken.pdf"))
	assert.Empty(t, r.ReadBytes(context.Background(), []byte("x"), "notes.txt"), "不支持的扩展名")
	assert.Empty(t, r.ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")))
}

func TestDocumentReader_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.docx")
	require.NoError(t, os.WriteFile(path, buildDocx(t, para("Jane Doe")+para("Experience")), 0644))

	r := NewDocumentReader(WithExtractor(".docx", NewDocxTextExtractor()))
	assert.Equal(t, "Jane Doe\nExperience", r.ReadFile(context.Background(), path))
}

func TestBuildDocumentReader_Tika(t *testing.T) {
	server := newTikaServer(t, "from tika")
	defer server.Close()

	r, err := BuildDocumentReader(context.Background(), config.ReaderConfig{PDFBackend: "tika", TikaURL: server.URL, Timeout: 5})
	require.NoError(t, err)
	assert.True(t, r.Supports(".pdf"))
	assert.True(t, r.Supports(".docx"))
	assert.Contains(t, r.ReadBytes(context.Background(), []byte("x"), "cv.docx"), "from tika")
}

func TestBuildDocumentReader_Default(t *testing.T) {
	r, err := BuildDocumentReader(context.Background(), config.ReaderConfig{PDFBackend: "eino", Timeout: 5})
	require.NoError(t, err)
	assert.True(t, r.Supports(".pdf"))
	assert.True(t, r.Supports(".docx"))
}
