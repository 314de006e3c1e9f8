package router

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/types"
)

type stubService struct{}

func (stubService) Parse(_ context.Context, filename string, r io.Reader) (*types.ParsedResume, error) {
	_, _ = io.Copy(io.Discard, r)
	return &types.ParsedResume{FileName: filename, FileID: "id"}, nil
}

func (stubService) Get(_ context.Context, fileID string) (*types.ParsedResume, error) {
	return nil, processor.NewNotFoundError(fileID)
}

func newEngine(cfg config.ServerConfig) *server.Hertz {
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = "X-API-Key"
	}
	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	RegisterRoutes(h, handler.NewResumeHandler(stubService{}), cfg)
	return h
}

func upload(t *testing.T, h *server.Hertz, path string, headers ...ut.Header) *ut.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", "cv.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF"))
	require.NoError(t, w.Close())

	headers = append(headers, ut.Header{Key: "Content-Type", Value: w.FormDataContentType()})
	return ut.PerformRequest(h.Engine, "POST", path, &ut.Body{Body: body, Len: body.Len()}, headers...)
}

func TestRoutes_Registered(t *testing.T) {
	h := newEngine(config.ServerConfig{})

	assert.Equal(t, http.StatusOK, upload(t, h, "/parse-resume/").Code)
	assert.Equal(t, http.StatusOK, upload(t, h, "/api/v1/resume/parse").Code)
	assert.Equal(t, http.StatusNotFound, ut.PerformRequest(h.Engine, "GET", "/api/v1/resume/unknown", nil).Code)
	assert.Equal(t, http.StatusOK, ut.PerformRequest(h.Engine, "GET", "/health", nil).Code)
}

func TestRequestID(t *testing.T) {
	h := newEngine(config.ServerConfig{})

	resp := ut.PerformRequest(h.Engine, "GET", "/health", nil)
	assert.NotEmpty(t, resp.Header().Get(HeaderRequestID))

	resp = ut.PerformRequest(h.Engine, "GET", "/health", nil, ut.Header{Key: HeaderRequestID, Value: "req-1"})
	assert.Equal(t, "req-1", resp.Header().Get(HeaderRequestID))
}

func TestAPIKeyAuth(t *testing.T) {
	h := newEngine(config.ServerConfig{APIKeys: []string{"secret"}})

	assert.Equal(t, http.StatusUnauthorized, upload(t, h, "/parse-resume/").Code)
	assert.Equal(t, http.StatusUnauthorized, upload(t, h, "/api/v1/resume/parse", ut.Header{Key: "X-API-Key", Value: "wrong"}).Code)
	assert.Equal(t, http.StatusOK, upload(t, h, "/api/v1/resume/parse", ut.Header{Key: "X-API-Key", Value: "secret"}).Code)
	assert.Equal(t, http.StatusOK, ut.PerformRequest(h.Engine, "GET", "/health", nil).Code, "健康检查不鉴权")
}

func TestRateLimit(t *testing.T) {
	h := newEngine(config.ServerConfig{RateLimitPerMinute: 60, RateLimitBurst: 2})

	assert.Equal(t, http.StatusOK, upload(t, h, "/parse-resume/").Code)
	assert.Equal(t, http.StatusOK, upload(t, h, "/api/v1/resume/parse").Code)

	resp := upload(t, h, "/parse-resume/")
	assert.Equal(t, http.StatusTooManyRequests, resp.Code, "两个上传路由共用额度")
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))

}

func TestRateLimit_IgnoresHeaderWithoutAuth(t *testing.T) {
	h := newEngine(config.ServerConfig{RateLimitPerMinute: 1, RateLimitBurst: 1})

	accepted := 0
	for i := 0; i < 20; i++ {
		resp := upload(t, h, "/api/v1/resume/parse", ut.Header{Key: "X-API-Key", Value: fmt.Sprintf("rotating-%d", i)})
		if resp.Code == http.StatusOK {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted, "未启用鉴权时按来源IP限流")
}

func TestRateLimit_PerAPIKey(t *testing.T) {
	h := newEngine(config.ServerConfig{APIKeys: []string{"k1", "k2"}, RateLimitPerMinute: 1, RateLimitBurst: 1})

	assert.Equal(t, http.StatusOK, upload(t, h, "/parse-resume/", ut.Header{Key: "X-API-Key", Value: "k1"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, upload(t, h, "/parse-resume/", ut.Header{Key: "X-API-Key", Value: "k1"}).Code)
	assert.Equal(t, http.StatusOK, upload(t, h, "/parse-resume/", ut.Header{Key: "X-API-Key", Value: "k2"}).Code, "每个有效 key 独立计数")
	assert.Equal(t, http.StatusUnauthorized, upload(t, h, "/parse-resume/", ut.Header{Key: "X-API-Key", Value: "k3"}).Code)
}
