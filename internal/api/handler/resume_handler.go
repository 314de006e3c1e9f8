package handler

import (
	"context"
	"errors"
	"io"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/rs/zerolog"

	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/types"
)

// ResumeService 简历解析与查询
type ResumeService interface {
	Parse(ctx context.Context, filename string, r io.Reader) (*types.ParsedResume, error)
	Get(ctx context.Context, fileID string) (*types.ParsedResume, error)
}

// ResumeHandler 简历相关的 HTTP 处理器
type ResumeHandler struct {
	service ResumeService
	logger  *zerolog.Logger
}

// NewResumeHandler 创建简历处理器
func NewResumeHandler(service ResumeService) *ResumeHandler {
	return &ResumeHandler{
		service: service,
		logger:  logger.Named("resume_handler"),
	}
}

// ParseResume 解析上传的简历
// POST /parse-resume/, POST /api/v1/resume/parse
// FormData: file
func (h *ResumeHandler) ParseResume(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "未找到上传文件字段 file"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error().Err(err).Str("file_name", fileHeader.Filename).Msg("打开上传文件失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "处理上传文件失败"})
		return
	}
	defer file.Close()

	record, err := h.service.Parse(ctx, fileHeader.Filename, file)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"message": constants.MessageParsedOK,
		"data":    record,
	})
}

// GetResume 查询解析结果
// GET /api/v1/resume/:file_id
func (h *ResumeHandler) GetResume(ctx context.Context, c *app.RequestContext) {
	record, err := h.service.Get(ctx, c.Param("file_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(consts.StatusOK, utils.H{"data": record})
}

// Health 健康检查
func (h *ResumeHandler) Health(_ context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "ok"})
}

// writeError 把服务错误映射为状态码
func (h *ResumeHandler) writeError(c *app.RequestContext, err error) {
	switch {
	case errors.Is(err, processor.ErrUnsupportedFileType):
		c.JSON(consts.StatusBadRequest, utils.H{"error": constants.MessageUnsupportedType})
	case errors.Is(err, processor.ErrFileTooLarge):
		c.JSON(consts.StatusRequestEntityTooLarge, utils.H{"error": err.Error()})
	case errors.Is(err, processor.ErrRecordNotFound):
		c.JSON(consts.StatusNotFound, utils.H{"error": err.Error()})
	default:
		h.logger.Error().Err(err).Str("path", string(c.Path())).Msg("请求处理失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "服务器内部错误"})
	}
}
