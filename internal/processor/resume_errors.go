package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrUnsupportedFileType = errors.New("不支持的文件类型")
	ErrFileTooLarge        = errors.New("文件超过大小限制")
	ErrStorePersist        = errors.New("保存解析结果失败")
	ErrRecordNotFound      = errors.New("解析记录不存在")
)

// ParseError 包含详细错误信息的自定义错误
type ParseError struct {
	FileID  string
	Op      string
	BaseErr error
	Detail  string
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, FileID:%s): %s", e.BaseErr, e.Op, e.FileID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, FileID:%s)", e.BaseErr, e.Op, e.FileID)
}

func (e *ParseError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ParseError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewUnsupportedTypeError(filename, ext string) error {
	return &ParseError{
		Op:      "validate",
		BaseErr: ErrUnsupportedFileType,
		Detail:  fmt.Sprintf("文件 %q 的扩展名 %q 不在允许列表中", filename, ext),
	}
}

func NewFileTooLargeError(filename string, limit int64) error {
	return &ParseError{
		Op:      "validate",
		BaseErr: ErrFileTooLarge,
		Detail:  fmt.Sprintf("文件 %q 超过 %d 字节", filename, limit),
	}
}

func NewStoreError(fileID, op string, err error) error {
	return &ParseError{
		FileID:  fileID,
		Op:      op,
		BaseErr: ErrStorePersist,
		Detail:  err.Error(),
	}
}

func NewNotFoundError(fileID string) error {
	return &ParseError{
		FileID:  fileID,
		Op:      "get",
		BaseErr: ErrRecordNotFound,
	}
}
