package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore 本地目录中的原始文件与解析结果JSON
type FileStore struct {
	uploadDir string
	outputDir string
}

// NewFileStore 创建本地文件存储并确保目录存在
func NewFileStore(uploadDir, outputDir string) (*FileStore, error) {
	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建目录 %s 失败: %w", dir, err)
		}
	}
	return &FileStore{uploadDir: uploadDir, outputDir: outputDir}, nil
}

// UploadPath 原始文件路径 {uploadDir}/{fileID}{ext}
func (s *FileStore) UploadPath(fileID, ext string) string {
	return filepath.Join(s.uploadDir, fileID+ext)
}

// ParsedJSONPath 解析结果路径 {outputDir}/{fileID}.json
func (s *FileStore) ParsedJSONPath(fileID string) string {
	return filepath.Join(s.outputDir, fileID+".json")
}

// SaveUpload 保存原始文件，返回文件路径
func (s *FileStore) SaveUpload(fileID, ext string, data []byte) (string, error) {
	path := s.UploadPath(fileID, ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("保存上传文件失败: %w", err)
	}
	return path, nil
}

// MarshalParsedJSON 以4空格缩进序列化，非ASCII字符原样输出
func MarshalParsedJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// SaveParsedJSON 写入解析结果JSON，返回文件路径
func (s *FileStore) SaveParsedJSON(fileID string, v interface{}) (string, []byte, error) {
	data, err := MarshalParsedJSON(v)
	if err != nil {
		return "", nil, fmt.Errorf("序列化解析结果失败: %w", err)
	}
	path := s.ParsedJSONPath(fileID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", nil, fmt.Errorf("写入解析结果失败: %w", err)
	}
	return path, data, nil
}

// LoadParsedJSON 读取解析结果JSON，不存在时返回 os.ErrNotExist
func (s *FileStore) LoadParsedJSON(fileID string) ([]byte, error) {
	if !validFileID(fileID) {
		return nil, fmt.Errorf("非法的file_id %q: %w", fileID, os.ErrNotExist)
	}
	data, err := os.ReadFile(s.ParsedJSONPath(fileID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("读取解析结果失败: %w", err)
	}
	return data, nil
}

// validFileID 防止路径穿越
func validFileID(fileID string) bool {
	return fileID != "" && fileID != "." && fileID != ".." &&
		!strings.ContainsAny(fileID, `/\`)
}
