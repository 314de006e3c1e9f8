package processor

import (
	"github.com/rs/zerolog"

	"resume-parser-go/internal/storage"
)

// ServiceOption 简历服务的可选组件
type ServiceOption func(*ResumeService)

// WithObjectStore 上传原始文件与解析结果到对象存储
func WithObjectStore(store ObjectStore) ServiceOption {
	return func(s *ResumeService) {
		s.objects = store
	}
}

// WithDedupCache 启用MD5去重与解析结果缓存
func WithDedupCache(cache DedupCache) ServiceOption {
	return func(s *ResumeService) {
		s.cache = cache
	}
}

// WithRecordStore 持久化解析记录并写入outbox事件
func WithRecordStore(store RecordStore) ServiceOption {
	return func(s *ResumeService) {
		s.records = store
	}
}

// WithServiceLogger 配置自定义日志记录器
func WithServiceLogger(l *zerolog.Logger) ServiceOption {
	return func(s *ResumeService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStorage 挂载存储管理器中已初始化的组件，nil 组件被跳过
func WithStorage(st *storage.Storage) ServiceOption {
	return func(s *ResumeService) {
		if st == nil {
			return
		}
		if st.MinIO != nil {
			s.objects = st.MinIO
		}
		if st.Redis != nil {
			s.cache = st.Redis
		}
		if st.MySQL != nil {
			s.records = st.MySQL
		}
	}
}
