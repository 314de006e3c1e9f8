package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/storage/models"
	"resume-parser-go/internal/types"
)

const (
	defaultReparseBatch       = 50
	defaultReparseConcurrency = 4
)

// ReparseStats 一次重新解析的统计
type ReparseStats struct {
	Scanned int64
	Updated int64
	Skipped int64
	Failed  int64
}

// Reparser 用当前的读取器与词表重新解析已入库的原始文件，更新解析记录
type Reparser struct {
	reader      TextReader
	extractor   FieldExtractor
	originals   OriginalStore
	records     RecordLister
	batchSize   int
	concurrency int
	onProcessed func()
	logger      *zerolog.Logger

	// 解析结果的其他副本，存在时一并刷新
	files   *storage.FileStore
	objects ParsedJSONUploader
	cache   ParsedCacheInvalidator

	throttle Throttle
}

// ReparseOption 重新解析任务的可选组件
type ReparseOption func(*Reparser)

// WithReparseFileStore 覆盖本地已存在的 parsed_jsons/{id}.json
func WithReparseFileStore(files *storage.FileStore) ReparseOption {
	return func(r *Reparser) {
		r.files = files
	}
}

// WithReparseObjects 重新上传对象存储中的解析结果JSON
func WithReparseObjects(objects ParsedJSONUploader) ReparseOption {
	return func(r *Reparser) {
		r.objects = objects
	}
}

// WithReparseCache 使缓存的旧解析结果失效
func WithReparseCache(cache ParsedCacheInvalidator) ReparseOption {
	return func(r *Reparser) {
		r.cache = cache
	}
}

// WithReparseThrottle 每下载一个原始文件前等待限流器
func WithReparseThrottle(throttle Throttle) ReparseOption {
	return func(r *Reparser) {
		r.throttle = throttle
	}
}

// NewReparser 创建重新解析任务，batchSize/concurrency 非正时使用默认值
func NewReparser(reader TextReader, extractor FieldExtractor, originals OriginalStore, records RecordLister, batchSize, concurrency int, opts ...ReparseOption) *Reparser {
	if batchSize <= 0 {
		batchSize = defaultReparseBatch
	}
	if concurrency <= 0 {
		concurrency = defaultReparseConcurrency
	}
	r := &Reparser{
		reader:      reader,
		extractor:   extractor,
		originals:   originals,
		records:     records,
		batchSize:   batchSize,
		concurrency: concurrency,
		logger:      logger.Named("reparser"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnProcessed 每处理完一条记录回调一次，回调可能并发执行
func (r *Reparser) OnProcessed(fn func()) *Reparser {
	r.onProcessed = fn
	return r
}

// Run 按 file_id 顺序分批处理全部记录，单条失败只计数不中断
func (r *Reparser) Run(ctx context.Context) (ReparseStats, error) {
	var (
		stats  ReparseStats
		cursor string
	)
	for {
		rows, err := r.records.ListParsedResumes(ctx, cursor, r.batchSize)
		if err != nil {
			return stats, err
		}
		if len(rows) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.concurrency)
		for i := range rows {
			row := &rows[i]
			g.Go(func() error {
				atomic.AddInt64(&stats.Scanned, 1)
				updated, err := r.reparseOne(gctx, row)
				switch {
				case err != nil:
					atomic.AddInt64(&stats.Failed, 1)
					r.logger.Warn().Err(err).Str("file_id", row.FileID).Msg("重新解析失败")
				case updated:
					atomic.AddInt64(&stats.Updated, 1)
				default:
					atomic.AddInt64(&stats.Skipped, 1)
				}
				if r.onProcessed != nil {
					r.onProcessed()
				}
				return nil
			})
		}
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		cursor = rows[len(rows)-1].FileID
		r.logger.Info().Str("cursor", cursor).Int64("scanned", stats.Scanned).Msg("批次处理完成")
		if len(rows) < r.batchSize {
			break
		}
	}
	return stats, nil
}

// reparseOne 没有原始文件对象键的记录被跳过
func (r *Reparser) reparseOne(ctx context.Context, row *models.ParsedResume) (bool, error) {
	if row.ObjectKey == "" {
		return false, nil
	}
	if r.throttle != nil {
		if err := r.throttle.Wait(ctx); err != nil {
			return false, err
		}
	}
	data, err := r.originals.GetResumeFile(ctx, row.ObjectKey)
	if err != nil {
		return false, fmt.Errorf("下载原始文件失败: %w", err)
	}

	ext := strings.ToLower(path.Ext(row.ObjectKey))
	text := r.reader.ReadBytes(ctx, data, row.FileID+ext)
	record := &types.ParsedResume{
		BasicFields: r.extractor.ExtractBasicFields(text),
		FileName:    row.FileName,
		FileID:      row.FileID,
	}

	updated := models.NewParsedResume(record)
	updated.FileMD5 = row.FileMD5
	updated.ObjectKey = row.ObjectKey
	updated.TextLength = len(text)
	updated.ParserVersion = constants.ParserVersion
	if text == "" {
		updated.ProcessingStatus = models.StatusFailed
	}
	if err := r.records.SaveParsedResumeWithOutbox(ctx, updated, nil); err != nil {
		return false, err
	}
	if err := r.refreshCopies(ctx, record); err != nil {
		return false, err
	}
	return true, nil
}

// refreshCopies 让查询链上的本地JSON、缓存和对象存储与新记录一致
func (r *Reparser) refreshCopies(ctx context.Context, record *types.ParsedResume) error {
	if r.files == nil && r.objects == nil && r.cache == nil {
		return nil
	}
	payload, err := storage.MarshalParsedJSON(record)
	if err != nil {
		return fmt.Errorf("序列化解析结果失败: %w", err)
	}

	if r.files != nil {
		// 只覆盖已有文件，不在本机补写其他节点的结果
		_, err := r.files.LoadParsedJSON(record.FileID)
		switch {
		case err == nil:
			if _, _, err := r.files.SaveParsedJSON(record.FileID, record); err != nil {
				return err
			}
		case !errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("读取本地解析结果失败: %w", err)
		}
	}
	if r.objects != nil {
		if _, err := r.objects.UploadParsedJSON(ctx, record.FileID, payload); err != nil {
			return fmt.Errorf("上传解析结果失败: %w", err)
		}
	}
	if r.cache != nil {
		if err := r.cache.InvalidateParsedResume(ctx, record.FileID); err != nil {
			return fmt.Errorf("清除缓存解析结果失败: %w", err)
		}
	}
	return nil
}
