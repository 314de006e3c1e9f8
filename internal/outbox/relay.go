// Package outbox 实现发件箱模式：解析记录与待发布事件在同一事务中落库，
// 由 MessageRelay 轮询 outbox 表并投递到 RabbitMQ
package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/storage/models"
	"resume-parser-go/internal/tracing"
)

const (
	defaultPollingInterval = 5 * time.Second
	defaultBatchSize       = 10
	defaultMaxRetries      = 5
)

// Publisher 发布消息到消息代理
type Publisher interface {
	PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error
}

// MessageRelay 轮询 outbox 表并将消息发布到消息代理
type MessageRelay struct {
	db              *gorm.DB
	publisher       Publisher
	logger          *zerolog.Logger
	pollingInterval time.Duration
	batchSize       int
	maxRetries      int
	done            chan struct{}
	stopOnce        sync.Once
	wg              sync.WaitGroup
	tracer          trace.Tracer
}

// NewMessageRelay 创建一个新的 MessageRelay 实例
func NewMessageRelay(db *gorm.DB, publisher Publisher, cfg config.OutboxConfig) *MessageRelay {
	r := &MessageRelay{
		db:              db,
		publisher:       publisher,
		logger:          logger.Named("outbox_relay"),
		pollingInterval: config.GetDuration(cfg.PollingInterval, defaultPollingInterval),
		batchSize:       cfg.BatchSize,
		maxRetries:      cfg.MaxRetries,
		done:            make(chan struct{}),
		tracer:          otel.Tracer("resume-parser/outbox"),
	}
	if r.batchSize <= 0 {
		r.batchSize = defaultBatchSize
	}
	if r.maxRetries <= 0 {
		r.maxRetries = defaultMaxRetries
	}
	return r
}

// Start 在后台开始轮询，ctx 取消或调用 Stop 后退出
func (r *MessageRelay) Start(ctx context.Context) {
	r.logger.Info().Dur("interval", r.pollingInterval).Int("batch_size", r.batchSize).Msg("MessageRelay starting")
	ticker := time.NewTicker(r.pollingInterval)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				r.logger.Info().Msg("MessageRelay stopped")
				return
			case <-r.done:
				r.logger.Info().Msg("MessageRelay stopped")
				return
			case <-ticker.C:
				if err := r.ProcessPendingMessages(ctx); err != nil {
					r.logger.Error().Err(err).Msg("处理待发布消息失败")
				}
			}
		}
	}()
}

// Stop 停止轮询并等待当前批次完成
func (r *MessageRelay) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
}

// ProcessPendingMessages 获取并处理一批待发布消息
func (r *MessageRelay) ProcessPendingMessages(ctx context.Context) error {
	var messages []models.OutboxMessage

	// 空轮询不创建span
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	// `FOR UPDATE SKIP LOCKED` 让多个实例并行轮询时互不阻塞
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", models.OutboxStatusPending).
		Order("created_at asc").
		Limit(r.batchSize).
		Find(&messages).Error
	if err != nil {
		return err
	}

	if len(messages) == 0 {
		return tx.Commit().Error
	}

	ctx, span := r.tracer.Start(ctx, "outbox.ProcessBatch",
		trace.WithAttributes(
			attribute.Int("messaging.batch.message_count", len(messages)),
		),
	)
	defer span.End()

	r.logger.Debug().Int("count", len(messages)).Msg("获取到待发布消息")

	for i := range messages {
		msg := &messages[i]
		r.publish(ctx, msg)

		// 更新失败时整个事务回滚，消息在下一次轮询中被重新拾取
		if err := tx.Save(msg).Error; err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeDB)
			return err
		}
	}

	return tx.Commit().Error
}

// publish 投递单条消息并根据结果更新状态字段
func (r *MessageRelay) publish(ctx context.Context, msg *models.OutboxMessage) {
	err := r.publisher.PublishMessage(ctx, msg.TargetExchange, msg.TargetRoutingKey, []byte(msg.Payload), true)
	if err != nil {
		msg.RetryCount++
		msg.ErrorMessage = err.Error()
		if msg.RetryCount >= r.maxRetries {
			msg.Status = models.OutboxStatusFailed
		}
		r.logger.Warn().Err(err).
			Uint64("message_id", msg.ID).
			Str("aggregate_id", msg.AggregateID).
			Int("retries", msg.RetryCount).
			Msg("发布outbox消息失败")
		return
	}

	now := time.Now()
	msg.Status = models.OutboxStatusSent
	msg.ProcessedAt = &now
	msg.ErrorMessage = ""
}
