package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/storage/models"
)

type fakePublisher struct {
	err      error
	exchange string
	key      string
	body     string
}

func (f *fakePublisher) PublishMessage(_ context.Context, exchangeName, routingKey string, message []byte, persistent bool) error {
	f.exchange = exchangeName
	f.key = routingKey
	f.body = string(message)
	return f.err
}

func TestNewMessageRelay_Defaults(t *testing.T) {
	r := NewMessageRelay(nil, &fakePublisher{}, config.OutboxConfig{})
	assert.Equal(t, defaultPollingInterval, r.pollingInterval)
	assert.Equal(t, defaultBatchSize, r.batchSize)
	assert.Equal(t, defaultMaxRetries, r.maxRetries)

	r = NewMessageRelay(nil, &fakePublisher{}, config.OutboxConfig{PollingInterval: "250ms", BatchSize: 3, MaxRetries: 2})
	assert.Equal(t, 250*time.Millisecond, r.pollingInterval)
	assert.Equal(t, 3, r.batchSize)
	assert.Equal(t, 2, r.maxRetries)
}

func TestMessageRelay_PublishSuccess(t *testing.T) {
	pub := &fakePublisher{}
	r := NewMessageRelay(nil, pub, config.OutboxConfig{})
	msg := &models.OutboxMessage{
		ID:               1,
		AggregateID:      "file-1",
		Payload:          `{"file_id":"file-1"}`,
		TargetExchange:   "resume.events.exchange",
		TargetRoutingKey: "resume.parsed",
		Status:           models.OutboxStatusPending,
		ErrorMessage:     "之前的错误",
	}

	r.publish(context.Background(), msg)

	assert.Equal(t, models.OutboxStatusSent, msg.Status)
	assert.NotNil(t, msg.ProcessedAt)
	assert.Empty(t, msg.ErrorMessage)
	assert.Equal(t, "resume.events.exchange", pub.exchange)
	assert.Equal(t, "resume.parsed", pub.key)
	assert.Equal(t, `{"file_id":"file-1"}`, pub.body)
}

func TestMessageRelay_PublishRetriesThenFails(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	r := NewMessageRelay(nil, pub, config.OutboxConfig{MaxRetries: 2})
	msg := &models.OutboxMessage{ID: 2, Status: models.OutboxStatusPending}

	r.publish(context.Background(), msg)
	assert.Equal(t, 1, msg.RetryCount)
	assert.Equal(t, models.OutboxStatusPending, msg.Status, "未达到上限前保持PENDING")
	assert.Equal(t, "broker down", msg.ErrorMessage)

	r.publish(context.Background(), msg)
	assert.Equal(t, 2, msg.RetryCount)
	assert.Equal(t, models.OutboxStatusFailed, msg.Status)
	assert.Nil(t, msg.ProcessedAt)
}

func TestMessageRelay_StopIsIdempotent(t *testing.T) {
	r := NewMessageRelay(nil, &fakePublisher{}, config.OutboxConfig{PollingInterval: "1h"})
	r.Start(context.Background())
	r.Stop()
	r.Stop()
}

func TestMessageRelay_StopsOnContextCancel(t *testing.T) {
	r := NewMessageRelay(nil, &fakePublisher{}, config.OutboxConfig{PollingInterval: "1h"})
	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop after context cancel")
	}
}
