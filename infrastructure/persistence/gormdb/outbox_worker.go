package gormdb

import (
	"context"
	"fmt"
	"time"

	"weighthub/config"
	"weighthub/infrastructure/persistence/gormdb/po"
	"weighthub/pkg/logger"

	"go.uber.org/zap"
)

// OutboxMessage 投递给下游的一条权重事件，Payload 为 JSON
type OutboxMessage struct {
	ID         string
	WeightID   string
	EventType  string
	Payload    string
	RetryCount int
	RecordedAt time.Time
}

func newOutboxMessage(e *po.OutboxEventPO) OutboxMessage {
	return OutboxMessage{
		ID:         e.ID,
		WeightID:   e.AggregateID,
		EventType:  e.EventType,
		Payload:    e.Payload,
		RetryCount: e.RetryCount,
		RecordedAt: e.CreatedAt,
	}
}

type OutboxPublisher interface {
	Publish(ctx context.Context, msg OutboxMessage) error
}

// LoggingOutboxPublisher 把事件写入日志，没有接入消息中间件时使用
type LoggingOutboxPublisher struct{}

// Publish 以 Info 级别记录事件，总是成功
func (p *LoggingOutboxPublisher) Publish(ctx context.Context, msg OutboxMessage) error {
	logger.FromContext(ctx).Info("Weight event published",
		zap.String("event_id", msg.ID),
		zap.String("event_type", msg.EventType),
		zap.String("weight_id", msg.WeightID),
		zap.String("payload", msg.Payload),
	)
	return nil
}

// BatchResult 一轮轮询的统计
type BatchResult struct {
	Published int
	Failed    int
	Skipped   int
}

func (r BatchResult) Empty() bool {
	return r.Published == 0 && r.Failed == 0 && r.Skipped == 0
}

// OutboxWorker 轮询 outbox_events，把 PENDING 的权重事件交给 OutboxPublisher
type OutboxWorker struct {
	repository *OutboxRepository
	publisher  OutboxPublisher
	interval   time.Duration
	batchSize  int
	maxRetries int
}

// NewOutboxWorker 参数来自 worker 配置段，Enabled 由调用方判断
func NewOutboxWorker(repository *OutboxRepository, publisher OutboxPublisher, cfg config.WorkerConfig) (*OutboxWorker, error) {
	switch {
	case repository == nil:
		return nil, fmt.Errorf("outbox repository is required")
	case publisher == nil:
		return nil, fmt.Errorf("outbox publisher is required")
	case cfg.PollInterval <= 0:
		return nil, fmt.Errorf("worker.poll_interval must be positive")
	case cfg.BatchSize <= 0:
		return nil, fmt.Errorf("worker.batch_size must be positive")
	case cfg.MaxRetries <= 0:
		return nil, fmt.Errorf("worker.max_retries must be positive")
	}

	return &OutboxWorker{
		repository: repository,
		publisher:  publisher,
		interval:   cfg.PollInterval,
		batchSize:  cfg.BatchSize,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Run 按固定间隔轮询，ctx 取消后返回 ctx.Err()
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			result, err := w.ProcessBatch(ctx)
			if err != nil {
				logger.Error("Outbox poll failed", zap.Error(err))
				continue
			}
			if !result.Empty() {
				logger.Debug("Outbox batch done",
					zap.Int("published", result.Published),
					zap.Int("failed", result.Failed),
					zap.Int("skipped", result.Skipped),
				)
			}
		}
	}
}

// ProcessBatch 处理一批 PENDING 事件。单条事件的失败只计数，不中断本批
func (w *OutboxWorker) ProcessBatch(ctx context.Context) (BatchResult, error) {
	var result BatchResult

	events, err := w.repository.FindPending(ctx, w.batchSize)
	if err != nil {
		return result, err
	}

	for _, event := range events {
		claimed, err := w.repository.Claim(ctx, event.ID)
		if err != nil {
			logger.Warn("Outbox claim failed", zap.String("event_id", event.ID), zap.Error(err))
		}
		if err != nil || !claimed {
			result.Skipped++
			continue
		}

		msg := newOutboxMessage(event)
		log := logger.With(zap.String("event_id", msg.ID), zap.String("weight_id", msg.WeightID))

		if err := w.publisher.Publish(ctx, msg); err != nil {
			result.Failed++
			log.Warn("Weight event publish failed", zap.String("event_type", msg.EventType), zap.Error(err))
			if err := w.repository.MarkFailed(ctx, msg.ID, w.maxRetries); err != nil {
				log.Error("Outbox status update failed", zap.Error(err))
			}
			continue
		}

		if err := w.repository.MarkPublished(ctx, msg.ID); err != nil {
			log.Error("Outbox status update failed", zap.Error(err))
			continue
		}
		result.Published++
	}

	return result, nil
}
