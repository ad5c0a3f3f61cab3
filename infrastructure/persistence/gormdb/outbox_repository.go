package gormdb

import (
	"context"
	"fmt"
	"time"

	"weighthub/domain/shared"
	"weighthub/infrastructure/persistence"
	"weighthub/infrastructure/persistence/gormdb/po"

	"gorm.io/gorm"
)

// OutboxRepository 保存权重事件，由 OutboxWorker 异步投递。
// 时间戳在应用侧生成，MySQL 与 SQLite 行为一致
type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) conn(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// SaveEvent 写入一条 PENDING 记录。ctx 中有 UoW 事务时与聚合在同一事务提交
func (r *OutboxRepository) SaveEvent(ctx context.Context, event shared.DomainEvent) error {
	if err := shared.ValidateEvent(event); err != nil {
		return fmt.Errorf("invalid domain event: %w", err)
	}
	record, err := po.FromDomainEvent(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.EventName(), err)
	}
	if err := r.conn(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("save %s to outbox: %w", event.EventName(), err)
	}
	return nil
}

// FindPending 按写入顺序返回最多 limit 条待投递事件
func (r *OutboxRepository) FindPending(ctx context.Context, limit int) ([]*po.OutboxEventPO, error) {
	var events []*po.OutboxEventPO
	err := r.conn(ctx).
		Where("status = ?", string(po.EventStatusPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("find pending outbox events: %w", err)
	}
	return events, nil
}

// Claim 把 PENDING 改为 PROCESSING。返回 false 表示已被其他 worker 抢占
func (r *OutboxRepository) Claim(ctx context.Context, eventID string) (bool, error) {
	n, err := r.transition(ctx, eventID, po.EventStatusPending, map[string]any{
		"status": string(po.EventStatusProcessing),
	})
	if err != nil {
		return false, fmt.Errorf("claim outbox event %s: %w", eventID, err)
	}
	return n == 1, nil
}

// MarkPublished 只接受 PROCESSING 状态的事件
func (r *OutboxRepository) MarkPublished(ctx context.Context, eventID string) error {
	n, err := r.transition(ctx, eventID, po.EventStatusProcessing, map[string]any{
		"status": string(po.EventStatusPublished),
	})
	if err != nil {
		return fmt.Errorf("mark outbox event %s published: %w", eventID, err)
	}
	if n == 0 {
		return fmt.Errorf("outbox event %s is not in processing", eventID)
	}
	return nil
}

// MarkFailed retry_count 加一，未达到 maxRetries 时退回 PENDING，否则置为 FAILED
func (r *OutboxRepository) MarkFailed(ctx context.Context, eventID string, maxRetries int) error {
	var event po.OutboxEventPO
	if err := r.conn(ctx).First(&event, "id = ?", eventID).Error; err != nil {
		return fmt.Errorf("find outbox event %s: %w", eventID, err)
	}

	retries := event.RetryCount + 1
	next := po.EventStatusFailed
	if retries < maxRetries {
		next = po.EventStatusPending
	}
	_, err := r.transition(ctx, eventID, po.EventStatusProcessing, map[string]any{
		"status":      string(next),
		"retry_count": retries,
	})
	if err != nil {
		return fmt.Errorf("mark outbox event %s failed: %w", eventID, err)
	}
	return nil
}

// transition 只在当前状态为 from 时更新，返回受影响行数
func (r *OutboxRepository) transition(ctx context.Context, eventID string, from po.EventStatus, updates map[string]any) (int64, error) {
	updates["updated_at"] = time.Now()
	result := r.conn(ctx).Model(&po.OutboxEventPO{}).
		Where("id = ? AND status = ?", eventID, string(from)).
		Updates(updates)
	return result.RowsAffected, result.Error
}

var _ shared.OutboxRepository = (*OutboxRepository)(nil)
