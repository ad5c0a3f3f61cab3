package po

import (
	"encoding/json"
	"time"

	"weighthub/domain/shared"

	"github.com/google/uuid"
)

// OutboxEventPO 事务性 outbox 表
type OutboxEventPO struct {
	ID          string    `gorm:"primaryKey;size:64"`
	AggregateID string    `gorm:"size:64;index;not null"`
	EventType   string    `gorm:"size:100;index;not null"` // weight.created, weight.updated, weight.deleted
	Payload     string    `gorm:"type:text;not null"`
	Status      string    `gorm:"size:20;index;not null"` // PENDING, PROCESSING, PUBLISHED, FAILED
	RetryCount  int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (OutboxEventPO) TableName() string {
	return "outbox_events"
}

type EventStatus string

const (
	EventStatusPending    EventStatus = "PENDING"
	EventStatusProcessing EventStatus = "PROCESSING"
	EventStatusPublished  EventStatus = "PUBLISHED"
	EventStatusFailed     EventStatus = "FAILED"
)

// payloader 由携带业务数据的领域事件实现
type payloader interface {
	Payload() map[string]any
}

// FromDomainEvent 序列化领域事件，生成 PENDING 状态的 outbox 记录
func FromDomainEvent(event shared.DomainEvent) (*OutboxEventPO, error) {
	payload, err := serializeEvent(event)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &OutboxEventPO{
		ID:          uuid.New().String(),
		AggregateID: event.GetAggregateID(),
		EventType:   event.EventName(),
		Payload:     payload,
		Status:      string(EventStatusPending),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func serializeEvent(event shared.DomainEvent) (string, error) {
	data := map[string]any{
		"event_name":   event.EventName(),
		"aggregate_id": event.GetAggregateID(),
		"occurred_on":  event.OccurredOn(),
	}
	if p, ok := event.(payloader); ok {
		data["data"] = p.Payload()
	}

	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToEventData 解析 Payload，便于调试和测试
func (po *OutboxEventPO) ToEventData() (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(po.Payload), &data); err != nil {
		return nil, err
	}
	return data, nil
}
