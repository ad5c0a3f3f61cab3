package weight

import (
	"strconv"
	"time"
)

const (
	EventWeightCreated = "weight.created"
	EventWeightUpdated = "weight.updated"
	EventWeightDeleted = "weight.deleted"
)

// WeightCreatedEvent 首次分配标识后记录
type WeightCreatedEvent struct {
	weightID   int64
	name       string
	localPath  string
	onlineURL  string
	enable     int
	occurredOn time.Time
}

// NewWeightCreatedEvent 必须在分配 id 之后调用
func NewWeightCreatedEvent(w *Weight) *WeightCreatedEvent {
	return &WeightCreatedEvent{
		weightID:   w.id,
		name:       w.name,
		localPath:  w.localPath,
		onlineURL:  w.onlineURL,
		enable:     w.enable.Int(),
		occurredOn: time.Now(),
	}
}

func (e *WeightCreatedEvent) EventName() string      { return EventWeightCreated }
func (e *WeightCreatedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *WeightCreatedEvent) GetAggregateID() string { return strconv.FormatInt(e.weightID, 10) }
func (e *WeightCreatedEvent) WeightID() int64        { return e.weightID }

func (e *WeightCreatedEvent) Payload() map[string]any {
	return map[string]any{
		"id":        e.weightID,
		"name":      e.name,
		"localPath": e.localPath,
		"onlineUrl": e.onlineURL,
		"enable":    e.enable,
	}
}

// WeightUpdatedEvent 全量替换后记录，携带替换后的字段
type WeightUpdatedEvent struct {
	weightID   int64
	name       string
	localPath  string
	onlineURL  string
	enable     int
	occurredOn time.Time
}

func NewWeightUpdatedEvent(w *Weight) *WeightUpdatedEvent {
	return &WeightUpdatedEvent{
		weightID:   w.id,
		name:       w.name,
		localPath:  w.localPath,
		onlineURL:  w.onlineURL,
		enable:     w.enable.Int(),
		occurredOn: time.Now(),
	}
}

func (e *WeightUpdatedEvent) EventName() string      { return EventWeightUpdated }
func (e *WeightUpdatedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *WeightUpdatedEvent) GetAggregateID() string { return strconv.FormatInt(e.weightID, 10) }
func (e *WeightUpdatedEvent) WeightID() int64        { return e.weightID }

func (e *WeightUpdatedEvent) Payload() map[string]any {
	return map[string]any{
		"id":        e.weightID,
		"name":      e.name,
		"localPath": e.localPath,
		"onlineUrl": e.onlineURL,
		"enable":    e.enable,
	}
}

// WeightDeletedEvent weight deleted
type WeightDeletedEvent struct {
	weightID   int64
	name       string
	occurredOn time.Time
}

func NewWeightDeletedEvent(id int64, name string) *WeightDeletedEvent {
	return &WeightDeletedEvent{
		weightID:   id,
		name:       name,
		occurredOn: time.Now(),
	}
}

func (e *WeightDeletedEvent) EventName() string      { return EventWeightDeleted }
func (e *WeightDeletedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *WeightDeletedEvent) GetAggregateID() string { return strconv.FormatInt(e.weightID, 10) }
func (e *WeightDeletedEvent) WeightID() int64        { return e.weightID }

func (e *WeightDeletedEvent) Payload() map[string]any {
	return map[string]any{"id": e.weightID, "name": e.name}
}
