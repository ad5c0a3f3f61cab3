package shared

import (
	"fmt"
	"sync"
	"time"
)

type DomainEvent interface {
	EventName() string
	OccurredOn() time.Time
	GetAggregateID() string
}

type EventHandler interface {
	Handle(event DomainEvent) error
	Name() string
}

// EventPublishResult 一次发布的结果，EventBus 保留最近 1000 条
type EventPublishResult struct {
	EventName   string    `json:"event_name"`
	AggregateID string    `json:"aggregate_id"`
	Success     bool      `json:"success"`
	Message     string    `json:"message,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// ValidateEvent 事件名与聚合 id 不能为空
func ValidateEvent(event DomainEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.EventName() == "" {
		return fmt.Errorf("event name cannot be empty")
	}
	if event.GetAggregateID() == "" {
		return fmt.Errorf("aggregate ID cannot be empty")
	}
	if event.OccurredOn().IsZero() {
		return fmt.Errorf("occurred on time cannot be zero")
	}
	return nil
}

const maxPublishHistory = 1000

// EventBus 进程内同步事件总线
// 订阅 "*" 的处理器会收到所有事件
type EventBus struct {
	handlers  map[string][]EventHandler
	mu        sync.RWMutex
	history   []EventPublishResult
	muHistory sync.Mutex
}

// WildcardEvent 订阅全部事件时使用的事件名
const WildcardEvent = "*"

// NewEventBus 进程内同步事件总线
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
		history:  make([]EventPublishResult, 0),
	}
}

// Publish 依次调用订阅者，包括 * 通配订阅。部分 handler 失败时仍会调用其余 handler
func (bus *EventBus) Publish(event DomainEvent) error {
	if err := ValidateEvent(event); err != nil {
		return err
	}

	bus.mu.RLock()
	handlers := make([]EventHandler, 0, len(bus.handlers[event.EventName()])+len(bus.handlers[WildcardEvent]))
	handlers = append(handlers, bus.handlers[event.EventName()]...)
	handlers = append(handlers, bus.handlers[WildcardEvent]...)
	bus.mu.RUnlock()

	result := EventPublishResult{
		EventName:   event.EventName(),
		AggregateID: event.GetAggregateID(),
		Success:     true,
		PublishedAt: time.Now(),
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler.Handle(event); err != nil {
			errs = append(errs, fmt.Errorf("handler %s: %w", handler.Name(), err))
		}
	}
	switch {
	case len(errs) > 0:
		result.Success = false
		result.Message = fmt.Sprintf("%d handlers failed", len(errs))
	case len(handlers) == 0:
		result.Message = "no handlers registered for this event"
	}
	bus.record(result)

	if len(errs) > 0 {
		return fmt.Errorf("event %s: %d handlers failed: %v", event.EventName(), len(errs), errs)
	}
	return nil
}

func (bus *EventBus) record(result EventPublishResult) {
	bus.muHistory.Lock()
	defer bus.muHistory.Unlock()
	bus.history = append(bus.history, result)
	if len(bus.history) > maxPublishHistory {
		bus.history = bus.history[len(bus.history)-maxPublishHistory:]
	}
}

// Subscribe 同名 handler 不能重复订阅同一事件
func (bus *EventBus) Subscribe(eventName string, handler EventHandler) error {
	if eventName == "" {
		return fmt.Errorf("event name cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	for _, h := range bus.handlers[eventName] {
		if h.Name() == handler.Name() {
			return fmt.Errorf("handler %s already subscribed to %s", handler.Name(), eventName)
		}
	}
	bus.handlers[eventName] = append(bus.handlers[eventName], handler)
	return nil
}

func (bus *EventBus) Unsubscribe(eventName string, handler EventHandler) error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	handlers := bus.handlers[eventName]
	for i, h := range handlers {
		if h.Name() == handler.Name() {
			bus.handlers[eventName] = append(handlers[:i], handlers[i+1:]...)
			return nil
		}
	}
	return nil
}

// GetPublishHistory 返回最近的发布结果副本
func (bus *EventBus) GetPublishHistory() []EventPublishResult {
	bus.muHistory.Lock()
	defer bus.muHistory.Unlock()

	history := make([]EventPublishResult, len(bus.history))
	copy(history, bus.history)
	return history
}

// FuncHandler 用函数实现 EventHandler
type FuncHandler struct {
	name string
	fn   func(DomainEvent) error
}

func NewFuncHandler(name string, fn func(DomainEvent) error) *FuncHandler {
	if name == "" {
		name = fmt.Sprintf("func-handler-%d", time.Now().UnixNano())
	}
	return &FuncHandler{name: name, fn: fn}
}

func (h *FuncHandler) Handle(event DomainEvent) error { return h.fn(event) }
func (h *FuncHandler) Name() string                   { return h.name }
