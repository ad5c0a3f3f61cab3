package memory

import (
	"context"

	"weighthub/domain/shared"
	"weighthub/infrastructure/persistence/retry"
	"weighthub/pkg/logger"

	"go.uber.org/zap"
)

// UnitOfWork 内存存储没有事务，fn 成功后把聚合事件发布到进程内事件总线
type UnitOfWork struct {
	bus         *shared.EventBus
	aggregates  []shared.AggregateRoot
	retryConfig retry.Config
}

// NewUnitOfWork 内存版 UoW，成功后把事件发布到 bus
func NewUnitOfWork(bus *shared.EventBus, retryConfig retry.Config) *UnitOfWork {
	return &UnitOfWork{
		bus:         bus,
		aggregates:  make([]shared.AggregateRoot, 0),
		retryConfig: retryConfig,
	}
}

// Execute 运行 fn，冲突时按 retryConfig 重试，成功后才发布收集到的事件
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	executeOnce := func(ctx context.Context) error {
		u.aggregates = make([]shared.AggregateRoot, 0)
		if err := fn(ctx); err != nil {
			return err
		}
		u.publish(ctx)
		return nil
	}
	return retry.ExecuteWithRetry(ctx, u.retryConfig, executeOnce)
}

// publish 数据已经写入，处理器失败只记录日志
func (u *UnitOfWork) publish(ctx context.Context) {
	if u.bus == nil {
		return
	}
	for _, agg := range u.aggregates {
		for _, event := range agg.PullEvents() {
			if err := u.bus.Publish(event); err != nil {
				logger.FromContext(ctx).Warn("Domain event handler failed",
					zap.String("event", event.EventName()),
					zap.String("aggregate_id", event.GetAggregateID()),
					zap.Error(err),
				)
			}
		}
	}
}

func (u *UnitOfWork) RegisterNew(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

func (u *UnitOfWork) RegisterDirty(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

func (u *UnitOfWork) RegisterRemoved(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

var _ shared.UnitOfWork = (*UnitOfWork)(nil)

type UnitOfWorkFactory struct {
	bus         *shared.EventBus
	retryConfig retry.Config
}

// NewUnitOfWorkFactory 所有 UoW 共享同一个 EventBus
func NewUnitOfWorkFactory(bus *shared.EventBus, retryConfig retry.Config) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{bus: bus, retryConfig: retryConfig}
}

func (f *UnitOfWorkFactory) New() shared.UnitOfWork {
	return NewUnitOfWork(f.bus, f.retryConfig)
}

var _ shared.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)

// NewLoggingHandler 订阅 "*" 后把所有领域事件写入日志
func NewLoggingHandler() shared.EventHandler {
	return shared.NewFuncHandler("event-logger", func(event shared.DomainEvent) error {
		logger.Info("Domain event",
			zap.String("event", event.EventName()),
			zap.String("aggregate_id", event.GetAggregateID()),
			zap.Time("occurred_on", event.OccurredOn()),
		)
		return nil
	})
}
