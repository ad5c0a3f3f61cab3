package shared

// AggregateRoot 聚合根接口
// 聚合根维护一致性边界，并负责记录领域事件
type AggregateRoot interface {
	// AggregateID 返回聚合根标识的字符串形式，用于事件与日志
	AggregateID() string

	// Version 当前版本号，用于乐观锁
	Version() int

	// PullEvents 获取并清空聚合根记录的领域事件
	PullEvents() []DomainEvent
}
