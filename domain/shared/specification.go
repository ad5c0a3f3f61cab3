package shared

import (
	"context"
)

// Specification 封装查询的业务规则
// IsSatisfiedBy 用于内存过滤，持久化层另有翻译器将其转换为 SQL 条件
type Specification[T any] interface {
	IsSatisfiedBy(ctx context.Context, entity T) bool
}

// AndSpecification 两个规约的逻辑与
type AndSpecification[T any] struct {
	Left  Specification[T]
	Right Specification[T]
}

func (spec AndSpecification[T]) IsSatisfiedBy(ctx context.Context, entity T) bool {
	return spec.Left.IsSatisfiedBy(ctx, entity) && spec.Right.IsSatisfiedBy(ctx, entity)
}

// And 组合两个规约，任意一侧为 nil 时返回另一侧
func And[T any](left, right Specification[T]) Specification[T] {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	return AndSpecification[T]{Left: left, Right: right}
}

// OrSpecification 两个规约的逻辑或
type OrSpecification[T any] struct {
	Left  Specification[T]
	Right Specification[T]
}

func (spec OrSpecification[T]) IsSatisfiedBy(ctx context.Context, entity T) bool {
	return spec.Left.IsSatisfiedBy(ctx, entity) || spec.Right.IsSatisfiedBy(ctx, entity)
}

// Or 任一侧满足即可
func Or[T any](left, right Specification[T]) Specification[T] {
	return OrSpecification[T]{Left: left, Right: right}
}

// NotSpecification 规约取反
type NotSpecification[T any] struct {
	Spec Specification[T]
}

func (spec NotSpecification[T]) IsSatisfiedBy(ctx context.Context, entity T) bool {
	return !spec.Spec.IsSatisfiedBy(ctx, entity)
}

// Not 取反
func Not[T any](inner Specification[T]) Specification[T] {
	return NotSpecification[T]{Spec: inner}
}

// Matches 在 spec 为 nil 时视为全部匹配
func Matches[T any](ctx context.Context, spec Specification[T], entity T) bool {
	if spec == nil {
		return true
	}
	return spec.IsSatisfiedBy(ctx, entity)
}
