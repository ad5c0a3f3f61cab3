/*
Package shared - 领域层共享错误定义

1. 哨兵错误(sentinel errors)用于 errors.Is() 判断
2. DomainError 在创建时捕获堆栈，日志打印时才格式化
3. 领域错误不包含 HTTP 状态码等传输层概念
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	// ErrNotFound 资源未找到
	ErrNotFound = errors.New("not found")

	// ErrConflict 资源冲突（并发修改、唯一约束）
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput 参数校验失败
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable 依赖的外部资源暂时不可用（文件、下载源）
	ErrUnavailable = errors.New("unavailable")
)

// DomainError 携带业务上下文和发生点堆栈的结构化错误
type DomainError struct {
	// Err 底层哨兵错误
	Err error

	// Entity 发生错误的实体名称，如 "weight"
	Entity string

	Message string

	// Field 校验错误对应的字段名（对外的 JSON 名）
	Field string

	stack []uintptr
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Stack 按需格式化堆栈
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// CaptureStack 捕获当前调用栈
// skip 通常为 3：Callers, CaptureStack, NewXxxError
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack 过滤 runtime 内部帧，最多返回 10 帧
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) >= 10 {
			break
		}
	}
	return result
}

// NewNotFoundError 匹配 ErrNotFound
func NewNotFoundError(entity string) error {
	return &DomainError{
		Err:     ErrNotFound,
		Entity:  entity,
		Message: entity + " not found",
		stack:   CaptureStack(3),
	}
}

// NewConflictError 匹配 ErrConflict
func NewConflictError(entity, message string) error {
	return &DomainError{
		Err:     ErrConflict,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// NewValidationError 创建校验失败错误，message 中带上字段名
func NewValidationError(entity, field, reason string) error {
	return &DomainError{
		Err:     ErrInvalidInput,
		Entity:  entity,
		Field:   field,
		Message: field + ": " + reason,
		stack:   CaptureStack(3),
	}
}

// NewUnavailableError 匹配 ErrUnavailable
func NewUnavailableError(entity, message string) error {
	return &DomainError{
		Err:     ErrUnavailable,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// Stacker 可提供堆栈的错误，API 层统一提取
type Stacker interface {
	Stack() []string
}

// Fielder 可提供出错字段名的错误
type Fielder interface {
	FieldName() string
}

// FieldName 实现 Fielder
func (e *DomainError) FieldName() string {
	return e.Field
}

// FieldOf 返回错误链中第一个带字段名的错误所对应的字段
func FieldOf(err error) string {
	var f Fielder
	if errors.As(err, &f) {
		return f.FieldName()
	}
	return ""
}
