/*
Package errors 应用层错误码。

领域层只暴露哨兵错误，本包负责把它们翻译成稳定的错误码；
错误码到 HTTP 状态码的映射只在 api/response 中完成。
*/
package errors

import (
	"errors"
	"fmt"

	"weighthub/domain/shared"
	"weighthub/domain/weight"
)

// ErrorCode 错误码
type ErrorCode string

const (
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeTooManyRequest   ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation       ErrorCode = "VALIDATION_ERROR"
	CodeConcurrentModify ErrorCode = "CONCURRENT_MODIFICATION"
	CodeUnavailable      ErrorCode = "UNAVAILABLE"

	CodeWeightNotFound      ErrorCode = "WEIGHT_NOT_FOUND"
	CodeWeightDisabled      ErrorCode = "WEIGHT_DISABLED"
	CodeArtifactUnavailable ErrorCode = "ARTIFACT_UNAVAILABLE"
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Field 校验失败的字段（JSON 名），其它错误为空
	Field string `json:"field,omitempty"`
	Err   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建不包装底层错误的 AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap 保留 err 作为 Unwrap 的结果
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError      { return New(CodeBadRequest, message) }
func NotFound(message string) *AppError        { return New(CodeNotFound, message) }
func Internal(message string) *AppError        { return New(CodeInternal, message) }
func Conflict(message string) *AppError        { return New(CodeConflict, message) }
func TooManyRequests(message string) *AppError { return New(CodeTooManyRequest, message) }

// Validation 字段校验错误
func Validation(field, message string) *AppError {
	return &AppError{Code: CodeValidation, Field: field, Message: message}
}

// Is 检查是否为特定错误码
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// FromDomainError 将领域错误映射为应用错误
// 先匹配具体的业务哨兵，再匹配 shared 中的分类哨兵，其余一律视为内部错误
func FromDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	msg := err.Error()
	switch {
	case errors.Is(err, weight.ErrConcurrentModification):
		return Wrap(err, CodeConcurrentModify, msg)
	case errors.Is(err, weight.ErrWeightDisabled):
		return Wrap(err, CodeWeightDisabled, msg)
	case errors.Is(err, weight.ErrArtifactUnavailable):
		return Wrap(err, CodeArtifactUnavailable, msg)
	case errors.Is(err, weight.ErrWeightNotFound):
		return Wrap(err, CodeWeightNotFound, msg)
	case errors.Is(err, shared.ErrInvalidInput):
		return &AppError{Code: CodeValidation, Field: shared.FieldOf(err), Message: msg, Err: err}
	case errors.Is(err, shared.ErrNotFound):
		return Wrap(err, CodeNotFound, msg)
	case errors.Is(err, shared.ErrConflict):
		return Wrap(err, CodeConflict, msg)
	case errors.Is(err, shared.ErrUnavailable):
		return Wrap(err, CodeUnavailable, msg)
	default:
		return Wrap(err, CodeInternal, msg)
	}
}
