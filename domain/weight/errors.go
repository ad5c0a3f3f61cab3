package weight

import (
	"errors"
	"fmt"
	"strconv"

	"weighthub/domain/shared"
)

const entityName = "weight"

// 每个错误同时匹配自身哨兵和 shared 中的分类哨兵，
// 例如 errors.Is(err, ErrInvalidName) 与 errors.Is(err, shared.ErrInvalidInput) 都成立。
var (
	ErrWeightNotFound         = errors.New("weight not found")
	ErrInvalidName            = errors.New("invalid weight name")
	ErrMissingLocation        = errors.New("weight needs a local path or an online url")
	ErrInvalidLocalPath       = errors.New("invalid local path")
	ErrInvalidOnlineURL       = errors.New("invalid online url")
	ErrInvalidEnable          = errors.New("enable must be 0 or 1")
	ErrInvalidID              = errors.New("invalid weight id")
	ErrIDAlreadyAssigned      = errors.New("weight id already assigned")
	ErrConcurrentModification = errors.New("weight was modified by another transaction, please retry")
	ErrWeightDisabled         = errors.New("weight is disabled")
	ErrArtifactUnavailable    = errors.New("weight file unavailable")
)

func newValidation(sentinel error, field, reason string) error {
	return &weightDomainError{
		sentinel: sentinel,
		category: shared.ErrInvalidInput,
		field:    field,
		message:  field + ": " + reason,
		stack:    shared.CaptureStack(4),
	}
}

func NewInvalidNameError(reason string) error {
	return newValidation(ErrInvalidName, "name", reason)
}

func NewMissingLocationError() error {
	return newValidation(ErrMissingLocation, "localPath", "either localPath or onlineUrl must be set")
}

func NewInvalidLocalPathError(reason string) error {
	return newValidation(ErrInvalidLocalPath, "localPath", reason)
}

func NewInvalidOnlineURLError(reason string) error {
	return newValidation(ErrInvalidOnlineURL, "onlineUrl", reason)
}

func NewInvalidEnableError(v int) error {
	return newValidation(ErrInvalidEnable, "enable", fmt.Sprintf("must be 0 or 1, got: %d", v))
}

func NewInvalidIDError(id int64) error {
	return newValidation(ErrInvalidID, "id", fmt.Sprintf("must be a positive integer, got: %d", id))
}

func NewIDAlreadyAssignedError(id int64) error {
	return &weightDomainError{
		sentinel: ErrIDAlreadyAssigned,
		category: shared.ErrConflict,
		field:    "id",
		message:  "weight already has id " + strconv.FormatInt(id, 10),
		stack:    shared.CaptureStack(3),
	}
}

// NewWeightNotFoundError 同时匹配 ErrWeightNotFound 与 shared.ErrNotFound
func NewWeightNotFoundError(id int64) error {
	return &weightDomainError{
		sentinel: ErrWeightNotFound,
		category: shared.ErrNotFound,
		message:  "weight not found: " + strconv.FormatInt(id, 10),
		stack:    shared.CaptureStack(3),
	}
}

// NewConcurrentModificationError 版本号不一致，UoW 会据此重试
func NewConcurrentModificationError(id int64) error {
	return &weightDomainError{
		sentinel: ErrConcurrentModification,
		category: shared.ErrConflict,
		message:  "weight " + strconv.FormatInt(id, 10) + " was modified by another transaction, please retry",
		stack:    shared.CaptureStack(3),
	}
}

// NewWeightDisabledError 解析已禁用的权重时返回
func NewWeightDisabledError(id int64) error {
	return &weightDomainError{
		sentinel: ErrWeightDisabled,
		message:  "weight " + strconv.FormatInt(id, 10) + " is disabled",
		stack:    shared.CaptureStack(3),
	}
}

// NewArtifactUnavailableError 本地、缓存与下载均无法得到权重文件
func NewArtifactUnavailableError(name string, cause error) error {
	msg := "weight file for " + name + " is unavailable"
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return &weightDomainError{
		sentinel: ErrArtifactUnavailable,
		category: shared.ErrUnavailable,
		message:  msg,
		cause:    cause,
		stack:    shared.CaptureStack(3),
	}
}

type weightDomainError struct {
	sentinel error
	category error
	cause    error
	field    string
	message  string
	stack    []uintptr
}

func (e *weightDomainError) Error() string     { return e.message }
func (e *weightDomainError) Stack() []string   { return shared.FormatStack(e.stack) }
func (e *weightDomainError) FieldName() string { return e.field }

func (e *weightDomainError) Unwrap() []error {
	errs := []error{e.sentinel}
	if e.category != nil {
		errs = append(errs, e.category)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}
