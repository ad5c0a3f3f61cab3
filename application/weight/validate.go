package weight

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"weighthub/domain/shared"

	"github.com/go-playground/validator/v10"
)

const entityName = "weight"

var validate = newValidator()

// newValidator 错误中的字段名取 json 标签
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct 只返回第一个失败字段
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return shared.NewValidationError(entityName, fe.Field(), reason(fe))
	}
	return err
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "localPath or onlineUrl is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}

// Validate 第一个失败字段会作为错误的 field 返回
func (r *CreateWeightRequest) Validate() error {
	return validateStruct(r)
}

func (r *UpdateWeightRequest) Validate() error {
	return validateStruct(r)
}

func (r *ListWeightRequest) Validate() error {
	return validateStruct(r)
}

// ValidateSize 校验 size 不超过服务端上限，maxSize <= 0 表示不限制
func (r *ListWeightRequest) ValidateSize(maxSize int) error {
	if maxSize > 0 && r.Size > maxSize {
		return shared.NewValidationError(entityName, "size", fmt.Sprintf("must be at most %d", maxSize))
	}
	return nil
}

func (r *WeightRecord) Validate() error {
	return validateStruct(r)
}

// Validate 检查每条记录以及 total >= len(list)
func (r *ListWeightResult) Validate() error {
	if r.Total < int64(len(r.List)) {
		return shared.NewValidationError(entityName, "total", fmt.Sprintf("must be at least %d", len(r.List)))
	}
	for i := range r.List {
		if err := r.List[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
