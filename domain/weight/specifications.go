package weight

import (
	"context"
	"strings"

	"weighthub/domain/shared"
)

// NameContainsSpecification 名称包含子串，不区分大小写
type NameContainsSpecification struct {
	Substr string
}

func (spec NameContainsSpecification) IsSatisfiedBy(ctx context.Context, entity *Weight) bool {
	return strings.Contains(FoldName(entity.Name()), FoldName(spec.Substr))
}

// FoldName 名称过滤使用的大小写折叠。数据库实现也用它生成 name_key 列，
// 避免依赖各数据库 LOWER 对非 ASCII 字符的不同处理
func FoldName(name string) string {
	return strings.ToLower(name)
}

// ByEnableSpecification 启用标记精确匹配
type ByEnableSpecification struct {
	Enable Flag
}

func (spec ByEnableSpecification) IsSatisfiedBy(ctx context.Context, entity *Weight) bool {
	return entity.Enable() == spec.Enable
}

// NewNameContainsSpecification 名称包含 substr，不区分大小写
func NewNameContainsSpecification(substr string) shared.Specification[*Weight] {
	return NameContainsSpecification{Substr: substr}
}

// NewByEnableSpecification enable 字段等于给定值
func NewByEnableSpecification(enable Flag) shared.Specification[*Weight] {
	return ByEnableSpecification{Enable: enable}
}

// FilterSpecification 把可选过滤条件组合成规约，全部缺省时返回 nil
func FilterSpecification(nameSubstr *string, enable *Flag) shared.Specification[*Weight] {
	var spec shared.Specification[*Weight]
	if nameSubstr != nil && *nameSubstr != "" {
		spec = shared.And(spec, NewNameContainsSpecification(*nameSubstr))
	}
	if enable != nil {
		spec = shared.And(spec, NewByEnableSpecification(*enable))
	}
	return spec
}
