package specification

import (
	"strings"

	"weighthub/domain/shared"
	"weighthub/domain/weight"

	"gorm.io/gorm"
)

// Scope GORM 查询片段
type Scope func(*gorm.DB) *gorm.DB

// WeightTranslator 把 weight 规约翻译成 GORM 条件
// 不认识的规约返回 ok=false，调用方应拒绝执行而不是忽略过滤条件
type WeightTranslator struct{}

// NewWeightTranslator 返回权重规约到 GORM scope 的翻译器
func NewWeightTranslator() *WeightTranslator {
	return &WeightTranslator{}
}

// Translate 返回可直接用于 db.Scopes 的函数；spec 为 nil 时返回不加条件的 scope
func (t *WeightTranslator) Translate(spec shared.Specification[*weight.Weight]) (Scope, bool) {
	if spec == nil {
		return func(db *gorm.DB) *gorm.DB { return db }, true
	}
	clause, args, ok := t.clause(spec)
	if !ok {
		return nil, false
	}
	return func(db *gorm.DB) *gorm.DB { return db.Where(clause, args...) }, true
}

// clause 递归生成带占位符的 WHERE 子句，保证 AND/OR/NOT 的括号正确
func (t *WeightTranslator) clause(spec shared.Specification[*weight.Weight]) (string, []any, bool) {
	switch s := spec.(type) {
	case shared.AndSpecification[*weight.Weight]:
		return t.binary("AND", s.Left, s.Right)
	case shared.OrSpecification[*weight.Weight]:
		return t.binary("OR", s.Left, s.Right)
	case shared.NotSpecification[*weight.Weight]:
		inner, args, ok := t.clause(s.Spec)
		if !ok {
			return "", nil, false
		}
		return "NOT (" + inner + ")", args, true
	case weight.NameContainsSpecification:
		return "`name_key` LIKE ? ESCAPE '!'", []any{"%" + EscapeLike(weight.FoldName(s.Substr)) + "%"}, true
	case weight.ByEnableSpecification:
		return "`enable` = ?", []any{s.Enable.Int()}, true
	default:
		return "", nil, false
	}
}

func (t *WeightTranslator) binary(op string, left, right shared.Specification[*weight.Weight]) (string, []any, bool) {
	l, largs, ok := t.clause(left)
	if !ok {
		return "", nil, false
	}
	r, rargs, ok := t.clause(right)
	if !ok {
		return "", nil, false
	}
	return "(" + l + ") " + op + " (" + r + ")", append(largs, rargs...), true
}

// likeEscapeChar MySQL 与 SQLite 通用的 LIKE 转义符
const likeEscapeChar = "!"

var likeEscaper = strings.NewReplacer(likeEscapeChar, likeEscapeChar+likeEscapeChar, "%", likeEscapeChar+"%", "_", likeEscapeChar+"_")

// EscapeLike 转义 LIKE 通配符，使子串按字面匹配
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
