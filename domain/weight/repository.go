package weight

import (
	"context"

	"weighthub/domain/shared"
)

// Repository 权重仓储接口
type Repository interface {
	// Save 新建时插入并通过 AssignID 回填标识；否则按版本号乐观锁更新
	Save(ctx context.Context, w *Weight) error

	// FindByID 未找到时返回 shared.ErrNotFound 分类的错误
	FindByID(ctx context.Context, id int64) (*Weight, error)

	// FindPage 按 id 升序分页查询，total 为满足规约的全部记录数
	// spec 为 nil 表示不过滤
	FindPage(ctx context.Context, spec shared.Specification[*Weight], page shared.PageRequest) ([]*Weight, int64, error)

	// Remove 逻辑删除
	Remove(ctx context.Context, id int64) error
}
