package shared

import "math"

// PageRequest 分页请求值对象，页码从 1 开始
type PageRequest struct {
	page int
	size int
}

// NewPageRequest 创建分页请求，page < 1 或 size < 1 时返回校验错误。
// (page-1)*size 超出 int 范围时同样拒绝，Offset 因此不会溢出
func NewPageRequest(page, size int) (PageRequest, error) {
	if page < 1 {
		return PageRequest{}, NewValidationError("page", "currentPage", "must be greater than or equal to 1")
	}
	if size < 1 {
		return PageRequest{}, NewValidationError("page", "size", "must be greater than 0")
	}
	if page-1 > math.MaxInt/size {
		return PageRequest{}, NewValidationError("page", "currentPage", "is too large for the page size")
	}
	return PageRequest{page: page, size: size}, nil
}

func (p PageRequest) Page() int { return p.page }
func (p PageRequest) Size() int { return p.size }

// Offset 返回当前页第一条记录的偏移量
func (p PageRequest) Offset() int {
	return (p.page - 1) * p.size
}

// Equals 比较两个分页请求是否相同
func (p PageRequest) Equals(other PageRequest) bool {
	return p.page == other.page && p.size == other.size
}
