package weight

// CreateWeightRequest 创建权重，id 由服务端分配
type CreateWeightRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	LocalPath string `json:"localPath" validate:"required_without=OnlineURL,max=1024"`
	OnlineURL string `json:"onlineUrl" validate:"omitempty,max=2048,url"`
	Enable    int    `json:"enable" validate:"oneof=0 1"`
}

// UpdateWeightRequest 按 id 全量替换
type UpdateWeightRequest struct {
	ID        int64  `json:"id" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required,max=255"`
	LocalPath string `json:"localPath" validate:"required_without=OnlineURL,max=1024"`
	OnlineURL string `json:"onlineUrl" validate:"omitempty,max=2048,url"`
	Enable    int    `json:"enable" validate:"oneof=0 1"`
}

// ListWeightRequest 分页查询。Weight 与 Enable 为 nil 时不过滤，与零值不同
type ListWeightRequest struct {
	CurrentPage int     `json:"currentPage" form:"currentPage" validate:"gte=1"`
	Size        int     `json:"size" form:"size" validate:"gt=0"`
	Weight      *string `json:"weight,omitempty" form:"weight" validate:"omitempty,max=255"`
	Enable      *int    `json:"enable,omitempty" form:"enable" validate:"omitempty,oneof=0 1"`
}

// WeightRecord 对外输出的权重记录
type WeightRecord struct {
	ID        int64  `json:"id" validate:"gt=0"`
	Name      string `json:"name" validate:"required,max=255"`
	LocalPath string `json:"localPath" validate:"max=1024"`
	OnlineURL string `json:"onlineUrl" validate:"max=2048"`
	Enable    int    `json:"enable" validate:"oneof=0 1"`
}

// ListWeightResult total 为满足过滤条件的全部记录数，与当前页无关
type ListWeightResult struct {
	List  []WeightRecord `json:"list"`
	Total int64          `json:"total"`
}

// ResolveResult 权重文件解析结果
type ResolveResult struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Path   string `json:"path"`
	Source string `json:"source"`
}
