package weight

import (
	"strconv"

	"weighthub/api/response"
	weightapp "weighthub/application/weight"
	"weighthub/domain/shared"

	"github.com/gin-gonic/gin"
)

// BasePath 权重路由前缀，相对于 API 分组
const BasePath = "/weights"

const (
	msgCreated = "created"
	msgUpdated = "updated"
	msgDeleted = "deleted"
)

// Controller Weight controller
type Controller struct {
	weightService *weightapp.ApplicationService
}

// NewController 权重 HTTP 控制器
func NewController(weightService *weightapp.ApplicationService) *Controller {
	return &Controller{weightService: weightService}
}

// RegisterRoutes 挂载到 /weights
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	weightGroup := router.Group(BasePath)
	{
		weightGroup.POST("", c.CreateWeight)
		weightGroup.PUT("", c.UpdateWeight)
		weightGroup.PUT("/:id", c.UpdateWeight)
		weightGroup.GET("", c.ListWeights)
		weightGroup.GET("/:id", c.GetWeight)
		weightGroup.DELETE("/:id", c.DeleteWeight)
		weightGroup.POST("/:id/resolve", c.ResolveWeight)
	}
}

// CreateWeight 成功返回 201，Location 指向新记录
func (c *Controller) CreateWeight(ctx *gin.Context) {
	var req weightapp.CreateWeightRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBadRequest(ctx, err, "invalid request body")
		return
	}

	id, err := c.weightService.CreateWeight(ctx.Request.Context(), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	ctx.Header("Location", locationOf(ctx, id))
	response.HandleCreated(ctx, msgCreated, "weight created")
}

// UpdateWeight 路径中带 id 时必须与请求体一致，请求体缺省 id 时取路径值
func (c *Controller) UpdateWeight(ctx *gin.Context) {
	var req weightapp.UpdateWeightRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBadRequest(ctx, err, "invalid request body")
		return
	}

	if ctx.Param("id") != "" {
		id, ok := parseID(ctx)
		if !ok {
			return
		}
		switch {
		case req.ID == 0:
			req.ID = id
		case req.ID != id:
			response.HandleAppError(ctx, shared.NewValidationError("weight", "id", "path id and body id differ"))
			return
		}
	}

	if err := c.weightService.UpdateWeight(ctx.Request.Context(), req); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, msgUpdated, "weight updated")
}

// GetWeight GET /weights/:id
func (c *Controller) GetWeight(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	record, err := c.weightService.GetWeight(ctx.Request.Context(), id)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, record, "weight retrieved")
}

// ListWeights GET /weights?currentPage=1&size=10&weight=&enable=
// 空的 enable= 与不传相同，不按启用状态过滤
func (c *Controller) ListWeights(ctx *gin.Context) {
	var req weightapp.ListWeightRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.HandleBadRequest(ctx, err, "invalid query parameters")
		return
	}
	if ctx.Query("enable") == "" {
		req.Enable = nil
	}

	result, err := c.weightService.ListWeights(ctx.Request.Context(), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, result, "weights retrieved")
}

// DeleteWeight DELETE /weights/:id
func (c *Controller) DeleteWeight(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if err := c.weightService.DeleteWeight(ctx.Request.Context(), id); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, msgDeleted, "weight deleted")
}

// ResolveWeight 定位权重文件，必要时下载到缓存目录
func (c *Controller) ResolveWeight(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	result, err := c.weightService.ResolveWeight(ctx.Request.Context(), id)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, result, "weight resolved")
}

func parseID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.HandleBadRequest(ctx, err, "invalid weight id")
		return 0, false
	}
	return id, true
}

func locationOf(ctx *gin.Context, id int64) string {
	base := ctx.FullPath()
	if base == "" {
		base = ctx.Request.URL.Path
	}
	return base + "/" + strconv.FormatInt(id, 10)
}
