/*
Package response API 层统一响应处理

设计原则:
 1. HTTP 状态码映射放在 API 层，不污染领域层和应用层
 2. 错误响应不暴露内部细节（堆栈、内部错误消息等）
 3. 所有响应携带 RequestID 用于日志追踪
 4. 内部错误统一返回 "internal server error"，真实错误只记录日志

响应格式:

	成功: { success: true, data: ..., message: "...", code: 200, request_id: "..." }
	失败: { success: false, error: "ERROR_CODE", message: "用户可见消息", field: "name", code: 4xx/5xx, request_id: "..." }
*/
package response

import (
	"weighthub/infrastructure/persistence"

	"github.com/gin-gonic/gin"
)

// RequestIDKey gin context 中保存请求 ID 的键
const RequestIDKey = persistence.RequestIDKey

// Envelope 通用响应结构，T 为 data 的类型
type Envelope[T any] struct {
	Success   bool   `json:"success"`
	Data      T      `json:"data,omitempty"`
	Error     string `json:"error,omitempty"` // 错误码，不是错误详情
	Field     string `json:"field,omitempty"` // 校验失败的字段
	Code      int    `json:"code"`            // HTTP 状态码
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Response 不关心 data 类型时使用
type Response = Envelope[any]

// GetRequestID 读取请求 ID 中间件写入的值
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}
