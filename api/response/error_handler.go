package response

import (
	stdErrors "errors"
	"net/http"
	"runtime"

	"weighthub/domain/shared"
	"weighthub/pkg/errors"
	"weighthub/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var httpStatusMap = map[errors.ErrorCode]int{
	errors.CodeInternal:       http.StatusInternalServerError,
	errors.CodeBadRequest:     http.StatusBadRequest,
	errors.CodeNotFound:       http.StatusNotFound,
	errors.CodeConflict:       http.StatusConflict,
	errors.CodeTooManyRequest: http.StatusTooManyRequests,
	errors.CodeValidation:     http.StatusBadRequest,
	errors.CodeUnavailable:    http.StatusServiceUnavailable,

	errors.CodeWeightNotFound:      http.StatusNotFound,
	errors.CodeConcurrentModify:    http.StatusConflict,
	errors.CodeWeightDisabled:      http.StatusUnprocessableEntity,
	errors.CodeArtifactUnavailable: http.StatusBadGateway,
}

// StatusFor 错误码对应的 HTTP 状态码，未知错误码按 500 处理
func StatusFor(code errors.ErrorCode) int {
	if status, ok := httpStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func captureStack(skip int) []string {
	var pcs [16]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		frame, more := frames.Next()
		if frame.Function != "" {
			stack = append(stack, frame.Function)
		}
		if !more {
			break
		}
	}
	return stack
}

// HandleBadRequest 处理参数绑定等框架层错误
func HandleBadRequest(c *gin.Context, err error, message string) {
	requestID := GetRequestID(c)

	logger.Warn(message,
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err))

	c.JSON(http.StatusBadRequest, &Response{
		Success:   false,
		Error:     string(errors.CodeBadRequest),
		Message:   message,
		Code:      http.StatusBadRequest,
		RequestID: requestID,
	})
}

// HandleAppError 按应用错误码映射 HTTP 状态码，5xx 记录堆栈
func HandleAppError(c *gin.Context, err error) {
	requestID := GetRequestID(c)
	appErr := errors.FromDomainError(err)
	httpStatus := StatusFor(appErr.Code)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("error_code", string(appErr.Code)),
		zap.Int("http_status", httpStatus),
	}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}

	userMessage := appErr.Message
	if httpStatus >= http.StatusInternalServerError {
		logger.Error(appErr.Message, append(fields, zap.Strings("stack", extractStack(err)))...)
		if appErr.Code == errors.CodeInternal {
			userMessage = "internal server error"
		}
	} else {
		logger.Warn(appErr.Message, fields...)
	}

	c.JSON(httpStatus, &Response{
		Success:   false,
		Error:     string(appErr.Code),
		Field:     appErr.Field,
		Message:   userMessage,
		Code:      httpStatus,
		RequestID: requestID,
	})
}

// AbortWithError 中间件中使用，写响应后终止后续处理
func AbortWithError(c *gin.Context, status int, code errors.ErrorCode, message string) {
	c.AbortWithStatusJSON(status, &Response{
		Success:   false,
		Error:     string(code),
		Message:   message,
		Code:      status,
		RequestID: GetRequestID(c),
	})
}

func extractStack(err error) []string {
	var stacker shared.Stacker
	if stdErrors.As(err, &stacker) {
		if stack := stacker.Stack(); len(stack) > 0 {
			return stack
		}
	}
	return captureStack(4)
}
