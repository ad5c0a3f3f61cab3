package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func write[T any](c *gin.Context, status int, data T, message string) {
	c.JSON(status, &Envelope[T]{
		Success:   true,
		Data:      data,
		Message:   message,
		Code:      status,
		RequestID: GetRequestID(c),
	})
}

// HandleSuccess 200 + 成功信封
func HandleSuccess[T any](c *gin.Context, data T, message string) {
	write(c, http.StatusOK, data, message)
}

// HandleCreated 201 + 成功信封
func HandleCreated[T any](c *gin.Context, data T, message string) {
	write(c, http.StatusCreated, data, message)
}

func HandleNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
