package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 统一错误响应结构，成功时直接返回资源本身
type ErrorResponse struct {
	Code    int                 `json:"code"`             // 状态码
	Message string              `json:"message"`          // 消息
	Success bool                `json:"success"`          // 是否成功
	Errors  map[string][]string `json:"errors,omitempty"` // 字段错误
}

// Error 返回错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{
		Code:    code,
		Message: message,
		Success: false,
	})
}

// BadRequest 返回400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// ValidationFailed 返回400错误和字段错误
func ValidationFailed(c *gin.Context, fields map[string][]string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "Invalid input.",
		Success: false,
		Errors:  fields,
	})
}

// Unauthorized 返回401错误
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication credentials were not provided."
	}
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 返回403错误
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "You do not have permission to perform this action."
	}
	Error(c, http.StatusForbidden, message)
}

// NotFound 返回404错误
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Not found."
	}
	Error(c, http.StatusNotFound, message)
}

// MethodNotAllowed 返回405错误
func MethodNotAllowed(c *gin.Context) {
	Error(c, http.StatusMethodNotAllowed, "Method \""+c.Request.Method+"\" not allowed.")
}

// TooManyRequests 返回429错误
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "Request was throttled."
	}
	Error(c, http.StatusTooManyRequests, message)
}

// InternalServerError 返回500错误
func InternalServerError(c *gin.Context, message string) {
	if message == "" {
		message = "A server error occurred."
	}
	Error(c, http.StatusInternalServerError, message)
}
