package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/yamdb/internal/config"
	"github.com/user/yamdb/internal/service"
	"github.com/user/yamdb/internal/utils"
	"go.uber.org/zap"
)

// Handler HTTP 处理器
type Handler struct {
	Services *service.Services
	Config   *config.Config
	Logger   *zap.Logger
}

// NewHandler 创建处理器
func NewHandler(services *service.Services, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		Services: services,
		Config:   cfg,
		Logger:   logger,
	}
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NoRoute 未知路径
func (h *Handler) NoRoute(c *gin.Context) {
	utils.NotFound(c, "")
}

// NoMethod 路径存在但方法不支持
func (h *Handler) NoMethod(c *gin.Context) {
	utils.MethodNotAllowed(c)
}

// fail 把服务错误映射为 HTTP 响应
func (h *Handler) fail(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.ValidationFailed(c, verr.Fields)
	case errors.Is(err, service.ErrNotFound):
		utils.NotFound(c, "")
	case errors.Is(err, service.ErrUnauthenticated):
		utils.Unauthorized(c, "")
	case errors.Is(err, service.ErrForbidden):
		utils.Forbidden(c, "")
	case errors.Is(err, service.ErrMethodNotAllowed):
		utils.MethodNotAllowed(c)
	case errors.Is(err, service.ErrTooManyAttempts):
		utils.TooManyRequests(c, err.Error())
	default:
		_ = c.Error(err)
		h.Logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		utils.InternalServerError(c, "")
	}
}

// bind 解析 JSON 请求体，空请求体按空对象处理
func (h *Handler) bind(c *gin.Context, dst any) bool {
	err := json.NewDecoder(c.Request.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		utils.ValidationFailed(c, map[string][]string{typeErr.Field: {"Incorrect type."}})
		return false
	}
	utils.BadRequest(c, "JSON parse error - "+err.Error())
	return false
}

// pathID 解析路径中的数字 ID，非法时返回 404
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.NotFound(c, "")
		return 0, false
	}
	return id, true
}
