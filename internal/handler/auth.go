package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/yamdb/internal/service"
)

// Signup 注册，确认码发送到邮箱
func (h *Handler) Signup(c *gin.Context) {
	var in service.SignupInput
	if !h.bind(c, &in) {
		return
	}
	out, err := h.Services.Auth.Signup(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ResendCode 重新发送确认码，旧码失效
func (h *Handler) ResendCode(c *gin.Context) {
	var in service.SignupInput
	if !h.bind(c, &in) {
		return
	}
	out, err := h.Services.Auth.ResendCode(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Token 用确认码换取访问令牌
func (h *Handler) Token(c *gin.Context) {
	var in service.TokenInput
	if !h.bind(c, &in) {
		return
	}
	token, err := h.Services.Auth.ExchangeToken(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Access: token})
}
