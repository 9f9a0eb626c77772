package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/yamdb/internal/middleware"
	"github.com/user/yamdb/internal/service"
)

// ListUsers 用户列表，支持 ?search= 按用户名搜索
func (h *Handler) ListUsers(c *gin.Context) {
	lo := h.limitOffsetParams(c)
	users, total, err := h.Services.Users.List(c.Request.Context(), c.Query("search"), lo.page())
	if err != nil {
		h.fail(c, err)
		return
	}
	respondLimitOffset(h, c, lo, total, mapSlice(users, newUserResponse))
}

func (h *Handler) CreateUser(c *gin.Context) {
	var in service.UserInput
	if !h.bind(c, &in) {
		return
	}
	user, err := h.Services.Users.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(user))
}

func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.Services.Users.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var patch service.UserPatch
	if !h.bind(c, &patch) {
		return
	}
	user, err := h.Services.Users.Update(c.Request.Context(), c.Param("username"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.Services.Users.Delete(c.Request.Context(), c.Param("username")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me 当前用户资料
func (h *Handler) Me(c *gin.Context) {
	user, err := h.Services.Users.Me(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// UpdateMe 修改当前用户资料，role 字段被忽略
func (h *Handler) UpdateMe(c *gin.Context) {
	var patch service.UserPatch
	if !h.bind(c, &patch) {
		return
	}
	user, err := h.Services.Users.UpdateMe(c.Request.Context(), middleware.GetIdentity(c), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *Handler) DeleteMe(c *gin.Context) {
	h.fail(c, h.Services.Users.DeleteMe(c.Request.Context(), middleware.GetIdentity(c)))
}
