package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/yamdb/internal/repository"
	"github.com/user/yamdb/internal/service"
	"github.com/user/yamdb/internal/utils"
)

// ListTitles 作品列表，支持 category、genre、name、year 过滤
func (h *Handler) ListTitles(c *gin.Context) {
	filter := repository.TitleFilter{
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
		Name:     c.Query("name"),
	}
	if v := c.Query("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			utils.ValidationFailed(c, map[string][]string{"year": {"Enter a number."}})
			return
		}
		filter.Year = &year
	}

	p, ok := h.pageParams(c)
	if !ok {
		return
	}
	titles, total, err := h.Services.Titles.List(c.Request.Context(), filter, p.page())
	if err != nil {
		h.fail(c, err)
		return
	}
	respondPage(h, c, p, total, mapSlice(titles, newTitleResponse))
}

func (h *Handler) GetTitle(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	title, err := h.Services.Titles.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newTitleResponse(title))
}

func (h *Handler) CreateTitle(c *gin.Context) {
	var in service.TitleInput
	if !h.bind(c, &in) {
		return
	}
	title, err := h.Services.Titles.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTitleResponse(title))
}

// UpdateTitle PUT 整体更新
func (h *Handler) UpdateTitle(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	var in service.TitleInput
	if !h.bind(c, &in) {
		return
	}
	title, err := h.Services.Titles.Update(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newTitleResponse(title))
}

// PatchTitle PATCH 部分更新
func (h *Handler) PatchTitle(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	var patch service.TitlePatch
	if !h.bind(c, &patch) {
		return
	}
	title, err := h.Services.Titles.Patch(c.Request.Context(), id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newTitleResponse(title))
}

func (h *Handler) DeleteTitle(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	if err := h.Services.Titles.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
