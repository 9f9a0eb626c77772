package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/yamdb/internal/middleware"
	"github.com/user/yamdb/internal/service"
)

func (h *Handler) ListReviews(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	p, ok := h.pageParams(c)
	if !ok {
		return
	}
	reviews, total, err := h.Services.Reviews.List(c.Request.Context(), titleID, p.page())
	if err != nil {
		h.fail(c, err)
		return
	}
	respondPage(h, c, p, total, mapSlice(reviews, newReviewResponse))
}

func (h *Handler) GetReview(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	id, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	review, err := h.Services.Reviews.Get(c.Request.Context(), titleID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newReviewResponse(review))
}

// CreateReview 作者为当前用户
func (h *Handler) CreateReview(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	var in service.ReviewInput
	if !h.bind(c, &in) {
		return
	}
	review, err := h.Services.Reviews.Create(c.Request.Context(), middleware.GetIdentity(c), titleID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newReviewResponse(review))
}

func (h *Handler) UpdateReview(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	id, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	var in service.ReviewInput
	if !h.bind(c, &in) {
		return
	}
	review, err := h.Services.Reviews.Update(c.Request.Context(), middleware.GetIdentity(c), titleID, id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newReviewResponse(review))
}

func (h *Handler) PatchReview(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	id, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	var patch service.ReviewPatch
	if !h.bind(c, &patch) {
		return
	}
	review, err := h.Services.Reviews.Patch(c.Request.Context(), middleware.GetIdentity(c), titleID, id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newReviewResponse(review))
}

func (h *Handler) DeleteReview(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	id, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	if err := h.Services.Reviews.Delete(c.Request.Context(), middleware.GetIdentity(c), titleID, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
