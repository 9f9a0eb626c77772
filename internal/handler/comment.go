package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/yamdb/internal/middleware"
	"github.com/user/yamdb/internal/service"
)

// commentPath 解析作品、评论和回复 ID，withComment 为 false 时不解析回复 ID
func commentPath(c *gin.Context, withComment bool) (titleID, reviewID, commentID int64, ok bool) {
	if titleID, ok = pathID(c, "title_id"); !ok {
		return
	}
	if reviewID, ok = pathID(c, "review_id"); !ok {
		return
	}
	if withComment {
		commentID, ok = pathID(c, "comment_id")
	}
	return
}

func (h *Handler) ListComments(c *gin.Context) {
	titleID, reviewID, _, ok := commentPath(c, false)
	if !ok {
		return
	}
	p, ok := h.pageParams(c)
	if !ok {
		return
	}
	comments, total, err := h.Services.Comments.List(c.Request.Context(), titleID, reviewID, p.page())
	if err != nil {
		h.fail(c, err)
		return
	}
	respondPage(h, c, p, total, mapSlice(comments, newCommentResponse))
}

func (h *Handler) GetComment(c *gin.Context) {
	titleID, reviewID, id, ok := commentPath(c, true)
	if !ok {
		return
	}
	comment, err := h.Services.Comments.Get(c.Request.Context(), titleID, reviewID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newCommentResponse(comment))
}

func (h *Handler) CreateComment(c *gin.Context) {
	titleID, reviewID, _, ok := commentPath(c, false)
	if !ok {
		return
	}
	var in service.CommentInput
	if !h.bind(c, &in) {
		return
	}
	comment, err := h.Services.Comments.Create(c.Request.Context(), middleware.GetIdentity(c), titleID, reviewID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCommentResponse(comment))
}

func (h *Handler) UpdateComment(c *gin.Context) {
	titleID, reviewID, id, ok := commentPath(c, true)
	if !ok {
		return
	}
	var in service.CommentInput
	if !h.bind(c, &in) {
		return
	}
	comment, err := h.Services.Comments.Update(c.Request.Context(), middleware.GetIdentity(c), titleID, reviewID, id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newCommentResponse(comment))
}

func (h *Handler) PatchComment(c *gin.Context) {
	titleID, reviewID, id, ok := commentPath(c, true)
	if !ok {
		return
	}
	var patch service.CommentPatch
	if !h.bind(c, &patch) {
		return
	}
	comment, err := h.Services.Comments.Patch(c.Request.Context(), middleware.GetIdentity(c), titleID, reviewID, id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newCommentResponse(comment))
}

func (h *Handler) DeleteComment(c *gin.Context) {
	titleID, reviewID, id, ok := commentPath(c, true)
	if !ok {
		return
	}
	if err := h.Services.Comments.Delete(c.Request.Context(), middleware.GetIdentity(c), titleID, reviewID, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
