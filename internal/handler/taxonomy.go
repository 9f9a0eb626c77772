package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/yamdb/internal/model"
	"github.com/user/yamdb/internal/repository"
	"github.com/user/yamdb/internal/service"
)

type taxonomyService[T any] interface {
	List(ctx context.Context, search string, page repository.Page) ([]*T, int64, error)
	Create(ctx context.Context, in service.TaxonomyInput) (*T, error)
	Delete(ctx context.Context, slug string) error
}

func listTaxonomy[T any](h *Handler, c *gin.Context, svc taxonomyService[T], conv func(*T) TaxonomyResponse) {
	p, ok := h.pageParams(c)
	if !ok {
		return
	}
	items, total, err := svc.List(c.Request.Context(), c.Query("search"), p.page())
	if err != nil {
		h.fail(c, err)
		return
	}
	respondPage(h, c, p, total, mapSlice(items, conv))
}

func createTaxonomy[T any](h *Handler, c *gin.Context, svc taxonomyService[T], conv func(*T) TaxonomyResponse) {
	var in service.TaxonomyInput
	if !h.bind(c, &in) {
		return
	}
	item, err := svc.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, conv(item))
}

func deleteTaxonomy[T any](h *Handler, c *gin.Context, svc taxonomyService[T]) {
	if err := svc.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListCategories(c *gin.Context) {
	listTaxonomy[model.Category](h, c, h.Services.Categories, newCategoryResponse)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	createTaxonomy[model.Category](h, c, h.Services.Categories, newCategoryResponse)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	deleteTaxonomy[model.Category](h, c, h.Services.Categories)
}

func (h *Handler) ListGenres(c *gin.Context) {
	listTaxonomy[model.Genre](h, c, h.Services.Genres, newGenreResponse)
}

func (h *Handler) CreateGenre(c *gin.Context) {
	createTaxonomy[model.Genre](h, c, h.Services.Genres, newGenreResponse)
}

func (h *Handler) DeleteGenre(c *gin.Context) {
	deleteTaxonomy[model.Genre](h, c, h.Services.Genres)
}
