package service

import (
	"context"
	"fmt"

	"github.com/user/yamdb/internal/model"
	"github.com/user/yamdb/internal/repository"
)

// TaxonomyInput 分类和类型的创建请求
type TaxonomyInput struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,slug"`
}

type taxonomyRepository[T any] interface {
	Create(ctx context.Context, item *T) error
	FindBySlug(ctx context.Context, slug string) (*T, error)
	DeleteBySlug(ctx context.Context, slug string) error
	List(ctx context.Context, search string, page repository.Page) ([]*T, int64, error)
}

// TaxonomyService 分类和类型共用的服务，只有列表、创建和删除
type TaxonomyService[T any] struct {
	repo    taxonomyRepository[T]
	slugMax int
	build   func(in TaxonomyInput) *T
}

func NewCategoryService(repo repository.CategoryRepository) *TaxonomyService[model.Category] {
	return &TaxonomyService[model.Category]{
		repo:    repo,
		slugMax: 50,
		build: func(in TaxonomyInput) *model.Category {
			return &model.Category{Name: in.Name, Slug: in.Slug}
		},
	}
}

func NewGenreService(repo repository.GenreRepository) *TaxonomyService[model.Genre] {
	return &TaxonomyService[model.Genre]{
		repo:    repo,
		slugMax: 56,
		build: func(in TaxonomyInput) *model.Genre {
			return &model.Genre{Name: in.Name, Slug: in.Slug}
		},
	}
}

func (s *TaxonomyService[T]) List(ctx context.Context, search string, page repository.Page) ([]*T, int64, error) {
	return s.repo.List(ctx, search, page)
}

func (s *TaxonomyService[T]) Create(ctx context.Context, in TaxonomyInput) (*T, error) {
	err := validateStruct(in)
	verr, _ := err.(*ValidationError)
	if err != nil && verr == nil {
		return nil, err
	}
	if len(in.Slug) > s.slugMax {
		if verr == nil {
			verr = &ValidationError{}
		}
		verr.Add("slug", fmt.Sprintf("Ensure this field has no more than %d characters.", s.slugMax))
	}
	if verr != nil {
		return nil, verr
	}

	item := s.build(in)
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, mapRepoError(err)
	}
	return item, nil
}

func (s *TaxonomyService[T]) Get(ctx context.Context, slug string) (*T, error) {
	item, err := s.repo.FindBySlug(ctx, slug)
	return item, mapRepoError(err)
}

func (s *TaxonomyService[T]) Delete(ctx context.Context, slug string) error {
	return mapRepoError(s.repo.DeleteBySlug(ctx, slug))
}
