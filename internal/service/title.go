package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/yamdb/internal/model"
	"github.com/user/yamdb/internal/repository"
)

// TitleInput 创建和整体更新作品，分类和类型按 slug 引用
type TitleInput struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Year        int      `json:"year" validate:"required,pastyear"`
	Description *string  `json:"description" validate:"omitempty,max=300"`
	Genre       []string `json:"genre" validate:"required,min=1,dive,required"`
	Category    string   `json:"category" validate:"required"`
}

// TitlePatch 部分更新作品
type TitlePatch struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=256"`
	Year        *int      `json:"year" validate:"omitempty,pastyear"`
	Description *string   `json:"description" validate:"omitempty,max=300"`
	Genre       *[]string `json:"genre" validate:"omitempty,min=1,dive,required"`
	Category    *string   `json:"category" validate:"omitempty,min=1"`
}

// TitleService 作品增删改查，评分由仓库在读取时计算
type TitleService struct {
	titles     repository.TitleRepository
	categories repository.CategoryRepository
	genres     repository.GenreRepository
}

func NewTitleService(titles repository.TitleRepository, categories repository.CategoryRepository, genres repository.GenreRepository) *TitleService {
	return &TitleService{titles: titles, categories: categories, genres: genres}
}

func (s *TitleService) List(ctx context.Context, filter repository.TitleFilter, page repository.Page) ([]*model.Title, int64, error) {
	return s.titles.List(ctx, filter, page)
}

func (s *TitleService) Get(ctx context.Context, id int64) (*model.Title, error) {
	title, err := s.titles.FindByID(ctx, id)
	return title, mapRepoError(err)
}

func (s *TitleService) Create(ctx context.Context, in TitleInput) (*model.Title, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	title := &model.Title{Name: in.Name, Year: in.Year, Description: in.Description}
	if err := s.resolve(ctx, title, &in.Category, &in.Genre); err != nil {
		return nil, err
	}
	if err := s.titles.Create(ctx, title); err != nil {
		return nil, mapRepoError(err)
	}
	return s.Get(ctx, title.ID)
}

// Update 整体替换
func (s *TitleService) Update(ctx context.Context, id int64, in TitleInput) (*model.Title, error) {
	title, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	title.Name, title.Year, title.Description = in.Name, in.Year, in.Description
	if err := s.resolve(ctx, title, &in.Category, &in.Genre); err != nil {
		return nil, err
	}
	return s.save(ctx, title)
}

// Patch 只修改提供的字段
func (s *TitleService) Patch(ctx context.Context, id int64, patch TitlePatch) (*model.Title, error) {
	title, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		title.Name = *patch.Name
	}
	if patch.Year != nil {
		title.Year = *patch.Year
	}
	if patch.Description != nil {
		title.Description = patch.Description
	}
	if err := s.resolve(ctx, title, patch.Category, patch.Genre); err != nil {
		return nil, err
	}
	return s.save(ctx, title)
}

func (s *TitleService) save(ctx context.Context, title *model.Title) (*model.Title, error) {
	if err := s.titles.Update(ctx, title); err != nil {
		return nil, mapRepoError(err)
	}
	return s.Get(ctx, title.ID)
}

// Delete 评论和回复级联删除
func (s *TitleService) Delete(ctx context.Context, id int64) error {
	return mapRepoError(s.titles.Delete(ctx, id))
}

// resolve 把 slug 换成分类和类型记录，nil 参数表示保持不变
func (s *TitleService) resolve(ctx context.Context, title *model.Title, category *string, genres *[]string) error {
	verr := &ValidationError{}

	if category != nil {
		c, err := s.categories.FindBySlug(ctx, *category)
		switch {
		case err == nil:
			title.CategoryID, title.Category = &c.ID, c
		case errors.Is(err, repository.ErrNotFound):
			verr.Add("category", missingSlug(*category))
		default:
			return err
		}
	}

	if genres != nil {
		resolved := make([]model.Genre, 0, len(*genres))
		seen := make(map[string]bool, len(*genres))
		for _, slug := range *genres {
			if seen[slug] {
				continue
			}
			seen[slug] = true
			g, err := s.genres.FindBySlug(ctx, slug)
			switch {
			case err == nil:
				resolved = append(resolved, *g)
			case errors.Is(err, repository.ErrNotFound):
				verr.Add("genre", missingSlug(slug))
			default:
				return err
			}
		}
		title.Genres = resolved
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func missingSlug(slug string) string {
	return fmt.Sprintf("Object with slug=%s does not exist.", slug)
}
