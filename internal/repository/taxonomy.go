package repository

import (
	"context"

	"github.com/user/yamdb/internal/model"
	"gorm.io/gorm"
)

// slugged 分类和类型共用的查询实现
type slugged[T model.Category | model.Genre] struct {
	db *gorm.DB
}

func (r *slugged[T]) create(ctx context.Context, item *T) error {
	return translateError(r.db.WithContext(ctx).Create(item).Error)
}

func (r *slugged[T]) findBySlug(ctx context.Context, slug string) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&item).Error; err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

func (r *slugged[T]) deleteBySlug(ctx context.Context, slug string) error {
	var zero T
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&zero)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *slugged[T]) list(ctx context.Context, search string, page Page) ([]*T, int64, error) {
	var zero T
	q := r.db.WithContext(ctx).Model(&zero)
	if search != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(search))
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []*T
	err := q.Order("id ASC").Offset(page.Offset).Limit(page.Limit).Find(&items).Error
	return items, total, err
}

// CategoryRepo 分类仓库
type CategoryRepo struct {
	slugged[model.Category]
}

var _ CategoryRepository = (*CategoryRepo)(nil)

// NewCategoryRepository 创建分类仓库
func NewCategoryRepository(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{slugged[model.Category]{db: db}}
}

func (r *CategoryRepo) Create(ctx context.Context, category *model.Category) error {
	return r.create(ctx, category)
}

func (r *CategoryRepo) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return r.findBySlug(ctx, slug)
}

// DeleteBySlug 删除分类，引用它的作品分类置空
func (r *CategoryRepo) DeleteBySlug(ctx context.Context, slug string) error {
	return r.deleteBySlug(ctx, slug)
}

func (r *CategoryRepo) List(ctx context.Context, search string, page Page) ([]*model.Category, int64, error) {
	return r.list(ctx, search, page)
}

// GenreRepo 类型仓库
type GenreRepo struct {
	slugged[model.Genre]
}

var _ GenreRepository = (*GenreRepo)(nil)

// NewGenreRepository 创建类型仓库
func NewGenreRepository(db *gorm.DB) *GenreRepo {
	return &GenreRepo{slugged[model.Genre]{db: db}}
}

func (r *GenreRepo) Create(ctx context.Context, genre *model.Genre) error {
	return r.create(ctx, genre)
}

func (r *GenreRepo) FindBySlug(ctx context.Context, slug string) (*model.Genre, error) {
	return r.findBySlug(ctx, slug)
}

// DeleteBySlug 删除类型，关联表记录级联删除
func (r *GenreRepo) DeleteBySlug(ctx context.Context, slug string) error {
	return r.deleteBySlug(ctx, slug)
}

func (r *GenreRepo) List(ctx context.Context, search string, page Page) ([]*model.Genre, int64, error) {
	return r.list(ctx, search, page)
}
