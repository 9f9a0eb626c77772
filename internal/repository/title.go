package repository

import (
	"context"

	"github.com/user/yamdb/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ratingSelect 评分在读取时计算
const ratingSelect = "titles.*, (SELECT AVG(reviews.score) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

type TitleRepo struct {
	db *gorm.DB
}

var _ TitleRepository = (*TitleRepo)(nil)

// NewTitleRepository 创建作品仓库
func NewTitleRepository(db *gorm.DB) *TitleRepo {
	return &TitleRepo{db: db}
}

// Create 创建作品并写入类型关联
func (r *TitleRepo) Create(ctx context.Context, title *model.Title) error {
	return r.save(ctx, title, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(title).Error
	})
}

// Update 更新作品，类型关联整体替换
func (r *TitleRepo) Update(ctx context.Context, title *model.Title) error {
	return r.save(ctx, title, func(tx *gorm.DB) error {
		res := tx.Model(&model.Title{ID: title.ID}).
			Select("name", "year", "description", "category_id").
			Updates(map[string]interface{}{
				"name":        title.Name,
				"year":        title.Year,
				"description": title.Description,
				"category_id": title.CategoryID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *TitleRepo) save(ctx context.Context, title *model.Title, write func(tx *gorm.DB) error) error {
	genres := title.Genres
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := write(tx); err != nil {
			return err
		}
		return tx.Model(&model.Title{ID: title.ID}).Omit("Genres.*").Association("Genres").Replace(genres)
	})
	title.Genres = genres
	return translateError(err)
}

// Delete 删除作品，评论及其回复由外键级联删除
func (r *TitleRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Title{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByID 根据 ID 查找作品
func (r *TitleRepo) FindByID(ctx context.Context, id int64) (*model.Title, error) {
	var title model.Title
	err := r.db.WithContext(ctx).
		Model(&model.Title{}).
		Select(ratingSelect).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.id") }).
		Where("titles.id = ?", id).
		First(&title).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &title, nil
}

// List 按分类、类型、名称、年份过滤
func (r *TitleRepo) List(ctx context.Context, filter TitleFilter, page Page) ([]*model.Title, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var titles []*model.Title
	err := r.filtered(ctx, filter).
		Select(ratingSelect).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.id") }).
		Order("titles.id ASC").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&titles).Error
	return titles, total, err
}

func (r *TitleRepo) filtered(ctx context.Context, f TitleFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Title{})
	if f.Category != "" {
		q = q.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", f.Category)
	}
	if f.Genre != "" {
		q = q.Where(`EXISTS (SELECT 1 FROM title_genres JOIN genres ON genres.id = title_genres.genre_id
			WHERE title_genres.title_id = titles.id AND genres.slug = ?)`, f.Genre)
	}
	if f.Name != "" {
		q = q.Where("LOWER(titles.name) LIKE ?", likePattern(f.Name))
	}
	if f.Year != nil {
		q = q.Where("titles.year = ?", *f.Year)
	}
	return q
}
