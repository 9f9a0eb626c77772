package repository

import (
	"context"

	"github.com/user/yamdb/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepo struct {
	db *gorm.DB
}

var _ ReviewRepository = (*ReviewRepo)(nil)

// NewReviewRepository 创建评论仓库
func NewReviewRepository(db *gorm.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// Create 创建评论，(title_id, author_id) 重复时返回 *DuplicateError
func (r *ReviewRepo) Create(ctx context.Context, review *model.Review) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error)
}

// Update 更新正文和分数
func (r *ReviewRepo) Update(ctx context.Context, review *model.Review) error {
	res := r.db.WithContext(ctx).Model(&model.Review{ID: review.ID}).
		Select("text", "score").
		Updates(&model.Review{Text: review.Text, Score: review.Score})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除评论，回复级联删除
func (r *ReviewRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Review{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByID 查找属于指定作品的评论
func (r *ReviewRepo) FindByID(ctx context.Context, titleID, id int64) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("title_id = ? AND id = ?", titleID, id).
		First(&review).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &review, nil
}

// ListByTitle 获取作品的评论，新的在前
func (r *ReviewRepo) ListByTitle(ctx context.Context, titleID int64, page Page) ([]*model.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Review{}).Where("title_id = ?", titleID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []*model.Review
	err := q.Preload("Author").
		Order("pub_date DESC, id DESC").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&reviews).Error
	return reviews, total, err
}

// ExistsByAuthor 判断作者是否已评论过该作品
func (r *ReviewRepo) ExistsByAuthor(ctx context.Context, titleID, authorID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&count).Error
	return count > 0, err
}

type CommentRepo struct {
	db *gorm.DB
}

var _ CommentRepository = (*CommentRepo)(nil)

// NewCommentRepository 创建回复仓库
func NewCommentRepository(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

func (r *CommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error)
}

func (r *CommentRepo) Update(ctx context.Context, comment *model.Comment) error {
	res := r.db.WithContext(ctx).Model(&model.Comment{ID: comment.ID}).Update("text", comment.Text)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CommentRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Comment{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByID 查找属于指定评论的回复
func (r *CommentRepo) FindByID(ctx context.Context, reviewID, id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("review_id = ? AND id = ?", reviewID, id).
		First(&comment).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &comment, nil
}

// ListByReview 获取评论下的回复，新的在前
func (r *CommentRepo) ListByReview(ctx context.Context, reviewID int64, page Page) ([]*model.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Comment{}).Where("review_id = ?", reviewID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*model.Comment
	err := q.Preload("Author").
		Order("pub_date DESC, id DESC").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&comments).Error
	return comments, total, err
}
