package service

import (
	"context"
	"time"

	"github.com/user/yamdb/internal/model"
	"github.com/user/yamdb/internal/permission"
	"github.com/user/yamdb/internal/repository"
)

// ReviewInput 创建和整体更新评论
type ReviewInput struct {
	Text  string `json:"text" validate:"required"`
	Score int    `json:"score" validate:"required,min=1,max=10"`
}

// ReviewPatch 部分更新评论
type ReviewPatch struct {
	Text  *string `json:"text" validate:"omitempty,min=1"`
	Score *int    `json:"score" validate:"omitempty,min=1,max=10"`
}

// authorizeObject 作者、版主、管理员才能修改
func authorizeObject(actor *permission.Identity, authorID int64) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if !permission.AuthorOrAdminOrModeratorOnly.AllowObject(permission.ActionWrite, actor, authorID) {
		return ErrForbidden
	}
	return nil
}

func authorOf(actor *permission.Identity) *model.User {
	return &model.User{ID: actor.UserID, Username: actor.Username, Role: actor.Role}
}

// ReviewService 作品下的评论
type ReviewService struct {
	titles  repository.TitleRepository
	reviews repository.ReviewRepository
	now     func() time.Time
}

func NewReviewService(titles repository.TitleRepository, reviews repository.ReviewRepository) *ReviewService {
	return &ReviewService{titles: titles, reviews: reviews, now: time.Now}
}

func (s *ReviewService) ensureTitle(ctx context.Context, titleID int64) error {
	_, err := s.titles.FindByID(ctx, titleID)
	return mapRepoError(err)
}

func (s *ReviewService) List(ctx context.Context, titleID int64, page repository.Page) ([]*model.Review, int64, error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.reviews.ListByTitle(ctx, titleID, page)
}

func (s *ReviewService) Get(ctx context.Context, titleID, id int64) (*model.Review, error) {
	review, err := s.reviews.FindByID(ctx, titleID, id)
	return review, mapRepoError(err)
}

// Create 作者为当前用户，同一作品只能评论一次
func (s *ReviewService) Create(ctx context.Context, actor *permission.Identity, titleID int64, in ReviewInput) (*model.Review, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	exists, err := s.reviews.ExistsByAuthor(ctx, titleID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewValidationError("title", duplicateMessages["title"])
	}

	review := &model.Review{
		TitleID:  titleID,
		AuthorID: actor.UserID,
		Text:     in.Text,
		Score:    in.Score,
		PubDate:  s.now(),
	}
	// 并发创建时由唯一索引兜底，返回同样的错误
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, mapRepoError(err)
	}
	review.Author = authorOf(actor)
	return review, nil
}

func (s *ReviewService) Update(ctx context.Context, actor *permission.Identity, titleID, id int64, in ReviewInput) (*model.Review, error) {
	return s.modify(ctx, actor, titleID, id, in, func(r *model.Review) {
		r.Text, r.Score = in.Text, in.Score
	})
}

func (s *ReviewService) Patch(ctx context.Context, actor *permission.Identity, titleID, id int64, patch ReviewPatch) (*model.Review, error) {
	return s.modify(ctx, actor, titleID, id, patch, func(r *model.Review) {
		if patch.Text != nil {
			r.Text = *patch.Text
		}
		if patch.Score != nil {
			r.Score = *patch.Score
		}
	})
}

// modify 先检查权限再校验输入，拒绝时不产生任何修改
func (s *ReviewService) modify(ctx context.Context, actor *permission.Identity, titleID, id int64, input any, apply func(*model.Review)) (*model.Review, error) {
	review, err := s.Get(ctx, titleID, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeObject(actor, review.AuthorID); err != nil {
		return nil, err
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	apply(review)
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, mapRepoError(err)
	}
	return review, nil
}

// Delete 回复级联删除
func (s *ReviewService) Delete(ctx context.Context, actor *permission.Identity, titleID, id int64) error {
	review, err := s.Get(ctx, titleID, id)
	if err != nil {
		return err
	}
	if err := authorizeObject(actor, review.AuthorID); err != nil {
		return err
	}
	return mapRepoError(s.reviews.Delete(ctx, id))
}
