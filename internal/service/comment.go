package service

import (
	"context"
	"time"

	"github.com/user/yamdb/internal/model"
	"github.com/user/yamdb/internal/permission"
	"github.com/user/yamdb/internal/repository"
)

// CommentInput 创建和更新回复
type CommentInput struct {
	Text string `json:"text" validate:"required"`
}

// CommentPatch 部分更新回复
type CommentPatch struct {
	Text *string `json:"text" validate:"omitempty,min=1"`
}

// CommentService 评论下的回复，评论必须属于路径中的作品
type CommentService struct {
	reviews  repository.ReviewRepository
	comments repository.CommentRepository
	now      func() time.Time
}

func NewCommentService(reviews repository.ReviewRepository, comments repository.CommentRepository) *CommentService {
	return &CommentService{reviews: reviews, comments: comments, now: time.Now}
}

func (s *CommentService) ensureReview(ctx context.Context, titleID, reviewID int64) error {
	_, err := s.reviews.FindByID(ctx, titleID, reviewID)
	return mapRepoError(err)
}

func (s *CommentService) List(ctx context.Context, titleID, reviewID int64, page repository.Page) ([]*model.Comment, int64, error) {
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.comments.ListByReview(ctx, reviewID, page)
}

func (s *CommentService) Get(ctx context.Context, titleID, reviewID, id int64) (*model.Comment, error) {
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.FindByID(ctx, reviewID, id)
	return comment, mapRepoError(err)
}

func (s *CommentService) Create(ctx context.Context, actor *permission.Identity, titleID, reviewID int64, in CommentInput) (*model.Comment, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ReviewID: reviewID,
		AuthorID: actor.UserID,
		Text:     in.Text,
		PubDate:  s.now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, mapRepoError(err)
	}
	comment.Author = authorOf(actor)
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, actor *permission.Identity, titleID, reviewID, id int64, in CommentInput) (*model.Comment, error) {
	return s.modify(ctx, actor, titleID, reviewID, id, in, func(c *model.Comment) { c.Text = in.Text })
}

func (s *CommentService) Patch(ctx context.Context, actor *permission.Identity, titleID, reviewID, id int64, patch CommentPatch) (*model.Comment, error) {
	return s.modify(ctx, actor, titleID, reviewID, id, patch, func(c *model.Comment) {
		if patch.Text != nil {
			c.Text = *patch.Text
		}
	})
}

func (s *CommentService) modify(ctx context.Context, actor *permission.Identity, titleID, reviewID, id int64, input any, apply func(*model.Comment)) (*model.Comment, error) {
	comment, err := s.Get(ctx, titleID, reviewID, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeObject(actor, comment.AuthorID); err != nil {
		return nil, err
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	apply(comment)
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, mapRepoError(err)
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, actor *permission.Identity, titleID, reviewID, id int64) error {
	comment, err := s.Get(ctx, titleID, reviewID, id)
	if err != nil {
		return err
	}
	if err := authorizeObject(actor, comment.AuthorID); err != nil {
		return err
	}
	return mapRepoError(s.comments.Delete(ctx, id))
}
