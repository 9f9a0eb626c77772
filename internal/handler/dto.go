package handler

import (
	"time"

	"github.com/user/yamdb/internal/model"
)

// UserResponse 用户表示，不包含确认码
type UserResponse struct {
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Bio       string     `json:"bio"`
	Role      model.Role `json:"role"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}

// TaxonomyResponse 分类和类型表示
type TaxonomyResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func newCategoryResponse(c *model.Category) TaxonomyResponse {
	return TaxonomyResponse{Name: c.Name, Slug: c.Slug}
}

func newGenreResponse(g *model.Genre) TaxonomyResponse {
	return TaxonomyResponse{Name: g.Name, Slug: g.Slug}
}

// TitleResponse 作品表示
type TitleResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Year        int                `json:"year"`
	Rating      *float64           `json:"rating"`
	Description *string            `json:"description"`
	Genre       []TaxonomyResponse `json:"genre"`
	Category    *TaxonomyResponse  `json:"category"`
}

func newTitleResponse(t *model.Title) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       make([]TaxonomyResponse, 0, len(t.Genres)),
	}
	for i := range t.Genres {
		resp.Genre = append(resp.Genre, newGenreResponse(&t.Genres[i]))
	}
	if t.Category != nil {
		c := newCategoryResponse(t.Category)
		resp.Category = &c
	}
	return resp
}

// ReviewResponse 评论表示，author 为用户名
type ReviewResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func newReviewResponse(r *model.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  username(r.Author),
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}

// CommentResponse 回复表示
type CommentResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

func newCommentResponse(c *model.Comment) CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  username(c.Author),
		PubDate: c.PubDate,
	}
}

func username(u *model.User) string {
	if u == nil {
		return ""
	}
	return u.Username
}

// TokenResponse 访问令牌
type TokenResponse struct {
	Access string `json:"access"`
}

func mapSlice[T, R any](items []*T, conv func(*T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, conv(item))
	}
	return out
}
