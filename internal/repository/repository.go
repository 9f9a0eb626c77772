package repository

import (
	"context"

	"github.com/user/yamdb/internal/model"
)

// Page 分页参数
type Page struct {
	Offset int
	Limit  int
}

// TitleFilter 作品列表过滤条件，零值表示不过滤
type TitleFilter struct {
	Category string
	Genre    string
	Name     string
	Year     *int
}

// UserRepository 用户仓库
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, search string, page Page) ([]*model.User, int64, error)
	// ConsumeCode 仅当存储的确认码哈希仍为 hash 时清空它，返回是否清空成功
	ConsumeCode(ctx context.Context, id int64, hash string) (bool, error)
}

// CategoryRepository 分类仓库
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	DeleteBySlug(ctx context.Context, slug string) error
	List(ctx context.Context, search string, page Page) ([]*model.Category, int64, error)
}

// GenreRepository 类型仓库
type GenreRepository interface {
	Create(ctx context.Context, genre *model.Genre) error
	FindBySlug(ctx context.Context, slug string) (*model.Genre, error)
	DeleteBySlug(ctx context.Context, slug string) error
	List(ctx context.Context, search string, page Page) ([]*model.Genre, int64, error)
}

// TitleRepository 作品仓库，读取结果带 Category、Genres 和 Rating
type TitleRepository interface {
	Create(ctx context.Context, title *model.Title) error
	Update(ctx context.Context, title *model.Title) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Title, error)
	List(ctx context.Context, filter TitleFilter, page Page) ([]*model.Title, int64, error)
}

// ReviewRepository 评论仓库，读取结果带 Author
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, titleID, id int64) (*model.Review, error)
	ListByTitle(ctx context.Context, titleID int64, page Page) ([]*model.Review, int64, error)
	ExistsByAuthor(ctx context.Context, titleID, authorID int64) (bool, error)
}

// CommentRepository 回复仓库，读取结果带 Author
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, reviewID, id int64) (*model.Comment, error)
	ListByReview(ctx context.Context, reviewID int64, page Page) ([]*model.Comment, int64, error)
}

// Repositories 仓库集合
type Repositories struct {
	User     UserRepository
	Category CategoryRepository
	Genre    GenreRepository
	Title    TitleRepository
	Review   ReviewRepository
	Comment  CommentRepository
}
