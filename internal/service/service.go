package service

import (
	"github.com/user/yamdb/internal/config"
	"github.com/user/yamdb/internal/mail"
	"github.com/user/yamdb/internal/model"
	"github.com/user/yamdb/internal/repository"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Codes      *CodeIssuer
	Tokens     *TokenService
	Auth       *AuthService
	Identities *Identities
	Users      *UserService
	Categories *TaxonomyService[model.Category]
	Genres     *TaxonomyService[model.Genre]
	Titles     *TitleService
	Reviews    *ReviewService
	Comments   *CommentService
}

// New 按配置组装全部服务
func New(repos *repository.Repositories, cfg *config.Config, mailer mail.Sender, logger *zap.Logger) *Services {
	codes := NewCodeIssuer(repos.User, cfg.BcryptCost, cfg.CodeTTL, logger)
	tokens := NewTokenService(cfg.AppSecret, cfg.JWTExpiry)
	identities := NewIdentities(repos.User, cfg.IdentityCacheSize, cfg.IdentityCacheTTL)

	return &Services{
		Codes:      codes,
		Tokens:     tokens,
		Identities: identities,
		Auth: NewAuthService(codes, tokens, mailer, AuthOptions{
			MailFrom:    cfg.MailFrom,
			MaxAttempts: cfg.CodeMaxAttempts,
			Window:      cfg.CodeAttemptWindow,
		}, logger),
		Users:      NewUserService(repos.User, identities),
		Categories: NewCategoryService(repos.Category),
		Genres:     NewGenreService(repos.Genre),
		Titles:     NewTitleService(repos.Title, repos.Category, repos.Genre),
		Reviews:    NewReviewService(repos.Title, repos.Review),
		Comments:   NewCommentService(repos.Review, repos.Comment),
	}
}
