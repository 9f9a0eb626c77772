package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/user/yamdb/internal/mail"
	"go.uber.org/zap"
)

// TokenInput 换取令牌的请求
type TokenInput struct {
	Username         string `json:"username" validate:"required,max=150"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

// AuthService 注册、重发确认码和换取令牌
type AuthService struct {
	codes    *CodeIssuer
	tokens   *TokenService
	mailer   mail.Sender
	mailFrom string
	logger   *zap.Logger

	// 失败次数，键为用户名
	attempts    *cache.Cache
	maxAttempts int
	window      time.Duration
}

// AuthOptions 失败锁定配置
type AuthOptions struct {
	MailFrom    string
	MaxAttempts int
	Window      time.Duration
}

func NewAuthService(codes *CodeIssuer, tokens *TokenService, mailer mail.Sender, opts AuthOptions, logger *zap.Logger) *AuthService {
	if opts.Window <= 0 {
		opts.Window = 15 * time.Minute
	}
	return &AuthService{
		codes:       codes,
		tokens:      tokens,
		mailer:      mailer,
		mailFrom:    opts.MailFrom,
		logger:      logger,
		attempts:    cache.New(opts.Window, 2*opts.Window),
		maxAttempts: opts.MaxAttempts,
		window:      opts.Window,
	}
}

// Signup 注册并发送确认码邮件，邮件发送失败时撤销注册
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*SignupInput, error) {
	user, code, err := s.codes.Issue(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.sendCode(ctx, user.Email, code); err != nil {
		if derr := s.codes.Discard(context.WithoutCancel(ctx), user); derr != nil {
			s.logger.Error("discard unconfirmed signup failed", zap.Int64("user_id", user.ID), zap.Error(derr))
		}
		return nil, err
	}
	return &SignupInput{Username: user.Username, Email: user.Email}, nil
}

// ResendCode 为已有账号重新发送确认码
func (s *AuthService) ResendCode(ctx context.Context, in SignupInput) (*SignupInput, error) {
	user, code, err := s.codes.Reissue(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.sendCode(ctx, user.Email, code); err != nil {
		return nil, err
	}
	return &SignupInput{Username: user.Username, Email: user.Email}, nil
}

func (s *AuthService) sendCode(ctx context.Context, email, code string) error {
	if err := s.mailer.Send(ctx, mail.ConfirmationMessage(s.mailFrom, email, code)); err != nil {
		s.logger.Error("send confirmation code failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("send confirmation code: %w", err)
	}
	return nil
}

// ExchangeToken 用确认码换取访问令牌，成功后确认码作废
func (s *AuthService) ExchangeToken(ctx context.Context, in TokenInput) (string, error) {
	if err := validateStruct(in); err != nil {
		return "", err
	}
	if s.lockedOut(in.Username) {
		s.logger.Warn("token exchange locked out", zap.String("username", in.Username))
		return "", ErrTooManyAttempts
	}

	user, ok, err := s.codes.check(ctx, in.Username, in.ConfirmationCode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if !ok {
		n := s.recordFailure(in.Username)
		s.logger.Warn("invalid confirmation code", zap.String("username", in.Username), zap.Int("attempts", n))
		return "", NewValidationError("confirmation_code", "Invalid confirmation code.")
	}

	consumed, err := s.codes.Consume(ctx, user)
	if err != nil {
		return "", err
	}
	if !consumed {
		s.logger.Warn("confirmation code already used", zap.String("username", in.Username))
		return "", NewValidationError("confirmation_code", "Invalid confirmation code.")
	}
	s.attempts.Delete(in.Username)
	return s.tokens.Issue(user)
}

func (s *AuthService) lockedOut(username string) bool {
	if s.maxAttempts <= 0 {
		return false
	}
	v, ok := s.attempts.Get(username)
	return ok && v.(int) >= s.maxAttempts
}

func (s *AuthService) recordFailure(username string) int {
	n, err := s.attempts.IncrementInt(username, 1)
	if err != nil {
		// 键不存在或已过期，重新开始计数
		s.attempts.Set(username, 1, s.window)
		return 1
	}
	return n
}
