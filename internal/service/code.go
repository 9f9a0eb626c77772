package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/user/yamdb/internal/model"
	"github.com/user/yamdb/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// CodeAlphabet 去掉了容易混淆的 I、O、0、1、l
	CodeAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength   = 6
)

// SignupInput 注册和重发确认码的请求
type SignupInput struct {
	Username string `json:"username" validate:"required,max=150,username,notme"`
	Email    string `json:"email" validate:"required,max=254,email"`
}

// GenerateCode 生成明文确认码
func GenerateCode() (string, error) {
	size := big.NewInt(int64(len(CodeAlphabet)))
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b.WriteByte(CodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// CodeIssuer 签发和校验确认码，库里只保存 bcrypt 哈希
type CodeIssuer struct {
	users  repository.UserRepository
	cost   int
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewCodeIssuer 创建确认码签发器
func NewCodeIssuer(users repository.UserRepository, cost int, ttl time.Duration, logger *zap.Logger) *CodeIssuer {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CodeIssuer{
		users:  users,
		cost:   cost,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Issue 注册新用户并签发确认码
func (s *CodeIssuer) Issue(ctx context.Context, in SignupInput) (*model.User, string, error) {
	return s.IssueAccount(ctx, in, model.RoleUser, false)
}

// IssueAccount 以指定角色创建账号并签发确认码
// 邮箱或用户名已存在时拒绝，唯一索引冲突按同样的字段错误返回
func (s *CodeIssuer) IssueAccount(ctx context.Context, in SignupInput, role model.Role, superuser bool) (*model.User, string, error) {
	if err := validateStruct(in); err != nil {
		return nil, "", err
	}
	if err := s.ensureFree(ctx, in); err != nil {
		return nil, "", err
	}

	code, hash, expires, err := s.newCode()
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Username:                  in.Username,
		Email:                     in.Email,
		Role:                      role,
		IsSuperuser:               superuser,
		ConfirmationCode:          hash,
		ConfirmationCodeExpiresAt: &expires,
		DateJoined:                s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", mapRepoError(err)
	}

	s.logger.Info("confirmation code issued", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, code, nil
}

func (s *CodeIssuer) ensureFree(ctx context.Context, in SignupInput) error {
	verr := &ValidationError{}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		verr.Add("email", duplicateMessages["email"])
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		verr.Add("username", duplicateMessages["username"])
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// Reissue 为用户名和邮箱都匹配的已有账号重新签发确认码，旧码随即失效
func (s *CodeIssuer) Reissue(ctx context.Context, in SignupInput) (*model.User, string, error) {
	if err := validateStruct(in); err != nil {
		return nil, "", err
	}
	user, err := s.users.FindByUsername(ctx, in.Username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}
	if user == nil || user.Email != in.Email {
		return nil, "", NewValidationError("non_field_errors", "No account matches this username and email.")
	}

	code, hash, expires, err := s.newCode()
	if err != nil {
		return nil, "", err
	}
	user.ConfirmationCode = hash
	user.ConfirmationCodeExpiresAt = &expires
	if err := s.users.Update(ctx, user); err != nil {
		return nil, "", mapRepoError(err)
	}

	s.logger.Info("confirmation code reissued", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, code, nil
}

// Discard 删除确认码未能送达的新账号，便于用户重新注册
func (s *CodeIssuer) Discard(ctx context.Context, user *model.User) error {
	return mapRepoError(s.users.Delete(ctx, user.ID))
}

func (s *CodeIssuer) newCode() (code, hash string, expires time.Time, err error) {
	code, err = GenerateCode()
	if err != nil {
		return "", "", time.Time{}, err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(code), s.cost)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return code, string(h), s.now().Add(s.ttl), nil
}

// Verify 校验确认码，用户不存在时返回 ErrNotFound
func (s *CodeIssuer) Verify(ctx context.Context, username, code string) (bool, error) {
	_, ok, err := s.check(ctx, username, code)
	return ok, err
}

func (s *CodeIssuer) check(ctx context.Context, username, code string) (*model.User, bool, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, false, mapRepoError(err)
	}
	if user.ConfirmationCode == "" {
		return user, false, nil
	}
	if user.ConfirmationCodeExpiresAt != nil && s.now().After(*user.ConfirmationCodeExpiresAt) {
		return user, false, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(user.ConfirmationCode), []byte(code)) != nil {
		return user, false, nil
	}
	return user, true, nil
}

// Consume 作废已校验过的确认码，确认码已被他人用掉时返回 false
func (s *CodeIssuer) Consume(ctx context.Context, user *model.User) (bool, error) {
	ok, err := s.users.ConsumeCode(ctx, user.ID, user.ConfirmationCode)
	if err != nil {
		return false, mapRepoError(err)
	}
	if ok {
		user.ConfirmationCode = ""
		user.ConfirmationCodeExpiresAt = nil
	}
	return ok, nil
}
