package service

import (
	"context"
	"time"

	"github.com/user/yamdb/internal/model"
	"github.com/user/yamdb/internal/permission"
	"github.com/user/yamdb/internal/repository"
)

// UserInput 管理员创建用户
type UserInput struct {
	Username  string     `json:"username" validate:"required,max=150,username,notme"`
	Email     string     `json:"email" validate:"required,max=254,email"`
	FirstName string     `json:"first_name" validate:"max=150"`
	LastName  string     `json:"last_name" validate:"max=150"`
	Bio       string     `json:"bio"`
	Role      model.Role `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

// UserPatch 部分更新，nil 表示不修改
type UserPatch struct {
	Username  *string     `json:"username" validate:"omitempty,max=150,username,notme"`
	Email     *string     `json:"email" validate:"omitempty,max=254,email"`
	FirstName *string     `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string     `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string     `json:"bio"`
	Role      *model.Role `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

func (p *UserPatch) apply(u *model.User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}

// UserService 用户管理和个人资料
type UserService struct {
	users      repository.UserRepository
	identities *Identities
}

func NewUserService(users repository.UserRepository, identities *Identities) *UserService {
	return &UserService{users: users, identities: identities}
}

func (s *UserService) List(ctx context.Context, search string, page repository.Page) ([]*model.User, int64, error) {
	return s.users.List(ctx, search, page)
}

func (s *UserService) Get(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	return user, mapRepoError(err)
}

// Create 管理员创建用户，不签发确认码，用户通过重发接口获取
func (s *UserService) Create(ctx context.Context, in UserInput) (*model.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	user := &model.User{
		Username:   in.Username,
		Email:      in.Email,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Bio:        in.Bio,
		Role:       in.Role,
		DateJoined: time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapRepoError(err)
	}
	return user, nil
}

// Update 管理员修改用户，包括角色
func (s *UserService) Update(ctx context.Context, username string, patch UserPatch) (*model.User, error) {
	user, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, user, patch)
}

func (s *UserService) save(ctx context.Context, user *model.User, patch UserPatch) (*model.User, error) {
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	patch.apply(user)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapRepoError(err)
	}
	s.identities.Forget(user.ID)
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	user, err := s.Get(ctx, username)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return mapRepoError(err)
	}
	s.identities.Forget(user.ID)
	return nil
}

// Me 当前用户的资料
func (s *UserService) Me(ctx context.Context, actor *permission.Identity) (*model.User, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return user, nil
}

// UpdateMe 修改自己的资料，角色只读
func (s *UserService) UpdateMe(ctx context.Context, actor *permission.Identity, patch UserPatch) (*model.User, error) {
	user, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	patch.Role = nil
	return s.save(ctx, user, patch)
}

// DeleteMe 不允许删除自己
func (s *UserService) DeleteMe(_ context.Context, _ *permission.Identity) error {
	return ErrMethodNotAllowed
}
