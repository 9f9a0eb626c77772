// Package permission 请求身份和按操作枚举的授权策略
package permission

import (
	"net/http"

	"github.com/user/yamdb/internal/model"
)

// Identity 已认证的请求身份，nil 表示匿名
type Identity struct {
	UserID    int64
	Username  string
	Role      model.Role
	Superuser bool
}

// FromUser 由用户记录构造身份
func FromUser(u *model.User) *Identity {
	return &Identity{
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Superuser: u.IsSuperuser,
	}
}

// hasRole 角色属于给定集合，或为超级用户
func (id *Identity) hasRole(roles ...model.Role) bool {
	if id == nil {
		return false
	}
	if id.Superuser {
		return true
	}
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}

// IsAdmin 管理员或超级用户
func (id *Identity) IsAdmin() bool {
	return id.hasRole(model.RoleAdmin)
}

// Action 操作类型
type Action int

const (
	ActionRead Action = iota
	ActionWrite
)

// ActionFromMethod GET、HEAD、OPTIONS 为读，其余为写
func ActionFromMethod(method string) Action {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionRead
	default:
		return ActionWrite
	}
}

// Policy 授权策略
type Policy int

const (
	AllowAny Policy = iota
	IsAuthenticated
	ReadOrAdminOnly
	AdminOnly
	AuthorOrAdminOrModeratorOnly
)

func (p Policy) String() string {
	switch p {
	case AllowAny:
		return "AllowAny"
	case IsAuthenticated:
		return "IsAuthenticated"
	case ReadOrAdminOnly:
		return "ReadOrAdminOnly"
	case AdminOnly:
		return "AdminOnly"
	case AuthorOrAdminOrModeratorOnly:
		return "AuthorOrAdminOrModeratorOnly"
	}
	return "Unknown"
}

// Allow 请求级判断，在处理器之前执行
func (p Policy) Allow(action Action, id *Identity) bool {
	switch p {
	case AllowAny:
		return true
	case IsAuthenticated:
		return id != nil
	case ReadOrAdminOnly:
		return action == ActionRead || id.IsAdmin()
	case AdminOnly:
		return id.IsAdmin()
	case AuthorOrAdminOrModeratorOnly:
		// 创建只要求登录，修改具体对象时再由 AllowObject 判断
		return action == ActionRead || id != nil
	}
	return false
}

// AllowObject 对象级判断，authorID 为对象作者
func (p Policy) AllowObject(action Action, id *Identity, authorID int64) bool {
	if !p.Allow(action, id) {
		return false
	}
	if p != AuthorOrAdminOrModeratorOnly || action == ActionRead {
		return true
	}
	return id.hasRole(model.RoleAdmin, model.RoleModerator) || id.UserID == authorID
}
