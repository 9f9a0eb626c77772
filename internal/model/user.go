package model

import (
	"time"
)

// Role 用户角色
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Roles 全部合法角色
var Roles = []Role{RoleUser, RoleModerator, RoleAdmin}

// Valid 判断角色是否属于枚举
func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User 用户模型
// ConfirmationCode 只保存 bcrypt 哈希，明文码只在签发时出现一次
type User struct {
	ID                        int64      `gorm:"primaryKey"`
	Username                  string     `gorm:"size:150;not null;uniqueIndex:idx_users_username"`
	Email                     string     `gorm:"size:254;not null;uniqueIndex:idx_users_email"`
	FirstName                 string     `gorm:"size:150"`
	LastName                  string     `gorm:"size:150"`
	Bio                       string     `gorm:"type:text"`
	Role                      Role       `gorm:"type:varchar(9);not null;default:user"`
	ConfirmationCode          string     `gorm:"size:128"`
	ConfirmationCodeExpiresAt *time.Time
	IsSuperuser               bool `gorm:"not null;default:false"`
	DateJoined                time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}
