package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 违反唯一约束
	ErrDuplicate = errors.New("duplicate record")
)

// DuplicateError 唯一约束冲突，Field 为冲突字段
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return "duplicate value for " + e.Field
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

const uniqueViolation = "23505"

// 约束名到字段名
var constraintFields = map[string]string{
	"idx_users_username":       "username",
	"idx_users_email":          "email",
	"idx_categories_name":      "name",
	"idx_categories_slug":      "slug",
	"idx_genres_name":          "name",
	"idx_genres_slug":          "slug",
	"idx_reviews_title_author": "title",
}

// translateError 把驱动错误转换为仓库错误
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return &DuplicateError{Field: fieldFromConstraint(pqErr.Constraint)}
	}
	return err
}

func fieldFromConstraint(constraint string) string {
	if field, ok := constraintFields[constraint]; ok {
		return field
	}
	return "non_field_errors"
}

// likePattern 生成不区分大小写的包含匹配模式
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(s)) + "%"
}
