package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/user/yamdb/internal/repository"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("you do not have permission to perform this action")
	ErrUnauthenticated  = errors.New("authentication credentials were not provided")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrTooManyAttempts  = errors.New("too many failed attempts, try again later")
)

// ValidationError 字段级校验失败
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError 单字段校验错误
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// duplicateMessages 唯一约束冲突的提示
var duplicateMessages = map[string]string{
	"username": "A user with that username already exists.",
	"email":    "A user with that email already exists.",
	"name":     "An object with this name already exists.",
	"slug":     "An object with this slug already exists.",
	"title":    "You have already reviewed this title.",
}

// mapRepoError 把仓库错误转换为服务错误
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	var dup *repository.DuplicateError
	if errors.As(err, &dup) {
		msg, ok := duplicateMessages[dup.Field]
		if !ok {
			msg = "Duplicate value."
		}
		return NewValidationError(dup.Field, msg)
	}
	return err
}
