package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

func TestTranslateUniqueViolation(t *testing.T) {
	tests := []struct {
		constraint string
		want       string
	}{
		{"idx_users_username", "username"},
		{"idx_users_email", "email"},
		{"idx_categories_name", "name"},
		{"idx_categories_slug", "slug"},
		{"idx_genres_name", "name"},
		{"idx_genres_slug", "slug"},
		{"idx_reviews_title_author", "title"},
		{"idx_something_else", "non_field_errors"},
		{"", "non_field_errors"},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			err := translateError(&pq.Error{Code: "23505", Constraint: tt.constraint})

			var dup *DuplicateError
			if !errors.As(err, &dup) {
				t.Fatalf("translateError() = %v (%T), want *DuplicateError", err, err)
			}
			if dup.Field != tt.want {
				t.Errorf("Field = %q, want %q", dup.Field, tt.want)
			}
			if !errors.Is(err, ErrDuplicate) {
				t.Error("errors.Is(err, ErrDuplicate) = false")
			}
		})
	}
}

func TestTranslateWrappedUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert review: %w", &pq.Error{Code: "23505", Constraint: "idx_reviews_title_author"})

	var dup *DuplicateError
	if err := translateError(wrapped); !errors.As(err, &dup) || dup.Field != "title" {
		t.Errorf("translateError(wrapped) = %v", err)
	}
}

func TestTranslateOtherErrors(t *testing.T) {
	if err := translateError(nil); err != nil {
		t.Errorf("translateError(nil) = %v", err)
	}
	if err := translateError(gorm.ErrRecordNotFound); !errors.Is(err, ErrNotFound) {
		t.Errorf("translateError(ErrRecordNotFound) = %v, want ErrNotFound", err)
	}

	// 非唯一约束的驱动错误原样返回
	fk := &pq.Error{Code: "23503", Constraint: "fk_reviews_title"}
	if err := translateError(fk); err != fk {
		t.Errorf("translateError(foreign key) = %v, want original error", err)
	}
	if errors.Is(translateError(fk), ErrDuplicate) {
		t.Error("foreign key violation reported as duplicate")
	}
}

func TestLikePattern(t *testing.T) {
	tests := map[string]string{
		"Drama":   "%drama%",
		"100%":    `%100\%%`,
		"a_b":     `%a\_b%`,
		`back\sl`: `%back\\sl%`,
		"":        "%%",
	}
	for in, want := range tests {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}
