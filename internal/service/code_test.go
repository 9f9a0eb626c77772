package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/user/yamdb/internal/model"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode() error = %v", err)
		}
		if len(code) != CodeLength {
			t.Fatalf("len(%q) = %d, want %d", code, len(code), CodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(CodeAlphabet, r) {
				t.Fatalf("code %q contains %q outside alphabet", code, r)
			}
		}
		seen[code] = true
	}
	if len(seen) < 190 {
		t.Errorf("only %d distinct codes out of 200", len(seen))
	}
	for _, r := range "IO01l" {
		if strings.ContainsRune(CodeAlphabet, r) {
			t.Errorf("alphabet contains ambiguous %q", r)
		}
	}
}

func TestIssueRejectsReservedUsername(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"me", "ME", "Me"} {
		_, _, err := f.svc.Codes.Issue(context.Background(), SignupInput{Username: name, Email: "x@example.com"})
		if _, ok := fieldErrors(t, err)["username"]; !ok {
			t.Errorf("Issue(%q) should fail on username, got %v", name, err)
		}
	}
}

func TestIssueRejectsExistingAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, _, err := f.svc.Codes.Issue(ctx, SignupInput{Username: "alice", Email: "alice@example.com"}); err != nil {
		t.Fatalf("first Issue() error = %v", err)
	}

	tests := []struct {
		name  string
		in    SignupInput
		field string
	}{
		{"same pair", SignupInput{Username: "alice", Email: "alice@example.com"}, "email"},
		{"email taken", SignupInput{Username: "bob", Email: "alice@example.com"}, "email"},
		{"username taken", SignupInput{Username: "alice", Email: "other@example.com"}, "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.svc.Codes.Issue(ctx, tt.in)
			if _, ok := fieldErrors(t, err)[tt.field]; !ok {
				t.Errorf("Issue() errors = %v, want field %q", err, tt.field)
			}
		})
	}
}

func TestIssueStoresOnlyHash(t *testing.T) {
	f := newFixture(t)
	user, code, err := f.svc.Codes.Issue(context.Background(), SignupInput{Username: "alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if user.ConfirmationCode == code {
		t.Fatal("plaintext code stored")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.ConfirmationCode), []byte(code)) != nil {
		t.Error("stored hash does not match code")
	}
	if user.Role != model.RoleUser || user.IsSuperuser {
		t.Errorf("role = %s superuser = %v", user.Role, user.IsSuperuser)
	}
}

func TestVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, code, _ := f.svc.Codes.Issue(ctx, SignupInput{Username: "alice", Email: "alice@example.com"})

	if ok, err := f.svc.Codes.Verify(ctx, "alice", code); err != nil || !ok {
		t.Errorf("Verify(correct) = %v, %v", ok, err)
	}
	if ok, _ := f.svc.Codes.Verify(ctx, "alice", "wrong1"); ok {
		t.Error("Verify(wrong) = true")
	}
	if _, err := f.svc.Codes.Verify(ctx, "nobody", code); !errors.Is(err, ErrNotFound) {
		t.Errorf("Verify(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestReissueInvalidatesPreviousCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := SignupInput{Username: "alice", Email: "alice@example.com"}
	_, oldCode, _ := f.svc.Codes.Issue(ctx, in)

	_, newCode, err := f.svc.Codes.Reissue(ctx, in)
	if err != nil {
		t.Fatalf("Reissue() error = %v", err)
	}
	if ok, _ := f.svc.Codes.Verify(ctx, "alice", newCode); !ok {
		t.Error("new code should verify")
	}
	if oldCode != newCode {
		if ok, _ := f.svc.Codes.Verify(ctx, "alice", oldCode); ok {
			t.Error("old code should stop verifying after reissue")
		}
	}
}

func TestReissueRequiresMatchingPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, _ = f.svc.Codes.Issue(ctx, SignupInput{Username: "alice", Email: "alice@example.com"})

	for _, in := range []SignupInput{
		{Username: "alice", Email: "other@example.com"},
		{Username: "nobody", Email: "alice@example.com"},
	} {
		_, _, err := f.svc.Codes.Reissue(ctx, in)
		if _, ok := fieldErrors(t, err)["non_field_errors"]; !ok {
			t.Errorf("Reissue(%+v) error = %v", in, err)
		}
	}
}

func TestExpiredCodeFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, code, _ := f.svc.Codes.Issue(ctx, SignupInput{Username: "alice", Email: "alice@example.com"})

	f.svc.Codes.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if ok, _ := f.svc.Codes.Verify(ctx, "alice", code); ok {
		t.Error("expired code verified")
	}
}

func TestConsumeMakesCodeSingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, code, _ := f.svc.Codes.Issue(ctx, SignupInput{Username: "alice", Email: "alice@example.com"})

	stale := *user
	if ok, err := f.svc.Codes.Consume(ctx, user); err != nil || !ok {
		t.Fatalf("Consume() = %v, %v", ok, err)
	}
	if ok, _ := f.svc.Codes.Verify(ctx, "alice", code); ok {
		t.Error("consumed code verified")
	}
	if ok, _ := f.svc.Codes.Consume(ctx, &stale); ok {
		t.Error("second Consume() of the same code succeeded")
	}
}
