package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/user/yamdb/internal/mail"
	"github.com/user/yamdb/internal/model"
	"github.com/user/yamdb/internal/repository"
	"github.com/user/yamdb/internal/repository/memory"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// flakySender 前 failures 次发送返回错误
type flakySender struct {
	captureSender
	failures int
}

func (s *flakySender) Send(ctx context.Context, msg mail.Message) error {
	s.mu.Lock()
	if s.failures > 0 {
		s.failures--
		s.mu.Unlock()
		return errors.New("smtp unavailable")
	}
	s.mu.Unlock()
	return s.captureSender.Send(ctx, msg)
}

// rendezvousUsers 让并发的 FindByUsername 都读到同一份数据后再继续
type rendezvousUsers struct {
	repository.UserRepository
	arrived sync.WaitGroup
}

func (r *rendezvousUsers) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := r.UserRepository.FindByUsername(ctx, username)
	r.arrived.Done()
	r.arrived.Wait()
	return u, err
}

func TestSignupSendsCode(t *testing.T) {
	f := newFixture(t)
	out, err := f.svc.Auth.Signup(context.Background(), SignupInput{Username: "alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if out.Username != "alice" || out.Email != "alice@example.com" {
		t.Errorf("Signup() = %+v", out)
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(f.mailer.sent))
	}
	msg := f.mailer.sent[0]
	if msg.To[0] != "alice@example.com" || msg.Subject != "Confirmation code for token" {
		t.Errorf("mail = %+v", msg)
	}
	if code := f.mailer.lastCode(t); len(code) != CodeLength {
		t.Errorf("mailed code %q", code)
	}
}

func TestSignupInvalidInputSendsNothing(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Auth.Signup(context.Background(), SignupInput{Username: "bad name!", Email: "not-an-email"})
	fields := fieldErrors(t, err)
	if _, ok := fields["username"]; !ok {
		t.Error("expected username error")
	}
	if _, ok := fields["email"]; !ok {
		t.Error("expected email error")
	}
	if len(f.mailer.sent) != 0 {
		t.Error("mail sent for invalid signup")
	}
}

func TestExchangeToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.Auth.Signup(ctx, SignupInput{Username: "alice", Email: "alice@example.com"})
	code := f.mailer.lastCode(t)

	token, err := f.svc.Auth.ExchangeToken(ctx, TokenInput{Username: "alice", ConfirmationCode: code})
	if err != nil {
		t.Fatalf("ExchangeToken() error = %v", err)
	}
	claims, err := f.svc.Tokens.Parse(token)
	if err != nil || claims.Username != "alice" {
		t.Fatalf("Parse() = %+v, %v", claims, err)
	}

	// 确认码只能使用一次
	_, err = f.svc.Auth.ExchangeToken(ctx, TokenInput{Username: "alice", ConfirmationCode: code})
	if _, ok := fieldErrors(t, err)["confirmation_code"]; !ok {
		t.Errorf("reused code error = %v", err)
	}
}

func TestExchangeTokenErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.Auth.Signup(ctx, SignupInput{Username: "alice", Email: "alice@example.com"})

	_, err := f.svc.Auth.ExchangeToken(ctx, TokenInput{Username: "alice", ConfirmationCode: "wrong1"})
	if _, ok := fieldErrors(t, err)["confirmation_code"]; !ok {
		t.Errorf("wrong code error = %v", err)
	}

	_, err = f.svc.Auth.ExchangeToken(ctx, TokenInput{Username: "nobody", ConfirmationCode: "abcdef"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user error = %v, want ErrNotFound", err)
	}

	_, err = f.svc.Auth.ExchangeToken(ctx, TokenInput{})
	fields := fieldErrors(t, err)
	if _, ok := fields["username"]; !ok {
		t.Errorf("missing username not reported: %v", fields)
	}
	if _, ok := fields["confirmation_code"]; !ok {
		t.Errorf("missing code not reported: %v", fields)
	}
}

func TestExchangeTokenLockout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.Auth.Signup(ctx, SignupInput{Username: "alice", Email: "alice@example.com"})
	code := f.mailer.lastCode(t)

	for i := 0; i < testConfig().CodeMaxAttempts; i++ {
		_, _ = f.svc.Auth.ExchangeToken(ctx, TokenInput{Username: "alice", ConfirmationCode: "wrong1"})
	}
	_, err := f.svc.Auth.ExchangeToken(ctx, TokenInput{Username: "alice", ConfirmationCode: code})
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("error after lockout = %v, want ErrTooManyAttempts", err)
	}
}

func TestResendCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := SignupInput{Username: "alice", Email: "alice@example.com"}
	_, _ = f.svc.Auth.Signup(ctx, in)

	if _, err := f.svc.Auth.ResendCode(ctx, in); err != nil {
		t.Fatalf("ResendCode() error = %v", err)
	}
	if len(f.mailer.sent) != 2 {
		t.Fatalf("sent %d mails, want 2", len(f.mailer.sent))
	}
	if _, err := f.svc.Auth.ExchangeToken(ctx, TokenInput{Username: "alice", ConfirmationCode: f.mailer.lastCode(t)}); err != nil {
		t.Errorf("ExchangeToken(resent code) error = %v", err)
	}
}

func TestExchangeTokenConcurrentReuse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.Auth.Signup(ctx, SignupInput{Username: "alice", Email: "alice@example.com"})
	code := f.mailer.lastCode(t)

	const callers = 2
	users := &rendezvousUsers{UserRepository: f.repos.User}
	users.arrived.Add(callers)
	codes := NewCodeIssuer(users, bcrypt.MinCost, time.Hour, zap.NewNop())
	auth := NewAuthService(codes, f.svc.Tokens, f.mailer, AuthOptions{MaxAttempts: 3, Window: time.Minute}, zap.NewNop())

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := auth.ExchangeToken(ctx, TokenInput{Username: "alice", ConfirmationCode: code}); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("successful exchanges = %d, want 1", successes)
	}
}

func TestSignupRolledBackWhenMailFails(t *testing.T) {
	repos := memory.NewRepositories()
	mailer := &flakySender{failures: 1}
	svc := New(repos, testConfig(), mailer, zap.NewNop())
	ctx := context.Background()
	in := SignupInput{Username: "alice", Email: "alice@example.com"}

	if _, err := svc.Auth.Signup(ctx, in); err == nil {
		t.Fatal("Signup() with failing mailer succeeded")
	}
	if _, err := repos.User.FindByUsername(ctx, "alice"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("user kept after failed mail: %v", err)
	}

	if _, err := svc.Auth.Signup(ctx, in); err != nil {
		t.Fatalf("retried Signup() error = %v", err)
	}
	if _, err := svc.Auth.ExchangeToken(ctx, TokenInput{Username: "alice", ConfirmationCode: mailer.lastCode(t)}); err != nil {
		t.Errorf("ExchangeToken() after retry error = %v", err)
	}
}
