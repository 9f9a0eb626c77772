package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/user/yamdb/internal/config"
	"github.com/user/yamdb/internal/mail"
	"github.com/user/yamdb/internal/model"
	"github.com/user/yamdb/internal/permission"
	"github.com/user/yamdb/internal/repository"
	"github.com/user/yamdb/internal/repository/memory"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "this-is-a-test-secret-with-32-bytes!"

// =============================================================================
// Test Helpers
// =============================================================================

type captureSender struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (c *captureSender) Send(_ context.Context, msg mail.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

// lastCode 最近一封邮件中的确认码
func (c *captureSender) lastCode(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		t.Fatal("no mail sent")
	}
	return strings.TrimPrefix(c.sent[len(c.sent)-1].Body, "Your confirmation code: ")
}

func testConfig() *config.Config {
	return &config.Config{
		AppSecret:         testSecret,
		JWTExpiry:         time.Hour,
		BcryptCost:        bcrypt.MinCost,
		CodeTTL:           time.Hour,
		CodeMaxAttempts:   3,
		CodeAttemptWindow: time.Minute,
		MailFrom:          "noreply@yamdb.local",
		IdentityCacheSize: 16,
		IdentityCacheTTL:  time.Minute,
	}
}

type fixture struct {
	repos  *repository.Repositories
	svc    *Services
	mailer *captureSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.NewRepositories()
	mailer := &captureSender{}
	return &fixture{
		repos:  repos,
		svc:    New(repos, testConfig(), mailer, zap.NewNop()),
		mailer: mailer,
	}
}

func (f *fixture) user(t *testing.T, username string, role model.Role) *permission.Identity {
	t.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", Role: role, DateJoined: time.Now()}
	if err := f.repos.User.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return permission.FromUser(u)
}

func (f *fixture) title(t *testing.T) *model.Title {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.Categories.Create(ctx, TaxonomyInput{Name: "Фильм", Slug: "movie"}); err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := f.svc.Genres.Create(ctx, TaxonomyInput{Name: "Драма", Slug: "drama"}); err != nil {
		t.Fatalf("create genre: %v", err)
	}
	title, err := f.svc.Titles.Create(ctx, TitleInput{Name: "Солярис", Year: 1972, Genre: []string{"drama"}, Category: "movie"})
	if err != nil {
		t.Fatalf("create title: %v", err)
	}
	return title
}

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error = %v (%T), want *ValidationError", err, err)
	}
	return verr.Fields
}
