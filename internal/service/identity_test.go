package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/user/yamdb/internal/model"
	"github.com/user/yamdb/internal/repository"
)

// gatedUsers 读到用户后停住，直到 release 关闭
type gatedUsers struct {
	repository.UserRepository
	loaded  chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedUsers) FindByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := g.UserRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshot := *u
	g.once.Do(func() { close(g.loaded) })
	<-g.release
	return &snapshot, nil
}

func TestIdentitiesResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice", model.RoleUser)

	id, err := f.svc.Identities.Resolve(ctx, alice.UserID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id.Username != "alice" || id.Role != model.RoleUser {
		t.Errorf("Resolve() = %+v", id)
	}
}

func TestIdentitiesSeeRoleChangeAfterUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice", model.RoleUser)
	_, _ = f.svc.Identities.Resolve(ctx, alice.UserID)

	role := model.RoleModerator
	if _, err := f.svc.Users.Update(ctx, "alice", UserPatch{Role: &role}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	id, _ := f.svc.Identities.Resolve(ctx, alice.UserID)
	if id.Role != model.RoleModerator {
		t.Errorf("role after update = %s, want moderator", id.Role)
	}
}

func TestIdentitiesDeletedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice", model.RoleUser)
	_, _ = f.svc.Identities.Resolve(ctx, alice.UserID)

	if err := f.svc.Users.Delete(ctx, "alice"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := f.svc.Identities.Resolve(ctx, alice.UserID); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Resolve(deleted) error = %v, want ErrUnauthenticated", err)
	}
}

func TestIdentitiesLoadInFlightDuringDemotion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boss := f.user(t, "boss", model.RoleAdmin)

	gated := &gatedUsers{
		UserRepository: f.repos.User,
		loaded:         make(chan struct{}),
		release:        make(chan struct{}),
	}
	identities := NewIdentities(gated, 16, time.Minute)
	users := NewUserService(f.repos.User, identities)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = identities.Resolve(ctx, boss.UserID)
	}()
	<-gated.loaded

	role := model.RoleUser
	if _, err := users.Update(ctx, "boss", UserPatch{Role: &role}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	close(gated.release)
	<-done

	id, err := identities.Resolve(ctx, boss.UserID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id.Role != model.RoleUser {
		t.Errorf("role after demotion = %s, want user", id.Role)
	}
}
