package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/user/yamdb/internal/permission"
	"github.com/user/yamdb/internal/repository"
	"github.com/user/yamdb/internal/utils"
	"golang.org/x/sync/singleflight"
)

// Identities 把令牌中的用户 ID 解析为当前的身份
// 角色变更和删除在缓存过期或 Forget 之后生效
type Identities struct {
	users repository.UserRepository
	cache *utils.TTLCache[int64, *permission.Identity]
	sf    singleflight.Group

	// gen 每次 Forget 递增，进行中的加载据此判断结果是否已过时
	mu  sync.Mutex
	gen map[int64]uint64
}

func NewIdentities(users repository.UserRepository, size int, ttl time.Duration) *Identities {
	return &Identities{
		users: users,
		cache: utils.NewTTLCache[int64, *permission.Identity](size, ttl),
		gen:   make(map[int64]uint64),
	}
}

// Resolve 用户已删除时返回 ErrUnauthenticated
func (s *Identities) Resolve(ctx context.Context, userID int64) (*permission.Identity, error) {
	if id, ok := s.cache.Get(userID); ok {
		return id, nil
	}

	v, err, _ := s.sf.Do(strconv.FormatInt(userID, 10), func() (interface{}, error) {
		gen := s.generation(userID)
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return nil, mapRepoError(err)
		}
		id := permission.FromUser(user)

		s.mu.Lock()
		if s.gen[userID] == gen {
			s.cache.Set(userID, id)
		}
		s.mu.Unlock()
		return id, nil
	})
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return v.(*permission.Identity), nil
}

// Forget 用户变更后清除缓存
func (s *Identities) Forget(userID int64) {
	s.mu.Lock()
	s.gen[userID]++
	s.cache.Delete(userID)
	s.mu.Unlock()
	s.sf.Forget(strconv.FormatInt(userID, 10))
}

func (s *Identities) generation(userID int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[userID]
}
