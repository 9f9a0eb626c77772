// Package memory 进程内仓库实现，约束和级联行为与 postgres 实现一致
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/user/yamdb/internal/model"
	"github.com/user/yamdb/internal/repository"
)

type titleRow struct {
	title    model.Title
	genreIDs []int64
}

// Store 内存存储，所有仓库共享同一把锁
type Store struct {
	mu sync.RWMutex

	nextID int64

	users      map[int64]model.User
	categories map[int64]model.Category
	genres     map[int64]model.Genre
	titles     map[int64]titleRow
	reviews    map[int64]model.Review
	comments   map[int64]model.Comment
}

// NewStore 创建空存储
func NewStore() *Store {
	return &Store{
		users:      make(map[int64]model.User),
		categories: make(map[int64]model.Category),
		genres:     make(map[int64]model.Genre),
		titles:     make(map[int64]titleRow),
		reviews:    make(map[int64]model.Review),
		comments:   make(map[int64]model.Comment),
	}
}

// NewRepositories 创建基于内存存储的仓库集合
func NewRepositories() *repository.Repositories {
	return NewStore().Repositories()
}

// Repositories 返回共享本存储的仓库集合
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:     &userRepo{s},
		Category: &categoryRepo{s},
		Genre:    &genreRepo{s},
		Title:    &titleRepo{s},
		Review:   &reviewRepo{s},
		Comment:  &commentRepo{s},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func paginate[T any](items []T, page repository.Page) []T {
	if page.Offset >= len(items) {
		return []T{}
	}
	items = items[page.Offset:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

func contains(s, search string) bool {
	return search == "" || strings.Contains(strings.ToLower(s), strings.ToLower(search))
}

// deleteReviewLocked 删除评论及其回复
func (s *Store) deleteReviewLocked(id int64) {
	delete(s.reviews, id)
	for cid, c := range s.comments {
		if c.ReviewID == id {
			delete(s.comments, cid)
		}
	}
}

func (s *Store) authorLocked(id int64) *model.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return &u
}

// ==================== 用户 ====================

type userRepo struct{ s *Store }

func (r *userRepo) uniqueLocked(u *model.User) error {
	for _, other := range r.s.users {
		if other.ID == u.ID {
			continue
		}
		if other.Username == u.Username {
			return &repository.DuplicateError{Field: "username"}
		}
		if other.Email == u.Email {
			return &repository.DuplicateError{Field: "email"}
		}
	}
	return nil
}

func (r *userRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.ID = 0
	if err := r.uniqueLocked(user); err != nil {
		return err
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	user.ID = r.s.id()
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) Update(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	if err := r.uniqueLocked(user); err != nil {
		return err
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	for rid, rv := range r.s.reviews {
		if rv.AuthorID == id {
			r.s.deleteReviewLocked(rid)
		}
	}
	for cid, c := range r.s.comments {
		if c.AuthorID == id {
			delete(r.s.comments, cid)
		}
	}
	return nil
}

func (r *userRepo) ConsumeCode(_ context.Context, id int64, hash string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok || hash == "" || u.ConfirmationCode != hash {
		return false, nil
	}
	u.ConfirmationCode = ""
	u.ConfirmationCodeExpiresAt = nil
	r.s.users[id] = u
	return true, nil
}

func (r *userRepo) find(match func(u *model.User) bool) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(&u) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id })
}

func (r *userRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username })
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *userRepo) List(_ context.Context, search string, page repository.Page) ([]*model.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var users []*model.User
	for _, u := range r.s.users {
		if contains(u.Username, search) {
			u := u
			users = append(users, &u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return paginate(users, page), int64(len(users)), nil
}

// ==================== 分类和类型 ====================

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Create(_ context.Context, category *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.categories {
		if other.Name == category.Name {
			return &repository.DuplicateError{Field: "name"}
		}
		if other.Slug == category.Slug {
			return &repository.DuplicateError{Field: "slug"}
		}
	}
	category.ID = r.s.id()
	r.s.categories[category.ID] = *category
	return nil
}

func (r *categoryRepo) FindBySlug(_ context.Context, slug string) (*model.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

// DeleteBySlug 删除分类，引用它的作品分类置空
func (r *categoryRepo) DeleteBySlug(_ context.Context, slug string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, c := range r.s.categories {
		if c.Slug != slug {
			continue
		}
		delete(r.s.categories, id)
		for tid, row := range r.s.titles {
			if row.title.CategoryID != nil && *row.title.CategoryID == id {
				row.title.CategoryID = nil
				r.s.titles[tid] = row
			}
		}
		return nil
	}
	return repository.ErrNotFound
}

func (r *categoryRepo) List(_ context.Context, search string, page repository.Page) ([]*model.Category, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []*model.Category
	for _, c := range r.s.categories {
		if contains(c.Name, search) {
			c := c
			items = append(items, &c)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return paginate(items, page), int64(len(items)), nil
}

type genreRepo struct{ s *Store }

func (r *genreRepo) Create(_ context.Context, genre *model.Genre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.genres {
		if other.Name == genre.Name {
			return &repository.DuplicateError{Field: "name"}
		}
		if other.Slug == genre.Slug {
			return &repository.DuplicateError{Field: "slug"}
		}
	}
	genre.ID = r.s.id()
	r.s.genres[genre.ID] = *genre
	return nil
}

func (r *genreRepo) FindBySlug(_ context.Context, slug string) (*model.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, g := range r.s.genres {
		if g.Slug == slug {
			return &g, nil
		}
	}
	return nil, repository.ErrNotFound
}

// DeleteBySlug 删除类型，并从作品的类型列表中移除
func (r *genreRepo) DeleteBySlug(_ context.Context, slug string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, g := range r.s.genres {
		if g.Slug != slug {
			continue
		}
		delete(r.s.genres, id)
		for tid, row := range r.s.titles {
			kept := row.genreIDs[:0:0]
			for _, gid := range row.genreIDs {
				if gid != id {
					kept = append(kept, gid)
				}
			}
			row.genreIDs = kept
			r.s.titles[tid] = row
		}
		return nil
	}
	return repository.ErrNotFound
}

func (r *genreRepo) List(_ context.Context, search string, page repository.Page) ([]*model.Genre, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []*model.Genre
	for _, g := range r.s.genres {
		if contains(g.Name, search) {
			g := g
			items = append(items, &g)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return paginate(items, page), int64(len(items)), nil
}

// ==================== 作品 ====================

type titleRepo struct{ s *Store }

func rowFrom(title *model.Title) titleRow {
	row := titleRow{title: *title}
	row.title.Category = nil
	row.title.Genres = nil
	row.title.Rating = nil
	for _, g := range title.Genres {
		row.genreIDs = append(row.genreIDs, g.ID)
	}
	return row
}

// hydrateLocked 补全分类、类型和评分
func (r *titleRepo) hydrateLocked(row titleRow) *model.Title {
	t := row.title
	if t.CategoryID != nil {
		if c, ok := r.s.categories[*t.CategoryID]; ok {
			t.Category = &c
		}
	}
	t.Genres = []model.Genre{}
	for _, gid := range row.genreIDs {
		if g, ok := r.s.genres[gid]; ok {
			t.Genres = append(t.Genres, g)
		}
	}
	sort.Slice(t.Genres, func(i, j int) bool { return t.Genres[i].ID < t.Genres[j].ID })

	var scores []int
	for _, rv := range r.s.reviews {
		if rv.TitleID == t.ID {
			scores = append(scores, rv.Score)
		}
	}
	t.Rating = model.AverageScore(scores)
	return &t
}

func (r *titleRepo) Create(_ context.Context, title *model.Title) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	title.ID = r.s.id()
	r.s.titles[title.ID] = rowFrom(title)
	return nil
}

func (r *titleRepo) Update(_ context.Context, title *model.Title) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.titles[title.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.titles[title.ID] = rowFrom(title)
	return nil
}

// Delete 删除作品，评论及其回复级联删除
func (r *titleRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.titles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.titles, id)
	for rid, rv := range r.s.reviews {
		if rv.TitleID == id {
			r.s.deleteReviewLocked(rid)
		}
	}
	return nil
}

func (r *titleRepo) FindByID(_ context.Context, id int64) (*model.Title, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.titles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.hydrateLocked(row), nil
}

func (r *titleRepo) List(_ context.Context, f repository.TitleFilter, page repository.Page) ([]*model.Title, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var titles []*model.Title
	for _, row := range r.s.titles {
		t := r.hydrateLocked(row)
		if f.Category != "" && (t.Category == nil || t.Category.Slug != f.Category) {
			continue
		}
		if f.Genre != "" && !hasGenre(t, f.Genre) {
			continue
		}
		if !contains(t.Name, f.Name) {
			continue
		}
		if f.Year != nil && t.Year != *f.Year {
			continue
		}
		titles = append(titles, t)
	}
	sort.Slice(titles, func(i, j int) bool { return titles[i].ID < titles[j].ID })
	return paginate(titles, page), int64(len(titles)), nil
}

func hasGenre(t *model.Title, slug string) bool {
	for _, g := range t.Genres {
		if g.Slug == slug {
			return true
		}
	}
	return false
}

// ==================== 评论和回复 ====================

type reviewRepo struct{ s *Store }

func (r *reviewRepo) Create(_ context.Context, review *model.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.titles[review.TitleID]; !ok {
		return repository.ErrNotFound
	}
	for _, other := range r.s.reviews {
		if other.TitleID == review.TitleID && other.AuthorID == review.AuthorID {
			return &repository.DuplicateError{Field: "title"}
		}
	}
	review.ID = r.s.id()
	stored := *review
	stored.Title = nil
	stored.Author = nil
	r.s.reviews[review.ID] = stored
	return nil
}

func (r *reviewRepo) Update(_ context.Context, review *model.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.reviews[review.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Text = review.Text
	stored.Score = review.Score
	r.s.reviews[review.ID] = stored
	return nil
}

func (r *reviewRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	r.s.deleteReviewLocked(id)
	return nil
}

func (r *reviewRepo) FindByID(_ context.Context, titleID, id int64) (*model.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rv, ok := r.s.reviews[id]
	if !ok || rv.TitleID != titleID {
		return nil, repository.ErrNotFound
	}
	rv.Author = r.s.authorLocked(rv.AuthorID)
	return &rv, nil
}

// ListByTitle 新的在前
func (r *reviewRepo) ListByTitle(_ context.Context, titleID int64, page repository.Page) ([]*model.Review, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var reviews []*model.Review
	for _, rv := range r.s.reviews {
		if rv.TitleID == titleID {
			rv := rv
			rv.Author = r.s.authorLocked(rv.AuthorID)
			reviews = append(reviews, &rv)
		}
	}
	sort.Slice(reviews, func(i, j int) bool {
		if !reviews[i].PubDate.Equal(reviews[j].PubDate) {
			return reviews[i].PubDate.After(reviews[j].PubDate)
		}
		return reviews[i].ID > reviews[j].ID
	})
	return paginate(reviews, page), int64(len(reviews)), nil
}

func (r *reviewRepo) ExistsByAuthor(_ context.Context, titleID, authorID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rv := range r.s.reviews {
		if rv.TitleID == titleID && rv.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(_ context.Context, comment *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reviews[comment.ReviewID]; !ok {
		return repository.ErrNotFound
	}
	comment.ID = r.s.id()
	stored := *comment
	stored.Review = nil
	stored.Author = nil
	r.s.comments[comment.ID] = stored
	return nil
}

func (r *commentRepo) Update(_ context.Context, comment *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.comments[comment.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Text = comment.Text
	r.s.comments[comment.ID] = stored
	return nil
}

func (r *commentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r *commentRepo) FindByID(_ context.Context, reviewID, id int64) (*model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok || c.ReviewID != reviewID {
		return nil, repository.ErrNotFound
	}
	c.Author = r.s.authorLocked(c.AuthorID)
	return &c, nil
}

func (r *commentRepo) ListByReview(_ context.Context, reviewID int64, page repository.Page) ([]*model.Comment, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var comments []*model.Comment
	for _, c := range r.s.comments {
		if c.ReviewID == reviewID {
			c := c
			c.Author = r.s.authorLocked(c.AuthorID)
			comments = append(comments, &c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].PubDate.Equal(comments[j].PubDate) {
			return comments[i].PubDate.After(comments[j].PubDate)
		}
		return comments[i].ID > comments[j].ID
	})
	return paginate(comments, page), int64(len(comments)), nil
}
