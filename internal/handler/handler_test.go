package handler_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/auth"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
	"github.com/sakif/blog-api/internal/service"
)

// In-memory repositories shared by the handler tests. The handlers are
// exercised through real services so the tests cover the whole
// parse → validate → persist → respond path without a database.

type memUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int64]*model.User)}
}

func (m *memUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", "email already taken")
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("User")
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.NotFound("User")
}

type memPostRepo struct {
	posts  []*model.Post
	nextID int64
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{}
}

func (m *memPostRepo) Create(_ context.Context, post *model.Post) error {
	for _, p := range m.posts {
		if p.Slug == post.Slug {
			return apperror.Conflict("post", "slug already taken")
		}
	}
	m.nextID++
	post.ID = m.nextID
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	copied := *post
	m.posts = append(m.posts, &copied)
	return nil
}

func (m *memPostRepo) GetBySlug(_ context.Context, slug string) (*model.Post, error) {
	for _, p := range m.posts {
		if p.Slug == slug {
			copied := *p
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("Post")
}

func (m *memPostRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Post, error) {
	start := opts.Offset
	if start > len(m.posts) {
		start = len(m.posts)
	}
	end := start + opts.Limit
	if end > len(m.posts) {
		end = len(m.posts)
	}
	out := make([]model.Post, 0, end-start)
	for _, p := range m.posts[start:end] {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memPostRepo) Count(_ context.Context) (int, error) {
	return len(m.posts), nil
}

func (m *memPostRepo) Update(_ context.Context, post *model.Post) error {
	for i, p := range m.posts {
		if p.ID == post.ID {
			copied := *post
			m.posts[i] = &copied
			return nil
		}
	}
	return apperror.NotFound("Post")
}

func (m *memPostRepo) Delete(_ context.Context, slug string) error {
	for i, p := range m.posts {
		if p.Slug == slug {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("Post")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuthService(t *testing.T, users repository.UserRepository) *service.AuthService {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceWithCost(bcrypt.MinCost)
	return service.NewAuthService(users, tokens, passwords, testLogger())
}
