// Package repository declares the storage interfaces consumed by the service
// layer. Models are plain records; all query logic lives behind these
// interfaces so the services never touch SQL or the concrete driver.
package repository

import (
	"context"

	"github.com/sakif/blog-api/internal/model"
)

// ListOptions controls pagination for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository persists user accounts.
//
// GetByEmail returns apperror.ErrNotFound when no account matches; Create
// returns apperror.ErrConflict when the email is already taken, which is how
// a lost insert race surfaces to the service layer.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// PostRepository persists blog posts, keyed externally by slug.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)
	List(ctx context.Context, opts ListOptions) ([]model.Post, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, slug string) error
}
