package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

// compile-time check that *PostRepo implements repository.PostRepository
var _ repository.PostRepository = (*PostRepo)(nil)

// PostRepo implements repository.PostRepository on the shared connection pool.
type PostRepo struct {
	conn *sql.DB
}

// NewPostRepo creates a PostRepo backed by db's connection pool.
func NewPostRepo(db *DB) *PostRepo {
	return &PostRepo{conn: db.conn}
}

// Create inserts a new post and fills in the generated ID and timestamps.
// A slug collision surfaces as a Conflict error, whether it comes from a
// concurrent create or a pre-check the service skipped.
func (r *PostRepo) Create(ctx context.Context, post *model.Post) error {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	res, err := r.conn.ExecContext(ctx,
		`INSERT INTO posts (title, slug, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		post.Title,
		post.Slug,
		post.Content,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("post", "slug already taken")
		}
		return fmt.Errorf("sqlite: inserting post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted post id: %w", err)
	}
	post.ID = id

	return nil
}

// GetBySlug retrieves a single post by its slug.
// Returns apperror.ErrNotFound when no row matches.
func (r *PostRepo) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var p model.Post

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, title, slug, content, created_at, updated_at
		 FROM posts
		 WHERE slug = ?`,
		slug,
	).Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Content,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Post")
		}
		return nil, fmt.Errorf("sqlite: getting post %q: %w", slug, err)
	}

	return &p, nil
}

// List retrieves a page of posts in insertion order (oldest first, matching
// the default store order the API has always exposed).
func (r *PostRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Post, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, title, slug, content, created_at, updated_at
		 FROM posts
		 ORDER BY id ASC
		 LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0, limit)
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Slug, &p.Content,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// Count returns the total number of posts, used for pagination metadata.
func (r *PostRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts`,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting posts: %w", err)
	}
	return n, nil
}

// Update persists the mutable fields of an existing post, addressed by id.
// The slug column is deliberately not in the SET list: slugs are immutable
// after creation. Returns apperror.ErrNotFound if the row is gone.
func (r *PostRepo) Update(ctx context.Context, post *model.Post) error {
	post.UpdatedAt = time.Now().UTC()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE posts
		 SET title = ?, content = ?, updated_at = ?
		 WHERE id = ?`,
		post.Title,
		post.Content,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %d: %w", post.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Post")
	}

	return nil
}

// Delete removes a post by slug. Hard delete, no tombstone.
// Returns apperror.ErrNotFound if no row matched.
func (r *PostRepo) Delete(ctx context.Context, slug string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM posts WHERE slug = ?`,
		slug,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %q: %w", slug, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Post")
	}

	return nil
}
