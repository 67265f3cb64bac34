package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
	"github.com/sakif/blog-api/internal/slug"
)

// Validation limits for posts, matching the posts table schema.
const (
	MaxTitleLength = 255
	PageSize       = 10
)

// PostService handles validation, slug derivation and CRUD for posts.
type PostService struct {
	repo   repository.PostRepository
	logger *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(repo repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{
		repo:   repo,
		logger: logger,
	}
}

// PostPage is one page of posts plus the pagination metadata the list
// endpoint has always returned.
type PostPage struct {
	CurrentPage int          `json:"current_page"`
	Data        []model.Post `json:"data"`
	From        int          `json:"from"`
	To          int          `json:"to"`
	LastPage    int          `json:"last_page"`
	PerPage     int          `json:"per_page"`
	Total       int          `json:"total"`
	NextPageURL *string      `json:"next_page_url"`
	PrevPageURL *string      `json:"prev_page_url"`
}

// List returns the requested page of posts, 10 per page, in insertion order.
// Pages start at 1; out-of-range pages yield an empty data slice, never an
// error. basePath is the request path used to build the next/prev links.
func (s *PostService) List(ctx context.Context, page int, basePath string) (*PostPage, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	posts, err := s.repo.List(ctx, repository.ListOptions{
		Limit:  PageSize,
		Offset: (page - 1) * PageSize,
	})
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	lastPage := (total + PageSize - 1) / PageSize
	if lastPage < 1 {
		lastPage = 1
	}

	result := &PostPage{
		CurrentPage: page,
		Data:        posts,
		LastPage:    lastPage,
		PerPage:     PageSize,
		Total:       total,
	}
	if len(posts) > 0 {
		result.From = (page-1)*PageSize + 1
		result.To = (page-1)*PageSize + len(posts)
	}
	if page < lastPage {
		next := fmt.Sprintf("%s?page=%d", basePath, page+1)
		result.NextPageURL = &next
	}
	if page > 1 {
		prev := fmt.Sprintf("%s?page=%d", basePath, page-1)
		result.PrevPageURL = &prev
	}

	return result, nil
}

// Get retrieves a single post by its slug.
// Returns apperror.ErrNotFound when no post matches.
func (s *PostService) Get(ctx context.Context, postSlug string) (*model.Post, error) {
	postSlug = strings.TrimSpace(postSlug)
	if postSlug == "" {
		return nil, apperror.NotFound("Post")
	}
	return s.repo.GetBySlug(ctx, postSlug)
}

// Create validates the input, derives the slug from the title and persists
// the post.
//
// Two titles that normalize to the same slug collide; the second create is
// rejected with a validation error on the slug field rather than silently
// overwriting or suffixing. The pre-check gives the friendly message, the
// UNIQUE constraint catches the concurrent case.
func (s *PostService) Create(ctx context.Context, title, content string) (*model.Post, error) {
	title = strings.TrimSpace(title)

	fields := map[string][]string{}
	if title == "" {
		fields["title"] = append(fields["title"], "The title field is required.")
	} else if len(title) > MaxTitleLength {
		fields["title"] = append(fields["title"],
			fmt.Sprintf("The title may not be greater than %d characters.", MaxTitleLength))
	}
	if strings.TrimSpace(content) == "" {
		fields["content"] = append(fields["content"], "The content field is required.")
	}
	if len(fields) > 0 {
		return nil, apperror.ValidationErrors(fields)
	}

	postSlug := slug.Make(title)
	if postSlug == "" {
		// Titles made entirely of stripped characters produce no slug.
		return nil, apperror.ValidationFailed("title", "The title must contain at least one letter or digit.")
	}

	if _, err := s.repo.GetBySlug(ctx, postSlug); err == nil {
		return nil, apperror.ValidationFailed("slug", "A post with this slug already exists.")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	post := &model.Post{
		Title:   title,
		Slug:    postSlug,
		Content: content,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("slug", "A post with this slug already exists.")
		}
		s.logger.Error("failed to create post",
			slog.String("slug", postSlug),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.Int64("postID", post.ID),
		slog.String("slug", post.Slug),
	)

	return post, nil
}

// UpdateInput carries the fields a client may change on an existing post.
// Nil pointers mean "leave as is"; everything else in the payload is ignored.
type UpdateInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// Update applies the whitelisted fields onto the post addressed by slug.
//
// Only title and content are writable. The slug is never regenerated, even
// when the title changes: it is the post's stable external key. The id and
// timestamps are not client-writable at all.
func (s *PostService) Update(ctx context.Context, postSlug string, in UpdateInput) (*model.Post, error) {
	post, err := s.repo.GetBySlug(ctx, strings.TrimSpace(postSlug))
	if err != nil {
		return nil, err
	}

	fields := map[string][]string{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		switch {
		case title == "":
			fields["title"] = append(fields["title"], "The title field is required.")
		case len(title) > MaxTitleLength:
			fields["title"] = append(fields["title"],
				fmt.Sprintf("The title may not be greater than %d characters.", MaxTitleLength))
		default:
			post.Title = title
		}
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			fields["content"] = append(fields["content"], "The content field is required.")
		} else {
			post.Content = *in.Content
		}
	}
	if len(fields) > 0 {
		return nil, apperror.ValidationErrors(fields)
	}

	if err := s.repo.Update(ctx, post); err != nil {
		s.logger.Error("failed to update post",
			slog.String("slug", post.Slug),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("post updated",
		slog.Int64("postID", post.ID),
		slog.String("slug", post.Slug),
	)

	return post, nil
}

// Delete removes the post addressed by slug. Hard delete.
// Returns apperror.ErrNotFound when no post matches.
func (s *PostService) Delete(ctx context.Context, postSlug string) error {
	postSlug = strings.TrimSpace(postSlug)
	if postSlug == "" {
		return apperror.NotFound("Post")
	}

	if err := s.repo.Delete(ctx, postSlug); err != nil {
		return err
	}

	s.logger.Info("post deleted", slog.String("slug", postSlug))
	return nil
}
