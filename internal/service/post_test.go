package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

// fakePostRepo is an in-memory repository.PostRepository keeping posts in
// insertion order, like the real store's default ordering.
type fakePostRepo struct {
	posts  []*model.Post
	nextID int64

	createErr error
	listErr   error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{}
}

func (f *fakePostRepo) Create(_ context.Context, post *model.Post) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, p := range f.posts {
		if p.Slug == post.Slug {
			return apperror.Conflict("post", "slug already taken")
		}
	}
	f.nextID++
	post.ID = f.nextID
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	copied := *post
	f.posts = append(f.posts, &copied)
	return nil
}

func (f *fakePostRepo) GetBySlug(_ context.Context, slug string) (*model.Post, error) {
	for _, p := range f.posts {
		if p.Slug == slug {
			copied := *p
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("Post")
}

func (f *fakePostRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Post, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	start := opts.Offset
	if start > len(f.posts) {
		start = len(f.posts)
	}
	end := start + opts.Limit
	if end > len(f.posts) {
		end = len(f.posts)
	}
	out := make([]model.Post, 0, end-start)
	for _, p := range f.posts[start:end] {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePostRepo) Count(_ context.Context) (int, error) {
	if f.listErr != nil {
		return 0, f.listErr
	}
	return len(f.posts), nil
}

func (f *fakePostRepo) Update(_ context.Context, post *model.Post) error {
	for i, p := range f.posts {
		if p.ID == post.ID {
			copied := *post
			copied.UpdatedAt = time.Now()
			f.posts[i] = &copied
			return nil
		}
	}
	return apperror.NotFound("Post")
}

func (f *fakePostRepo) Delete(_ context.Context, slug string) error {
	for i, p := range f.posts {
		if p.Slug == slug {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("Post")
}

func newTestPostService(repo *fakePostRepo) *PostService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPostService(repo, logger)
}

func TestPostCreate_DerivesSlug(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	post, err := svc.Create(context.Background(), "Hello World", "first post")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if post.Slug != "hello-world" {
		t.Errorf("Slug = %q, want %q", post.Slug, "hello-world")
	}
	if post.ID == 0 {
		t.Error("Create() returned a post with no id")
	}
}

func TestPostCreate_Validation(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		content   string
		wantField string
	}{
		{"missing title", "", "content", "title"},
		{"blank title", "   ", "content", "title"},
		{"title too long", strings.Repeat("x", 256), "content", "title"},
		{"missing content", "Title", "", "content"},
		{"blank content", "Title", "   ", "content"},
		{"title with no slug material", "???", "content", "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestPostService(newFakePostRepo())

			_, err := svc.Create(context.Background(), tt.title, tt.content)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Create() error = %v, want ErrValidation", err)
			}

			var appErr *apperror.AppError
			if !errors.As(err, &appErr) {
				t.Fatal("error is not an *AppError")
			}
			if len(appErr.Fields[tt.wantField]) == 0 {
				t.Errorf("no message for field %q, got %v", tt.wantField, appErr.Fields)
			}
		})
	}
}

func TestPostCreate_SlugCollisionRejected(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestPostService(repo)

	if _, err := svc.Create(context.Background(), "Hello World", "first"); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	// A different title normalizing to the same slug must be rejected, not
	// silently overwrite the first post.
	_, err := svc.Create(context.Background(), "Hello, World!", "second")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("second Create() error = %v, want ErrValidation", err)
	}

	kept, err := svc.Get(context.Background(), "hello-world")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if kept.Content != "first" {
		t.Errorf("first post was overwritten: content = %q", kept.Content)
	}
}

func TestPostCreate_CollisionRaceRejected(t *testing.T) {
	// Pre-check misses (repo says not found) but the insert hits the UNIQUE
	// constraint; the caller still gets a validation error, not a 500.
	repo := newFakePostRepo()
	repo.createErr = apperror.Conflict("post", "slug already taken")
	svc := newTestPostService(repo)

	_, err := svc.Create(context.Background(), "Hello World", "content")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Create() error = %v, want ErrValidation", err)
	}
}

func TestPostGet(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	created, _ := svc.Create(context.Background(), "Find Me", "content")

	found, err := svc.Get(context.Background(), "find-me")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %d, want %d", found.ID, created.ID)
	}
}

func TestPostGet_NotFound(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestPostUpdate_Whitelist(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	created, _ := svc.Create(context.Background(), "Original Title", "original content")

	newTitle := "Edited Title"
	newContent := "edited content"
	updated, err := svc.Update(context.Background(), "original-title", UpdateInput{
		Title:   &newTitle,
		Content: &newContent,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Title != "Edited Title" || updated.Content != "edited content" {
		t.Errorf("updated = %+v", updated)
	}
	// Even with the title changed, the slug stays as created; it is the
	// post's stable external key.
	if updated.Slug != "original-title" {
		t.Errorf("Slug = %q, want unchanged %q", updated.Slug, "original-title")
	}
	if updated.ID != created.ID {
		t.Errorf("ID changed: %d -> %d", created.ID, updated.ID)
	}
}

func TestPostUpdate_PartialContentOnly(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	svc.Create(context.Background(), "Hello World", "original")

	newContent := "edited"
	updated, err := svc.Update(context.Background(), "hello-world", UpdateInput{Content: &newContent})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "Hello World" {
		t.Errorf("Title = %q, want untouched", updated.Title)
	}
	if updated.Content != "edited" {
		t.Errorf("Content = %q, want %q", updated.Content, "edited")
	}
}

func TestPostUpdate_NotFound(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	content := "anything"
	_, err := svc.Update(context.Background(), "missing", UpdateInput{Content: &content})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestPostUpdate_RejectsEmptyTitle(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	svc.Create(context.Background(), "Hello World", "content")

	empty := ""
	_, err := svc.Update(context.Background(), "hello-world", UpdateInput{Title: &empty})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update() error = %v, want ErrValidation", err)
	}
}

func TestPostDelete_ThenGetNotFound(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	svc.Create(context.Background(), "Doomed", "content")

	if err := svc.Delete(context.Background(), "doomed"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := svc.Get(context.Background(), "doomed")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestPostDelete_NotFound(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	err := svc.Delete(context.Background(), "never-existed")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestPostList_EmptyPage(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	page, err := svc.List(context.Background(), 1, "/posts")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(page.Data) != 0 {
		t.Errorf("Data has %d posts, want 0", len(page.Data))
	}
	if page.Total != 0 || page.CurrentPage != 1 || page.LastPage != 1 {
		t.Errorf("metadata = %+v", page)
	}
	if page.NextPageURL != nil || page.PrevPageURL != nil {
		t.Error("empty store should have no next/prev links")
	}
}

func TestPostList_PaginationMetadata(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestPostService(repo)

	for i := 1; i <= 23; i++ {
		if _, err := svc.Create(context.Background(), fmt.Sprintf("Post Number %d", i), "content"); err != nil {
			t.Fatalf("Create() #%d error = %v", i, err)
		}
	}

	page2, err := svc.List(context.Background(), 2, "/posts")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(page2.Data) != 10 {
		t.Errorf("page 2 has %d posts, want 10", len(page2.Data))
	}
	if page2.Total != 23 {
		t.Errorf("Total = %d, want 23", page2.Total)
	}
	if page2.LastPage != 3 {
		t.Errorf("LastPage = %d, want 3", page2.LastPage)
	}
	if page2.From != 11 || page2.To != 20 {
		t.Errorf("From/To = %d/%d, want 11/20", page2.From, page2.To)
	}
	if page2.NextPageURL == nil || *page2.NextPageURL != "/posts?page=3" {
		t.Errorf("NextPageURL = %v, want /posts?page=3", page2.NextPageURL)
	}
	if page2.PrevPageURL == nil || *page2.PrevPageURL != "/posts?page=1" {
		t.Errorf("PrevPageURL = %v, want /posts?page=1", page2.PrevPageURL)
	}

	// Insertion order carries through: page 2 starts at the 11th post.
	if page2.Data[0].Slug != "post-number-11" {
		t.Errorf("page 2 starts with %q, want post-number-11", page2.Data[0].Slug)
	}
}

func TestPostList_PastLastPageIsEmptyNotError(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	svc.Create(context.Background(), "Only Post", "content")

	page, err := svc.List(context.Background(), 9, "/posts")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Data) != 0 {
		t.Errorf("Data has %d posts, want 0", len(page.Data))
	}
	if page.From != 0 || page.To != 0 {
		t.Errorf("From/To = %d/%d, want 0/0 on an empty page", page.From, page.To)
	}
}
