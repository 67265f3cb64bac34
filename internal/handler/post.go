package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/blog-api/internal/auth"
	"github.com/sakif/blog-api/internal/service"
)

// currentUserID returns the acting user's id for log attribution, zero when
// no authenticated user is on the context.
func currentUserID(r *http.Request) int64 {
	if user, ok := auth.UserFromContext(r.Context()); ok {
		return user.ID
	}
	return 0
}

// PostHandler serves the protected post CRUD endpoints. Every route it
// handles sits behind the auth middleware; by the time a handler runs, the
// request carries an authenticated user.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

// HandleList returns one page of posts with pagination metadata.
//
// HTTP: GET /posts?page=N
// Always 200; an empty page is a valid response, not an error.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	result, err := h.posts.List(r.Context(), page, r.URL.Path)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGet returns a single post.
//
// HTTP: GET /posts/{slug}
// 200 {post} or 404 {"message":"Post not found"}.
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// createPostRequest is the creation payload.
type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// HandleCreate validates and stores a new post. The slug is derived from the
// title server-side; clients cannot choose it.
//
// HTTP: POST /posts
// 201 {post} or 422 {"errors": {...}}.
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Warn("invalid post JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "Invalid JSON body"})
		return
	}

	post, err := h.posts.Create(r.Context(), in.Title, in.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("post created",
		slog.String("slug", post.Slug),
		slog.Int64("user_id", currentUserID(r)),
	)
	writeJSON(w, http.StatusCreated, post)
}

// HandleUpdate applies the whitelisted fields (title, content) onto an
// existing post. Any other keys in the payload are ignored; the slug stays
// as created even when the title changes.
//
// HTTP: PUT /posts/{slug}
// 200 {post}, 404 {"message":"Post not found"} or 422 {"errors": {...}}.
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Warn("invalid post JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "Invalid JSON body"})
		return
	}

	post, err := h.posts.Update(r.Context(), chi.URLParam(r, "slug"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// HandleDelete permanently removes a post.
//
// HTTP: DELETE /posts/{slug}
// 200 {"message":"Post deleted"} or 404 {"message":"Post not found"}.
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := h.posts.Delete(r.Context(), slug); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("post deleted",
		slog.String("slug", slug),
		slog.Int64("user_id", currentUserID(r)),
	)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Post deleted"})
}
