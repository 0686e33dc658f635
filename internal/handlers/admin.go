package handlers

import (
	"net/http"

	"github.com/crucial707/blog-api/internal/blog"
	"github.com/crucial707/blog-api/internal/models"
	"github.com/crucial707/blog-api/internal/store"
)

// AdminHandler serves the admin dashboard.
type AdminHandler struct {
	Stores store.Set
}

// Stats aggregates live figures from every store.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	posts, err := h.Stores.Posts.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	comments, err := h.Stores.Comments.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	categories, err := h.Stores.Categories.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	votes, err := h.Stores.Votes.Tallies(ctx, models.EntityPost)
	if err != nil {
		writeError(w, r, err)
		return
	}
	users, err := h.Stores.Users.Count(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, blog.ComputeStats(posts, comments, categories, votes, users))
}
