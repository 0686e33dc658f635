package handlers

import (
	"context"
	"net/http"

	"github.com/crucial707/blog-api/internal/apierr"
	"github.com/crucial707/blog-api/internal/auth"
	"github.com/crucial707/blog-api/internal/models"
	"github.com/crucial707/blog-api/internal/store"
	"github.com/go-chi/chi/v5"
)

// VoteHandler serves up/down votes on posts and comments. Each user holds at
// most one vote per entity; voting again replaces it.
type VoteHandler struct {
	Posts    store.PostStore
	Comments store.CommentStore
	Votes    store.VoteStore
	Audit    store.AuditStore
}

type voteInput struct {
	Type string `json:"type" validate:"required,oneof=up down"`
}

// voteTarget describes one votable entity kind.
type voteTarget struct {
	entityType string
	idKey      string
	notFound   string
	exists     func(ctx context.Context, id string) error
}

func (h *VoteHandler) postTarget() voteTarget {
	return voteTarget{models.EntityPost, "postId", msgPostNotFound, func(ctx context.Context, id string) error {
		_, err := h.Posts.Get(ctx, id)
		return err
	}}
}

func (h *VoteHandler) commentTarget() voteTarget {
	return voteTarget{models.EntityComment, "commentId", msgCommentNotFound, func(ctx context.Context, id string) error {
		_, err := h.Comments.Get(ctx, id)
		return err
	}}
}

func (h *VoteHandler) VotePost(w http.ResponseWriter, r *http.Request) { h.cast(w, r, h.postTarget()) }
func (h *VoteHandler) UnvotePost(w http.ResponseWriter, r *http.Request) {
	h.retract(w, r, h.postTarget())
}
func (h *VoteHandler) VoteComment(w http.ResponseWriter, r *http.Request) {
	h.cast(w, r, h.commentTarget())
}
func (h *VoteHandler) UnvoteComment(w http.ResponseWriter, r *http.Request) {
	h.retract(w, r, h.commentTarget())
}

func (h *VoteHandler) cast(w http.ResponseWriter, r *http.Request, t voteTarget) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, r, apierr.Unauthorized(apierr.CodeAuthRequired, "authentication required"))
		return
	}
	var input voteInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateStruct(input); err != nil {
		writeError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if !validID(id) {
		writeError(w, r, apierr.NotFound(t.notFound))
		return
	}
	if err := t.exists(r.Context(), id); err != nil {
		writeError(w, r, storeError(err, t.notFound))
		return
	}

	tally, err := h.Votes.Cast(r.Context(), models.Vote{
		EntityType: t.entityType,
		EntityID:   id,
		Username:   ident.Username,
		Type:       input.Type,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	auditor{h.Audit}.record(r.Context(), ActionVote, t.entityType, id, input.Type)
	writeJSON(w, http.StatusOK, map[string]any{t.idKey: id, "votes": tally})
}

// retract removes the caller's vote. Admins may name another voter with ?username=.
func (h *VoteHandler) retract(w http.ResponseWriter, r *http.Request, t voteTarget) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, r, apierr.Unauthorized(apierr.CodeAuthRequired, "authentication required"))
		return
	}
	id := chi.URLParam(r, "id")
	if !validID(id) {
		writeError(w, r, apierr.NotFound(t.notFound))
		return
	}
	voter := r.URL.Query().Get("username")
	if voter == "" {
		voter = ident.Username
	}

	tally, err := h.Votes.Retract(r.Context(), t.entityType, id, voter, func(v models.Vote) error {
		return auth.RequireOwner(ident, v)
	})
	if err != nil {
		writeError(w, r, storeError(err, "vote not found"))
		return
	}
	auditor{h.Audit}.record(r.Context(), ActionUnvote, t.entityType, id, voter)
	writeJSON(w, http.StatusOK, map[string]any{t.idKey: id, "votes": tally})
}
