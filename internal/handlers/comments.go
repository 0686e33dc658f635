package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/crucial707/blog-api/internal/apierr"
	"github.com/crucial707/blog-api/internal/blog"
	"github.com/crucial707/blog-api/internal/models"
	"github.com/crucial707/blog-api/internal/notify"
	"github.com/crucial707/blog-api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const msgCommentNotFound = "comment not found"

// CommentHandler serves comments. Anyone may comment; moderation is admin only.
type CommentHandler struct {
	Posts    store.PostStore
	Comments store.CommentStore
	Votes    store.VoteStore
	Audit    store.AuditStore
	// Mailer notifies commenters whose comment was approved. Nil disables it.
	Mailer notify.Mailer
	Now    func() time.Time
}

func (h *CommentHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

type commentQuery struct {
	Estado string `query:"estado" validate:"omitempty,oneof=pendiente aprobado rechazado"`
}

type commentInput struct {
	Autor     string `json:"autor" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"omitempty,email"`
	Contenido string `json:"contenido" validate:"required,min=10,max=1000"`
}

type commentStatusInput struct {
	Estado string `json:"estado" validate:"required,oneof=pendiente aprobado rechazado"`
}

// ==========================
// List Comments of a Post
// ==========================
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	q := commentQuery{Estado: r.URL.Query().Get("estado")}
	var details []apierr.FieldError
	if err := validateStruct(q); err != nil {
		var apiErr *apierr.Error
		if !errors.As(err, &apiErr) {
			writeError(w, r, err)
			return
		}
		details = append(details, apiErr.Details...)
	}
	pagina, ferr := intParam(r, "pagina", 1, 1, maxInt)
	if ferr != nil {
		details = append(details, *ferr)
	}
	limite, ferr := intParam(r, "limite", 10, 1, 50)
	if ferr != nil {
		details = append(details, *ferr)
	}
	if len(details) > 0 {
		writeError(w, r, apierr.Validation(details...))
		return
	}

	postID := chi.URLParam(r, "postId")
	if !validID(postID) {
		writeError(w, r, apierr.NotFound(msgPostNotFound))
		return
	}
	if _, err := h.Posts.Get(r.Context(), postID); err != nil {
		writeError(w, r, storeError(err, msgPostNotFound))
		return
	}
	comments, err := h.Comments.ListByPost(r.Context(), postID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, meta := blog.Paginate(blog.FilterComments(comments, q.Estado), pagina, limite)
	writeJSON(w, http.StatusOK, map[string]any{"comments": page, "meta": meta})
}

// ==========================
// Create Comment (public, starts pending)
// ==========================
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var input commentInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	input.Autor = strings.TrimSpace(input.Autor)
	input.Email = strings.TrimSpace(input.Email)
	input.Contenido = strings.TrimSpace(input.Contenido)
	if err := validateStruct(input); err != nil {
		writeError(w, r, err)
		return
	}

	postID := chi.URLParam(r, "postId")
	if !validID(postID) {
		writeError(w, r, apierr.NotFound(msgPostNotFound))
		return
	}
	if _, err := h.Posts.Get(r.Context(), postID); err != nil {
		writeError(w, r, storeError(err, msgPostNotFound))
		return
	}

	c, err := h.Comments.Insert(r.Context(), models.Comment{
		ID:            uuid.NewString(),
		PostID:        postID,
		Autor:         input.Autor,
		Email:         strings.ToLower(input.Email),
		Contenido:     input.Contenido,
		Estado:        models.CommentPending,
		FechaCreacion: h.now(),
	})
	if err != nil {
		writeError(w, r, storeError(err, msgCommentNotFound))
		return
	}
	slog.Info("comment created", "id", c.ID, "post", postID)
	writeJSON(w, http.StatusCreated, c)
}

// ==========================
// Moderate Comment (admin)
// ==========================
func (h *CommentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input commentStatusInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateStruct(input); err != nil {
		writeError(w, r, err)
		return
	}

	commentID := chi.URLParam(r, "id")
	if !validID(commentID) {
		writeError(w, r, apierr.NotFound(msgCommentNotFound))
		return
	}
	var previous string
	c, err := h.Comments.Update(r.Context(), commentID, func(c *models.Comment) error {
		previous = c.Estado
		c.Estado = input.Estado
		return nil
	})
	if err != nil {
		writeError(w, r, storeError(err, msgCommentNotFound))
		return
	}

	slog.Info("comment moderated", "id", c.ID, "from", previous, "to", c.Estado)
	auditor{h.Audit}.record(r.Context(), ActionModerate, "comment", c.ID, previous+" -> "+c.Estado)
	if c.Estado == models.CommentApproved && previous != models.CommentApproved {
		h.notifyApproved(r, c)
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CommentHandler) notifyApproved(r *http.Request, c models.Comment) {
	if h.Mailer == nil || c.Email == "" {
		return
	}
	title := c.PostID
	if p, err := h.Posts.Get(r.Context(), c.PostID); err == nil {
		title = p.Titulo
	}
	logAndIgnore("approval e-mail failed", h.Mailer.SendCommentApproved(r.Context(), title, c.Email), "comment", c.ID)
}

// ==========================
// Delete Comment (admin)
// ==========================
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "id")
	if !validID(commentID) {
		writeError(w, r, apierr.NotFound(msgCommentNotFound))
		return
	}
	c, err := h.Comments.Delete(r.Context(), commentID)
	if err != nil {
		writeError(w, r, storeError(err, msgCommentNotFound))
		return
	}
	if h.Votes != nil {
		logAndIgnore("delete comment votes", h.Votes.DeleteEntity(r.Context(), models.EntityComment, c.ID), "comment", c.ID)
	}
	auditor{h.Audit}.record(r.Context(), ActionDelete, "comment", c.ID, "")
	writeJSON(w, http.StatusOK, c)
}
