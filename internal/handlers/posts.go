package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/crucial707/blog-api/internal/apierr"
	"github.com/crucial707/blog-api/internal/auth"
	"github.com/crucial707/blog-api/internal/blog"
	"github.com/crucial707/blog-api/internal/metrics"
	"github.com/crucial707/blog-api/internal/models"
	"github.com/crucial707/blog-api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const msgPostNotFound = "post not found"

// PostHandler serves the post collection. Deleting a post also removes its
// comments and every vote on the post or its comments.
type PostHandler struct {
	Posts      store.PostStore
	Comments   store.CommentStore
	Categories store.CategoryStore
	Votes      store.VoteStore
	Audit      store.AuditStore
	Now        func() time.Time
}

func (h *PostHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

type postQuery struct {
	Estado  string `query:"estado" validate:"omitempty,oneof=borrador publicado archivado"`
	Ordenar string `query:"ordenar" validate:"omitempty,oneof=titulo visitas fechaCreacion"`
}

type postInput struct {
	Titulo    string   `json:"titulo" validate:"required,min=3,max=200,singleline"`
	Contenido string   `json:"contenido" validate:"required,min=10"`
	Etiquetas []string `json:"etiquetas" validate:"max=10,dive,required,max=50"`
	Estado    string   `json:"estado" validate:"omitempty,oneof=borrador publicado archivado"`
	Categoria string   `json:"categoria" validate:"omitempty,max=50"`
}

// postPatch is a partial update; nil fields are left unchanged.
type postPatch struct {
	Titulo    *string   `json:"titulo" validate:"omitnil,min=3,max=200,singleline"`
	Contenido *string   `json:"contenido" validate:"omitnil,min=10"`
	Etiquetas *[]string `json:"etiquetas" validate:"omitnil,max=10,dive,required,max=50"`
	Estado    *string   `json:"estado" validate:"omitnil,oneof=borrador publicado archivado"`
	Categoria *string   `json:"categoria" validate:"omitnil,max=50"`
}

func trimAll(tags []string) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = strings.TrimSpace(t)
	}
	return out
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// validID reports whether id can name a post or comment. Anything else is
// answered as not found without touching the store.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// resolveCategory turns a category name or slug into a stored slug.
func resolveCategory(ctx context.Context, categories store.CategoryStore, raw string) (string, error) {
	if raw == "" || categories == nil {
		return "", nil
	}
	slug := models.Slugify(raw)
	if _, err := categories.GetBySlug(ctx, slug); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", apierr.Validation(apierr.FieldError{Field: "categoria", Message: "unknown category"})
		}
		return "", err
	}
	return slug, nil
}

// ==========================
// List Posts
// ==========================
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q := blog.PostQuery{
		Autor:     strings.TrimSpace(qs.Get("autor")),
		Estado:    qs.Get("estado"),
		Etiqueta:  strings.TrimSpace(qs.Get("etiqueta")),
		Busqueda:  strings.TrimSpace(qs.Get("busqueda")),
		Categoria: strings.TrimSpace(qs.Get("categoria")),
		Ordenar:   qs.Get("ordenar"),
	}
	if q.Categoria != "" {
		q.Categoria = models.Slugify(q.Categoria)
	}

	var details []apierr.FieldError
	if err := validateStruct(postQuery{Estado: q.Estado, Ordenar: q.Ordenar}); err != nil {
		var apiErr *apierr.Error
		if !errors.As(err, &apiErr) {
			writeError(w, r, err)
			return
		}
		details = append(details, apiErr.Details...)
	}
	var ferr *apierr.FieldError
	if q.Pagina, ferr = intParam(r, "pagina", 1, 1, maxInt); ferr != nil {
		details = append(details, *ferr)
	}
	if q.Limite, ferr = intParam(r, "limite", 10, 1, 100); ferr != nil {
		details = append(details, *ferr)
	}
	if len(details) > 0 {
		writeError(w, r, apierr.Validation(details...))
		return
	}

	posts, err := h.Posts.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, meta := blog.Paginate(blog.FilterPosts(posts, q), q.Pagina, q.Limite)

	writeJSON(w, http.StatusOK, map[string]any{
		"posts":   page,
		"meta":    meta,
		"filtros": q,
	})
}

// ==========================
// Get Post (counts a visit)
// ==========================
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(id) {
		writeError(w, r, apierr.NotFound(msgPostNotFound))
		return
	}
	post, err := h.Posts.IncrementViews(r.Context(), id)
	if err != nil {
		writeError(w, r, storeError(err, msgPostNotFound))
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// ==========================
// Create Post
// ==========================
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, r, apierr.Unauthorized(apierr.CodeAuthRequired, "authentication required"))
		return
	}

	var input postInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	input.Titulo = strings.TrimSpace(input.Titulo)
	input.Contenido = strings.TrimSpace(input.Contenido)
	input.Etiquetas = trimAll(input.Etiquetas)
	input.Categoria = strings.TrimSpace(input.Categoria)
	if err := validateStruct(input); err != nil {
		writeError(w, r, err)
		return
	}
	category, err := resolveCategory(r.Context(), h.Categories, input.Categoria)
	if err != nil {
		writeError(w, r, err)
		return
	}

	estado := input.Estado
	if estado == "" {
		estado = models.PostDraft
	}
	now := h.now()
	post, err := h.Posts.Insert(r.Context(), models.Post{
		ID:                 uuid.NewString(),
		Titulo:             input.Titulo,
		Contenido:          input.Contenido,
		Autor:              id.Username,
		Etiquetas:          input.Etiquetas,
		Estado:             estado,
		Categoria:          category,
		FechaCreacion:      now,
		FechaActualizacion: now,
	})
	if err != nil {
		writeError(w, r, storeError(err, msgPostNotFound))
		return
	}

	metrics.IncPostsCreated()
	slog.Info("post created", "id", post.ID, "autor", post.Autor)
	auditor{h.Audit}.record(r.Context(), ActionCreate, "post", post.ID, post.Titulo)
	writeJSON(w, http.StatusCreated, post)
}

// ==========================
// Update Post (owner or admin)
// ==========================
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, r, apierr.Unauthorized(apierr.CodeAuthRequired, "authentication required"))
		return
	}
	postID := chi.URLParam(r, "id")

	var patch postPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	trimPtr(patch.Titulo)
	trimPtr(patch.Contenido)
	trimPtr(patch.Categoria)
	if patch.Etiquetas != nil {
		tags := trimAll(*patch.Etiquetas)
		patch.Etiquetas = &tags
	}
	if err := validateStruct(patch); err != nil {
		writeError(w, r, err)
		return
	}
	var category string
	if patch.Categoria != nil {
		var err error
		if category, err = resolveCategory(r.Context(), h.Categories, *patch.Categoria); err != nil {
			writeError(w, r, err)
			return
		}
	}

	if !validID(postID) {
		writeError(w, r, apierr.NotFound(msgPostNotFound))
		return
	}
	now := h.now()
	post, err := h.Posts.Update(r.Context(), postID, func(p *models.Post) error {
		if err := auth.RequireOwner(ident, *p); err != nil {
			return err
		}
		if patch.Titulo != nil {
			p.Titulo = *patch.Titulo
		}
		if patch.Contenido != nil {
			p.Contenido = *patch.Contenido
		}
		if patch.Etiquetas != nil {
			p.Etiquetas = *patch.Etiquetas
		}
		if patch.Estado != nil {
			p.Estado = *patch.Estado
		}
		if patch.Categoria != nil {
			p.Categoria = category
		}
		p.FechaActualizacion = now
		return nil
	})
	if err != nil {
		writeError(w, r, storeError(err, msgPostNotFound))
		return
	}

	auditor{h.Audit}.record(r.Context(), ActionUpdate, "post", post.ID, "")
	writeJSON(w, http.StatusOK, post)
}

// ==========================
// Delete Post (owner or admin)
// ==========================
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, r, apierr.Unauthorized(apierr.CodeAuthRequired, "authentication required"))
		return
	}
	postID := chi.URLParam(r, "id")
	if !validID(postID) {
		writeError(w, r, apierr.NotFound(msgPostNotFound))
		return
	}

	post, err := h.Posts.Delete(r.Context(), postID, func(p models.Post) error {
		return auth.RequireOwner(ident, p)
	})
	if err != nil {
		writeError(w, r, storeError(err, msgPostNotFound))
		return
	}
	h.cascade(r.Context(), post.ID)

	slog.Info("post deleted", "id", post.ID, "by", ident.Username)
	auditor{h.Audit}.record(r.Context(), ActionDelete, "post", post.ID, post.Titulo)
	w.WriteHeader(http.StatusNoContent)
}

// cascade removes what hangs off a deleted post. Failures are logged; the post is already gone.
func (h *PostHandler) cascade(ctx context.Context, postID string) {
	if h.Comments != nil {
		comments, err := h.Comments.ListByPost(ctx, postID)
		logAndIgnore("list comments for cascade", err, "post", postID)
		if h.Votes != nil {
			for _, c := range comments {
				logAndIgnore("delete comment votes", h.Votes.DeleteEntity(ctx, models.EntityComment, c.ID), "comment", c.ID)
			}
		}
		logAndIgnore("delete post comments", h.Comments.DeleteByPost(ctx, postID), "post", postID)
	}
	if h.Votes != nil {
		logAndIgnore("delete post votes", h.Votes.DeleteEntity(ctx, models.EntityPost, postID), "post", postID)
	}
}
