package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/crucial707/blog-api/internal/apierr"
	"github.com/crucial707/blog-api/internal/models"
	"github.com/crucial707/blog-api/internal/store"
)

type CategoryHandler struct {
	Categories store.CategoryStore
	Audit      store.AuditStore
}

type categoryInput struct {
	Name string `json:"name" validate:"required,min=2,max=50"`
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// CreateCategory derives the slug from the name; a second category with the same slug is a 409.
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input categoryInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	input.Name = strings.Join(strings.Fields(input.Name), " ")
	if err := validateStruct(input); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.Categories.Insert(r.Context(), models.Category{Name: input.Name, Slug: models.Slugify(input.Name)})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, r, apierr.Conflict("category already exists"))
			return
		}
		writeError(w, r, err)
		return
	}
	auditor{h.Audit}.record(r.Context(), ActionCreate, "category", c.Slug, c.Name)
	writeJSON(w, http.StatusCreated, c)
}
