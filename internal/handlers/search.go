package handlers

import (
	"net/http"
	"strings"

	"github.com/crucial707/blog-api/internal/apierr"
	"github.com/crucial707/blog-api/internal/search"
)

type SearchHandler struct {
	Search *search.Service
}

type searchQuery struct {
	Q string `query:"q" validate:"required,min=1,max=200"`
}

func (h *SearchHandler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	q := searchQuery{Q: strings.TrimSpace(r.URL.Query().Get("q"))}
	if err := validateStruct(q); err != nil {
		writeError(w, r, err)
		return
	}
	limit, ferr := intParam(r, "limite", search.DefaultLimit, 1, 50)
	if ferr != nil {
		writeError(w, r, apierr.Validation(*ferr))
		return
	}

	results, err := h.Search.Search(r.Context(), search.Query{Text: q.Q, Limit: limit})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": q.Q, "results": results})
}
