package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/crucial707/blog-api/internal/apierr"
	"github.com/crucial707/blog-api/internal/auth"
	"github.com/crucial707/blog-api/internal/models"
	"github.com/crucial707/blog-api/internal/store"
)

// Audit actions.
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionModerate = "moderate"
	ActionVote     = "vote"
	ActionUnvote   = "unvote"
)

// auditor records mutations. A nil store records nothing; failures are logged
// and never fail the request that caused them.
type auditor struct {
	store store.AuditStore
}

func (a auditor) record(ctx context.Context, action, resourceType, resourceID, details string) {
	if a.store == nil {
		return
	}
	e := models.AuditEntry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		CreatedAt:    time.Now().UTC(),
	}
	if id, ok := auth.FromContext(ctx); ok {
		e.Username = id.Username
	}
	logAndIgnore("audit log failed", a.store.Log(ctx, e), "action", action, "resource", resourceType, "id", resourceID)
}

// AuditHandler serves audit log endpoints.
type AuditHandler struct {
	Repo store.AuditStore
}

// ListAudit returns recent audit log entries. Query: limit (1..200, default 50), offset (default 0).
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit, ferr := intParam(r, "limit", 50, 1, 200)
	if ferr != nil {
		writeError(w, r, apierr.Validation(*ferr))
		return
	}
	offset, ferr := intParam(r, "offset", 0, 0, maxInt)
	if ferr != nil {
		writeError(w, r, apierr.Validation(*ferr))
		return
	}

	entries, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "limit": limit, "offset": offset})
}
