package auth

import (
	"github.com/crucial707/blog-api/internal/apierr"
	"github.com/crucial707/blog-api/internal/models"
)

// Owned is any resource with a single owning username.
type Owned interface {
	Owner() string
}

// CanModify reports whether id may update or delete a resource owned by owner:
// admins always may, everyone else only their own resources.
func CanModify(id *Identity, owner string) bool {
	if id == nil {
		return false
	}
	return id.Role == models.RoleAdmin || (owner != "" && id.Username == owner)
}

// RequireOwner returns nil when id may mutate res, otherwise an AUTH_FORBIDDEN error.
// Stores call it inside their critical section so a rejected mutation leaves no trace.
func RequireOwner(id *Identity, res Owned) error {
	if !CanModify(id, res.Owner()) {
		return apierr.Forbidden("not allowed to modify this resource")
	}
	return nil
}
