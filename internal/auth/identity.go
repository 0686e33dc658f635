// Package auth holds the request-scoped identity model, the ownership policy and
// the credential service that turns a username/password into a token.
package auth

import (
	"context"
	"slices"
	"time"

	"github.com/crucial707/blog-api/internal/token"
)

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID    int       `json:"userId"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	TokenID   string    `json:"-"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// IdentityFromClaims copies decoded token claims into an Identity.
func IdentityFromClaims(c *token.Claims) *Identity {
	id := &Identity{
		UserID:   c.UserID,
		Username: c.Username,
		Role:     c.Role,
		TokenID:  c.ID,
	}
	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

// HasRole reports whether the identity's role is one of roles.
func (i *Identity) HasRole(roles ...string) bool {
	return i != nil && slices.Contains(roles, i.Role)
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity attached by the authentication middleware, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
