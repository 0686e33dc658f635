package models

// Roles a credential can hold.
const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
)

// User is a seeded credential. The hash never leaves the server.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}
