package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/crucial707/blog-api/internal/metrics"
	"github.com/crucial707/blog-api/internal/models"
	"github.com/crucial707/blog-api/internal/store"
	"github.com/crucial707/blog-api/internal/token"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is compared against when the username is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// Session is the result of a successful login.
type Session struct {
	Token     string
	User      models.User
	ExpiresIn time.Duration
}

// Service verifies credentials and mints tokens.
type Service struct {
	Users store.UserStore
	Codec *token.Codec
}

func NewService(users store.UserStore, codec *token.Codec) *Service {
	return &Service{Users: users, Codec: codec}
}

// Login checks username/password against the credential store and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			metrics.IncLogin("error")
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		metrics.IncLogin("invalid_credentials")
		slog.Info("login failed", "username", username, "reason", "unknown user")
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.IncLogin("invalid_credentials")
		slog.Info("login failed", "username", username, "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	signed, err := s.Codec.Encode(token.Claims{UserID: user.ID, Username: user.Username, Role: user.Role})
	if err != nil {
		metrics.IncLogin("error")
		return nil, err
	}

	metrics.IncLogin("success")
	slog.Info("login succeeded", "username", user.Username, "role", user.Role)
	return &Session{Token: signed, User: user, ExpiresIn: s.Codec.TTL()}, nil
}

// Seed describes a credential created at startup.
type Seed struct {
	ID       int
	Username string
	Email    string
	Password string
	Role     string
}

// DefaultSeeds returns the two demo accounts with the given passwords.
func DefaultSeeds(adminPassword, authorPassword string) []Seed {
	return []Seed{
		{ID: 1, Username: "admin", Email: "admin@blog.com", Password: adminPassword, Role: models.RoleAdmin},
		{ID: 2, Username: "autor", Email: "autor@blog.com", Password: authorPassword, Role: models.RoleAuthor},
	}
}

// SeedUsers hashes and inserts seeds. Existing usernames are left as they are.
func SeedUsers(ctx context.Context, users store.UserStore, seeds []Seed, cost int) error {
	for _, sd := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(sd.Password), cost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", sd.Username, err)
		}
		_, err = users.Create(ctx, models.User{
			ID:           sd.ID,
			Username:     sd.Username,
			Email:        sd.Email,
			PasswordHash: string(hash),
			Role:         sd.Role,
		})
		if err != nil && !errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("seed user %s: %w", sd.Username, err)
		}
	}
	return nil
}
