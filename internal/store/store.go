// Package store declares the persistence contracts the handlers depend on and
// provides the default in-memory implementations. Every memory collection
// guards its data with its own mutex; update and delete take a callback that
// runs inside the critical section so checks and mutation are atomic.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/crucial707/blog-api/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// UserStore is the credential store. Credentials are seeded, never edited.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	Count(ctx context.Context) (int, error)
}

type PostStore interface {
	List(ctx context.Context) ([]models.Post, error)
	Get(ctx context.Context, id string) (models.Post, error)
	Insert(ctx context.Context, p models.Post) (models.Post, error)
	// Update loads the post, applies fn and saves the result. If fn returns an
	// error nothing is written and that error is returned.
	Update(ctx context.Context, id string, fn func(*models.Post) error) (models.Post, error)
	// Delete removes the post if guard (when non-nil) accepts it.
	Delete(ctx context.Context, id string, guard func(models.Post) error) (models.Post, error)
	IncrementViews(ctx context.Context, id string) (models.Post, error)
}

type CommentStore interface {
	List(ctx context.Context) ([]models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	Get(ctx context.Context, id string) (models.Comment, error)
	Insert(ctx context.Context, c models.Comment) (models.Comment, error)
	Update(ctx context.Context, id string, fn func(*models.Comment) error) (models.Comment, error)
	Delete(ctx context.Context, id string) (models.Comment, error)
	DeleteByPost(ctx context.Context, postID string) error
}

type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	GetBySlug(ctx context.Context, slug string) (models.Category, error)
	// Insert assigns the id. A duplicate slug yields ErrConflict.
	Insert(ctx context.Context, c models.Category) (models.Category, error)
}

type VoteStore interface {
	// Cast records v, replacing the user's previous vote on the same entity.
	Cast(ctx context.Context, v models.Vote) (models.VoteTally, error)
	// Retract removes username's vote on the entity if guard accepts it.
	// ErrNotFound when the user has not voted.
	Retract(ctx context.Context, entityType, entityID, username string, guard func(models.Vote) error) (models.VoteTally, error)
	Tally(ctx context.Context, entityType, entityID string) (models.VoteTally, error)
	Tallies(ctx context.Context, entityType string) (map[string]models.VoteTally, error)
	DeleteEntity(ctx context.Context, entityType, entityID string) error
}

type AuditStore interface {
	Log(ctx context.Context, e models.AuditEntry) error
	List(ctx context.Context, limit, offset int) ([]models.AuditEntry, error)
	// Prune deletes entries created before cutoff and returns how many went.
	Prune(ctx context.Context, before time.Time) (int, error)
}

// Set bundles one implementation of every store.
type Set struct {
	Users      UserStore
	Posts      PostStore
	Comments   CommentStore
	Categories CategoryStore
	Votes      VoteStore
	Audit      AuditStore
	// Ping reports backend health for /ready; nil means always healthy.
	Ping func(ctx context.Context) error
}

// NewMemory returns a Set backed entirely by process memory.
func NewMemory() Set {
	return Set{
		Users:      NewMemoryUsers(),
		Posts:      NewMemoryPosts(),
		Comments:   NewMemoryComments(),
		Categories: NewMemoryCategories(),
		Votes:      NewMemoryVotes(),
		Audit:      NewMemoryAudit(),
	}
}
