package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/crucial707/blog-api/internal/models"
)

// ==========================
// Users
// ==========================

type MemoryUsers struct {
	mu     sync.RWMutex
	users  map[string]models.User
	nextID int
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]models.User), nextID: 1}
}

func (s *MemoryUsers) GetByUsername(ctx context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

// Create keeps a caller-supplied id, otherwise assigns the next free one.
func (s *MemoryUsers) Create(ctx context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return models.User{}, ErrConflict
	}
	if u.ID == 0 {
		u.ID = s.nextID
	}
	if u.ID >= s.nextID {
		s.nextID = u.ID + 1
	}
	s.users[u.Username] = u
	return u, nil
}

func (s *MemoryUsers) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// ==========================
// Categories
// ==========================

type MemoryCategories struct {
	mu         sync.RWMutex
	categories []models.Category
	nextID     int
}

func NewMemoryCategories() *MemoryCategories {
	return &MemoryCategories{nextID: 1}
}

func (s *MemoryCategories) List(ctx context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories), nil
}

func (s *MemoryCategories) GetBySlug(ctx context.Context, slug string) (models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return models.Category{}, ErrNotFound
}

func (s *MemoryCategories) Insert(ctx context.Context, c models.Category) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Slug == c.Slug {
			return models.Category{}, ErrConflict
		}
	}
	c.ID = s.nextID
	s.nextID++
	s.categories = append(s.categories, c)
	return c, nil
}

// ==========================
// Votes
// ==========================

type voteKey struct {
	entityType string
	entityID   string
}

type MemoryVotes struct {
	mu    sync.RWMutex
	votes map[voteKey]map[string]string // entity -> username -> up|down
}

func NewMemoryVotes() *MemoryVotes {
	return &MemoryVotes{votes: make(map[voteKey]map[string]string)}
}

func tally(byUser map[string]string) models.VoteTally {
	var t models.VoteTally
	for _, typ := range byUser {
		switch typ {
		case models.VoteUp:
			t.Upvotes++
		case models.VoteDown:
			t.Downvotes++
		}
	}
	return t
}

func (s *MemoryVotes) Cast(ctx context.Context, v models.Vote) (models.VoteTally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := voteKey{v.EntityType, v.EntityID}
	byUser, ok := s.votes[k]
	if !ok {
		byUser = make(map[string]string)
		s.votes[k] = byUser
	}
	byUser[v.Username] = v.Type
	return tally(byUser), nil
}

func (s *MemoryVotes) Retract(ctx context.Context, entityType, entityID, username string, guard func(models.Vote) error) (models.VoteTally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := voteKey{entityType, entityID}
	typ, ok := s.votes[k][username]
	if !ok {
		return models.VoteTally{}, ErrNotFound
	}
	if guard != nil {
		v := models.Vote{EntityType: entityType, EntityID: entityID, Username: username, Type: typ}
		if err := guard(v); err != nil {
			return models.VoteTally{}, err
		}
	}
	delete(s.votes[k], username)
	return tally(s.votes[k]), nil
}

func (s *MemoryVotes) Tally(ctx context.Context, entityType, entityID string) (models.VoteTally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tally(s.votes[voteKey{entityType, entityID}]), nil
}

func (s *MemoryVotes) Tallies(ctx context.Context, entityType string) (map[string]models.VoteTally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.VoteTally)
	for k, byUser := range s.votes {
		if k.entityType == entityType && len(byUser) > 0 {
			out[k.entityID] = tally(byUser)
		}
	}
	return out, nil
}

func (s *MemoryVotes) DeleteEntity(ctx context.Context, entityType, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.votes, voteKey{entityType, entityID})
	return nil
}

// ==========================
// Audit
// ==========================

type MemoryAudit struct {
	mu      sync.RWMutex
	entries []models.AuditEntry
	nextID  int
}

func NewMemoryAudit() *MemoryAudit {
	return &MemoryAudit{nextID: 1}
}

func (s *MemoryAudit) Log(ctx context.Context, e models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID
	s.nextID++
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.entries = append(s.entries, e)
	return nil
}

// List returns entries newest first.
func (s *MemoryAudit) List(ctx context.Context, limit, offset int) ([]models.AuditEntry, error) {
	if limit <= 0 || offset < 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AuditEntry, 0, limit)
	for i := len(s.entries) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

func (s *MemoryAudit) Prune(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if !e.CreatedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	n := len(s.entries) - len(kept)
	s.entries = kept
	return n, nil
}
