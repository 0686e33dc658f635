package store

import (
	"context"
	"slices"
	"sync"

	"github.com/crucial707/blog-api/internal/models"
)

type MemoryComments struct {
	mu       sync.RWMutex
	comments []models.Comment
}

func NewMemoryComments() *MemoryComments {
	return &MemoryComments{}
}

func (s *MemoryComments) indexOf(id string) int {
	return slices.IndexFunc(s.comments, func(c models.Comment) bool { return c.ID == id })
}

func (s *MemoryComments) List(ctx context.Context) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.comments), nil
}

func (s *MemoryComments) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryComments) Get(ctx context.Context, id string) (models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Comment{}, ErrNotFound
	}
	return s.comments[i], nil
}

func (s *MemoryComments) Insert(ctx context.Context, c models.Comment) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(c.ID) >= 0 {
		return models.Comment{}, ErrConflict
	}
	s.comments = append(s.comments, c)
	return c, nil
}

func (s *MemoryComments) Update(ctx context.Context, id string, fn func(*models.Comment) error) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Comment{}, ErrNotFound
	}
	c := s.comments[i]
	if err := fn(&c); err != nil {
		return models.Comment{}, err
	}
	c.ID = id
	s.comments[i] = c
	return c, nil
}

func (s *MemoryComments) Delete(ctx context.Context, id string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Comment{}, ErrNotFound
	}
	c := s.comments[i]
	s.comments = slices.Delete(s.comments, i, i+1)
	return c, nil
}

func (s *MemoryComments) DeleteByPost(ctx context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = slices.DeleteFunc(s.comments, func(c models.Comment) bool { return c.PostID == postID })
	return nil
}
