package store

import (
	"context"
	"slices"
	"sync"

	"github.com/crucial707/blog-api/internal/models"
)

// MemoryPosts keeps posts in insertion order.
type MemoryPosts struct {
	mu    sync.RWMutex
	posts []models.Post
}

func NewMemoryPosts() *MemoryPosts {
	return &MemoryPosts{}
}

func clonePost(p models.Post) models.Post {
	p.Etiquetas = slices.Clone(p.Etiquetas)
	if p.Etiquetas == nil {
		p.Etiquetas = []string{}
	}
	return p
}

func (s *MemoryPosts) indexOf(id string) int {
	return slices.IndexFunc(s.posts, func(p models.Post) bool { return p.ID == id })
}

func (s *MemoryPosts) List(ctx context.Context) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Post, len(s.posts))
	for i, p := range s.posts {
		out[i] = clonePost(p)
	}
	return out, nil
}

func (s *MemoryPosts) Get(ctx context.Context, id string) (models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Post{}, ErrNotFound
	}
	return clonePost(s.posts[i]), nil
}

func (s *MemoryPosts) Insert(ctx context.Context, p models.Post) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(p.ID) >= 0 {
		return models.Post{}, ErrConflict
	}
	p = clonePost(p)
	s.posts = append(s.posts, p)
	return clonePost(p), nil
}

func (s *MemoryPosts) Update(ctx context.Context, id string, fn func(*models.Post) error) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Post{}, ErrNotFound
	}
	// fn works on a copy so a rejected update leaves the stored post untouched.
	p := clonePost(s.posts[i])
	if err := fn(&p); err != nil {
		return models.Post{}, err
	}
	p.ID = id
	s.posts[i] = clonePost(p)
	return p, nil
}

func (s *MemoryPosts) Delete(ctx context.Context, id string, guard func(models.Post) error) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Post{}, ErrNotFound
	}
	p := s.posts[i]
	if guard != nil {
		if err := guard(clonePost(p)); err != nil {
			return models.Post{}, err
		}
	}
	s.posts = slices.Delete(s.posts, i, i+1)
	return p, nil
}

func (s *MemoryPosts) IncrementViews(ctx context.Context, id string) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Post{}, ErrNotFound
	}
	s.posts[i].Visitas++
	return clonePost(s.posts[i]), nil
}
