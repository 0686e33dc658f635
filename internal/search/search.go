// Package search ranks posts against a free-text query. It scores terms in
// memory; there is no index behind it.
package search

import (
	"context"
	"sort"
	"strings"

	"github.com/crucial707/blog-api/internal/models"
	"github.com/crucial707/blog-api/internal/store"
)

const (
	titleWeight   = 2
	contentWeight = 1
	tagWeight     = 1
)

// Query is a search request. Limit <= 0 means DefaultLimit.
type Query struct {
	Text  string
	Limit int
}

const DefaultLimit = 10

type Result struct {
	ID        string  `json:"id"`
	Titulo    string  `json:"titulo"`
	Autor     string  `json:"autor"`
	Relevance float64 `json:"relevance"`
}

type Service struct {
	Posts store.PostStore
}

func NewService(posts store.PostStore) *Service {
	return &Service{Posts: posts}
}

// Search scores every non-archived post. Each query term found in the title
// adds titleWeight, in the content or a tag adds its weight; the sum is
// divided by the best possible score so relevance falls in (0, 1].
func (s *Service) Search(ctx context.Context, q Query) ([]Result, error) {
	terms := strings.Fields(strings.ToLower(q.Text))
	if len(terms) == 0 {
		return []Result{}, nil
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	posts, err := s.Posts.List(ctx)
	if err != nil {
		return nil, err
	}

	maxScore := float64(len(terms) * (titleWeight + contentWeight + tagWeight))
	results := make([]Result, 0)
	for _, p := range posts {
		if p.Estado == models.PostArchived {
			continue
		}
		score := Score(p, terms)
		if score == 0 {
			continue
		}
		results = append(results, Result{
			ID:        p.ID,
			Titulo:    p.Titulo,
			Autor:     p.Autor,
			Relevance: float64(score) / maxScore,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Relevance != results[j].Relevance {
			return results[i].Relevance > results[j].Relevance
		}
		return results[i].Titulo < results[j].Titulo
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Score returns the weighted term hits of p. terms must be lowercase.
func Score(p models.Post, terms []string) int {
	title := strings.ToLower(p.Titulo)
	content := strings.ToLower(p.Contenido)
	score := 0
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += titleWeight
		}
		if strings.Contains(content, term) {
			score += contentWeight
		}
		for _, tag := range p.Etiquetas {
			if strings.EqualFold(tag, term) {
				score += tagWeight
				break
			}
		}
	}
	return score
}
