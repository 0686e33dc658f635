package blog

import (
	"sort"

	"github.com/crucial707/blog-api/internal/models"
)

// ComputeStats aggregates the admin dashboard figures. postVotes maps post id
// to its tally; the most voted post is the one with the highest score, ties
// broken by the older post.
func ComputeStats(posts []models.Post, comments []models.Comment, categories []models.Category, postVotes map[string]models.VoteTally, userCount int) models.Stats {
	st := models.Stats{
		TotalPosts:       len(posts),
		TotalUsers:       userCount,
		TotalComments:    len(comments),
		PostsByStatus:    make(map[string]int, len(models.PostStates)),
		PostsPerCategory: []models.CategoryCount{},
	}
	for _, s := range models.PostStates {
		st.PostsByStatus[s] = 0
	}

	perCategory := make(map[string]int)
	ordered := make([]models.Post, len(posts))
	copy(ordered, posts)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].FechaCreacion.Before(ordered[j].FechaCreacion) })

	for _, p := range ordered {
		st.TotalViews += p.Visitas
		st.PostsByStatus[p.Estado]++
		if p.Categoria != "" {
			perCategory[p.Categoria]++
		}

		tally, ok := postVotes[p.ID]
		if !ok {
			continue
		}
		if st.MostVotedPost == nil || tally.Score() > st.MostVotedPost.Votes {
			st.MostVotedPost = &models.VotedPost{ID: p.ID, Titulo: p.Titulo, Votes: tally.Score()}
		}
	}

	for _, c := range comments {
		if c.Estado == models.CommentPending {
			st.PendingComments++
		}
	}

	// Categories keep their declared order; posts may reference a slug that
	// has no category row, those are appended by name.
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		seen[c.Slug] = true
		st.PostsPerCategory = append(st.PostsPerCategory, models.CategoryCount{Name: c.Name, Count: perCategory[c.Slug]})
	}
	var orphans []string
	for slug := range perCategory {
		if !seen[slug] {
			orphans = append(orphans, slug)
		}
	}
	sort.Strings(orphans)
	for _, slug := range orphans {
		st.PostsPerCategory = append(st.PostsPerCategory, models.CategoryCount{Name: slug, Count: perCategory[slug]})
	}
	return st
}
