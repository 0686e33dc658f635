// Package blog holds the read-side rules of the blog: post and comment
// filtering, ordering, pagination and the admin statistics.
package blog

import (
	"sort"
	"strings"

	"github.com/crucial707/blog-api/internal/models"
)

// Sort keys accepted by PostQuery.Ordenar.
const (
	SortByTitle   = "titulo"
	SortByViews   = "visitas"
	SortByCreated = "fechaCreacion"
)

var SortKeys = []string{SortByTitle, SortByViews, SortByCreated}

// PostQuery filters and orders a post listing. Zero values disable a filter.
type PostQuery struct {
	Autor     string `json:"autor,omitempty"`
	Estado    string `json:"estado,omitempty"`
	Etiqueta  string `json:"etiqueta,omitempty"`
	Busqueda  string `json:"busqueda,omitempty"`
	Categoria string `json:"categoria,omitempty"`
	Ordenar   string `json:"ordenar,omitempty"`
	Pagina    int    `json:"pagina,omitempty"`
	Limite    int    `json:"limite,omitempty"`
}

// Match reports whether p passes every filter of q.
func (q PostQuery) Match(p models.Post) bool {
	if q.Autor != "" && p.Autor != q.Autor {
		return false
	}
	if q.Estado != "" && p.Estado != q.Estado {
		return false
	}
	if q.Categoria != "" && p.Categoria != q.Categoria {
		return false
	}
	if q.Etiqueta != "" && !containsString(p.Etiquetas, q.Etiqueta) {
		return false
	}
	if q.Busqueda != "" {
		term := strings.ToLower(q.Busqueda)
		if !strings.Contains(strings.ToLower(p.Titulo), term) &&
			!strings.Contains(strings.ToLower(p.Contenido), term) {
			return false
		}
	}
	return true
}

// FilterPosts returns the posts matching q in q's order. The input is not modified.
func FilterPosts(posts []models.Post, q PostQuery) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if q.Match(p) {
			out = append(out, p)
		}
	}
	SortPosts(out, q.Ordenar)
	return out
}

// SortPosts orders posts in place: titulo ascending, visitas descending,
// anything else newest first. Ties keep their relative order.
func SortPosts(posts []models.Post, key string) {
	var less func(a, b models.Post) bool
	switch key {
	case SortByTitle:
		less = func(a, b models.Post) bool { return strings.ToLower(a.Titulo) < strings.ToLower(b.Titulo) }
	case SortByViews:
		less = func(a, b models.Post) bool { return a.Visitas > b.Visitas }
	default:
		less = func(a, b models.Post) bool { return a.FechaCreacion.After(b.FechaCreacion) }
	}
	sort.SliceStable(posts, func(i, j int) bool { return less(posts[i], posts[j]) })
}

// FilterComments keeps the comments in the given state (all when estado is
// empty), newest first.
func FilterComments(comments []models.Comment, estado string) []models.Comment {
	out := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if estado == "" || c.Estado == estado {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FechaCreacion.After(out[j].FechaCreacion) })
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
