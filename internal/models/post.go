package models

import "time"

// Post states.
const (
	PostDraft     = "borrador"
	PostPublished = "publicado"
	PostArchived  = "archivado"
)

// PostStates lists the valid values of Post.Estado.
var PostStates = []string{PostDraft, PostPublished, PostArchived}

type Post struct {
	ID                 string    `json:"id"`
	Titulo             string    `json:"titulo"`
	Contenido          string    `json:"contenido"`
	Autor              string    `json:"autor"`
	Etiquetas          []string  `json:"etiquetas"`
	Estado             string    `json:"estado"`
	Categoria          string    `json:"categoria,omitempty"`
	FechaCreacion      time.Time `json:"fechaCreacion"`
	FechaActualizacion time.Time `json:"fechaActualizacion"`
	Visitas            int       `json:"visitas"`
}

// Owner is the username allowed to mutate the post besides admins.
func (p Post) Owner() string { return p.Autor }
