package blog

import (
	"context"
	"time"

	"github.com/crucial707/blog-api/internal/models"
	"github.com/crucial707/blog-api/internal/store"
	"github.com/google/uuid"
)

// SeedWelcomePost inserts the welcome post when the post store is empty.
func SeedWelcomePost(ctx context.Context, posts store.PostStore, now time.Time) error {
	existing, err := posts.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	_, err = posts.Insert(ctx, models.Post{
		ID:                 uuid.NewString(),
		Titulo:             "Bienvenido al Blog",
		Contenido:          "Este es el primer post de nuestro blog...",
		Autor:              "admin",
		Etiquetas:          []string{"bienvenida", "blog"},
		Estado:             models.PostPublished,
		FechaCreacion:      now,
		FechaActualizacion: now,
	})
	return err
}
