package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/blog-api/internal/models"
	"github.com/crucial707/blog-api/internal/store"
	"github.com/lib/pq"
)

const postColumns = `id, titulo, contenido, autor, etiquetas, estado, COALESCE(categoria, ''), fecha_creacion, fecha_actualizacion, visitas`

// ==========================
// PostRepo
// ==========================
type PostRepo struct {
	DB *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{DB: db}
}

func scanPost(s scanner) (models.Post, error) {
	var p models.Post
	var tags pq.StringArray
	err := s.Scan(&p.ID, &p.Titulo, &p.Contenido, &p.Autor, &tags, &p.Estado, &p.Categoria,
		&p.FechaCreacion, &p.FechaActualizacion, &p.Visitas)
	if err != nil {
		return models.Post{}, err
	}
	p.Etiquetas = []string(tags)
	if p.Etiquetas == nil {
		p.Etiquetas = []string{}
	}
	return p, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ==========================
// List Posts (insertion order; callers sort)
// ==========================
func (r *PostRepo) List(ctx context.Context) ([]models.Post, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY fecha_creacion, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ==========================
// Get Post
// ==========================
func (r *PostRepo) Get(ctx context.Context, id string) (models.Post, error) {
	p, err := scanPost(r.DB.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	return p, mapErr(err)
}

// ==========================
// Insert Post
// ==========================
func (r *PostRepo) Insert(ctx context.Context, p models.Post) (models.Post, error) {
	query := `
		INSERT INTO posts (id, titulo, contenido, autor, etiquetas, estado, categoria, fecha_creacion, fecha_actualizacion, visitas)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + postColumns
	row := r.DB.QueryRowContext(ctx, query,
		p.ID, p.Titulo, p.Contenido, p.Autor, pq.Array(p.Etiquetas), p.Estado, nullIfEmpty(p.Categoria),
		p.FechaCreacion, p.FechaActualizacion, p.Visitas)
	out, err := scanPost(row)
	return out, mapErr(err)
}

// ==========================
// Update Post (row locked while fn runs)
// ==========================
func (r *PostRepo) Update(ctx context.Context, id string, fn func(*models.Post) error) (models.Post, error) {
	var out models.Post
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		p, err := scanPost(tx.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return mapErr(err)
		}
		if err := fn(&p); err != nil {
			return err
		}
		query := `
			UPDATE posts
			SET titulo = $2, contenido = $3, etiquetas = $4, estado = $5, categoria = $6, fecha_actualizacion = $7
			WHERE id = $1
			RETURNING ` + postColumns
		out, err = scanPost(tx.QueryRowContext(ctx, query,
			id, p.Titulo, p.Contenido, pq.Array(p.Etiquetas), p.Estado, nullIfEmpty(p.Categoria), p.FechaActualizacion))
		return mapErr(err)
	})
	if err != nil {
		return models.Post{}, err
	}
	return out, nil
}

// ==========================
// Delete Post (guard runs on the locked row)
// ==========================
func (r *PostRepo) Delete(ctx context.Context, id string, guard func(models.Post) error) (models.Post, error) {
	var out models.Post
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		p, err := scanPost(tx.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return mapErr(err)
		}
		if guard != nil {
			if err := guard(p); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return store.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return models.Post{}, err
	}
	return out, nil
}

// ==========================
// Increment Views
// ==========================
func (r *PostRepo) IncrementViews(ctx context.Context, id string) (models.Post, error) {
	p, err := scanPost(r.DB.QueryRowContext(ctx,
		`UPDATE posts SET visitas = visitas + 1 WHERE id = $1 RETURNING `+postColumns, id))
	return p, mapErr(err)
}
