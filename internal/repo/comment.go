package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/blog-api/internal/models"
)

const commentColumns = `id, post_id, autor, email, contenido, estado, fecha_creacion`

// ==========================
// CommentRepo
// ==========================
type CommentRepo struct {
	DB *sql.DB
}

func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{DB: db}
}

func scanComment(s scanner) (models.Comment, error) {
	var c models.Comment
	err := s.Scan(&c.ID, &c.PostID, &c.Autor, &c.Email, &c.Contenido, &c.Estado, &c.FechaCreacion)
	return c, err
}

func (r *CommentRepo) query(ctx context.Context, query string, args ...any) ([]models.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *CommentRepo) List(ctx context.Context) ([]models.Comment, error) {
	return r.query(ctx, `SELECT `+commentColumns+` FROM comments ORDER BY fecha_creacion, id`)
}

func (r *CommentRepo) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	return r.query(ctx, `SELECT `+commentColumns+` FROM comments WHERE post_id = $1 ORDER BY fecha_creacion, id`, postID)
}

func (r *CommentRepo) Get(ctx context.Context, id string) (models.Comment, error) {
	c, err := scanComment(r.DB.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	return c, mapErr(err)
}

func (r *CommentRepo) Insert(ctx context.Context, c models.Comment) (models.Comment, error) {
	query := `
		INSERT INTO comments (id, post_id, autor, email, contenido, estado, fecha_creacion)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + commentColumns
	out, err := scanComment(r.DB.QueryRowContext(ctx, query,
		c.ID, c.PostID, c.Autor, c.Email, c.Contenido, c.Estado, c.FechaCreacion))
	return out, mapErr(err)
}

// Update locks the comment row while fn runs. Only the moderation state is writable.
func (r *CommentRepo) Update(ctx context.Context, id string, fn func(*models.Comment) error) (models.Comment, error) {
	var out models.Comment
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		c, err := scanComment(tx.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return mapErr(err)
		}
		if err := fn(&c); err != nil {
			return err
		}
		out, err = scanComment(tx.QueryRowContext(ctx,
			`UPDATE comments SET estado = $2 WHERE id = $1 RETURNING `+commentColumns, id, c.Estado))
		return mapErr(err)
	})
	if err != nil {
		return models.Comment{}, err
	}
	return out, nil
}

func (r *CommentRepo) Delete(ctx context.Context, id string) (models.Comment, error) {
	c, err := scanComment(r.DB.QueryRowContext(ctx, `DELETE FROM comments WHERE id = $1 RETURNING `+commentColumns, id))
	if err != nil {
		return models.Comment{}, mapErr(err)
	}
	return c, nil
}

func (r *CommentRepo) DeleteByPost(ctx context.Context, postID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM comments WHERE post_id = $1`, postID)
	return err
}
