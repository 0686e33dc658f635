package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/blog-api/internal/models"
)

// ==========================
// CategoryRepo
// ==========================
type CategoryRepo struct {
	DB *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{DB: db}
}

func (r *CategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, slug FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cats := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (models.Category, error) {
	var c models.Category
	err := r.DB.QueryRowContext(ctx, `SELECT id, name, slug FROM categories WHERE slug = $1`, slug).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		return models.Category{}, mapErr(err)
	}
	return c, nil
}

// Insert relies on the unique slug constraint for duplicate detection.
func (r *CategoryRepo) Insert(ctx context.Context, c models.Category) (models.Category, error) {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO categories (name, slug) VALUES ($1, $2) RETURNING id`, c.Name, c.Slug).Scan(&c.ID)
	if err != nil {
		return models.Category{}, mapErr(err)
	}
	return c, nil
}
