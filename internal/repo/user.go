package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/blog-api/internal/models"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	query := `
		SELECT id, username, email, password_hash, role
		FROM users
		WHERE username = $1
	`
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	return u, nil
}

// ==========================
// Create User (id assigned by the database)
// ==========================
func (r *UserRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	if err := r.DB.QueryRowContext(ctx, query, u.Username, u.Email, u.PasswordHash, u.Role).Scan(&u.ID); err != nil {
		return models.User{}, mapErr(err)
	}
	return u, nil
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
