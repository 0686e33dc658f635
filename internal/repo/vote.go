package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/blog-api/internal/models"
)

const tallyQuery = `
	SELECT COUNT(*) FILTER (WHERE type = 'up'), COUNT(*) FILTER (WHERE type = 'down')
	FROM votes
	WHERE entity_type = $1 AND entity_id = $2
`

// ==========================
// VoteRepo
// ==========================
type VoteRepo struct {
	DB *sql.DB
}

func NewVoteRepo(db *sql.DB) *VoteRepo {
	return &VoteRepo{DB: db}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func tally(ctx context.Context, q querier, entityType, entityID string) (models.VoteTally, error) {
	var t models.VoteTally
	err := q.QueryRowContext(ctx, tallyQuery, entityType, entityID).Scan(&t.Upvotes, &t.Downvotes)
	return t, err
}

// Cast upserts the user's vote and returns the new tally.
func (r *VoteRepo) Cast(ctx context.Context, v models.Vote) (models.VoteTally, error) {
	var t models.VoteTally
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO votes (entity_type, entity_id, username, type)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (entity_type, entity_id, username) DO UPDATE SET type = EXCLUDED.type`,
			v.EntityType, v.EntityID, v.Username, v.Type)
		if err != nil {
			return err
		}
		t, err = tally(ctx, tx, v.EntityType, v.EntityID)
		return err
	})
	return t, err
}

// Retract deletes username's vote after guard accepts the locked row.
func (r *VoteRepo) Retract(ctx context.Context, entityType, entityID, username string, guard func(models.Vote) error) (models.VoteTally, error) {
	var t models.VoteTally
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		v := models.Vote{EntityType: entityType, EntityID: entityID, Username: username}
		err := tx.QueryRowContext(ctx, `
			SELECT type FROM votes
			WHERE entity_type = $1 AND entity_id = $2 AND username = $3
			FOR UPDATE`, entityType, entityID, username).Scan(&v.Type)
		if err != nil {
			return mapErr(err)
		}
		if guard != nil {
			if err := guard(v); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM votes WHERE entity_type = $1 AND entity_id = $2 AND username = $3`,
			entityType, entityID, username); err != nil {
			return err
		}
		t, err = tally(ctx, tx, entityType, entityID)
		return err
	})
	return t, err
}

func (r *VoteRepo) Tally(ctx context.Context, entityType, entityID string) (models.VoteTally, error) {
	return tally(ctx, r.DB, entityType, entityID)
}

func (r *VoteRepo) Tallies(ctx context.Context, entityType string) (map[string]models.VoteTally, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT entity_id, COUNT(*) FILTER (WHERE type = 'up'), COUNT(*) FILTER (WHERE type = 'down')
		FROM votes
		WHERE entity_type = $1
		GROUP BY entity_id`, entityType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]models.VoteTally)
	for rows.Next() {
		var id string
		var t models.VoteTally
		if err := rows.Scan(&id, &t.Upvotes, &t.Downvotes); err != nil {
			return nil, err
		}
		out[id] = t
	}
	return out, rows.Err()
}

func (r *VoteRepo) DeleteEntity(ctx context.Context, entityType, entityID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM votes WHERE entity_type = $1 AND entity_id = $2`, entityType, entityID)
	return err
}
