package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/blog-api/internal/models"
	"github.com/crucial707/blog-api/internal/store"
	"github.com/lib/pq"
)

const testCommentID = "0d4a9d63-8c1f-4e57-9d2b-8b0c5e7f1a22"

func TestMapErr(t *testing.T) {
	if mapErr(nil) != nil {
		t.Error("nil should stay nil")
	}
	if !errors.Is(mapErr(sql.ErrNoRows), store.ErrNotFound) {
		t.Error("ErrNoRows should map to ErrNotFound")
	}
	if !errors.Is(mapErr(&pq.Error{Code: "23505"}), store.ErrConflict) {
		t.Error("unique violation should map to ErrConflict")
	}
	other := &pq.Error{Code: "23503"}
	if mapErr(other) != other {
		t.Error("other driver errors pass through")
	}
}

func TestCommentRepo_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	cols := []string{"id", "post_id", "autor", "email", "contenido", "estado", "fecha_creacion"}
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM comments WHERE id = \$1 FOR UPDATE`).
		WithArgs(testCommentID).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(testCommentID, testPostID, "Ana", "ana@example.com", "buen post, gracias", models.CommentPending, now))
	mock.ExpectQuery(`UPDATE comments SET estado = \$2 WHERE id = \$1`).
		WithArgs(testCommentID, models.CommentApproved).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(testCommentID, testPostID, "Ana", "ana@example.com", "buen post, gracias", models.CommentApproved, now))
	mock.ExpectCommit()

	c, err := NewCommentRepo(db).Update(context.Background(), testCommentID, func(c *models.Comment) error {
		c.Estado = models.CommentApproved
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if c.Estado != models.CommentApproved || c.PostID != testPostID {
		t.Errorf("unexpected comment: %+v", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCommentRepo_Delete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`DELETE FROM comments WHERE id = \$1 RETURNING`).
		WithArgs(testCommentID).
		WillReturnError(sql.ErrNoRows)

	if _, err := NewCommentRepo(db).Delete(context.Background(), testCommentID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryRepo_Insert_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO categories \(name, slug\) VALUES \(\$1, \$2\) RETURNING id`).
		WithArgs("Tecnología", "tecnología").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "categories_slug_key"})

	_, err = NewCategoryRepo(db).Insert(context.Background(), models.Category{Name: "Tecnología", Slug: "tecnología"})
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestCategoryRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, slug FROM categories ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).AddRow(1, "Viajes", "viajes"))

	cats, err := NewCategoryRepo(db).List(context.Background())
	if err != nil || len(cats) != 1 || cats[0].Slug != "viajes" {
		t.Errorf("List: %+v %v", cats, err)
	}
}

func TestVoteRepo_Cast(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO votes .* ON CONFLICT \(entity_type, entity_id, username\) DO UPDATE`).
		WithArgs(models.EntityPost, testPostID, "autor", models.VoteUp).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FILTER \(WHERE type = 'up'\)`).
		WithArgs(models.EntityPost, testPostID).
		WillReturnRows(sqlmock.NewRows([]string{"up", "down"}).AddRow(3, 1))
	mock.ExpectCommit()

	tally, err := NewVoteRepo(db).Cast(context.Background(), models.Vote{
		EntityType: models.EntityPost, EntityID: testPostID, Username: "autor", Type: models.VoteUp,
	})
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if tally.Upvotes != 3 || tally.Downvotes != 1 {
		t.Errorf("unexpected tally: %+v", tally)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestVoteRepo_Retract_NoVote(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT type FROM votes`).
		WithArgs(models.EntityComment, testCommentID, "autor").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err = NewVoteRepo(db).Retract(context.Background(), models.EntityComment, testCommentID, "autor", nil)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestVoteRepo_Tallies(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT entity_id, .* GROUP BY entity_id`).
		WithArgs(models.EntityPost).
		WillReturnRows(sqlmock.NewRows([]string{"entity_id", "up", "down"}).AddRow(testPostID, 2, 0))

	got, err := NewVoteRepo(db).Tallies(context.Background(), models.EntityPost)
	if err != nil {
		t.Fatalf("Tallies: %v", err)
	}
	if got[testPostID].Upvotes != 2 {
		t.Errorf("unexpected tallies: %+v", got)
	}
}

func TestAuditRepo_LogAndList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO audit_log \(username, action, resource_type, resource_id, details\)`).
		WithArgs("admin", "delete", "post", testPostID, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT id, username, action, resource_type, resource_id, COALESCE\(details,''\), created_at FROM audit_log`).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "action", "resource_type", "resource_id", "details", "created_at"}).
			AddRow(1, "admin", "delete", "post", testPostID, "", time.Now()))

	r := NewAuditRepo(db)
	if err := r.Log(context.Background(), models.AuditEntry{Username: "admin", Action: "delete", ResourceType: "post", ResourceID: testPostID}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	entries, err := r.List(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Username != "admin" {
		t.Errorf("unexpected entries: %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuditRepo_Prune(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM audit_log WHERE created_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewAuditRepo(db).Prune(context.Background(), cutoff)
	if err != nil || n != 3 {
		t.Fatalf("Prune: %d %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestNewSet_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	mock.ExpectPing()

	set := NewSet(db)
	if err := set.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
