package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"finobs/internal/model"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var docColumns = []string{"id", "user_id", "name", "file_path", "file_type", "file_size", "created_at"}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	doc := &model.Document{
		ID:        "test-uuid",
		UserID:    "owner-uuid",
		Name:      "report.pdf",
		FilePath:  "https://cdn.example.com/documents/owner-uuid/1_report.pdf",
		FileType:  "application/pdf",
		FileSize:  500000,
		CreatedAt: now,
	}

	rows := sqlmock.NewRows(docColumns).
		AddRow(doc.ID, doc.UserID, doc.Name, doc.FilePath, doc.FileType, doc.FileSize, doc.CreatedAt)

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(doc.ID, doc.UserID, doc.Name, doc.FilePath, doc.FileType, doc.FileSize, doc.CreatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, doc)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, doc.ID, result.ID)
	assert.Equal(t, doc.UserID, result.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(docColumns).
			AddRow("test-id", "owner-id", "file.pdf", "https://cdn/x/file.pdf", "application/pdf", 100, time.Now())

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("test-id").
			WillReturnRows(rows)

		doc, err := repo.FindByID(ctx, "test-id")

		assert.NoError(t, err)
		assert.NotNil(t, doc)
		assert.Equal(t, "test-id", doc.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, "missing")

		assert.Error(t, err)
		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		rows := sqlmock.NewRows(docColumns).
			AddRow("id-2", "owner-id", "newer.pdf", "https://cdn/x/newer.pdf", "application/pdf", 200, time.Now()).
			AddRow("id-1", "owner-id", "older.pdf", "https://cdn/x/older.pdf", "application/pdf", 100, time.Now().Add(-time.Hour))

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE user_id = (.+) ORDER BY created_at DESC").
			WithArgs("owner-id").
			WillReturnRows(rows)

		items, err := repo.ListByUser(ctx, "owner-id")

		assert.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, "id-2", items[0].ID)
	})

	t.Run("empty result", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE user_id = (.+)").
			WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows(docColumns))

		items, err := repo.ListByUser(ctx, "nobody")

		assert.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestDocumentPostgres_CountByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM documents WHERE user_id = ?").
		WithArgs("owner-id").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountByUser(ctx, "owner-id")

	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM documents WHERE id = ?").
		WithArgs("test-id").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(ctx, "test-id")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
