package repository

import (
	"context"

	"finobs/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record.
	// The caller provides required fields (e.g., ID, CreatedAt).
	// Returns the stored document (may include values set by the DB).
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// ListByUser returns all documents owned by the given user, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Document, error)

	// CountByUser returns the number of documents owned by the given user.
	CountByUser(ctx context.Context, userID string) (int, error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
