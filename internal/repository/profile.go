package repository

import (
	"context"

	"finobs/internal/model"
)

// ProfileRepository defines data access for profiles using SQL queries only.
// No business logic here — strictly persistence operations.
type ProfileRepository interface {
	// Create inserts a new profile row and returns the stored record.
	Create(ctx context.Context, p *model.Profile) (*model.Profile, error)

	// FindByID returns a profile by its ID.
	FindByID(ctx context.Context, id string) (*model.Profile, error)

	// FindByEmail returns a profile by its email.
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)

	// Update applies a partial update to the row with the given id and
	// stamps updated_at. A zero update is a no-op.
	Update(ctx context.Context, id string, upd model.ProfileUpdate) error
}
