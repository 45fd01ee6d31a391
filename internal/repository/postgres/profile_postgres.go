package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"finobs/internal/model"
	"finobs/internal/repository"
)

// ProfilePostgres is a PostgreSQL implementation of repository.ProfileRepository.
type ProfilePostgres struct {
	db *sql.DB
}

// NewProfilePostgres creates a new ProfilePostgres repository.
func NewProfilePostgres(db *sql.DB) *ProfilePostgres {
	return &ProfilePostgres{db: db}
}

var _ repository.ProfileRepository = (*ProfilePostgres)(nil)

const profileColumns = `id, email, email_verified, password_hash, first_name, last_name,
		company_name, company_description, company_website, doc_count, created_at, updated_at`

func scanProfile(row *sql.Row) (*model.Profile, error) {
	var p model.Profile
	if err := row.Scan(
		&p.ID,
		&p.Email,
		&p.EmailVerified,
		&p.PasswordHash,
		&p.FirstName,
		&p.LastName,
		&p.CompanyName,
		&p.CompanyDescription,
		&p.CompanyWebsite,
		&p.DocCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new profile row and returns the stored record.
func (r *ProfilePostgres) Create(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	q := `
		INSERT INTO profiles (id, email, email_verified, password_hash, first_name, last_name,
			company_name, company_description, company_website, doc_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + profileColumns
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.Email,
		p.EmailVerified,
		p.PasswordHash,
		p.FirstName,
		p.LastName,
		p.CompanyName,
		p.CompanyDescription,
		p.CompanyWebsite,
		p.DocCount,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return scanProfile(row)
}

// FindByID fetches a single profile by its ID.
func (r *ProfilePostgres) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a single profile by its email.
func (r *ProfilePostgres) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return scanProfile(r.db.QueryRowContext(ctx, q, email))
}

// Update applies the non-nil fields of upd to the row with the given id and
// stamps updated_at in the same statement. The id in the WHERE clause is the
// only way a row is selected; upd cannot carry one.
func (r *ProfilePostgres) Update(ctx context.Context, id string, upd model.ProfileUpdate) error {
	if upd.IsZero() {
		return nil
	}

	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.FirstName != nil {
		add("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		add("last_name", *upd.LastName)
	}
	if upd.CompanyName != nil {
		add("company_name", *upd.CompanyName)
	}
	if upd.CompanyDescription != nil {
		add("company_description", *upd.CompanyDescription)
	}
	if upd.CompanyWebsite != nil {
		add("company_website", *upd.CompanyWebsite)
	}
	if upd.DocCount != nil {
		add("doc_count", *upd.DocCount)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	q := fmt.Sprintf("UPDATE profiles SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}
