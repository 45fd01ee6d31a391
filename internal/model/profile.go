package model

import "time"

// Profile is the per-user account record. Exactly one row exists per
// authenticated identity; ID doubles as the auth subject.
//
// DocCount is a denormalized cache of the user's document count. It may
// drift under concurrent uploads/deletes and is reconciled opportunistically
// when documents are listed.
type Profile struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	EmailVerified      bool      `json:"email_verified"`
	FirstName          string    `json:"first_name,omitempty"`
	LastName           string    `json:"last_name,omitempty"`
	CompanyName        string    `json:"company_name,omitempty"`
	CompanyDescription string    `json:"company_description,omitempty"`
	CompanyWebsite     string    `json:"company_website,omitempty"`
	DocCount           int       `json:"doc_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// PasswordHash never leaves the backend.
	PasswordHash string `json:"-"`
}

// ProfileUpdate is a partial update to a Profile. Nil fields are left
// untouched. ID and Email are deliberately absent: both are immutable and a
// caller can only ever update its own row.
type ProfileUpdate struct {
	FirstName          *string `json:"first_name,omitempty"`
	LastName           *string `json:"last_name,omitempty"`
	CompanyName        *string `json:"company_name,omitempty"`
	CompanyDescription *string `json:"company_description,omitempty"`
	CompanyWebsite     *string `json:"company_website,omitempty"`
	DocCount           *int    `json:"doc_count,omitempty"`
}

// IsZero reports whether the update carries no fields at all.
func (u ProfileUpdate) IsZero() bool {
	return u.FirstName == nil &&
		u.LastName == nil &&
		u.CompanyName == nil &&
		u.CompanyDescription == nil &&
		u.CompanyWebsite == nil &&
		u.DocCount == nil
}
