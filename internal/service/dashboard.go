package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"finobs/internal/auth"
	"finobs/internal/model"
	"finobs/internal/repository"
	"finobs/internal/storage"
)

var (
	// ErrNoActiveSession is returned by every operation when the context
	// carries no authenticated session. Nothing is read or written in that
	// case.
	ErrNoActiveSession = errors.New("no active session")

	// ErrNotFound indicates the referenced row does not exist or is not
	// owned by the caller.
	ErrNotFound = errors.New("document not found")

	// ErrValidation indicates a client-side precondition failed before any
	// remote write (disallowed extension, document cap, missing content).
	ErrValidation = errors.New("validation failed")

	ErrReaderNil = errors.New("reader is nil")
)

// PresignExpiry is how long a generated download URL stays valid.
const PresignExpiry = 15 * time.Minute

// UploadPolicy is the validated-before-upload part of the configuration.
type UploadPolicy struct {
	MaxDocuments      int
	AllowedExtensions []string
}

// Allows reports whether the policy accepts the given filename's extension,
// case-insensitively.
func (p UploadPolicy) Allows(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false
	}
	for _, allowed := range p.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// DashboardService is the single facade through which the dashboard reads
// and mutates a user's profile and documents. Every operation resolves the
// session first; ownership scoping comes solely from the session identity,
// never from caller-supplied ids.
type DashboardService interface {
	// GetProfile returns the caller's profile, creating it lazily when the
	// row does not exist yet.
	GetProfile(ctx context.Context) (*model.Profile, error)

	// UpdateProfile applies a partial update to the caller's own profile.
	UpdateProfile(ctx context.Context, upd model.ProfileUpdate) error

	// ListDocuments returns the caller's documents newest first and
	// opportunistically repairs a drifted doc_count.
	ListDocuments(ctx context.Context) ([]model.Document, error)

	// UploadDocument validates the file, writes it to object storage, saves
	// the metadata row and bumps the profile's doc_count.
	UploadDocument(ctx context.Context, r io.Reader, filename string, contentType string, size int64) (*model.Document, error)

	// DeleteDocument removes the blob (best effort) and the row, then
	// decrements doc_count, floored at zero.
	DeleteDocument(ctx context.Context, id string) error

	// DocumentURL returns a time-limited download URL for one of the
	// caller's documents.
	DocumentURL(ctx context.Context, id string) (string, error)
}

type dashboardService struct {
	sessions auth.Provider
	store    storage.Storage
	profiles repository.ProfileRepository
	docs     repository.DocumentRepository
	policy   UploadPolicy
	log      zerolog.Logger
}

// NewDashboardService constructs the dashboard facade. All backends are
// injected; the service holds no global state.
func NewDashboardService(
	sessions auth.Provider,
	store storage.Storage,
	profiles repository.ProfileRepository,
	docs repository.DocumentRepository,
	policy UploadPolicy,
	log zerolog.Logger,
) DashboardService {
	return &dashboardService{
		sessions: sessions,
		store:    store,
		profiles: profiles,
		docs:     docs,
		policy:   policy,
		log:      log,
	}
}

// session resolves the caller's session or fails with ErrNoActiveSession.
// Every public operation goes through here before touching any backend.
func (s *dashboardService) session(ctx context.Context) (auth.Session, error) {
	sess, err := s.sessions.Session(ctx)
	if err != nil {
		return auth.Session{}, ErrNoActiveSession
	}
	return sess, nil
}

func (s *dashboardService) GetProfile(ctx context.Context) (*model.Profile, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.profiles.FindByID(ctx, sess.UserID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	// Sign-up normally creates the row; create it lazily when it is missing
	// so older accounts keep working.
	now := time.Now().UTC()
	created, err := s.profiles.Create(ctx, &model.Profile{
		ID:        sess.UserID,
		Email:     sess.Email,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return created, nil
}

func (s *dashboardService) UpdateProfile(ctx context.Context, upd model.ProfileUpdate) error {
	sess, err := s.session(ctx)
	if err != nil {
		return err
	}

	// The write is constrained to the session identity; upd structurally
	// cannot carry an id or email.
	if err := s.profiles.Update(ctx, sess.UserID, upd); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (s *dashboardService) ListDocuments(ctx context.Context) ([]model.Document, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.docs.ListByUser(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	s.reconcileDocCount(ctx, sess.UserID, len(items))

	return items, nil
}

// reconcileDocCount repairs a drifted doc_count after a successful list.
// It is best effort: failures are logged, never surfaced.
func (s *dashboardService) reconcileDocCount(ctx context.Context, userID string, actual int) {
	p, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("doc_count reconciliation: fetch profile failed")
		return
	}
	if p.DocCount == actual {
		return
	}

	s.log.Info().
		Str("user_id", userID).
		Int("cached", p.DocCount).
		Int("actual", actual).
		Msg("doc_count drift detected, repairing")

	if err := s.profiles.Update(ctx, userID, model.ProfileUpdate{DocCount: &actual}); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("doc_count reconciliation: update failed")
	}
}

func (s *dashboardService) UploadDocument(ctx context.Context, r io.Reader, filename string, contentType string, size int64) (*model.Document, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrReaderNil
	}

	// Extension check is fully local and runs before anything else.
	if !s.policy.Allows(filename) {
		return nil, fmt.Errorf("%w: file type not allowed (%s)", ErrValidation, filepath.Ext(filename))
	}

	// Cap check uses the live row count rather than the cached doc_count so
	// drift cannot open the gate. No mutating call has happened yet.
	count, err := s.docs.CountByUser(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	if count >= s.policy.MaxDocuments {
		return nil, fmt.Errorf("%w: document limit of %d reached", ErrValidation, s.policy.MaxDocuments)
	}

	// Blob first, row second. The two writes hit independent services and do
	// not commit together.
	key := fmt.Sprintf("%s/%d_%s", sess.UserID, time.Now().UnixMilli(), filename)
	if _, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": filename,
		},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:        uuid.New().String(),
		UserID:    sess.UserID,
		Name:      filename,
		FilePath:  s.store.PublicURL(key),
		FileType:  contentType,
		FileSize:  size,
		CreatedAt: time.Now().UTC(),
	}
	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		// The blob stays behind; a later sweep can collect it.
		s.log.Error().Err(err).Str("key", key).Msg("metadata insert failed, blob orphaned")
		return nil, fmt.Errorf("save document metadata: %w", err)
	}

	s.bumpDocCount(ctx, sess.UserID, +1)

	return stored, nil
}

func (s *dashboardService) DeleteDocument(ctx context.Context, id string) error {
	sess, err := s.session(ctx)
	if err != nil {
		return err
	}

	doc, err := s.ownedDocument(ctx, sess, id)
	if err != nil {
		return err
	}

	// Blob removal is best effort: a stale row pointing at a missing blob is
	// worse than an orphaned blob.
	key := storageKeyFromURL(doc.FilePath, sess.UserID)
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("blob delete failed, removing row anyway")
	}

	if err := s.docs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	s.bumpDocCount(ctx, sess.UserID, -1)

	return nil
}

func (s *dashboardService) DocumentURL(ctx context.Context, id string) (string, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return "", err
	}

	doc, err := s.ownedDocument(ctx, sess, id)
	if err != nil {
		return "", err
	}

	url, err := s.store.PresignGet(ctx, storageKeyFromURL(doc.FilePath, sess.UserID), PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign document: %w", err)
	}
	return url, nil
}

// ownedDocument fetches a document and verifies the caller owns it. Rows
// owned by someone else surface as ErrNotFound, not as a permission error.
func (s *dashboardService) ownedDocument(ctx context.Context, sess auth.Session, id string) (*model.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	if doc.UserID != sess.UserID {
		return nil, ErrNotFound
	}
	return doc, nil
}

// bumpDocCount adjusts the cached counter by delta, floored at zero. The
// read-modify-write is not atomic; concurrent uploads can lose an update,
// which the next ListDocuments reconciliation repairs. Failures are logged
// only: the counter is a display cache, not a source of truth.
func (s *dashboardService) bumpDocCount(ctx context.Context, userID string, delta int) {
	p, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("doc_count adjust: fetch profile failed")
		return
	}

	n := p.DocCount + delta
	if n < 0 {
		n = 0
	}
	if n == p.DocCount {
		return
	}

	if err := s.profiles.Update(ctx, userID, model.ProfileUpdate{DocCount: &n}); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("doc_count adjust: update failed")
	}
}

// storageKeyFromURL maps a stored public URL back to the object key. The
// upload namespacing is <userID>/<timestamp>_<name>, so the key is the
// owner's id plus the URL's last path segment.
func storageKeyFromURL(fileURL, userID string) string {
	return userID + "/" + path.Base(fileURL)
}
