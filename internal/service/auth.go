package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"finobs/internal/auth"
	"finobs/internal/model"
	"finobs/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrEmailTaken         = errors.New("email already registered")
)

// RegisterInput carries the sign-up form fields.
type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
}

// AuthService handles sign-up and sign-in. Token validation for subsequent
// requests lives in the HTTP auth middleware.
type AuthService interface {
	// Register creates the profile row for a new identity.
	Register(ctx context.Context, in RegisterInput) (*model.Profile, error)

	// Login verifies credentials and returns a signed access token together
	// with the profile.
	Login(ctx context.Context, email, password string) (string, *model.Profile, error)
}

type authService struct {
	profiles repository.ProfileRepository
	tokens   *auth.TokenManager
	log      zerolog.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(profiles repository.ProfileRepository, tokens *auth.TokenManager, log zerolog.Logger) AuthService {
	return &authService{profiles: profiles, tokens: tokens, log: log}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrValidation)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	if existing, err := s.profiles.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	p, err := s.profiles.Create(ctx, &model.Profile{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CompanyName:  in.CompanyName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	s.log.Info().Str("user_id", p.ID).Msg("profile registered")
	return p, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	p, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("fetch profile: %w", err)
	}

	if !auth.CheckPassword(p.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}
	if !p.EmailVerified {
		return "", nil, ErrEmailNotVerified
	}

	token, err := s.tokens.Generate(p.ID, p.Email)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, p, nil
}
