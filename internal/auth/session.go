package auth

import (
	"context"
	"errors"
)

// ErrNoSession indicates that no authenticated session is attached to the
// current context. Operations short-circuit on it without touching any
// backend.
var ErrNoSession = errors.New("no active session")

// Session is the proof of authentication for one identity. It holds only
// what the dashboard facade needs: the owning identity and its email.
type Session struct {
	UserID string
	Email  string
}

// Provider resolves the current session. It is the single capability the
// service layer consumes from the auth side; implementations must be cheap
// and must not perform remote calls.
type Provider interface {
	// Session returns the active session or ErrNoSession.
	Session(ctx context.Context) (Session, error)
}

type ctxKey struct{}

// WithSession returns a context carrying the given session. The HTTP auth
// middleware attaches sessions this way after validating the bearer token.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// SessionFromContext extracts a session previously stored by WithSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// ContextProvider is the default Provider: it reads the session injected
// into the request context by the auth middleware.
type ContextProvider struct{}

var _ Provider = ContextProvider{}

// Session implements Provider.
func (ContextProvider) Session(ctx context.Context) (Session, error) {
	s, ok := SessionFromContext(ctx)
	if !ok || s.UserID == "" {
		return Session{}, ErrNoSession
	}
	return s, nil
}
