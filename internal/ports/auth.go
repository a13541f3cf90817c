package ports

// Package ports defines interfaces (hexagonal ports) for identity, profile and session behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"
	"net/http"

	domainauth "github.com/mpo-id/portal/internal/domain/auth"
)

// CookieJar is the cookie surface of one request/response pair.
// Reads see the inbound cookies plus any mutation made during the request;
// writes are carried onto the outgoing response.
type CookieJar interface {
	Cookie(name string) (string, bool)
	SetCookie(c *http.Cookie)
}

// IdentityService is the external identity provider.
type IdentityService interface {
	// CurrentUser returns the authenticated subject for the jar's credentials,
	// or nil when there is none. It may refresh or clear credential cookies.
	CurrentUser(ctx context.Context, jar CookieJar) (*domainauth.Identity, error)

	// SignInWithPassword authenticates credentials and writes session cookies to the jar.
	SignInWithPassword(ctx context.Context, jar CookieJar, creds domainauth.Credentials) (*domainauth.Identity, error)

	// SignOut ends the session and clears credential cookies from the jar.
	SignOut(ctx context.Context, jar CookieJar) error
}

// ProfileStore reads user profiles.
type ProfileStore interface {
	// GetRole returns the raw role column for subjectID.
	GetRole(ctx context.Context, subjectID string) (string, error)
	GetProfile(ctx context.Context, subjectID string) (*domainauth.UserProfile, error)
	ListProfiles(ctx context.Context, limit, offset int) ([]*domainauth.UserProfile, error)
}

// SessionStore persists and retrieves server-side sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// AuthUser is a local credential record.
type AuthUser struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
}

// CredentialStore looks up local credential records by email.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*AuthUser, error)
}
