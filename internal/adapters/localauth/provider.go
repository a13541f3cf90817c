// Package localauth is the self-hosted identity service: bcrypt credentials
// in Postgres and opaque session ids backed by a session store.
package localauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mpo-id/portal/internal/adapters/cookies"
	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	apperrors "github.com/mpo-id/portal/internal/errors"
	"github.com/mpo-id/portal/internal/ports"
)

// CookieName holds the session id.
const CookieName = "session_id"

var _ ports.IdentityService = (*Provider)(nil)

// Config configures a Provider.
type Config struct {
	Credentials ports.CredentialStore
	Sessions    ports.SessionStore
	Cookies     cookies.Options

	SessionTTL time.Duration
	// RefreshWindow extends a session when less than this much lifetime remains.
	RefreshWindow time.Duration

	Logger *slog.Logger
	Now    func() time.Time
}

// Provider implements ports.IdentityService.
type Provider struct {
	creds         ports.CredentialStore
	sessions      ports.SessionStore
	cookies       cookies.Options
	ttl           time.Duration
	refreshWindow time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// New creates a Provider.
func New(cfg Config) (*Provider, error) {
	if cfg.Credentials == nil || cfg.Sessions == nil {
		return nil, errors.New("localauth: credential and session stores are required")
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Provider{
		creds:         cfg.Credentials,
		sessions:      cfg.Sessions,
		cookies:       cfg.Cookies,
		ttl:           ttl,
		refreshWindow: cfg.RefreshWindow,
		logger:        logger.With("component", "localauth"),
		now:           now,
	}, nil
}

// CurrentUser loads the session named by the cookie. Sessions close to
// expiry are extended and the cookie is re-issued.
func (p *Provider) CurrentUser(ctx context.Context, jar ports.CookieJar) (*domainauth.Identity, error) {
	id, ok := jar.Cookie(CookieName)
	if !ok || id == "" {
		return nil, nil
	}

	sess, err := p.sessions.Get(ctx, id)
	if errors.Is(err, domainauth.ErrSessionNotFound) {
		p.cookies.Clear(jar, CookieName)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	now := p.now()
	if sess.Expired(now) {
		p.cookies.Clear(jar, CookieName)
		return nil, nil
	}
	if sess.ExpiresAt.Sub(now) < p.refreshWindow {
		extended := sess
		extended.ExpiresAt = now.Add(p.ttl)
		if err := p.sessions.Save(ctx, extended); err != nil {
			p.logger.WarnContext(ctx, "extend session failed", "user_id", sess.UserID, "error", err)
		} else {
			sess = extended
			p.cookies.Set(jar, CookieName, sess.ID, p.ttl)
		}
	}

	ident := sess.Identity()
	return &ident, nil
}

// SignInWithPassword checks the bcrypt hash and starts a new session.
func (p *Provider) SignInWithPassword(ctx context.Context, jar ports.CookieJar, creds domainauth.Credentials) (*domainauth.Identity, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	user, err := p.creds.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// Spend the same time as a real comparison so unknown emails are not observable.
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(creds.Password))
			return nil, domainauth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup credentials: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, domainauth.ErrInvalidCredentials
	}

	now := p.now()
	sess := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(p.ttl),
	}
	if err := p.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	p.cookies.Set(jar, CookieName, sess.ID, p.ttl)

	ident := sess.Identity()
	return &ident, nil
}

// SignOut deletes the session and clears the cookie.
func (p *Provider) SignOut(ctx context.Context, jar ports.CookieJar) error {
	id, _ := jar.Cookie(CookieName)
	p.cookies.Clear(jar, CookieName)
	if id == "" {
		return nil
	}
	if err := p.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// HashPassword returns the bcrypt hash stored in auth_users.password_hash.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", apperrors.ValidationField("password", "Password must be at least 8 characters.")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	if err != nil {
		return nil
	}
	return h
})
