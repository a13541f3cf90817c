package gotrue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/mpo-id/portal/internal/adapters/cookies"
	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	"github.com/mpo-id/portal/internal/ports"
)

const defaultCookieMaxAge = 7 * 24 * time.Hour

var _ ports.IdentityService = (*Service)(nil)

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Client *Client
	// Verifier checks access tokens. Nil falls back to asking the auth service.
	Verifier TokenVerifier

	CookiePrefix  string
	Cookies       cookies.Options
	CookieMaxAge  time.Duration
	RefreshWindow time.Duration

	Logger *slog.Logger
}

// Service is the hosted IdentityService. Tokens travel in two cookies:
// <prefix>-access-token and <prefix>-refresh-token.
type Service struct {
	client        *Client
	verifier      TokenVerifier
	accessName    string
	refreshName   string
	cookies       cookies.Options
	maxAge        time.Duration
	refreshWindow time.Duration
	logger        *slog.Logger
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Client == nil {
		return nil, errors.New("gotrue: client is required")
	}
	prefix := cfg.CookiePrefix
	if prefix == "" {
		prefix = "sb"
	}
	verifier := cfg.Verifier
	if verifier == nil {
		verifier = &remoteVerifier{client: cfg.Client}
	}
	maxAge := cfg.CookieMaxAge
	if maxAge <= 0 {
		maxAge = defaultCookieMaxAge
	}
	logger := cfg.Logger
	if logger == nil {
		logger = cfg.Client.logger
	}
	return &Service{
		client:        cfg.Client,
		verifier:      verifier,
		accessName:    prefix + "-access-token",
		refreshName:   prefix + "-refresh-token",
		cookies:       cfg.Cookies,
		maxAge:        maxAge,
		refreshWindow: cfg.RefreshWindow,
		logger:        logger,
	}, nil
}

// CurrentUser returns the subject of the cookie session, refreshing the
// access token when it is inside the refresh window. A rejected refresh
// token clears both cookies and yields no identity.
func (s *Service) CurrentUser(ctx context.Context, jar ports.CookieJar) (*domainauth.Identity, error) {
	access, _ := jar.Cookie(s.accessName)
	refresh, _ := jar.Cookie(s.refreshName)
	if access == "" && refresh == "" {
		return nil, nil
	}

	current := &oauth2.Token{AccessToken: access, RefreshToken: refresh, Expiry: peekExpiry(access)}
	if access != "" && current.Expiry.IsZero() {
		// Unreadable exp: force a refresh rather than trusting it forever.
		current.Expiry = time.Unix(1, 0)
	}

	src := oauth2.ReuseTokenSourceWithExpiry(current, &refreshSource{ctx: ctx, client: s.client, refreshToken: refresh}, s.refreshWindow)
	tok, err := src.Token()
	if err != nil {
		if errors.Is(err, ErrInvalidGrant) {
			s.logger.DebugContext(ctx, "session ended by auth service", "error", err)
			s.clear(jar)
			return nil, nil
		}
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	if tok.AccessToken != access {
		s.writeTokens(jar, tok)
	}

	id, err := s.verifier.Verify(ctx, tok.AccessToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			s.clear(jar)
		}
		return nil, err
	}
	return id, nil
}

// SignInWithPassword runs the password grant and stores the token pair in the jar.
func (s *Service) SignInWithPassword(ctx context.Context, jar ports.CookieJar, creds domainauth.Credentials) (*domainauth.Identity, error) {
	resp, err := s.client.passwordGrant(ctx, creds.Email, creds.Password)
	if err != nil {
		if isRejection(err) {
			return nil, fmt.Errorf("%w: %w", domainauth.ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("password grant: %w", err)
	}
	if resp.AccessToken == "" || resp.User.ID == "" {
		return nil, errors.New("gotrue: password grant returned no session")
	}

	tok := resp.token(time.Now())
	s.writeTokens(jar, tok)
	return &domainauth.Identity{UserID: resp.User.ID, Email: resp.User.Email, ExpiresAt: tok.Expiry}, nil
}

// SignOut clears the cookies and revokes the session upstream.
// Cookies are cleared even when revocation fails.
func (s *Service) SignOut(ctx context.Context, jar ports.CookieJar) error {
	access, _ := jar.Cookie(s.accessName)
	s.clear(jar)
	if access == "" {
		return nil
	}
	if err := s.client.logout(ctx, access); err != nil && !isRejection(err) {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Service) writeTokens(jar ports.CookieJar, tok *oauth2.Token) {
	s.cookies.Set(jar, s.accessName, tok.AccessToken, s.maxAge)
	if tok.RefreshToken != "" {
		s.cookies.Set(jar, s.refreshName, tok.RefreshToken, s.maxAge)
	}
}

func (s *Service) clear(jar ports.CookieJar) {
	s.cookies.Clear(jar, s.accessName, s.refreshName)
}

func (t tokenResponse) token(now time.Time) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.expiry(now),
	}
}

// refreshSource is an oauth2.TokenSource backed by the refresh_token grant.
type refreshSource struct {
	ctx          context.Context
	client       *Client
	refreshToken string
}

func (r *refreshSource) Token() (*oauth2.Token, error) {
	if r.refreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", ErrInvalidGrant)
	}
	resp, err := r.client.refreshGrant(r.ctx, r.refreshToken)
	if err != nil {
		if isRejection(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidGrant, err)
		}
		return nil, err
	}
	tok := resp.token(time.Now())
	if tok.RefreshToken == "" {
		tok.RefreshToken = r.refreshToken
	}
	return tok, nil
}
