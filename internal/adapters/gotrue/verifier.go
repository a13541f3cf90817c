package gotrue

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/mpo-id/portal/internal/domain/auth"
)

// TokenVerifier turns an access token into the identity it asserts.
type TokenVerifier interface {
	Verify(ctx context.Context, accessToken string) (*domainauth.Identity, error)
}

type accessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// hmacVerifier checks HS256 tokens signed with the project JWT secret.
type hmacVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewHMACVerifier verifies tokens locally with the shared project secret.
func NewHMACVerifier(secret, audience string) TokenVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &hmacVerifier{secret: []byte(secret), parser: jwt.NewParser(opts...)}
}

func (v *hmacVerifier) Verify(_ context.Context, accessToken string) (*domainauth.Identity, error) {
	var claims accessClaims
	_, err := v.parser.ParseWithClaims(accessToken, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return &domainauth.Identity{
		UserID:    claims.Subject,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// jwksVerifier checks asymmetric tokens against the project key set.
type jwksVerifier struct {
	verifier *gooidc.IDTokenVerifier
}

// NewJWKSVerifier verifies tokens with keys fetched (and cached) from jwksURL.
// issuer may be empty to skip the iss check.
func NewJWKSVerifier(jwksURL, issuer, audience string, httpClient *http.Client) TokenVerifier {
	ctx := context.Background()
	if httpClient != nil {
		ctx = gooidc.ClientContext(ctx, httpClient)
	}
	keySet := gooidc.NewRemoteKeySet(ctx, jwksURL)
	return &jwksVerifier{
		verifier: gooidc.NewVerifier(issuer, keySet, &gooidc.Config{
			ClientID:             audience,
			SkipClientIDCheck:    audience == "",
			SkipIssuerCheck:      issuer == "",
			SupportedSigningAlgs: []string{gooidc.RS256, gooidc.ES256},
		}),
	}
}

func (v *jwksVerifier) Verify(ctx context.Context, accessToken string) (*domainauth.Identity, error) {
	tok, err := v.verifier.Verify(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	var claims struct {
		Email string `json:"email"`
	}
	if err := tok.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %w", ErrInvalidToken, err)
	}
	return &domainauth.Identity{UserID: tok.Subject, Email: claims.Email, ExpiresAt: tok.Expiry}, nil
}

// remoteVerifier asks the auth service who owns the token.
type remoteVerifier struct {
	client *Client
}

func (v *remoteVerifier) Verify(ctx context.Context, accessToken string) (*domainauth.Identity, error) {
	u, err := v.client.user(ctx, accessToken)
	if err != nil {
		if isRejection(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
		return nil, err
	}
	if u.ID == "" {
		return nil, fmt.Errorf("%w: user has no id", ErrInvalidToken)
	}
	return &domainauth.Identity{UserID: u.ID, Email: u.Email, ExpiresAt: peekExpiry(accessToken)}, nil
}

// peekExpiry reads exp without verifying the signature. A zero time means unknown.
func peekExpiry(accessToken string) time.Time {
	if accessToken == "" {
		return time.Time{}
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
