package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// IdentityMode selects the identity provider implementation.
type IdentityMode string

const (
	// IdentityModeGoTrue delegates sessions to a hosted GoTrue-compatible auth service.
	IdentityModeGoTrue IdentityMode = "gotrue"
	// IdentityModeLocal keeps credentials in Postgres and sessions in Redis.
	IdentityModeLocal IdentityMode = "local"
)

// UnmarshalText implements encoding.TextUnmarshaler for IdentityMode.
func (m *IdentityMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "gotrue", "local":
		*m = IdentityMode(v)
		return nil
	default:
		return fmt.Errorf("invalid IdentityMode: %q (valid options: gotrue, local)", v)
	}
}

// GoTrueConfig points at the hosted auth service.
type GoTrueConfig struct {
	// URL is the project base URL, e.g. https://abcd.supabase.co. The /auth/v1 path is appended.
	URL string `env:"URL"`
	// AnonKey is sent as the apikey header on every call.
	AnonKey string `env:"ANON_KEY"`
	// JWTSecret enables local HS256 verification of access tokens.
	JWTSecret string `env:"JWT_SECRET"`
	// JWKSURL enables local asymmetric verification of access tokens.
	JWKSURL string `env:"JWKS_URL"`
	// Audience is the expected aud claim.
	Audience string `env:"AUDIENCE" envDefault:"authenticated"`
	// Timeout bounds each call to the auth service.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
	// RefreshWindow refreshes access tokens this long before they expire.
	RefreshWindow time.Duration `env:"REFRESH_WINDOW" envDefault:"60s"`
	// BreakerFailures is the consecutive failure count that opens the circuit breaker.
	BreakerFailures uint32 `env:"BREAKER_FAILURES" envDefault:"5"`
	// BreakerCooldown is how long the breaker stays open.
	BreakerCooldown time.Duration `env:"BREAKER_COOLDOWN" envDefault:"30s"`
}

// LocalAuthConfig controls the local identity provider.
type LocalAuthConfig struct {
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	// RefreshWindow extends a session when less than this much lifetime remains.
	RefreshWindow time.Duration `env:"REFRESH_WINDOW" envDefault:"1h"`
}

// AuthConfig groups identity provider and cookie configuration.
type AuthConfig struct {
	Mode IdentityMode `env:"AUTH_MODE" envDefault:"gotrue"`

	GoTrue GoTrueConfig    `envPrefix:"GOTRUE_"`
	Local  LocalAuthConfig `envPrefix:"LOCAL_AUTH_"`

	// CookiePrefix names the credential cookies, e.g. "sb" gives sb-access-token.
	CookiePrefix string `env:"AUTH_COOKIE_PREFIX" envDefault:"sb"`
	// CookieSecure forces the Secure attribute; always on outside dev mode.
	CookieSecure bool `env:"AUTH_COOKIE_SECURE" envDefault:"true"`
}

// Sanitize trims values and applies defaults.
func (a *AuthConfig) Sanitize(isDev bool) {
	a.GoTrue.URL = strings.TrimRight(strings.TrimSpace(a.GoTrue.URL), "/")
	a.GoTrue.JWKSURL = strings.TrimSpace(a.GoTrue.JWKSURL)
	a.CookiePrefix = strings.TrimSpace(a.CookiePrefix)
	if a.CookiePrefix == "" {
		a.CookiePrefix = "sb"
	}
	if a.GoTrue.Timeout <= 0 {
		a.GoTrue.Timeout = 5 * time.Second
	}
	if a.GoTrue.RefreshWindow < 0 {
		a.GoTrue.RefreshWindow = 0
	}
	if a.GoTrue.BreakerFailures == 0 {
		a.GoTrue.BreakerFailures = 5
	}
	if a.Local.SessionTTL <= 0 {
		a.Local.SessionTTL = 12 * time.Hour
	}
	if a.Local.RefreshWindow <= 0 || a.Local.RefreshWindow >= a.Local.SessionTTL {
		a.Local.RefreshWindow = a.Local.SessionTTL / 4
	}
	if !isDev {
		a.CookieSecure = true
	}
}

// Validate checks the settings required by the selected mode.
func (a *AuthConfig) Validate() error {
	if a.Mode != IdentityModeGoTrue {
		return nil
	}
	if a.GoTrue.URL == "" {
		return errors.New("GOTRUE_URL is required when AUTH_MODE=gotrue")
	}
	u, err := url.Parse(a.GoTrue.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("GOTRUE_URL %q is not an absolute URL", a.GoTrue.URL)
	}
	if a.GoTrue.AnonKey == "" {
		return errors.New("GOTRUE_ANON_KEY is required when AUTH_MODE=gotrue")
	}
	return nil
}
