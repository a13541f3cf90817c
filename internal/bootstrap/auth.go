package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mpo-id/portal/config"
	"github.com/mpo-id/portal/internal/adapters/cookies"
	"github.com/mpo-id/portal/internal/adapters/gotrue"
	"github.com/mpo-id/portal/internal/adapters/localauth"
	redisadapter "github.com/mpo-id/portal/internal/adapters/redis"
	"github.com/mpo-id/portal/internal/data"
	"github.com/mpo-id/portal/internal/observability/metrics"
	"github.com/mpo-id/portal/internal/ports"
)

// IdentityDeps contains what the identity providers are built from.
type IdentityDeps struct {
	Auth config.AuthConfig
	// CookieDomain scopes the credential cookies.
	CookieDomain string
	// DB backs local credentials. Unused in gotrue mode.
	DB *sql.DB
	// RedisClient stores local sessions. Unused in gotrue mode.
	RedisClient redis.UniversalClient
	Metrics     *metrics.Recorder
	Logger      *slog.Logger
}

// BuildIdentity creates the identity service for the configured mode.
//
//nolint:ireturn // the mode picks the implementation.
func BuildIdentity(deps IdentityDeps) (ports.IdentityService, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	jar := cookies.Options{Secure: deps.Auth.CookieSecure, Domain: deps.CookieDomain}

	var (
		svc ports.IdentityService
		err error
	)
	switch deps.Auth.Mode {
	case config.IdentityModeGoTrue:
		svc, err = buildGoTrue(deps.Auth, jar, deps.Metrics, logger)
	case config.IdentityModeLocal:
		svc, err = buildLocalAuth(deps, jar, logger)
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", deps.Auth.Mode)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("identity provider ready", "mode", deps.Auth.Mode)
	return svc, nil
}

//nolint:ireturn // returns the IdentityService port.
func buildGoTrue(cfg config.AuthConfig, jar cookies.Options, rec *metrics.Recorder, logger *slog.Logger) (ports.IdentityService, error) {
	client, err := gotrue.NewClient(gotrue.Config{
		BaseURL:         cfg.GoTrue.URL,
		AnonKey:         cfg.GoTrue.AnonKey,
		Timeout:         cfg.GoTrue.Timeout,
		BreakerFailures: cfg.GoTrue.BreakerFailures,
		BreakerCooldown: cfg.GoTrue.BreakerCooldown,
		Logger:          logger,
		Observer:        rec.IdentityCall,
	})
	if err != nil {
		return nil, err
	}

	verifier := tokenVerifier(cfg.GoTrue, client.Issuer())
	if verifier == nil {
		logger.Warn("no JWT secret or JWKS URL configured; every request will call the auth service")
	}

	svc, err := gotrue.NewService(gotrue.ServiceConfig{
		Client:        client,
		Verifier:      verifier,
		CookiePrefix:  cfg.CookiePrefix,
		Cookies:       jar,
		RefreshWindow: cfg.GoTrue.RefreshWindow,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// tokenVerifier prefers the shared secret, then the JWKS endpoint. Nil means
// tokens are checked remotely.
//
//nolint:ireturn // verifier kind depends on configuration.
func tokenVerifier(cfg config.GoTrueConfig, issuer string) gotrue.TokenVerifier {
	switch {
	case cfg.JWTSecret != "":
		return gotrue.NewHMACVerifier(cfg.JWTSecret, cfg.Audience)
	case cfg.JWKSURL != "":
		return gotrue.NewJWKSVerifier(cfg.JWKSURL, issuer, cfg.Audience, nil)
	default:
		return nil
	}
}

//nolint:ireturn // returns the IdentityService port.
func buildLocalAuth(deps IdentityDeps, jar cookies.Options, logger *slog.Logger) (ports.IdentityService, error) {
	if deps.DB == nil {
		return nil, errors.New("local auth requires a database")
	}
	if deps.RedisClient == nil {
		return nil, errors.New("local auth requires redis")
	}
	p, err := localauth.New(localauth.Config{
		Credentials:   data.NewAuthUserRepo(deps.DB),
		Sessions:      redisadapter.NewSessionStore(deps.RedisClient),
		Cookies:       jar,
		SessionTTL:    deps.Auth.Local.SessionTTL,
		RefreshWindow: deps.Auth.Local.RefreshWindow,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
