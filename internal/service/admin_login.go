package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode"

	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	"github.com/mpo-id/portal/internal/domain/model"
	"github.com/mpo-id/portal/internal/ports"
)

// Login outcomes, matching the metrics label values.
const (
	loginSuccess  = "success"
	loginInvalid  = "invalid_credentials"
	loginNoAccess = "no_admin_access"
	loginError    = "error"
)

// ErrNoAdminAccess is returned when valid credentials belong to a non-admin.
var ErrNoAdminAccess = errors.New("You do not have admin access")

// LoginForm is the admin login form payload.
type LoginForm struct {
	Email      string `form:"email"      validate:"required,email,max=254"`
	Password   string `form:"password"   validate:"required,max=128"`
	RedirectTo string `form:"redirectTo"`
}

// Validate trims and validates the form.
func (f *LoginForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return model.ValidateStruct(f)
}

// AdminLoginServiceOptions groups dependencies for AdminLoginService.
type AdminLoginServiceOptions struct {
	Identity ports.IdentityService // Required
	Access   *AccessService        // Required
	Logger   *slog.Logger          // Optional
}

// AdminLoginService signs administrators in. Credentials that are valid
// but lack an admin role are signed straight back out.
type AdminLoginService struct {
	identity ports.IdentityService
	access   *AccessService
	logger   *slog.Logger
}

// NewAdminLoginService constructs an AdminLoginService.
func NewAdminLoginService(opts AdminLoginServiceOptions) *AdminLoginService {
	if opts.Identity == nil {
		panic("IdentityService is required")
	}
	if opts.Access == nil {
		panic("AccessService is required")
	}
	return &AdminLoginService{identity: opts.Identity, access: opts.Access, logger: opts.Logger}
}

func (s *AdminLoginService) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// SignIn authenticates form credentials and checks the admin role.
// Returns model.FieldErrors for an invalid form, domainauth.ErrInvalidCredentials
// for rejected credentials and ErrNoAdminAccess for non-admin accounts.
func (s *AdminLoginService) SignIn(ctx context.Context, jar ports.CookieJar, form LoginForm) (*domainauth.UserProfile, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	id, err := s.identity.SignInWithPassword(ctx, jar, domainauth.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		if errors.Is(err, domainauth.ErrInvalidCredentials) {
			s.access.metrics.Login(loginInvalid)
			s.log().InfoContext(ctx, "admin login rejected", "email", form.Email)
			return nil, err
		}
		s.access.metrics.Login(loginError)
		return nil, fmt.Errorf("sign in: %w", err)
	}

	role := s.access.LookupRole(ctx, id.UserID)
	if !role.IsAdmin() {
		s.access.metrics.Login(loginNoAccess)
		s.log().WarnContext(ctx, "admin login without admin role", "subject", id.UserID, "role", string(role))
		if err := s.identity.SignOut(ctx, jar); err != nil {
			s.log().WarnContext(ctx, "sign out after denied login", "subject", id.UserID, "error", err)
		}
		return nil, ErrNoAdminAccess
	}

	s.access.metrics.Login(loginSuccess)
	s.log().InfoContext(ctx, "admin signed in", "subject", id.UserID, "role", string(role))
	return &domainauth.UserProfile{ID: id.UserID, Email: id.Email, Role: role}, nil
}

// SignOut ends the caller's session.
func (s *AdminLoginService) SignOut(ctx context.Context, jar ports.CookieJar) error {
	if err := s.identity.SignOut(ctx, jar); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// SafeRedirect returns target when it is a local absolute path, otherwise fallback.
// Browsers drop control characters while parsing, so "/\t/host" is "//host".
func SafeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") ||
		strings.Contains(target, `\`) || strings.ContainsFunc(target, unicode.IsControl) {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return fallback
	}
	return target
}
