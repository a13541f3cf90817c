package service

import (
	"context"
	"log/slog"

	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	"github.com/mpo-id/portal/internal/domain/authz"
	apperrors "github.com/mpo-id/portal/internal/errors"
	"github.com/mpo-id/portal/internal/ports"
)

// accessMetrics receives authorization outcomes. *metrics.Recorder satisfies it.
type accessMetrics interface {
	AuthzDecision(routeClass, outcome string)
	FailClosed(stage string)
	Login(outcome string)
}

type noopMetrics struct{}

func (noopMetrics) AuthzDecision(string, string) {}
func (noopMetrics) FailClosed(string)            {}
func (noopMetrics) Login(string)                 {}

// Fail-closed stages, matching the metrics label values.
const (
	stageSession = "session"
	stageRole    = "role"
)

// AccessServiceOptions groups dependencies for AccessService.
type AccessServiceOptions struct {
	Identity ports.IdentityService // Required
	Profiles ports.ProfileStore    // Required
	Metrics  accessMetrics         // Optional
	Logger   *slog.Logger          // Optional
}

// AccessService resolves who is calling and what they may see.
// It never returns errors: every failure degrades to anonymous or no role.
type AccessService struct {
	identity ports.IdentityService
	profiles ports.ProfileStore
	metrics  accessMetrics
	logger   *slog.Logger
}

// NewAccessService constructs an AccessService.
func NewAccessService(opts AccessServiceOptions) *AccessService {
	if opts.Identity == nil {
		panic("IdentityService is required")
	}
	if opts.Profiles == nil {
		panic("ProfileStore is required")
	}
	m := opts.Metrics
	if m == nil {
		m = noopMetrics{}
	}
	return &AccessService{
		identity: opts.Identity,
		profiles: opts.Profiles,
		metrics:  m,
		logger:   opts.Logger,
	}
}

func (s *AccessService) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// ResolveSession returns the caller's identity, or nil when anonymous.
// Identity service errors are logged and treated as anonymous.
func (s *AccessService) ResolveSession(ctx context.Context, jar ports.CookieJar) *domainauth.Identity {
	id, err := s.identity.CurrentUser(ctx, jar)
	if err != nil {
		s.log().WarnContext(ctx, "session resolution failed, treating as anonymous", "error", err)
		s.metrics.FailClosed(stageSession)
		return nil
	}
	if id == nil || id.UserID == "" {
		return nil
	}
	return id
}

// LookupRole returns the role stored for subjectID. A missing profile, a
// store error or an unrecognized role value all yield RoleNone.
func (s *AccessService) LookupRole(ctx context.Context, subjectID string) domainauth.Role {
	raw, err := s.profiles.GetRole(ctx, subjectID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			s.log().InfoContext(ctx, "no profile for subject", "subject", subjectID)
		} else {
			s.log().WarnContext(ctx, "role lookup failed", "subject", subjectID, "error", err)
			s.metrics.FailClosed(stageRole)
		}
		return domainauth.RoleNone
	}
	role, err := domainauth.ParseRole(raw)
	if err != nil {
		s.log().WarnContext(ctx, "profile has unrecognized role", "subject", subjectID, "error", err)
		return domainauth.RoleNone
	}
	return role
}

// Authorize runs the route policy for path. The role is only looked up for
// admin routes with a live session.
func (s *AccessService) Authorize(ctx context.Context, jar ports.CookieJar, path string) authz.Decision {
	class := authz.Classify(path)
	subject := authz.Subject{Path: path}
	// Resolve on every path so refreshed session cookies reach the response.
	if id := s.ResolveSession(ctx, jar); id != nil {
		subject.Authenticated = true
		if class != authz.RoutePublic {
			subject.Role = s.LookupRole(ctx, id.UserID)
		}
	}

	d := authz.Decide(subject)
	s.metrics.AuthzDecision(class.String(), d.Outcome())
	if class != authz.RoutePublic {
		s.log().DebugContext(ctx, "authorization decision",
			"path", path,
			"class", class.String(),
			"authenticated", subject.Authenticated,
			"role", string(subject.Role),
			"outcome", d.Outcome(),
		)
	}
	return d
}

// AdminAccess is the result of a page-level check.
type AdminAccess struct {
	Decision authz.Decision
	Identity *domainauth.Identity
	Role     domainauth.Role
	// Profile is set when the decision allows and the profile could be loaded.
	Profile *domainauth.UserProfile
}

// AuthorizeAdminPage applies the admin-protected rule to path regardless of
// how the path classifies.
func (s *AccessService) AuthorizeAdminPage(ctx context.Context, jar ports.CookieJar, path string) AdminAccess {
	var out AdminAccess
	subject := authz.Subject{Path: path}
	if id := s.ResolveSession(ctx, jar); id != nil {
		out.Identity = id
		subject.Authenticated = true
		subject.Role = s.LookupRole(ctx, id.UserID)
	}
	out.Role = subject.Role
	out.Decision = authz.DecideProtected(subject)
	if !out.Decision.Allowed() {
		s.log().DebugContext(ctx, "page guard redirect", "path", path, "target", out.Decision.Target)
		return out
	}

	profile, err := s.profiles.GetProfile(ctx, out.Identity.UserID)
	if err != nil {
		s.log().WarnContext(ctx, "load profile for admin page", "subject", out.Identity.UserID, "error", err)
		out.Profile = &domainauth.UserProfile{ID: out.Identity.UserID, Email: out.Identity.Email, Role: out.Role}
		return out
	}
	// The role that passed the check is the one shown.
	profile.Role = out.Role
	out.Profile = profile
	return out
}
