// Package authz holds the route authorization policy for the admin area.
// Everything here is a pure function of its inputs so it can be evaluated
// identically by every enforcement point.
package authz

import (
	"net/url"
	"strings"

	domainauth "github.com/mpo-id/portal/internal/domain/auth"
)

// Well-known paths used by the policy.
const (
	AdminPath        = "/admin"
	AdminLoginPath   = "/admin/login"
	UnauthorizedPath = "/unauthorized"

	// RedirectParam carries the originally requested admin path to the login form.
	RedirectParam = "redirectTo"
)

// RouteClass tags an inbound path for the policy.
type RouteClass int

const (
	RoutePublic RouteClass = iota
	RouteAdminLogin
	RouteAdminProtected
)

func (c RouteClass) String() string {
	switch c {
	case RouteAdminLogin:
		return "admin_login"
	case RouteAdminProtected:
		return "admin_protected"
	default:
		return "public"
	}
}

// Classify tags a request path. The login page is checked before the admin
// prefix so that it never falls under the protected class.
func Classify(path string) RouteClass {
	switch {
	case path == AdminLoginPath:
		return RouteAdminLogin
	case strings.HasPrefix(path, AdminPath):
		return RouteAdminProtected
	default:
		return RoutePublic
	}
}

// ActionKind is the outcome of a decision.
type ActionKind int

const (
	ActionAllow ActionKind = iota
	ActionRedirect
)

func (k ActionKind) String() string {
	if k == ActionRedirect {
		return "redirect"
	}
	return "allow"
}

// Decision is the policy output. Target is set only for redirects.
type Decision struct {
	Kind   ActionKind
	Target string
}

// Allow is the pass-through decision.
var Allow = Decision{Kind: ActionAllow}

// Redirect builds a redirect decision to target.
func Redirect(target string) Decision {
	return Decision{Kind: ActionRedirect, Target: target}
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.Kind == ActionAllow }

// Outcome names the decision for logs and metrics.
func (d Decision) Outcome() string {
	switch {
	case d.Allowed():
		return "allow"
	case d.Target == AdminPath:
		return "redirect_dashboard"
	case d.Target == UnauthorizedPath:
		return "redirect_unauthorized"
	default:
		return "redirect_login"
	}
}

// Subject is everything the policy looks at for one request.
// Role is RoleNone when no profile was found or the lookup failed.
type Subject struct {
	Path          string
	Authenticated bool
	Role          domainauth.Role
}

// Decide evaluates the authorization policy for a request.
func Decide(s Subject) Decision {
	switch Classify(s.Path) {
	case RouteAdminLogin:
		if s.Authenticated && s.Role.IsAdmin() {
			return Redirect(AdminPath)
		}
		return Allow
	case RouteAdminProtected:
		return DecideProtected(s)
	default:
		return Allow
	}
}

// DecideProtected applies the admin-protected rule regardless of how the path
// classifies. Page guards call it directly.
func DecideProtected(s Subject) Decision {
	if !s.Authenticated {
		return Redirect(LoginRedirect(s.Path))
	}
	if !s.Role.IsAdmin() {
		return Redirect(UnauthorizedPath)
	}
	return Allow
}

// LoginRedirect builds the login URL that returns the user to path after sign-in.
func LoginRedirect(path string) string {
	if path == "" {
		return AdminLoginPath
	}
	q := url.Values{}
	q.Set(RedirectParam, path)
	return AdminLoginPath + "?" + q.Encode()
}
