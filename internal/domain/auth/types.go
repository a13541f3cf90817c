// Package auth contains domain-level types for authentication, roles and sessions.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is the single authorization tag stored on a user profile.
// The set of values is closed; anything else is rejected by ParseRole.
type Role string

const (
	RoleSuperAdmin      Role = "super_admin"
	RoleContentAdmin    Role = "content_admin"
	RoleShopAdmin       Role = "shop_admin"
	RoleDiscussionAdmin Role = "discussion_admin"
	RoleMember          Role = "member"
	RoleGuest           Role = "guest"

	// RoleNone is the zero value: no profile, failed lookup, or an unknown stored value.
	RoleNone Role = ""
)

var (
	// ErrUnknownRole is returned by ParseRole for values outside the closed role set.
	ErrUnknownRole = errors.New("unknown role")
	// ErrInvalidCredentials is returned by identity services when email or password is wrong.
	ErrInvalidCredentials = errors.New("invalid login credentials")
	// ErrSessionNotFound is returned by session stores for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
)

// adminRoles is the one definition of which roles may enter the admin area.
var adminRoles = map[Role]struct{}{
	RoleSuperAdmin:      {},
	RoleContentAdmin:    {},
	RoleShopAdmin:       {},
	RoleDiscussionAdmin: {},
}

// AllRoles lists every valid role in display order.
func AllRoles() []Role {
	return []Role{
		RoleSuperAdmin,
		RoleContentAdmin,
		RoleShopAdmin,
		RoleDiscussionAdmin,
		RoleMember,
		RoleGuest,
	}
}

// AdminRoles returns the admin role set in display order.
func AdminRoles() []Role {
	out := make([]Role, 0, len(adminRoles))
	for _, r := range AllRoles() {
		if r.IsAdmin() {
			out = append(out, r)
		}
	}
	return out
}

// ParseRole converts a stored role string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	switch r {
	case RoleSuperAdmin, RoleContentAdmin, RoleShopAdmin, RoleDiscussionAdmin, RoleMember, RoleGuest:
		return r, nil
	default:
		return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// IsAdmin reports whether r grants access to the admin area.
func (r Role) IsAdmin() bool {
	_, ok := adminRoles[r]
	return ok
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	if r == RoleNone {
		return false
	}
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

// Label returns a human readable name for the role.
func (r Role) Label() string {
	if r == RoleNone {
		return "No role"
	}
	words := strings.Split(string(r), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Identity is the authenticated subject reported by an identity service.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // subject identifier, matches user_profiles.id
	Email     string
	ExpiresAt time.Time
}

// Credentials carries a password sign-in attempt.
type Credentials struct {
	Email    string
	Password string
}

// Session is the server-side record persisted by the local identity provider.
// ID is an opaque session identifier.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry at now.
func (s Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }

// Identity projects the session onto the subject it authenticates.
func (s Session) Identity() Identity {
	return Identity{UserID: s.UserID, Email: s.Email, ExpiresAt: s.ExpiresAt}
}

// UserProfile is the per-subject profile row. Role is the sole authorization signal.
type UserProfile struct {
	ID        string    `json:"id"         db:"id"`
	Email     string    `json:"email"      db:"email"`
	FullName  *string   `json:"full_name"  db:"full_name"`
	Role      Role      `json:"role"       db:"role"`
	AvatarURL *string   `json:"avatar_url" db:"avatar_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName returns the full name when set, otherwise the email.
func (p UserProfile) DisplayName() string {
	if p.FullName != nil && strings.TrimSpace(*p.FullName) != "" {
		return *p.FullName
	}
	return p.Email
}
