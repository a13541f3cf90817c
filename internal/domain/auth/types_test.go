package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, r := range AllRoles() {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	got, err := ParseRole("  content_admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleContentAdmin, got)

	for _, bad := range []string{"", "admin", "Super_Admin", "editor"} {
		got, err := ParseRole(bad)
		require.ErrorIs(t, err, ErrUnknownRole, bad)
		assert.Equal(t, RoleNone, got)
	}
}

func TestRole_IsAdmin(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleSuperAdmin, true},
		{RoleContentAdmin, true},
		{RoleShopAdmin, true},
		{RoleDiscussionAdmin, true},
		{RoleMember, false},
		{RoleGuest, false},
		{RoleNone, false},
		{Role("admin"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.IsAdmin())
		})
	}
}

func TestAdminRoles(t *testing.T) {
	assert.Equal(t, []Role{RoleSuperAdmin, RoleContentAdmin, RoleShopAdmin, RoleDiscussionAdmin}, AdminRoles())
	for _, r := range AdminRoles() {
		assert.True(t, r.IsAdmin())
	}
}

func TestRole_In(t *testing.T) {
	assert.True(t, RoleShopAdmin.In(RoleSuperAdmin, RoleShopAdmin))
	assert.False(t, RoleContentAdmin.In(RoleSuperAdmin, RoleShopAdmin))
	assert.False(t, RoleNone.In(RoleNone))
}

func TestRole_Label(t *testing.T) {
	assert.Equal(t, "Super Admin", RoleSuperAdmin.Label())
	assert.Equal(t, "Member", RoleMember.Label())
	assert.Equal(t, "No role", RoleNone.Label())
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := Session{ID: "s", UserID: "u", Email: "u@example.com", ExpiresAt: now.Add(time.Minute)}

	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Minute)))

	id := s.Identity()
	assert.Equal(t, "u", id.UserID)
	assert.Equal(t, "u@example.com", id.Email)
	assert.Equal(t, s.ExpiresAt, id.ExpiresAt)
}

func TestUserProfile_DisplayName(t *testing.T) {
	name := "Aisyah Rahman"
	blank := "  "
	assert.Equal(t, name, UserProfile{Email: "a@example.com", FullName: &name}.DisplayName())
	assert.Equal(t, "a@example.com", UserProfile{Email: "a@example.com", FullName: &blank}.DisplayName())
	assert.Equal(t, "a@example.com", UserProfile{Email: "a@example.com"}.DisplayName())
}
