package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	"github.com/mpo-id/portal/internal/migrate"
)

func TestPrintUsageListsCommandsSorted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	out := buf.String()
	for name := range commands() {
		assert.Contains(t, out, name)
	}
	assert.Less(t, strings.Index(out, "create-user"), strings.Index(out, "set-role"))
	assert.Less(t, strings.Index(out, "migrate "), strings.Index(out, "migrate-status"))
}

func TestParseMigrateFlags(t *testing.T) {
	opts, err := parseMigrateFlags("migrate", nil)
	require.NoError(t, err)
	assert.Equal(t, defaultMigrationTimeout, opts.Timeout)

	_, err = parseMigrateFlags("migrate", []string{"--timeout", "0s"})
	require.Error(t, err)
}

func TestParseCreateUserFlags(t *testing.T) {
	opts, err := parseCreateUserFlags([]string{"--email", " editor@mpo.example ", "--name", "Siti", "--role", "super_admin"})
	require.NoError(t, err)
	assert.Equal(t, "editor@mpo.example", opts.Email)
	assert.Equal(t, domainauth.RoleSuperAdmin, opts.Role)

	opts, err = parseCreateUserFlags([]string{"--email", "editor@mpo.example"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleContentAdmin, opts.Role)

	_, err = parseCreateUserFlags([]string{"--email", "nope"})
	require.Error(t, err)

	_, err = parseCreateUserFlags([]string{"--email", "a@b.c", "--role", "owner"})
	require.ErrorIs(t, err, domainauth.ErrUnknownRole)
}

func TestParseSetRoleFlags(t *testing.T) {
	opts, err := parseSetRoleFlags([]string{
		"--id", "7D1C3F0E-1B9A-4C7E-9D52-2F3A1E6B8C40", "--email", "a@b.c", "--role", "shop_admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "7d1c3f0e-1b9a-4c7e-9d52-2f3a1e6b8c40", opts.ID)
	assert.Equal(t, domainauth.RoleShopAdmin, opts.Role)

	_, err = parseSetRoleFlags([]string{"--id", "not-a-uuid", "--email", "a@b.c", "--role", "member"})
	require.Error(t, err)

	_, err = parseSetRoleFlags([]string{"--id", "7d1c3f0e-1b9a-4c7e-9d52-2f3a1e6b8c40", "--role", "member"})
	require.Error(t, err)

	_, err = parseSetRoleFlags([]string{"--id", "7d1c3f0e-1b9a-4c7e-9d52-2f3a1e6b8c40", "--email", "a@b.c"})
	require.ErrorIs(t, err, domainauth.ErrUnknownRole)
}

func TestParseListUsersFlags(t *testing.T) {
	opts, err := parseListUsersFlags([]string{"--limit", "10", "--offset", "20"})
	require.NoError(t, err)
	assert.Equal(t, listUsersOptions{Limit: 10, Offset: 20}, opts)

	_, err = parseListUsersFlags([]string{"--limit", "0"})
	require.Error(t, err)
}

func TestReadPassword(t *testing.T) {
	noEnv := func(string) string { return "" }

	pw, err := readPassword(strings.NewReader("correct horse battery\r\nignored"), true, noEnv)
	require.NoError(t, err)
	assert.Equal(t, "correct horse battery", pw)

	pw, err = readPassword(strings.NewReader(""), false, func(k string) string {
		if k == "PORTAL_ADMIN_PASSWORD" {
			return "from-the-environment"
		}
		return ""
	})
	require.NoError(t, err)
	assert.Equal(t, "from-the-environment", pw)

	_, err = readPassword(strings.NewReader("short\n"), true, noEnv)
	require.Error(t, err)

	_, err = readPassword(strings.NewReader(""), false, noEnv)
	require.Error(t, err)
}

func TestPrintMigrationStatus(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printMigrationStatus(&buf, migrate.Status{
		Applied: []string{"0001_init.sql"},
		Pending: []string{"0002_shop.sql"},
	}))

	out := buf.String()
	assert.Regexp(t, `0001_init\.sql\s+applied`, out)
	assert.Regexp(t, `0002_shop\.sql\s+pending`, out)
	assert.Contains(t, out, "1 applied, 1 pending")
}

func TestPrintProfiles(t *testing.T) {
	name := "Siti Aminah"
	var buf bytes.Buffer
	require.NoError(t, printProfiles(&buf, []*domainauth.UserProfile{
		{ID: "u1", Email: "siti@mpo.example", FullName: &name, Role: domainauth.RoleContentAdmin},
		{ID: "u2", Email: "guest@mpo.example", Role: domainauth.RoleNone},
	}))

	out := buf.String()
	assert.Regexp(t, `u1\s+siti@mpo\.example\s+Siti Aminah\s+Content Admin`, out)
	assert.Regexp(t, `u2\s+guest@mpo\.example\s+-\s+No role`, out)
}
