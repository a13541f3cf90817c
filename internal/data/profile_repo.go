package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mpo-id/portal/internal/data/pgxutil"
	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	apperrors "github.com/mpo-id/portal/internal/errors"
	"github.com/mpo-id/portal/internal/ports"
)

const profileColumns = `id, email, full_name, role, avatar_url, created_at, updated_at`

var _ ports.ProfileStore = (*ProfileRepo)(nil)

// ProfileRepo reads user_profiles.
type ProfileRepo struct {
	DB *sql.DB
}

// NewProfileRepo creates a ProfileRepo.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db}
}

// GetRole returns the raw role column for subjectID. The value is not interpreted here.
func (r *ProfileRepo) GetRole(ctx context.Context, subjectID string) (string, error) {
	var role string
	err := r.DB.QueryRowContext(ctx, `SELECT role FROM user_profiles WHERE id = $1`, subjectID).Scan(&role)
	if err != nil {
		return "", apperrors.MapDBError(err)
	}
	return role, nil
}

// GetProfile returns the full profile row.
func (r *ProfileRepo) GetProfile(ctx context.Context, subjectID string) (*domainauth.UserProfile, error) {
	out, err := pgxutil.QueryOne[domainauth.UserProfile](ctx, r.DB,
		`SELECT `+profileColumns+` FROM user_profiles WHERE id = $1`, subjectID)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// ListProfiles lists profiles by creation time for the users page.
func (r *ProfileRepo) ListProfiles(ctx context.Context, limit, offset int) ([]*domainauth.UserProfile, error) {
	limit, offset = clampPage(limit, offset)
	out, err := pgxutil.QueryAll[domainauth.UserProfile](ctx, r.DB,
		`SELECT `+profileColumns+` FROM user_profiles ORDER BY created_at ASC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

// UpsertProfile creates or updates the profile for id. Used by the operator CLI.
func (r *ProfileRepo) UpsertProfile(ctx context.Context, p *domainauth.UserProfile) (*domainauth.UserProfile, error) {
	return upsertProfile(ctx, r.DB, nil, p)
}

func upsertProfile(ctx context.Context, db *sql.DB, tx pgx.Tx, p *domainauth.UserProfile) (*domainauth.UserProfile, error) {
	if _, err := domainauth.ParseRole(string(p.Role)); err != nil {
		return nil, apperrors.ValidationField("role", err.Error())
	}
	const q = `
		INSERT INTO user_profiles (id, email, full_name, role, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			full_name = COALESCE(EXCLUDED.full_name, user_profiles.full_name),
			role = EXCLUDED.role,
			avatar_url = COALESCE(EXCLUDED.avatar_url, user_profiles.avatar_url),
			updated_at = now()
		RETURNING ` + profileColumns
	args := []any{p.ID, strings.ToLower(strings.TrimSpace(p.Email)), p.FullName, string(p.Role), p.AvatarURL}

	var (
		out *domainauth.UserProfile
		err error
	)
	if tx != nil {
		out, err = pgxutil.CollectOne[domainauth.UserProfile](ctx, tx, q, args...)
	} else {
		out, err = pgxutil.QueryOne[domainauth.UserProfile](ctx, db, q, args...)
	}
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}
