package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mpo-id/portal/internal/data/pgxutil"
	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	apperrors "github.com/mpo-id/portal/internal/errors"
	"github.com/mpo-id/portal/internal/ports"
)

var _ ports.CredentialStore = (*AuthUserRepo)(nil)

// AuthUserRepo stores local credentials in auth_users.
type AuthUserRepo struct {
	DB *sql.DB
}

// NewAuthUserRepo creates an AuthUserRepo.
func NewAuthUserRepo(db *sql.DB) *AuthUserRepo {
	return &AuthUserRepo{DB: db}
}

// GetByEmail looks up credentials by lower-cased email.
func (r *AuthUserRepo) GetByEmail(ctx context.Context, email string) (*ports.AuthUser, error) {
	out, err := pgxutil.QueryOne[ports.AuthUser](ctx, r.DB,
		`SELECT id, email, password_hash FROM auth_users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// CreateUserParams describes a new local account.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	FullName     *string
	Role         domainauth.Role
}

// CreateWithProfile inserts the credential row and its profile in one transaction.
func (r *AuthUserRepo) CreateWithProfile(ctx context.Context, p CreateUserParams) (*domainauth.UserProfile, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" || p.PasswordHash == "" {
		return nil, errors.New("email and password hash are required")
	}

	var profile *domainauth.UserProfile
	err := pgxutil.WithPgxTx(ctx, r.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var id string
		if err := tx.QueryRow(ctx,
			`INSERT INTO auth_users (email, password_hash) VALUES ($1, $2) RETURNING id::text`,
			email, p.PasswordHash,
		).Scan(&id); err != nil {
			return apperrors.MapDBError(err)
		}
		var err error
		profile, err = upsertProfile(ctx, nil, tx, &domainauth.UserProfile{
			ID: id, Email: email, FullName: p.FullName, Role: p.Role,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}
