package data

import (
	"context"
	"database/sql"

	"github.com/mpo-id/portal/internal/migrate"
)

// RunMigrations applies the embedded schema by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}

// MigrationStatus reports applied and pending migrations.
func MigrationStatus(ctx context.Context, db *sql.DB) (migrate.Status, error) {
	return migrate.Check(ctx, db)
}
