package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mpo-id/portal/internal/data/pgxutil"
	"github.com/mpo-id/portal/internal/domain/model"
	apperrors "github.com/mpo-id/portal/internal/errors"
	"github.com/mpo-id/portal/internal/ports"
)

const publicationColumns = `id, title_en, title_id, description_en, description_id, volume_number,
	issue_number, publish_date, cover_image, pdf_url, file_size, download_count, created_at, updated_at`

var _ ports.PublicationRepository = (*PublicationRepo)(nil)

// PublicationRepo provides database operations for bulletin issues.
type PublicationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewPublicationRepo creates a PublicationRepo with the real clock.
func NewPublicationRepo(db *sql.DB) *PublicationRepo {
	return &PublicationRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Create inserts a publication.
func (r *PublicationRepo) Create(ctx context.Context, in *model.PublicationInput) (*model.Publication, error) {
	if in == nil {
		return nil, errors.New("publication input is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	n := in.Nullable()
	out, err := pgxutil.QueryOne[model.Publication](ctx, r.DB, `
		INSERT INTO publications (
			title_en, title_id, description_en, description_id, volume_number, issue_number,
			publish_date, cover_image, pdf_url, file_size, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING `+publicationColumns,
		in.TitleEN, n[0], n[1], n[2], in.VolumeNumber, in.IssueNumber,
		in.PublishDate, n[3], in.PDFURL, in.FileSize, r.timeProvider.Now().UTC(),
	)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// GetByID returns a publication.
func (r *PublicationRepo) GetByID(ctx context.Context, id string) (*model.Publication, error) {
	out, err := pgxutil.QueryOne[model.Publication](ctx, r.DB,
		`SELECT `+publicationColumns+` FROM publications WHERE id = $1`, id)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// Update replaces the editable fields of a publication. download_count is preserved.
func (r *PublicationRepo) Update(ctx context.Context, id string, in *model.PublicationInput) (*model.Publication, error) {
	if in == nil {
		return nil, errors.New("publication input is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	n := in.Nullable()
	out, err := pgxutil.QueryOne[model.Publication](ctx, r.DB, `
		UPDATE publications SET
			title_en = $2, title_id = $3, description_en = $4, description_id = $5,
			volume_number = $6, issue_number = $7, publish_date = $8, cover_image = $9,
			pdf_url = $10, file_size = $11, updated_at = $12
		WHERE id = $1
		RETURNING `+publicationColumns,
		id, in.TitleEN, n[0], n[1], n[2], in.VolumeNumber, in.IssueNumber,
		in.PublishDate, n[3], in.PDFURL, in.FileSize, r.timeProvider.Now().UTC(),
	)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// Delete removes a publication and reports whether it existed.
func (r *PublicationRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM publications WHERE id = $1`, id)
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListLatest lists publications by publish date, newest first.
func (r *PublicationRepo) ListLatest(ctx context.Context, limit int) ([]*model.Publication, error) {
	limit, _ = clampPage(limit, 0)
	out, err := pgxutil.QueryAll[model.Publication](ctx, r.DB, `
		SELECT `+publicationColumns+` FROM publications
		ORDER BY publish_date DESC, created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list publications: %w", err)
	}
	return out, nil
}

// IncrementDownloads bumps the download counter.
func (r *PublicationRepo) IncrementDownloads(ctx context.Context, id string) error {
	return incrementCounter(ctx, r.DB, `UPDATE publications SET download_count = download_count + 1 WHERE id = $1`, id)
}

// Count returns the number of publications.
func (r *PublicationRepo) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.DB, "publications")
}
