package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mpo-id/portal/internal/data/pgxutil"
	"github.com/mpo-id/portal/internal/domain/model"
	apperrors "github.com/mpo-id/portal/internal/errors"
	"github.com/mpo-id/portal/internal/ports"
)

const postColumns = `id, title_en, title_id, slug_en, slug_id, content_en, content_id,
	excerpt_en, excerpt_id, featured_image, category, status, author_id, published_at,
	is_featured, views_count, created_at, updated_at`

var _ ports.PostRepository = (*PostRepo)(nil)

// PostRepo provides database operations for news posts.
type PostRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewPostRepo creates a PostRepo with the real clock.
func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewPostRepoWithTimeProvider creates a PostRepo with a custom clock (useful for tests).
func NewPostRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *PostRepo {
	return &PostRepo{DB: db, timeProvider: tp}
}

// Create inserts a post. Publishing on create stamps published_at.
func (r *PostRepo) Create(ctx context.Context, in *model.PostInput) (*model.Post, error) {
	if in == nil {
		return nil, errors.New("post input is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	n := in.Nullable()
	out, err := pgxutil.QueryOne[model.Post](ctx, r.DB, `
		INSERT INTO posts (
			title_en, title_id, slug_en, slug_id, content_en, content_id, excerpt_en, excerpt_id,
			featured_image, category, status, author_id, published_at, is_featured, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			CASE WHEN $11::text = 'published' THEN $14::timestamptz END, $13, $14, $14
		) RETURNING `+postColumns,
		in.TitleEN, n[0], in.SlugEN, n[1], in.ContentEN, n[2], n[3], n[4],
		n[5], in.Category, string(in.Status), in.AuthorID, in.IsFeatured, now,
	)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// GetByID returns a post regardless of status.
func (r *PostRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	out, err := pgxutil.QueryOne[model.Post](ctx, r.DB, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// GetPublishedBySlug finds a published post by its slug in locale, falling back to the English slug.
func (r *PostRepo) GetPublishedBySlug(ctx context.Context, locale model.Locale, slug string) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = 'published' AND slug_en = $1`
	if locale == model.LocaleID {
		query = `SELECT ` + postColumns + ` FROM posts
			WHERE status = 'published' AND (slug_id = $1 OR slug_en = $1)
			ORDER BY (slug_id = $1) DESC NULLS LAST LIMIT 1`
	}
	out, err := pgxutil.QueryOne[model.Post](ctx, r.DB, query, slug)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// Update replaces the editable fields of a post. published_at is set on first publish and cleared on unpublish.
func (r *PostRepo) Update(ctx context.Context, id string, in *model.PostInput) (*model.Post, error) {
	if in == nil {
		return nil, errors.New("post input is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	n := in.Nullable()
	out, err := pgxutil.QueryOne[model.Post](ctx, r.DB, `
		UPDATE posts SET
			title_en = $2, title_id = $3, slug_en = $4, slug_id = $5, content_en = $6, content_id = $7,
			excerpt_en = $8, excerpt_id = $9, featured_image = $10, category = $11, status = $12,
			is_featured = $13,
			published_at = CASE
				WHEN $12::text = 'published' THEN COALESCE(published_at, $14::timestamptz)
				ELSE NULL
			END,
			updated_at = $14
		WHERE id = $1
		RETURNING `+postColumns,
		id, in.TitleEN, n[0], in.SlugEN, n[1], in.ContentEN, n[2], n[3], n[4], n[5],
		in.Category, string(in.Status), in.IsFeatured, now,
	)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// Delete removes a post and reports whether it existed.
func (r *PostRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListAll lists every post, newest first, for the admin table.
func (r *PostRepo) ListAll(ctx context.Context, limit, offset int) ([]*model.Post, error) {
	limit, offset = clampPage(limit, offset)
	out, err := pgxutil.QueryAll[model.Post](ctx, r.DB,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return out, nil
}

// ListLatestPublished lists published posts by publish date.
func (r *PostRepo) ListLatestPublished(ctx context.Context, limit int) ([]*model.Post, error) {
	limit, _ = clampPage(limit, 0)
	out, err := pgxutil.QueryAll[model.Post](ctx, r.DB, `
		SELECT `+postColumns+` FROM posts
		WHERE status = 'published'
		ORDER BY published_at DESC NULLS LAST, created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	return out, nil
}

// ListFeatured lists published posts flagged as featured.
func (r *PostRepo) ListFeatured(ctx context.Context, limit int) ([]*model.Post, error) {
	limit, _ = clampPage(limit, 0)
	out, err := pgxutil.QueryAll[model.Post](ctx, r.DB, `
		SELECT `+postColumns+` FROM posts
		WHERE status = 'published' AND is_featured
		ORDER BY published_at DESC NULLS LAST
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list featured posts: %w", err)
	}
	return out, nil
}

// ListByCategory lists published posts in category.
func (r *PostRepo) ListByCategory(ctx context.Context, category string, limit int) ([]*model.Post, error) {
	limit, _ = clampPage(limit, 0)
	out, err := pgxutil.QueryAll[model.Post](ctx, r.DB, `
		SELECT `+postColumns+` FROM posts
		WHERE status = 'published' AND category = $1
		ORDER BY published_at DESC NULLS LAST
		LIMIT $2`, category, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts by category: %w", err)
	}
	return out, nil
}

// ListRelated lists other published posts sharing post's category.
func (r *PostRepo) ListRelated(ctx context.Context, post *model.Post, limit int) ([]*model.Post, error) {
	if post == nil {
		return nil, nil
	}
	limit, _ = clampPage(limit, 0)
	out, err := pgxutil.QueryAll[model.Post](ctx, r.DB, `
		SELECT `+postColumns+` FROM posts
		WHERE status = 'published' AND category = $1 AND id <> $2
		ORDER BY published_at DESC NULLS LAST
		LIMIT $3`, post.Category, post.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list related posts: %w", err)
	}
	return out, nil
}

// IncrementViews bumps the view counter of a published post.
func (r *PostRepo) IncrementViews(ctx context.Context, id string) error {
	return incrementCounter(ctx, r.DB, `UPDATE posts SET views_count = views_count + 1 WHERE id = $1`, id)
}

// Counts returns the total and draft post counts.
func (r *PostRepo) Counts(ctx context.Context) (model.PostCounts, error) {
	var out model.PostCounts
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			SELECT count(*), count(*) FILTER (WHERE status = 'draft') FROM posts
		`).Scan(&out.Total, &out.Drafts)
	})
	if err != nil {
		return model.PostCounts{}, fmt.Errorf("count posts: %w", err)
	}
	return out, nil
}
