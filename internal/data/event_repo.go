package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mpo-id/portal/internal/data/pgxutil"
	"github.com/mpo-id/portal/internal/domain/model"
	apperrors "github.com/mpo-id/portal/internal/errors"
	"github.com/mpo-id/portal/internal/ports"
)

const eventColumns = `id, title_en, title_id, description_en, description_id, start_date, end_date,
	category, type, location, registration_link, is_recurring, recurrence_rule, color,
	created_at, updated_at`

var _ ports.EventRepository = (*EventRepo)(nil)

// EventRepo provides database operations for calendar events.
type EventRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewEventRepo creates an EventRepo with the real clock.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Create inserts an event.
func (r *EventRepo) Create(ctx context.Context, in *model.EventInput) (*model.Event, error) {
	if in == nil {
		return nil, errors.New("event input is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	n := in.Nullable()
	out, err := pgxutil.QueryOne[model.Event](ctx, r.DB, `
		INSERT INTO events (
			title_en, title_id, description_en, description_id, start_date, end_date, category,
			type, location, registration_link, is_recurring, recurrence_rule, color, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		RETURNING `+eventColumns,
		in.TitleEN, n[0], n[1], n[2], in.StartDate, in.EndDate, string(in.Category),
		n[3], n[4], n[5], in.IsRecurring, n[6], n[7], now,
	)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// GetByID returns an event.
func (r *EventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	out, err := pgxutil.QueryOne[model.Event](ctx, r.DB, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// Update replaces the editable fields of an event.
func (r *EventRepo) Update(ctx context.Context, id string, in *model.EventInput) (*model.Event, error) {
	if in == nil {
		return nil, errors.New("event input is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	n := in.Nullable()
	out, err := pgxutil.QueryOne[model.Event](ctx, r.DB, `
		UPDATE events SET
			title_en = $2, title_id = $3, description_en = $4, description_id = $5,
			start_date = $6, end_date = $7, category = $8, type = $9, location = $10,
			registration_link = $11, is_recurring = $12, recurrence_rule = $13, color = $14,
			updated_at = $15
		WHERE id = $1
		RETURNING `+eventColumns,
		id, in.TitleEN, n[0], n[1], n[2], in.StartDate, in.EndDate, string(in.Category),
		n[3], n[4], n[5], in.IsRecurring, n[6], n[7], r.timeProvider.Now().UTC(),
	)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// Delete removes an event and reports whether it existed.
func (r *EventRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListAll lists events by start date, latest first, for the admin table.
func (r *EventRepo) ListAll(ctx context.Context, limit, offset int) ([]*model.Event, error) {
	limit, offset = clampPage(limit, offset)
	out, err := pgxutil.QueryAll[model.Event](ctx, r.DB,
		`SELECT `+eventColumns+` FROM events ORDER BY start_date DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

// ListUpcoming lists events starting at or after from, soonest first.
func (r *EventRepo) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]*model.Event, error) {
	limit, _ = clampPage(limit, 0)
	out, err := pgxutil.QueryAll[model.Event](ctx, r.DB, `
		SELECT `+eventColumns+` FROM events
		WHERE start_date >= $1
		ORDER BY start_date ASC
		LIMIT $2`, from, limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return out, nil
}

// ListByDateRange lists events overlapping [from, to).
func (r *EventRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]*model.Event, error) {
	if !to.After(from) {
		return nil, apperrors.Validation("Range end must be after its start.")
	}
	out, err := pgxutil.QueryAll[model.Event](ctx, r.DB, `
		SELECT `+eventColumns+` FROM events
		WHERE start_date < $2 AND COALESCE(end_date, start_date) >= $1
		ORDER BY start_date ASC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list events by range: %w", err)
	}
	return out, nil
}

// ListByCategory lists upcoming events in category.
func (r *EventRepo) ListByCategory(ctx context.Context, category model.EventCategory, limit int) ([]*model.Event, error) {
	limit, _ = clampPage(limit, 0)
	out, err := pgxutil.QueryAll[model.Event](ctx, r.DB, `
		SELECT `+eventColumns+` FROM events
		WHERE category = $1 AND start_date >= $2
		ORDER BY start_date ASC
		LIMIT $3`, string(category), r.timeProvider.Now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list events by category: %w", err)
	}
	return out, nil
}

// Count returns the number of events.
func (r *EventRepo) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.DB, "events")
}
