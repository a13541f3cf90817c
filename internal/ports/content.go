package ports

import (
	"context"
	"time"

	"github.com/mpo-id/portal/internal/domain/model"
)

// PostRepository persists news posts.
type PostRepository interface {
	Create(ctx context.Context, in *model.PostInput) (*model.Post, error)
	GetByID(ctx context.Context, id string) (*model.Post, error)
	GetPublishedBySlug(ctx context.Context, locale model.Locale, slug string) (*model.Post, error)
	Update(ctx context.Context, id string, in *model.PostInput) (*model.Post, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListAll(ctx context.Context, limit, offset int) ([]*model.Post, error)
	ListLatestPublished(ctx context.Context, limit int) ([]*model.Post, error)
	ListFeatured(ctx context.Context, limit int) ([]*model.Post, error)
	ListByCategory(ctx context.Context, category string, limit int) ([]*model.Post, error)
	ListRelated(ctx context.Context, post *model.Post, limit int) ([]*model.Post, error)
	IncrementViews(ctx context.Context, id string) error
	Counts(ctx context.Context) (model.PostCounts, error)
}

// EventRepository persists calendar events.
type EventRepository interface {
	Create(ctx context.Context, in *model.EventInput) (*model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, id string, in *model.EventInput) (*model.Event, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListAll(ctx context.Context, limit, offset int) ([]*model.Event, error)
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]*model.Event, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*model.Event, error)
	ListByCategory(ctx context.Context, category model.EventCategory, limit int) ([]*model.Event, error)
	Count(ctx context.Context) (int, error)
}

// PublicationRepository persists bulletin issues.
type PublicationRepository interface {
	Create(ctx context.Context, in *model.PublicationInput) (*model.Publication, error)
	GetByID(ctx context.Context, id string) (*model.Publication, error)
	Update(ctx context.Context, id string, in *model.PublicationInput) (*model.Publication, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListLatest(ctx context.Context, limit int) ([]*model.Publication, error)
	IncrementDownloads(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// GameScoreRepository persists leaderboard entries.
type GameScoreRepository interface {
	Top(ctx context.Context, game string, limit int) ([]*model.GameScore, error)
	Insert(ctx context.Context, in *model.GameScoreInput) (*model.GameScore, error)
}
