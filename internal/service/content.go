package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mpo-id/portal/internal/domain/model"
	apperrors "github.com/mpo-id/portal/internal/errors"
	"github.com/mpo-id/portal/internal/ports"
)

const (
	homeLatestPosts    = 3
	homeUpcomingEvents = 3
	newsPageSize       = 12
	relatedPosts       = 3
	eventsPageSize     = 50
	publicationsLimit  = 50
)

// ContentServiceOptions groups dependencies for ContentService.
type ContentServiceOptions struct {
	Posts        ports.PostRepository        // Required
	Events       ports.EventRepository       // Required
	Publications ports.PublicationRepository // Required
	Logger       *slog.Logger                // Optional
	Now          func() time.Time            // Optional
}

// ContentService serves public pages and admin content management.
type ContentService struct {
	posts        ports.PostRepository
	events       ports.EventRepository
	publications ports.PublicationRepository
	logger       *slog.Logger
	now          func() time.Time
}

// NewContentService constructs a ContentService.
func NewContentService(opts ContentServiceOptions) *ContentService {
	if opts.Posts == nil {
		panic("PostRepository is required")
	}
	if opts.Events == nil {
		panic("EventRepository is required")
	}
	if opts.Publications == nil {
		panic("PublicationRepository is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &ContentService{
		posts:        opts.Posts,
		events:       opts.Events,
		publications: opts.Publications,
		logger:       opts.Logger,
		now:          now,
	}
}

func (s *ContentService) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// checkID rejects malformed ids before they reach the database.
func checkID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NotFoundf("%s not found", kind)
	}
	return nil
}

// HomePage is the landing page content.
type HomePage struct {
	Featured       []*model.Post
	LatestPosts    []*model.Post
	UpcomingEvents []*model.Event
}

// Home returns featured and latest posts plus the next few events.
func (s *ContentService) Home(ctx context.Context) (*HomePage, error) {
	featured, err := s.posts.ListFeatured(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("list featured posts: %w", err)
	}
	latest, err := s.posts.ListLatestPublished(ctx, homeLatestPosts)
	if err != nil {
		return nil, fmt.Errorf("list latest posts: %w", err)
	}
	events, err := s.events.ListUpcoming(ctx, s.now(), homeUpcomingEvents)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return &HomePage{Featured: featured, LatestPosts: latest, UpcomingEvents: events}, nil
}

// News lists published posts, optionally filtered by category.
func (s *ContentService) News(ctx context.Context, category string) ([]*model.Post, error) {
	var (
		posts []*model.Post
		err   error
	)
	if category == "" {
		posts, err = s.posts.ListLatestPublished(ctx, newsPageSize)
	} else {
		posts, err = s.posts.ListByCategory(ctx, category, newsPageSize)
	}
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return posts, nil
}

// Article is a post with its related posts.
type Article struct {
	Post    *model.Post
	Related []*model.Post
}

// Article returns the published post with slug in locale and counts the view.
// A failed view increment is logged and does not fail the page.
func (s *ContentService) Article(ctx context.Context, locale model.Locale, slug string) (*Article, error) {
	post, err := s.posts.GetPublishedBySlug(ctx, locale, slug)
	if err != nil {
		return nil, fmt.Errorf("get post %q: %w", slug, err)
	}
	if err := s.posts.IncrementViews(ctx, post.ID); err != nil {
		s.log().WarnContext(ctx, "increment post views", "post_id", post.ID, "error", err)
	} else {
		post.ViewsCount++
	}
	related, err := s.posts.ListRelated(ctx, post, relatedPosts)
	if err != nil {
		s.log().WarnContext(ctx, "list related posts", "post_id", post.ID, "error", err)
		related = nil
	}
	return &Article{Post: post, Related: related}, nil
}

// Events lists upcoming events, optionally restricted to one category.
// An unknown category is ignored.
func (s *ContentService) Events(ctx context.Context, category string) ([]*model.Event, error) {
	var (
		events []*model.Event
		err    error
	)
	if c, ok := model.ParseEventCategory(category); ok {
		events, err = s.events.ListByCategory(ctx, c, eventsPageSize)
	} else {
		events, err = s.events.ListUpcoming(ctx, s.now(), eventsPageSize)
	}
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// EventsInMonth returns events overlapping the calendar month containing day.
func (s *ContentService) EventsInMonth(ctx context.Context, day time.Time) ([]*model.Event, error) {
	from := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	events, err := s.events.ListByDateRange(ctx, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", from.Format("2006-01"), err)
	}
	return events, nil
}

// Publications lists the latest bulletin issues.
func (s *ContentService) Publications(ctx context.Context) ([]*model.Publication, error) {
	pubs, err := s.publications.ListLatest(ctx, publicationsLimit)
	if err != nil {
		return nil, fmt.Errorf("list publications: %w", err)
	}
	return pubs, nil
}

// DownloadPublication returns the PDF location for id and counts the download.
func (s *ContentService) DownloadPublication(ctx context.Context, id string) (string, error) {
	if err := checkID("publication", id); err != nil {
		return "", err
	}
	pub, err := s.publications.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get publication: %w", err)
	}
	if err := s.publications.IncrementDownloads(ctx, id); err != nil {
		s.log().WarnContext(ctx, "increment publication downloads", "publication_id", id, "error", err)
	}
	return pub.PDFURL, nil
}

// Admin post management.

// ListPosts returns every post, drafts included.
func (s *ContentService) ListPosts(ctx context.Context, limit, offset int) ([]*model.Post, error) {
	posts, err := s.posts.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// GetPost returns a post by id.
func (s *ContentService) GetPost(ctx context.Context, id string) (*model.Post, error) {
	if err := checkID("post", id); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// CreatePost validates and stores a post authored by authorID.
func (s *ContentService) CreatePost(ctx context.Context, authorID string, in model.PostInput) (*model.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if authorID != "" {
		in.AuthorID = &authorID
	}
	post, err := s.posts.Create(ctx, &in)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.log().InfoContext(ctx, "post created", "post_id", post.ID, "slug", post.SlugEN, "status", string(post.Status))
	return post, nil
}

// UpdatePost validates and replaces the post with id.
func (s *ContentService) UpdatePost(ctx context.Context, id string, in model.PostInput) (*model.Post, error) {
	if err := checkID("post", id); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	post, err := s.posts.Update(ctx, id, &in)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	s.log().InfoContext(ctx, "post updated", "post_id", post.ID, "status", string(post.Status))
	return post, nil
}

// DeletePost removes the post with id.
func (s *ContentService) DeletePost(ctx context.Context, id string) error {
	return s.remove(ctx, "post", id, s.posts.Delete)
}

// Admin event management.

// ListEvents returns every event, newest first.
func (s *ContentService) ListEvents(ctx context.Context, limit, offset int) ([]*model.Event, error) {
	events, err := s.events.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetEvent returns an event by id.
func (s *ContentService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if err := checkID("event", id); err != nil {
		return nil, err
	}
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

// CreateEvent validates and stores an event.
func (s *ContentService) CreateEvent(ctx context.Context, in model.EventInput) (*model.Event, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ev, err := s.events.Create(ctx, &in)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.log().InfoContext(ctx, "event created", "event_id", ev.ID)
	return ev, nil
}

// UpdateEvent validates and replaces the event with id.
func (s *ContentService) UpdateEvent(ctx context.Context, id string, in model.EventInput) (*model.Event, error) {
	if err := checkID("event", id); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ev, err := s.events.Update(ctx, id, &in)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return ev, nil
}

// DeleteEvent removes the event with id.
func (s *ContentService) DeleteEvent(ctx context.Context, id string) error {
	return s.remove(ctx, "event", id, s.events.Delete)
}

// Admin publication management.

// ListPublications returns the latest publications for the admin list.
func (s *ContentService) ListPublications(ctx context.Context, limit int) ([]*model.Publication, error) {
	pubs, err := s.publications.ListLatest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list publications: %w", err)
	}
	return pubs, nil
}

// GetPublication returns a publication by id.
func (s *ContentService) GetPublication(ctx context.Context, id string) (*model.Publication, error) {
	if err := checkID("publication", id); err != nil {
		return nil, err
	}
	pub, err := s.publications.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get publication: %w", err)
	}
	return pub, nil
}

// CreatePublication validates and stores a publication.
func (s *ContentService) CreatePublication(ctx context.Context, in model.PublicationInput) (*model.Publication, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	pub, err := s.publications.Create(ctx, &in)
	if err != nil {
		return nil, fmt.Errorf("create publication: %w", err)
	}
	s.log().InfoContext(ctx, "publication created", "publication_id", pub.ID)
	return pub, nil
}

// UpdatePublication validates and replaces the publication with id.
func (s *ContentService) UpdatePublication(ctx context.Context, id string, in model.PublicationInput) (*model.Publication, error) {
	if err := checkID("publication", id); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	pub, err := s.publications.Update(ctx, id, &in)
	if err != nil {
		return nil, fmt.Errorf("update publication: %w", err)
	}
	return pub, nil
}

// DeletePublication removes the publication with id.
func (s *ContentService) DeletePublication(ctx context.Context, id string) error {
	return s.remove(ctx, "publication", id, s.publications.Delete)
}

func (s *ContentService) remove(ctx context.Context, kind, id string, del func(context.Context, string) (bool, error)) error {
	if err := checkID(kind, id); err != nil {
		return err
	}
	ok, err := del(ctx, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if !ok {
		return apperrors.NotFoundf("%s not found", kind)
	}
	s.log().InfoContext(ctx, kind+" deleted", "id", id)
	return nil
}
