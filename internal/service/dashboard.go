package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mpo-id/portal/internal/domain/model"
	"github.com/mpo-id/portal/internal/ports"
)

const dashboardListSize = 5

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	Posts        ports.PostRepository        // Required
	Events       ports.EventRepository       // Required
	Publications ports.PublicationRepository // Required
	Now          func() time.Time            // Optional
}

// DashboardService assembles the admin landing page.
type DashboardService struct {
	posts        ports.PostRepository
	events       ports.EventRepository
	publications ports.PublicationRepository
	now          func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(opts DashboardServiceOptions) *DashboardService {
	if opts.Posts == nil || opts.Events == nil || opts.Publications == nil {
		panic("post, event and publication repositories are required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &DashboardService{posts: opts.Posts, events: opts.Events, publications: opts.Publications, now: now}
}

// Stats runs the dashboard queries concurrently. Any failure fails the whole page.
func (s *DashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	var (
		stats  model.DashboardStats
		counts model.PostCounts
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		counts, err = s.posts.Counts(gctx)
		return wrapIf(err, "count posts")
	})
	g.Go(func() (err error) {
		stats.Events, err = s.events.Count(gctx)
		return wrapIf(err, "count events")
	})
	g.Go(func() (err error) {
		stats.Publications, err = s.publications.Count(gctx)
		return wrapIf(err, "count publications")
	})
	g.Go(func() (err error) {
		stats.RecentPosts, err = s.posts.ListAll(gctx, dashboardListSize, 0)
		return wrapIf(err, "recent posts")
	})
	g.Go(func() (err error) {
		stats.UpcomingEvents, err = s.events.ListUpcoming(gctx, s.now(), dashboardListSize)
		return wrapIf(err, "upcoming events")
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	stats.TotalPosts = counts.Total
	stats.DraftPosts = counts.Drafts
	return &stats, nil
}

func wrapIf(err error, op string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
