package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpo-id/portal/internal/domain/model"
	apperrors "github.com/mpo-id/portal/internal/errors"
	"github.com/mpo-id/portal/internal/testutil"
)

func newPostInput(title, category string, status model.PostStatus) *model.PostInput {
	return &model.PostInput{
		TitleEN:   title,
		ContentEN: "Body of " + title,
		Category:  category,
		Status:    status,
	}
}

func TestPostRepo_CreateAndGet(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		clock := NewFixedTimeProvider(testutil.TestTime())
		repo := NewPostRepoWithTimeProvider(db, clock)
		ctx := context.Background()

		in := newPostInput("Welcome Week 2025", "news", model.PostStatusPublished)
		in.TitleID = "Pekan Sambutan 2025"
		post, err := repo.Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "welcome-week-2025", post.SlugEN)
		require.NotNil(t, post.SlugID)
		assert.Equal(t, "pekan-sambutan-2025", *post.SlugID)
		require.NotNil(t, post.PublishedAt)
		assert.True(t, post.PublishedAt.Equal(testutil.TestTime()))

		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.TitleEN, got.TitleEN)

		bySlug, err := repo.GetPublishedBySlug(ctx, model.LocaleID, "pekan-sambutan-2025")
		require.NoError(t, err)
		assert.Equal(t, post.ID, bySlug.ID)

		bySlug, err = repo.GetPublishedBySlug(ctx, model.LocaleID, "welcome-week-2025")
		require.NoError(t, err)
		assert.Equal(t, post.ID, bySlug.ID)

		_, err = repo.GetByID(ctx, uuid.NewString())
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestPostRepo_DraftsAreNotPublic(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewPostRepo(db)
		ctx := context.Background()

		draft, err := repo.Create(ctx, newPostInput("Hidden draft", "news", model.PostStatusDraft))
		require.NoError(t, err)
		assert.Nil(t, draft.PublishedAt)

		_, err = repo.GetPublishedBySlug(ctx, model.LocaleEN, draft.SlugEN)
		assert.True(t, apperrors.IsNotFound(err))

		latest, err := repo.ListLatestPublished(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, latest)

		counts, err := repo.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.PostCounts{Total: 1, Drafts: 1}, counts)
	})
}

func TestPostRepo_DuplicateSlugIsConflict(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewPostRepo(db)
		ctx := context.Background()

		_, err := repo.Create(ctx, newPostInput("Same title", "news", model.PostStatusDraft))
		require.NoError(t, err)
		_, err = repo.Create(ctx, newPostInput("Same title", "news", model.PostStatusDraft))
		require.True(t, apperrors.IsConflict(err))
		assert.Equal(t, "slug_en", apperrors.GetField(err))
	})
}

func TestPostRepo_UpdatePublishLifecycle(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		clock := NewFixedTimeProvider(testutil.TestTime())
		repo := NewPostRepoWithTimeProvider(db, clock)
		ctx := context.Background()

		post, err := repo.Create(ctx, newPostInput("Lifecycle", "news", model.PostStatusDraft))
		require.NoError(t, err)

		clock.AddTime(time.Hour)
		in := model.InputFromPost(post)
		in.Status = model.PostStatusPublished
		published, err := repo.Update(ctx, post.ID, &in)
		require.NoError(t, err)
		require.NotNil(t, published.PublishedAt)
		firstPublish := *published.PublishedAt

		clock.AddTime(time.Hour)
		in.TitleEN = "Lifecycle (edited)"
		edited, err := repo.Update(ctx, post.ID, &in)
		require.NoError(t, err)
		assert.True(t, edited.PublishedAt.Equal(firstPublish), "re-saving keeps the first publish time")

		in.Status = model.PostStatusDraft
		unpublished, err := repo.Update(ctx, post.ID, &in)
		require.NoError(t, err)
		assert.Nil(t, unpublished.PublishedAt)

		_, err = repo.Update(ctx, uuid.NewString(), &in)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestPostRepo_ListsAndCounters(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		clock := NewFixedTimeProvider(testutil.TestTime())
		repo := NewPostRepoWithTimeProvider(db, clock)
		ctx := context.Background()

		var ids []string
		for _, title := range []string{"First seminar", "Second seminar", "Third seminar"} {
			clock.AddTime(time.Minute)
			p, err := repo.Create(ctx, newPostInput(title, "seminar", model.PostStatusPublished))
			require.NoError(t, err)
			ids = append(ids, p.ID)
		}
		featured := newPostInput("Featured story", "story", model.PostStatusPublished)
		featured.IsFeatured = true
		clock.AddTime(time.Minute)
		_, err := repo.Create(ctx, featured)
		require.NoError(t, err)

		latest, err := repo.ListLatestPublished(ctx, 2)
		require.NoError(t, err)
		require.Len(t, latest, 2)
		assert.Equal(t, "Featured story", latest[0].TitleEN)

		feat, err := repo.ListFeatured(ctx, 5)
		require.NoError(t, err)
		require.Len(t, feat, 1)

		seminar, err := repo.ListByCategory(ctx, "seminar", 10)
		require.NoError(t, err)
		assert.Len(t, seminar, 3)

		first, err := repo.GetByID(ctx, ids[0])
		require.NoError(t, err)
		related, err := repo.ListRelated(ctx, first, 5)
		require.NoError(t, err)
		require.Len(t, related, 2)
		for _, p := range related {
			assert.NotEqual(t, first.ID, p.ID)
		}

		require.NoError(t, repo.IncrementViews(ctx, ids[0]))
		require.NoError(t, repo.IncrementViews(ctx, ids[0]))
		first, err = repo.GetByID(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, 2, first.ViewsCount)
		assert.True(t, apperrors.IsNotFound(repo.IncrementViews(ctx, uuid.NewString())))

		all, err := repo.ListAll(ctx, 10, 0)
		require.NoError(t, err)
		assert.Len(t, all, 4)

		ok, err := repo.Delete(ctx, ids[1])
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = repo.Delete(ctx, ids[1])
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPostRepo_CreateRejectsInvalidInput(t *testing.T) {
	repo := NewPostRepo(nil)
	_, err := repo.Create(context.Background(), &model.PostInput{ContentEN: "x", Category: "news"})
	fe, ok := model.AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fe, "title_en")
}
