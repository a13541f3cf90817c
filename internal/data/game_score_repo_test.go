package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpo-id/portal/internal/domain/model"
	"github.com/mpo-id/portal/internal/testutil"
)

func TestGameScoreRepo_TopOrdersByScoreThenTime(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		clock := NewFixedTimeProvider(testutil.TestTime())
		repo := &GameScoreRepo{DB: db, timeProvider: clock}
		ctx := context.Background()

		for _, s := range []struct {
			player string
			score  int
		}{{"aisyah", 90}, {"budi", 120}, {"citra", 90}} {
			clock.AddTime(time.Minute)
			_, err := repo.Insert(ctx, &model.GameScoreInput{
				GameName: model.GameTimelineChallenge, PlayerName: s.player, Score: s.score, Difficulty: "Hard",
			})
			require.NoError(t, err)
		}
		_, err := repo.Insert(ctx, &model.GameScoreInput{GameName: model.GameScholarlyWords, PlayerName: "dodi", Score: 999})
		require.NoError(t, err)

		top, err := repo.Top(ctx, model.GameTimelineChallenge, 10)
		require.NoError(t, err)
		require.Len(t, top, 3)
		assert.Equal(t, "budi", top[0].PlayerName)
		assert.Equal(t, "aisyah", top[1].PlayerName)
		assert.Equal(t, "citra", top[2].PlayerName)
		require.NotNil(t, top[0].Difficulty)
		assert.Equal(t, "hard", *top[0].Difficulty)
	})
}

func TestGameScoreRepo_InsertValidates(t *testing.T) {
	repo := NewGameScoreRepo(nil)
	_, err := repo.Insert(context.Background(), &model.GameScoreInput{GameName: "chess", PlayerName: "x"})
	fe, ok := model.AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fe, "game_name")
}
