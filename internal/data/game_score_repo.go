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

var _ ports.GameScoreRepository = (*GameScoreRepo)(nil)

// GameScoreRepo stores leaderboard entries.
type GameScoreRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewGameScoreRepo creates a GameScoreRepo with the real clock.
func NewGameScoreRepo(db *sql.DB) *GameScoreRepo {
	return &GameScoreRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Top returns the highest scores for game. Ties go to the earlier entry.
func (r *GameScoreRepo) Top(ctx context.Context, game string, limit int) ([]*model.GameScore, error) {
	limit, _ = clampPage(limit, 0)
	out, err := pgxutil.QueryAll[model.GameScore](ctx, r.DB, `
		SELECT id, game_name, player_name, score, difficulty, played_at
		FROM game_scores
		WHERE game_name = $1
		ORDER BY score DESC, played_at ASC
		LIMIT $2`, game, limit)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	return out, nil
}

// Insert records a score.
func (r *GameScoreRepo) Insert(ctx context.Context, in *model.GameScoreInput) (*model.GameScore, error) {
	if in == nil {
		return nil, errors.New("score input is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	out, err := pgxutil.QueryOne[model.GameScore](ctx, r.DB, `
		INSERT INTO game_scores (game_name, player_name, score, difficulty, played_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, game_name, player_name, score, difficulty, played_at`,
		in.GameName, in.PlayerName, in.Score, in.DifficultyPtr(), r.timeProvider.Now().UTC(),
	)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}
