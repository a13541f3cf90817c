package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mpo-id/portal/internal/domain/model"
	apperrors "github.com/mpo-id/portal/internal/errors"
	"github.com/mpo-id/portal/internal/ports"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 50
)

// GameServiceOptions groups dependencies for GameService.
type GameServiceOptions struct {
	Scores ports.GameScoreRepository // Required
	Logger *slog.Logger              // Optional
}

// GameService runs the mini-game leaderboards.
type GameService struct {
	scores ports.GameScoreRepository
	logger *slog.Logger
}

// NewGameService constructs a GameService.
func NewGameService(opts GameServiceOptions) *GameService {
	if opts.Scores == nil {
		panic("GameScoreRepository is required")
	}
	return &GameService{scores: opts.Scores, logger: opts.Logger}
}

// Leaderboard returns the best scores for game.
func (s *GameService) Leaderboard(ctx context.Context, game string, limit int) ([]*model.GameScore, error) {
	if !model.IsGame(game) {
		return nil, apperrors.NotFoundf("game %q not found", game)
	}
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	limit = min(limit, maxLeaderboardSize)
	scores, err := s.scores.Top(ctx, game, limit)
	if err != nil {
		return nil, fmt.Errorf("top scores for %s: %w", game, err)
	}
	return scores, nil
}

// Submit validates and records a score for game.
func (s *GameService) Submit(ctx context.Context, game string, in model.GameScoreInput) (*model.GameScore, error) {
	if !model.IsGame(game) {
		return nil, apperrors.NotFoundf("game %q not found", game)
	}
	in.GameName = game
	if err := in.Validate(); err != nil {
		return nil, err
	}
	score, err := s.scores.Insert(ctx, &in)
	if err != nil {
		return nil, fmt.Errorf("record score: %w", err)
	}
	if s.logger != nil {
		s.logger.DebugContext(ctx, "score recorded", "game", game, "score", score.Score)
	}
	return score, nil
}
