//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"
)

// Game names accepted on the leaderboard.
const (
	GameKnowledgeConnect  = "knowledge-connect"
	GameTimelineChallenge = "timeline-challenge"
	GameScholarlyWords    = "scholarly-words"
)

// GameInfo describes a mini-game on the games page.
type GameInfo struct {
	Slug        string
	Title       string
	Description string
}

// Games lists the mini-games in display order.
func Games() []GameInfo {
	return []GameInfo{
		{Slug: GameKnowledgeConnect, Title: "Knowledge Connect", Description: "Match pairs of Islamic scholars and their works."},
		{Slug: GameTimelineChallenge, Title: "Timeline Challenge", Description: "Put historical events in order by year."},
		{Slug: GameScholarlyWords, Title: "Scholarly Words", Description: "Find academic and Islamic terms in the grid."},
	}
}

// IsGame reports whether slug names a known game.
func IsGame(slug string) bool {
	for _, g := range Games() {
		if g.Slug == slug {
			return true
		}
	}
	return false
}

// GameScore is one leaderboard entry.
type GameScore struct {
	ID         string    `json:"id"                   db:"id"`
	GameName   string    `json:"game_name"            db:"game_name"`
	PlayerName string    `json:"player_name"          db:"player_name"`
	Score      int       `json:"score"                db:"score"`
	Difficulty *string   `json:"difficulty,omitempty" db:"difficulty"`
	PlayedAt   time.Time `json:"played_at"            db:"played_at"`
}

// GameScoreInput is a score submission.
type GameScoreInput struct {
	GameName   string `json:"game_name"  form:"game_name"   validate:"required,oneof=knowledge-connect timeline-challenge scholarly-words"`
	PlayerName string `json:"player_name" form:"player_name" validate:"required,max=50"`
	Score      int    `json:"score"       form:"score"       validate:"gte=0,lte=1000000"`
	Difficulty string `json:"difficulty"  form:"difficulty"  validate:"omitempty,oneof=easy medium hard"`
}

// Validate normalizes and validates the submission.
func (in *GameScoreInput) Validate() error {
	in.PlayerName = strings.TrimSpace(in.PlayerName)
	in.Difficulty = strings.ToLower(strings.TrimSpace(in.Difficulty))
	return ValidateStruct(in)
}

// DifficultyPtr returns the difficulty as a nullable column value.
func (in *GameScoreInput) DifficultyPtr() *string { return optional(in.Difficulty) }
