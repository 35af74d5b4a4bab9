package royale

import (
	"context"

	"cr_matchup_stats/internal/app"
)

// RoyaleAPI defines the interface for interacting with the game API
// This separates infrastructure concerns from business logic
type RoyaleAPI interface {
	// Core API endpoints
	GetCards(ctx context.Context) (*app.CardsResponse, error)
	GetBattleLog(ctx context.Context, tag string) ([]app.Battle, error)
	GetTopPlayers(ctx context.Context, season string, limit int) ([]app.RankedPlayer, error)

	// API call tracking
	GetAPICallCount() int64
	IncrementAPICall()
	ResetAPICallCount()
}

var _ RoyaleAPI = (*Client)(nil)
