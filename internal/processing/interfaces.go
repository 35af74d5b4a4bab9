package processing

import (
	"context"

	"cr_matchup_stats/internal/app"
)

// RoyaleClientInterface defines the game API client methods used by the
// collector and analyzer
type RoyaleClientInterface interface {
	GetCards(ctx context.Context) (*app.CardsResponse, error)
	GetBattleLog(ctx context.Context, tag string) ([]app.Battle, error)
	GetTopPlayers(ctx context.Context, season string, limit int) ([]app.RankedPlayer, error)
}
