package processing

import (
	"context"
	"fmt"

	"cr_matchup_stats/internal/domain/match"
	"cr_matchup_stats/internal/domain/matchup"

	"github.com/rs/zerolog/log"
)

// PlayerAnalysis is a player's recent games compared against a table
type PlayerAnalysis struct {
	Tag    string
	Loaded match.LoadResult
	Report matchup.Report
}

// Analyzer compares a player's games with historical matchups
type Analyzer struct {
	client  RoyaleClientInterface
	tracker *APICallTracker
	catalog *match.Catalog
	opts    matchup.Options
}

// NewAnalyzer creates an analyzer. client may be nil when only AnalyzeGames
// is used; a nil catalog disables the known-card check.
func NewAnalyzer(client RoyaleClientInterface, tracker *APICallTracker, catalog *match.Catalog, opts matchup.Options) *Analyzer {
	if tracker == nil {
		tracker = NewAPICallTracker()
	}
	return &Analyzer{
		client:  client,
		tracker: tracker,
		catalog: catalog,
		opts:    opts,
	}
}

// AnalyzePlayer fetches the player's battle log and reports each ranked game
func (a *Analyzer) AnalyzePlayer(ctx context.Context, table *matchup.Table, tag string) (*PlayerAnalysis, error) {
	if a.client == nil {
		return nil, fmt.Errorf("no game API client configured")
	}

	battles, err := a.client.GetBattleLog(ctx, tag)
	a.tracker.RecordCall(EndpointBattleLog, err != nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get battle log for %s: %w", tag, err)
	}

	raw := make([]match.RawGame, 0, len(battles))
	for _, battle := range battles {
		if game, ok := match.FromBattle(battle); ok {
			raw = append(raw, game)
		}
	}

	log.Info().
		Str("tag", tag).
		Int("battles", len(battles)).
		Int("ranked", len(raw)).
		Msg("Fetched player games")

	return a.AnalyzeGames(table, tag, raw), nil
}

// AnalyzeGames reports already-collected games, side A being the player
func (a *Analyzer) AnalyzeGames(table *matchup.Table, tag string, raw []match.RawGame) *PlayerAnalysis {
	loaded := LoadGames(raw, a.catalog, a.opts)
	report := matchup.Query(table, loaded.Records, a.opts)
	report.Rejected = len(loaded.Rejected)
	report.Draws = loaded.Draws

	log.Info().
		Str("tag", tag).
		Int("games", len(report.Games)).
		Int("rejected", report.Rejected).
		Int("draws", report.Draws).
		Int("should_win_losses", report.ShouldWinLosses).
		Int("should_lose_wins", report.ShouldLoseWins).
		Int("insufficient_games", report.InsufficientGames).
		Msg("Analyzed player games")

	return &PlayerAnalysis{
		Tag:    tag,
		Loaded: loaded,
		Report: report,
	}
}
