package processing

import (
	"cr_matchup_stats/internal/domain/match"
	"cr_matchup_stats/internal/domain/matchup"

	"github.com/rs/zerolog/log"
)

// LoadGames validates raw games against the catalog and logs what was left out
func LoadGames(raw []match.RawGame, catalog *match.Catalog, opts matchup.Options) match.LoadResult {
	result := match.Load(raw, catalog, opts.LoadOptions())

	for _, rejection := range result.Rejected {
		log.Debug().
			Err(rejection.Reason).
			Int("index", rejection.Index).
			Str("game_id", rejection.ID).
			Msg("Rejected game")
	}

	event := log.Info()
	if len(result.Rejected) > 0 {
		event = log.Warn()
	}
	event.
		Int("games", result.Total()).
		Int("records", len(result.Records)).
		Int("rejected", len(result.Rejected)).
		Int("draws_excluded", result.Draws).
		Msg("Loaded games")

	return result
}

// BuildTable loads raw games and aggregates the valid ones into a table
func BuildTable(raw []match.RawGame, catalog *match.Catalog, opts matchup.Options) (*matchup.Table, match.LoadResult) {
	loaded := LoadGames(raw, catalog, opts)
	table := matchup.Build(loaded.Records, opts)

	event := log.Info().
		Int("records", table.Records()).
		Int("pairs", table.Len()).
		Int("cards", len(table.Cards()))
	if catalog != nil {
		unseen := UnseenCards(catalog, table, opts.IncludeSupport)
		event = event.Int("unseen_cards", len(unseen))
		log.Debug().Interface("cards", unseen).Msg("Catalog cards missing from table")
	}
	event.Msg("Built matchup table")

	return table, loaded
}

// UnseenCards lists catalog cards that appear in no pair of the table, in
// name order. Tower troops are only expected when includeSupport is set.
func UnseenCards(catalog *match.Catalog, table *matchup.Table, includeSupport bool) []match.Card {
	seen := make(map[match.Card]bool)
	for _, card := range table.Cards() {
		seen[card] = true
	}

	var unseen []match.Card
	for _, card := range catalog.Cards() {
		if seen[card] || (!includeSupport && catalog.IsSupport(card)) {
			continue
		}
		unseen = append(unseen, card)
	}
	return unseen
}
