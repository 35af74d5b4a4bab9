package processing

import (
	"context"
	"fmt"
	"sync"

	"cr_matchup_stats/internal/app"
	"cr_matchup_stats/internal/domain/match"

	"github.com/rs/zerolog/log"
)

// DefaultCollectWorkers is the number of battle logs fetched concurrently.
// The client's rate limiter bounds the actual request rate.
const DefaultCollectWorkers = 4

// Collection is the outcome of one top-N collection run
type Collection struct {
	Games         []match.RawGame
	Players       int
	FailedPlayers []string
	// Duplicates counts battles already seen in another collected player's log
	Duplicates int
	// Unranked counts battle log entries that were not ranked 1v1 games
	Unranked int
}

// Collector gathers ranked games from the battle logs of top players
type Collector struct {
	client  RoyaleClientInterface
	tracker *APICallTracker
	workers int
}

// NewCollector creates a collector. A nil tracker gets a fresh one.
func NewCollector(client RoyaleClientInterface, tracker *APICallTracker) *Collector {
	if tracker == nil {
		tracker = NewAPICallTracker()
	}
	return &Collector{
		client:  client,
		tracker: tracker,
		workers: DefaultCollectWorkers,
	}
}

// WithWorkers sets the number of concurrent battle log fetches
func (c *Collector) WithWorkers(workers int) *Collector {
	if workers < 1 {
		workers = 1
	}
	c.workers = workers
	return c
}

// Tracker returns the call tracker shared by this collector
func (c *Collector) Tracker() *APICallTracker {
	return c.tracker
}

// FetchCatalog retrieves the card universe
func (c *Collector) FetchCatalog(ctx context.Context) (*match.Catalog, error) {
	resp, err := c.client.GetCards(ctx)
	c.tracker.RecordCall(EndpointCards, err != nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}

	catalog := match.CatalogFromResponse(resp)
	log.Info().
		Int("cards", catalog.Len()).
		Msg("Loaded card catalog")

	return catalog, nil
}

type battleLogResult struct {
	battles []app.Battle
	err     error
}

// Collect fetches the season's top players and converts their ranked battles
// into raw games, each battle kept once. A player whose log cannot be fetched
// is skipped. If ctx is cancelled mid-run the games gathered so far are
// returned together with the context error.
func (c *Collector) Collect(ctx context.Context, season string, players int) (*Collection, error) {
	ranked, err := c.client.GetTopPlayers(ctx, season, players)
	c.tracker.RecordCall(EndpointRankings, err != nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get top players for season %s: %w", season, err)
	}

	log.Info().
		Str("season", season).
		Int("players", len(ranked)).
		Int64("predicted_calls", PredictCallsForCollection(len(ranked))).
		Msg("Collecting battle logs")

	results := c.fetchBattleLogs(ctx, ranked)

	collection := &Collection{Players: len(ranked)}
	seen := make(map[string]bool)
	for i, player := range ranked {
		result := results[i]
		if result.err != nil {
			collection.FailedPlayers = append(collection.FailedPlayers, player.Tag)
			log.Warn().
				Err(result.err).
				Str("tag", player.Tag).
				Int("rank", player.Rank).
				Msg("Skipping player, failed to fetch battle log")
			continue
		}

		for _, battle := range result.battles {
			game, ok := match.FromBattle(battle)
			if !ok {
				collection.Unranked++
				continue
			}
			if seen[game.ID] {
				collection.Duplicates++
				continue
			}
			seen[game.ID] = true
			collection.Games = append(collection.Games, game)
		}
	}

	log.Info().
		Int("games", len(collection.Games)).
		Int("duplicates", collection.Duplicates).
		Int("unranked", collection.Unranked).
		Int("failed_players", len(collection.FailedPlayers)).
		Msg("Collection complete")

	if err := ctx.Err(); err != nil {
		return collection, fmt.Errorf("collection interrupted: %w", err)
	}
	return collection, nil
}

// fetchBattleLogs fetches every player's log with a bounded worker pool.
// Results are indexed like players so the merge order is deterministic.
func (c *Collector) fetchBattleLogs(ctx context.Context, players []app.RankedPlayer) []battleLogResult {
	results := make([]battleLogResult, len(players))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					results[i].err = err
					continue
				}

				battles, err := c.client.GetBattleLog(ctx, players[i].Tag)
				c.tracker.RecordCall(EndpointBattleLog, err != nil)
				results[i] = battleLogResult{battles: battles, err: err}

				log.Debug().
					Str("tag", players[i].Tag).
					Int("battles", len(battles)).
					Msg("Fetched battle log")
			}
		}()
	}

	for i := range players {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
