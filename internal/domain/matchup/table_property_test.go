package matchup

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"cr_matchup_stats/internal/domain/match"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestTableProperties uses property-based testing to verify table invariants
func TestTableProperties(t *testing.T) {
	opts := DefaultOptions()

	properties := gopter.NewProperties(nil)

	// Property: each decisive record contributes one win per cross-deck pair,
	// minus the pairs where the same card sits on both sides
	properties.Property("total wins equals 64 per record minus self pairs", prop.ForAll(
		func(records []match.MatchRecord) bool {
			table := Build(records, opts)

			expected := 0
			for _, r := range records {
				expected += match.DeckSize*match.DeckSize - sharedCards(r.A, r.B)
			}
			return table.TotalWins() == expected && table.TotalGames() == expected
		},
		gen.SliceOf(genRecord()),
	))

	// Property: lookups in either direction read the same tally
	properties.Property("symmetric lookups", prop.ForAll(
		func(records []match.MatchRecord) bool {
			table := Build(records, opts)
			for _, p := range table.Pairs() {
				forward, ok1 := table.Lookup(p.A, p.B)
				reverse, ok2 := table.Lookup(p.B, p.A)
				if !ok1 || !ok2 {
					return false
				}
				if forward.Games != reverse.Games ||
					forward.Wins != reverse.Losses ||
					forward.Losses != reverse.Wins {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genRecord()),
	))

	// Property: every defined rate lies in [0, 1] and both directions sum to 1
	properties.Property("rates bounded and complementary", prop.ForAll(
		func(records []match.MatchRecord) bool {
			table := Build(records, opts)
			for _, p := range table.Pairs() {
				forward, ok := table.WinRate(p.A, p.B)
				if !ok || forward < 0 || forward > 1 {
					return false
				}
				reverse, _ := table.WinRate(p.B, p.A)
				if diff := forward + reverse - 1; diff > 1e-9 || diff < -1e-9 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genRecord()),
	))

	// Property: building twice from the same input yields identical tallies
	properties.Property("build is idempotent", prop.ForAll(
		func(records []match.MatchRecord) bool {
			return reflect.DeepEqual(Build(records, opts), Build(records, opts))
		},
		gen.SliceOf(genRecord()),
	))

	// Property: pairs under the sample threshold never report a rate
	properties.Property("below threshold is insufficient", prop.ForAll(
		func(records []match.MatchRecord, minGames int) bool {
			table := Build(records, opts)
			queryOpts := opts
			queryOpts.MinGames = minGames
			for _, p := range table.Pairs() {
				result := QueryPair(table, p.A, p.B, queryOpts)
				tally, _ := table.Tally(p)
				if result.Sufficient != (tally.Games >= minGames && tally.Games > 0) {
					return false
				}
				if !result.Sufficient && result.Rate != 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genRecord()),
		gen.IntRange(0, 6),
	))

	// Property: the report has one row per cross-deck pair
	properties.Property("report row count", prop.ForAll(
		func(history, games []match.MatchRecord) bool {
			report := Query(Build(history, opts), games, opts)

			expected := 0
			for _, g := range games {
				expected += match.DeckSize*match.DeckSize - sharedCards(g.A, g.B)
			}
			return len(report.Rows) == expected && len(report.Games) == len(games)
		},
		gen.SliceOf(genRecord()),
		gen.SliceOf(genRecord()),
	))

	properties.TestingRun(t)
}

// TestSupportCardProperties checks loaded games with tower troops counted in
func TestSupportCardProperties(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeSupport = true

	properties := gopter.NewProperties(nil)

	// Property: one loaded game never puts more than one game on a pair
	properties.Property("one game per pair per record", prop.ForAll(
		func(game match.RawGame) bool {
			result := match.Load([]match.RawGame{game}, nil, match.LoadOptions{})
			table := Build(result.Records, opts)
			for _, p := range table.Pairs() {
				if tally, _ := table.Tally(p); tally.Games != 1 {
					return false
				}
			}
			return true
		},
		genSupportGame(),
	))

	// Property: every loaded game adds |A| x |B| games minus shared cards
	properties.Property("total games match side sizes", prop.ForAll(
		func(games []match.RawGame) bool {
			result := match.Load(games, nil, match.LoadOptions{})
			table := Build(result.Records, opts)

			expected := 0
			for _, r := range result.Records {
				a := sideCards(r.A, true)
				b := sideCards(r.B, true)
				shared := 0
				for _, x := range a {
					for _, y := range b {
						if x == y {
							shared++
						}
					}
				}
				expected += len(a)*len(b) - shared
			}
			return table.TotalGames() == expected
		},
		gen.SliceOf(genSupportGame()),
	))

	properties.TestingRun(t)
}

// genSupportGame generates raw games whose support slot is sometimes empty,
// sometimes a tower troop and sometimes a card from the same deck
func genSupportGame() gopter.Gen {
	const poolSize = 14
	return gen.Int64().Map(func(seed int64) match.RawGame {
		r := rand.New(rand.NewSource(seed))
		game := match.RawGame{
			ID:     fmt.Sprintf("game-%d", seed),
			DeckA:  randomNames(r, poolSize),
			DeckB:  randomNames(r, poolSize),
			Winner: "a",
		}
		game.SupportA = randomSupport(r, game.DeckA)
		game.SupportB = randomSupport(r, game.DeckB)
		return game
	})
}

func randomNames(r *rand.Rand, poolSize int) []string {
	names := make([]string, match.DeckSize)
	for i, card := range randomDeck(r, poolSize).Cards {
		names[i] = string(card)
	}
	return names
}

func randomSupport(r *rand.Rand, deck []string) []string {
	switch r.Intn(4) {
	case 0:
		return nil
	case 1:
		return []string{deck[r.Intn(len(deck))]}
	default:
		return []string{fmt.Sprintf("tower%d", r.Intn(2))}
	}
}

func sharedCards(a, b match.Deck) int {
	shared := 0
	for _, card := range a.Cards {
		if b.Contains(card) {
			shared++
		}
	}
	return shared
}

// genRecord generates a decisive record drawn from a small card pool so
// pairs repeat across records and decks sometimes share cards
func genRecord() gopter.Gen {
	const poolSize = 14
	return gen.Int64().Map(func(seed int64) match.MatchRecord {
		r := rand.New(rand.NewSource(seed))
		winner := match.WinnerA
		if r.Intn(2) == 1 {
			winner = match.WinnerB
		}
		return match.MatchRecord{
			ID:     fmt.Sprintf("game-%d", seed),
			A:      randomDeck(r, poolSize),
			B:      randomDeck(r, poolSize),
			Winner: winner,
		}
	})
}

func randomDeck(r *rand.Rand, poolSize int) match.Deck {
	perm := r.Perm(poolSize)
	cards := make([]match.Card, match.DeckSize)
	for i := range cards {
		cards[i] = match.Card(fmt.Sprintf("card%02d", perm[i]))
	}
	return match.Deck{Cards: cards}
}
