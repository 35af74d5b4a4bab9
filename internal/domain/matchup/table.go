// Package matchup aggregates match records into pairwise card win/loss tallies
// and compares games against them.
//
// Every card in one deck is paired with every card in the opposing deck, and
// the pair is credited with the game's outcome. A card being present on the
// winning side correlates with, but does not prove, that it counters the
// cards it was paired with. Rates here measure co-occurrence, not causality.
//
// A Table is built once and is read-only afterwards; concurrent readers are safe.
package matchup

import (
	"fmt"
	"sort"

	"cr_matchup_stats/internal/domain/match"
)

// Pair is an unordered card pair stored in canonical order (A < B)
type Pair struct {
	A match.Card
	B match.Card
}

// NewPair returns the canonical pair for two cards regardless of argument order
func NewPair(x, y match.Card) Pair {
	if y < x {
		x, y = y, x
	}
	return Pair{A: x, B: y}
}

func (p Pair) String() string {
	return fmt.Sprintf("%s vs %s", p.A, p.B)
}

// Tally holds results for one canonical pair. Games counts every game the pair
// was observed in, so Games - WinsA - WinsB is the number of counted draws.
type Tally struct {
	WinsA int
	WinsB int
	Games int
}

// Draws returns the number of observed games neither side won
func (t Tally) Draws() int {
	return t.Games - t.WinsA - t.WinsB
}

// CardMatchup is a tally oriented from one card's point of view
type CardMatchup struct {
	Card     match.Card
	Opponent match.Card
	Wins     int
	Losses   int
	Draws    int
	Games    int
}

// Table maps canonical card pairs to tallies
type Table struct {
	tallies map[Pair]Tally
	records int
}

// NewTable returns an empty table
func NewTable() *Table {
	return &Table{tallies: make(map[Pair]Tally)}
}

// Build aggregates records into a new table. For each record every card on
// side A is paired with every card on side B. Pairs of a card with itself
// are skipped.
//
// Build panics if a record's deck does not satisfy match.Deck.Validate: the
// loader guarantees that, so a malformed deck here is a programming error.
func Build(records []match.MatchRecord, opts Options) *Table {
	t := NewTable()
	for i, record := range records {
		if err := record.A.Validate(); err != nil {
			panic(fmt.Sprintf("matchup: record %d deck a violates loader contract: %v", i, err))
		}
		if err := record.B.Validate(); err != nil {
			panic(fmt.Sprintf("matchup: record %d deck b violates loader contract: %v", i, err))
		}
		t.add(record, opts)
	}
	return t
}

func (t *Table) add(record match.MatchRecord, opts Options) {
	if record.Winner == match.WinnerDraw && opts.Draws == match.DrawExclude {
		return
	}

	sideA := sideCards(record.A, opts.IncludeSupport)
	sideB := sideCards(record.B, opts.IncludeSupport)

	for _, x := range sideA {
		for _, y := range sideB {
			if x == y {
				continue
			}

			p := NewPair(x, y)
			tally := t.tallies[p]
			tally.Games++

			var winner match.Card
			switch record.Winner {
			case match.WinnerA:
				winner = x
			case match.WinnerB:
				winner = y
			}
			if winner != "" {
				if winner == p.A {
					tally.WinsA++
				} else {
					tally.WinsB++
				}
			}

			t.tallies[p] = tally
		}
	}

	t.records++
}

func sideCards(deck match.Deck, includeSupport bool) []match.Card {
	if !includeSupport || len(deck.Support) == 0 {
		return deck.Cards
	}
	cards := make([]match.Card, 0, len(deck.Cards)+len(deck.Support))
	cards = append(cards, deck.Cards...)
	return append(cards, deck.Support...)
}

// Insert sets the tally for a pair, used when restoring a persisted table.
// A pair given in non-canonical order has its wins swapped to match.
func (t *Table) Insert(p Pair, tally Tally) error {
	if p.A == p.B {
		return fmt.Errorf("pair %s pairs a card with itself", p)
	}
	if tally.WinsA < 0 || tally.WinsB < 0 || tally.Games < 0 {
		return fmt.Errorf("pair %s has negative counts", p)
	}
	if tally.WinsA+tally.WinsB > tally.Games {
		return fmt.Errorf("pair %s has %d wins over %d games", p, tally.WinsA+tally.WinsB, tally.Games)
	}

	canonical := NewPair(p.A, p.B)
	if canonical != p {
		tally.WinsA, tally.WinsB = tally.WinsB, tally.WinsA
	}
	if _, exists := t.tallies[canonical]; exists {
		return fmt.Errorf("duplicate pair %s", canonical)
	}

	t.tallies[canonical] = tally
	return nil
}

// Tally returns the stored tally for the canonical form of p
func (t *Table) Tally(p Pair) (Tally, bool) {
	tally, ok := t.tallies[NewPair(p.A, p.B)]
	return tally, ok
}

// Lookup returns the pair's results from x's point of view.
// Lookup(x, y) and Lookup(y, x) read the same tally.
func (t *Table) Lookup(x, y match.Card) (CardMatchup, bool) {
	if x == y {
		return CardMatchup{}, false
	}

	p := NewPair(x, y)
	tally, ok := t.tallies[p]
	if !ok {
		return CardMatchup{Card: x, Opponent: y}, false
	}

	view := CardMatchup{
		Card:     x,
		Opponent: y,
		Draws:    tally.Draws(),
		Games:    tally.Games,
	}
	if p.A == x {
		view.Wins, view.Losses = tally.WinsA, tally.WinsB
	} else {
		view.Wins, view.Losses = tally.WinsB, tally.WinsA
	}
	return view, true
}

// WinRate returns x's win rate against y. The rate is undefined (false) when
// the pair was never observed.
func (t *Table) WinRate(x, y match.Card) (float64, bool) {
	view, ok := t.Lookup(x, y)
	if !ok || view.Games == 0 {
		return 0, false
	}
	return float64(view.Wins) / float64(view.Games), true
}

// SmoothedWinRate returns a Bayesian average win rate that adds `smoothing`
// wins and losses to the observed counts. Unseen pairs get 0.5.
func (t *Table) SmoothedWinRate(x, y match.Card, smoothing float64) float64 {
	view, _ := t.Lookup(x, y)
	return smoothedRate(view.Wins, view.Games, smoothing)
}

func smoothedRate(wins, games int, smoothing float64) float64 {
	denominator := float64(games) + 2*smoothing
	if denominator <= 0 {
		return 0.5
	}
	return (float64(wins) + smoothing) / denominator
}

// Len returns the number of observed pairs
func (t *Table) Len() int {
	return len(t.tallies)
}

// Records returns the number of records aggregated by Build
func (t *Table) Records() int {
	return t.records
}

// Pairs returns all canonical pairs sorted by A then B
func (t *Table) Pairs() []Pair {
	pairs := make([]Pair, 0, len(t.tallies))
	for p := range t.tallies {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

// Cards returns every card that appears in at least one pair, sorted
func (t *Table) Cards() []match.Card {
	seen := make(map[match.Card]struct{})
	for p := range t.tallies {
		seen[p.A] = struct{}{}
		seen[p.B] = struct{}{}
	}
	cards := make([]match.Card, 0, len(seen))
	for card := range seen {
		cards = append(cards, card)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i] < cards[j] })
	return cards
}

// TotalWins returns the sum of WinsA + WinsB over all pairs
func (t *Table) TotalWins() int {
	total := 0
	for _, tally := range t.tallies {
		total += tally.WinsA + tally.WinsB
	}
	return total
}

// TotalGames returns the sum of Games over all pairs
func (t *Table) TotalGames() int {
	total := 0
	for _, tally := range t.tallies {
		total += tally.Games
	}
	return total
}
