package match

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// LoadOptions configures Load
type LoadOptions struct {
	Draws DrawPolicy
}

// Rejection records one raw game that failed validation
type Rejection struct {
	Index  int
	ID     string
	Reason error
}

func (r Rejection) Error() string {
	if r.ID != "" {
		return fmt.Sprintf("game %d (%s): %v", r.Index, r.ID, r.Reason)
	}
	return fmt.Sprintf("game %d: %v", r.Index, r.Reason)
}

// LoadResult holds the parsed records together with what was left out
type LoadResult struct {
	Records  []MatchRecord
	Rejected []Rejection
	// Draws counts drawn games dropped under DrawExclude
	Draws int
}

// Total returns the number of raw games the result accounts for
func (r LoadResult) Total() int {
	return len(r.Records) + len(r.Rejected) + r.Draws
}

// Load validates raw games and converts the valid ones into match records.
// Invalid games are reported in Rejected and never abort the load.
// A nil catalog disables the known-card check.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func Load(raw []RawGame, catalog *Catalog, opts LoadOptions) LoadResult {
	result := LoadResult{Records: make([]MatchRecord, 0, len(raw))}

	for i, game := range raw {
		record, err := parseGame(game, catalog)
		if err != nil {
			result.Rejected = append(result.Rejected, Rejection{Index: i, ID: game.ID, Reason: err})
			continue
		}

		if record.Winner == WinnerDraw && opts.Draws == DrawExclude {
			result.Draws++
			continue
		}

		result.Records = append(result.Records, record)
	}

	return result
}

func parseGame(game RawGame, catalog *Catalog) (MatchRecord, error) {
	deckA, err := parseDeck(game.DeckA, game.SupportA, catalog)
	if err != nil {
		return MatchRecord{}, fmt.Errorf("deck a: %w", err)
	}

	deckB, err := parseDeck(game.DeckB, game.SupportB, catalog)
	if err != nil {
		return MatchRecord{}, fmt.Errorf("deck b: %w", err)
	}

	winner, err := ParseWinner(game.Winner)
	if err != nil {
		return MatchRecord{}, err
	}

	return MatchRecord{
		ID:       game.ID,
		A:        deckA,
		B:        deckB,
		Winner:   winner,
		PlayedAt: game.PlayedAt,
	}, nil
}

func parseDeck(names, support []string, catalog *Catalog) (Deck, error) {
	deck := Deck{
		Cards: normalizeAll(names),
	}
	if len(support) > 0 {
		deck.Support = normalizeAll(support)
	}

	if err := deck.Validate(); err != nil {
		return Deck{}, err
	}

	if catalog == nil {
		return deck, nil
	}
	for _, card := range deck.Cards {
		if !catalog.Contains(card) {
			return Deck{}, fmt.Errorf("%w: %s", ErrUnknownCard, card)
		}
		if catalog.IsSupport(card) {
			return Deck{}, fmt.Errorf("%w: tower troop %s in main deck", ErrUnknownCard, card)
		}
	}
	for _, card := range deck.Support {
		if !catalog.IsSupport(card) {
			return Deck{}, fmt.Errorf("%w: support %s", ErrUnknownCard, card)
		}
	}

	return deck, nil
}

func normalizeAll(names []string) []Card {
	cards := make([]Card, len(names))
	for i, name := range names {
		cards[i] = NormalizeCard(name)
	}
	return cards
}

// ReadRawGames reads one JSON encoded RawGame per line. Blank lines are skipped.
// A line that is not valid JSON fails the read; content validation is Load's job.
func ReadRawGames(r io.Reader) ([]RawGame, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var games []RawGame
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var game RawGame
		if err := json.Unmarshal([]byte(line), &game); err != nil {
			return nil, fmt.Errorf("failed to decode game on line %d: %w", lineNumber, err)
		}
		games = append(games, game)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read games: %w", err)
	}

	return games, nil
}

// WriteRawGames writes games as JSON lines, the format ReadRawGames reads
func WriteRawGames(w io.Writer, games []RawGame) error {
	encoder := json.NewEncoder(w)
	for i, game := range games {
		if err := encoder.Encode(game); err != nil {
			return fmt.Errorf("failed to encode game %d: %w", i, err)
		}
	}
	return nil
}
