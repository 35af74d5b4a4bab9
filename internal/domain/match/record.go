package match

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DeckSize is the number of cards in a deck, not counting the tower troop
const DeckSize = 8

// Validation failures reported by Load and Deck.Validate
var (
	ErrDeckSize        = errors.New("invalid deck size")
	ErrDuplicateCard   = errors.New("duplicate card in deck")
	ErrUnknownCard     = errors.New("unknown card")
	ErrAmbiguousResult = errors.New("ambiguous result")
)

// Winner identifies which side won a match
type Winner int

const (
	WinnerA Winner = iota
	WinnerB
	WinnerDraw
)

func (w Winner) String() string {
	switch w {
	case WinnerA:
		return "a"
	case WinnerB:
		return "b"
	case WinnerDraw:
		return "draw"
	default:
		return fmt.Sprintf("winner(%d)", int(w))
	}
}

// ParseWinner parses "a", "b" or "draw". Anything else is ambiguous.
func ParseWinner(raw string) (Winner, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "a":
		return WinnerA, nil
	case "b":
		return WinnerB, nil
	case "draw":
		return WinnerDraw, nil
	default:
		return 0, fmt.Errorf("%w: winner %q", ErrAmbiguousResult, raw)
	}
}

// DrawPolicy controls what happens to drawn games
type DrawPolicy int

const (
	// DrawExclude drops draws during load; they are only counted
	DrawExclude DrawPolicy = iota
	// DrawCount keeps draws as records; they add observed games but no wins
	DrawCount
)

// ParseDrawPolicy parses "exclude" or "count"
func ParseDrawPolicy(raw string) (DrawPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "exclude":
		return DrawExclude, nil
	case "count":
		return DrawCount, nil
	default:
		return 0, fmt.Errorf("unknown draw policy %q", raw)
	}
}

// Deck is one player's 8 distinct cards plus an optional tower troop
type Deck struct {
	Cards   []Card
	Support []Card
}

// Validate checks the deck shape: exactly DeckSize distinct, non-empty cards
// and at most one support card that is not also a main card.
func (d Deck) Validate() error {
	if len(d.Cards) != DeckSize {
		return fmt.Errorf("%w: %d cards, expected %d", ErrDeckSize, len(d.Cards), DeckSize)
	}
	if len(d.Support) > 1 {
		return fmt.Errorf("%w: %d support cards, expected at most 1", ErrDeckSize, len(d.Support))
	}

	seen := make(map[Card]struct{}, DeckSize)
	for _, card := range d.Cards {
		if card == "" {
			return fmt.Errorf("%w: empty card name", ErrUnknownCard)
		}
		if _, dup := seen[card]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCard, card)
		}
		seen[card] = struct{}{}
	}
	for _, card := range d.Support {
		if card == "" {
			return fmt.Errorf("%w: empty support card name", ErrUnknownCard)
		}
		if _, dup := seen[card]; dup {
			return fmt.Errorf("%w: support %s", ErrDuplicateCard, card)
		}
	}
	return nil
}

// Contains reports whether the card is one of the deck's main cards
func (d Deck) Contains(card Card) bool {
	for _, c := range d.Cards {
		if c == card {
			return true
		}
	}
	return false
}

// MatchRecord is one completed ranked game. Side A is the attacker (or the
// player whose battle log the game came from); side B is the defender.
type MatchRecord struct {
	ID       string
	A        Deck
	B        Deck
	Winner   Winner
	PlayedAt time.Time
}

// RawGame is the source-agnostic input shape, one per game
type RawGame struct {
	ID       string    `json:"id,omitempty"`
	DeckA    []string  `json:"deck_a"`
	DeckB    []string  `json:"deck_b"`
	SupportA []string  `json:"support_a,omitempty"`
	SupportB []string  `json:"support_b,omitempty"`
	Winner   string    `json:"winner"`
	PlayedAt time.Time `json:"played_at"`
}
