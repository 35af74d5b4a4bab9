// Package match turns raw game descriptions into validated match records.
//
// Each record carries two 8-card decks and a winner. Records are built once
// per analysis run and never mutated afterwards.
package match

import (
	"sort"
	"strings"

	"cr_matchup_stats/internal/app"
)

// Card is a lowercased card name, e.g. "hog rider"
type Card string

// NormalizeCard trims and lowercases a card name so API and dataset spellings agree
func NormalizeCard(name string) Card {
	return Card(strings.ToLower(strings.TrimSpace(name)))
}

// Catalog is the known universe of cards, including princess tower troops.
type Catalog struct {
	cards map[Card]bool // value reports whether the card is a support (tower troop) card
}

// NewCatalog builds a catalog from regular and support card names
func NewCatalog(cards, support []string) *Catalog {
	c := &Catalog{cards: make(map[Card]bool, len(cards)+len(support))}
	for _, name := range cards {
		c.cards[NormalizeCard(name)] = false
	}
	for _, name := range support {
		c.cards[NormalizeCard(name)] = true
	}
	return c
}

// CatalogFromResponse builds a catalog from the /cards endpoint response
func CatalogFromResponse(resp *app.CardsResponse) *Catalog {
	if resp == nil {
		return NewCatalog(nil, nil)
	}

	cards := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		cards = append(cards, item.Name)
	}
	support := make([]string, 0, len(resp.SupportItems))
	for _, item := range resp.SupportItems {
		support = append(support, item.Name)
	}
	return NewCatalog(cards, support)
}

// Contains reports whether the card is part of the known universe
func (c *Catalog) Contains(card Card) bool {
	_, ok := c.cards[card]
	return ok
}

// IsSupport reports whether the card is a tower troop
func (c *Catalog) IsSupport(card Card) bool {
	return c.cards[card]
}

// Len returns the number of known cards
func (c *Catalog) Len() int {
	return len(c.cards)
}

// Cards returns all known cards sorted by name
func (c *Catalog) Cards() []Card {
	out := make([]Card, 0, len(c.cards))
	for card := range c.cards {
		out = append(out, card)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
