package match

import (
	"sort"
	"strings"
	"time"

	"cr_matchup_stats/internal/app"
)

// BattleTimeLayout is the timestamp format used by the battle log
const BattleTimeLayout = "20060102T150405.000Z"

// FromBattle converts a battle log entry into a RawGame. Only ranked 1v1
// battles are converted; the second return value is false for anything else.
// The team (the player whose log it is) becomes side A.
func FromBattle(b app.Battle) (RawGame, bool) {
	if b.Type != app.RankedBattleType {
		return RawGame{}, false
	}
	if len(b.Team) == 0 || len(b.Opponent) == 0 {
		return RawGame{}, false
	}

	team := b.Team[0]
	opponent := b.Opponent[0]

	game := RawGame{
		ID:       BattleKey(b),
		DeckA:    cardNames(team.Cards),
		DeckB:    cardNames(opponent.Cards),
		SupportA: cardNames(team.SupportCards),
		SupportB: cardNames(opponent.SupportCards),
		Winner:   winnerByCrowns(team.Crowns, opponent.Crowns),
	}

	if playedAt, err := time.Parse(BattleTimeLayout, b.BattleTime); err == nil {
		game.PlayedAt = playedAt
	}

	return game, true
}

// BattleKey identifies a battle independently of whose log it was read from,
// so a game between two collected players is only counted once.
func BattleKey(b app.Battle) string {
	tags := make([]string, 0, 2)
	if len(b.Team) > 0 {
		tags = append(tags, b.Team[0].Tag)
	}
	if len(b.Opponent) > 0 {
		tags = append(tags, b.Opponent[0].Tag)
	}
	sort.Strings(tags)
	return b.BattleTime + "|" + strings.Join(tags, "|")
}

func winnerByCrowns(team, opponent int) string {
	switch {
	case team > opponent:
		return "a"
	case opponent > team:
		return "b"
	default:
		return "draw"
	}
}

func cardNames(cards []app.CardInfo) []string {
	if len(cards) == 0 {
		return nil
	}
	names := make([]string, len(cards))
	for i, card := range cards {
		names[i] = strings.ToLower(card.Name)
	}
	return names
}
