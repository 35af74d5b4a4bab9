package processing

import (
	"fmt"

	"cr_matchup_stats/internal/app"
	"cr_matchup_stats/internal/domain/match"
)

func cardInfos(prefix string) []app.CardInfo {
	cards := make([]app.CardInfo, match.DeckSize)
	for i := range cards {
		cards[i] = app.CardInfo{ID: i, Name: fmt.Sprintf("%s%d", prefix, i+1)}
	}
	return cards
}

func cardNames(prefixes ...string) []string {
	var names []string
	for _, prefix := range prefixes {
		for i := 1; i <= match.DeckSize; i++ {
			names = append(names, fmt.Sprintf("%s%d", prefix, i))
		}
	}
	return names
}

func testCatalog() *match.Catalog {
	return match.NewCatalog(cardNames("c", "d", "e"), nil)
}

// rankedBattle builds a ranked battle as seen from team's log
func rankedBattle(battleTime, team, teamDeck string, teamCrowns int, opponent, opponentDeck string, opponentCrowns int) app.Battle {
	return app.Battle{
		Type:       app.RankedBattleType,
		BattleTime: battleTime,
		Team: []app.BattleParticipant{
			{Tag: team, Crowns: teamCrowns, Cards: cardInfos(teamDeck)},
		},
		Opponent: []app.BattleParticipant{
			{Tag: opponent, Crowns: opponentCrowns, Cards: cardInfos(opponentDeck)},
		},
	}
}
