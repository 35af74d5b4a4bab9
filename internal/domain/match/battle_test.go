package match

import (
	"testing"
	"time"

	"cr_matchup_stats/internal/app"
)

func cardInfos(names []string) []app.CardInfo {
	infos := make([]app.CardInfo, len(names))
	for i, name := range names {
		infos[i] = app.CardInfo{ID: 26000000 + i, Name: name}
	}
	return infos
}

func rankedBattle(teamCrowns, opponentCrowns int) app.Battle {
	return app.Battle{
		Type:       app.RankedBattleType,
		BattleTime: "20250814T183000.000Z",
		Team: []app.BattleParticipant{{
			Tag:          "#PLAYER",
			Crowns:       teamCrowns,
			Cards:        cardInfos(deckOne),
			SupportCards: []app.CardInfo{{Name: "Tower Princess"}},
		}},
		Opponent: []app.BattleParticipant{{
			Tag:    "#OPPONENT",
			Crowns: opponentCrowns,
			Cards:  cardInfos(deckTwo),
		}},
	}
}

func TestFromBattle(t *testing.T) {
	testCases := []struct {
		name           string
		teamCrowns     int
		opponentCrowns int
		expectedWinner string
	}{
		{"TeamWins", 3, 1, "a"},
		{"OpponentWins", 0, 1, "b"},
		{"Draw", 1, 1, "draw"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			game, ok := FromBattle(rankedBattle(tc.teamCrowns, tc.opponentCrowns))

			if !ok {
				t.Fatal("Expected ranked battle to convert")
			}
			if game.Winner != tc.expectedWinner {
				t.Errorf("Expected winner '%s', got '%s'", tc.expectedWinner, game.Winner)
			}
			if len(game.DeckA) != 8 || game.DeckA[0] != "hog rider" {
				t.Errorf("Expected team deck as side a, got %v", game.DeckA)
			}
			if len(game.SupportA) != 1 || game.SupportA[0] != "tower princess" {
				t.Errorf("Expected team support card, got %v", game.SupportA)
			}
			if game.SupportB != nil {
				t.Errorf("Expected no opponent support cards, got %v", game.SupportB)
			}
			expectedTime := time.Date(2025, 8, 14, 18, 30, 0, 0, time.UTC)
			if !game.PlayedAt.Equal(expectedTime) {
				t.Errorf("Expected PlayedAt %v, got %v", expectedTime, game.PlayedAt)
			}
		})
	}
}

func TestFromBattleSkipsUnranked(t *testing.T) {
	battle := rankedBattle(3, 0)
	battle.Type = "PvP"

	if _, ok := FromBattle(battle); ok {
		t.Error("Expected non-ranked battle to be skipped")
	}

	empty := rankedBattle(3, 0)
	empty.Opponent = nil
	if _, ok := FromBattle(empty); ok {
		t.Error("Expected battle without an opponent to be skipped")
	}
}

func TestFromBattleLoads(t *testing.T) {
	game, _ := FromBattle(rankedBattle(2, 1))

	result := Load([]RawGame{game}, testCatalog(), LoadOptions{})

	if len(result.Records) != 1 {
		t.Fatalf("Expected converted battle to load, got rejections %v", result.Rejected)
	}
	if result.Records[0].Winner != WinnerA {
		t.Errorf("Expected WinnerA, got %v", result.Records[0].Winner)
	}
}

func TestBattleKeyIsDirectionFree(t *testing.T) {
	fromPlayer := rankedBattle(3, 1)

	fromOpponent := rankedBattle(1, 3)
	fromOpponent.Team, fromOpponent.Opponent = fromPlayer.Opponent, fromPlayer.Team

	if BattleKey(fromPlayer) != BattleKey(fromOpponent) {
		t.Errorf("Expected same key from both logs, got '%s' and '%s'", BattleKey(fromPlayer), BattleKey(fromOpponent))
	}

	later := rankedBattle(3, 1)
	later.BattleTime = "20250814T190000.000Z"
	if BattleKey(later) == BattleKey(fromPlayer) {
		t.Error("Expected different battles to have different keys")
	}
}
