package app

// RankedBattleType is the battle log type used for ranked (Path of Legend) games
const RankedBattleType = "pathOfLegend"

// CardInfo represents a card or tower troop from the API
type CardInfo struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Rarity   string `json:"rarity,omitempty"`
	MaxLevel int    `json:"maxLevel,omitempty"`
	Level    int    `json:"level,omitempty"`
}

// CardsResponse represents the response from /cards.
// Items holds troops, buildings and spells; SupportItems holds princess tower troops.
type CardsResponse struct {
	Items        []CardInfo `json:"items"`
	SupportItems []CardInfo `json:"supportItems"`
}

// BattleMode identifies the game mode of a battle
type BattleMode struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// BattleParticipant represents one player's side of a battle
type BattleParticipant struct {
	Tag          string     `json:"tag"`
	Name         string     `json:"name"`
	Crowns       int        `json:"crowns"`
	Cards        []CardInfo `json:"cards"`
	SupportCards []CardInfo `json:"supportCards"`
}

// Battle represents a single entry from /players/{tag}/battlelog
type Battle struct {
	Type       string              `json:"type"`
	BattleTime string              `json:"battleTime"`
	GameMode   BattleMode          `json:"gameMode"`
	Team       []BattleParticipant `json:"team"`
	Opponent   []BattleParticipant `json:"opponent"`
}

// RankedPlayer represents a player on a season leaderboard
type RankedPlayer struct {
	Tag       string `json:"tag"`
	Name      string `json:"name"`
	Rank      int    `json:"rank"`
	EloRating int    `json:"eloRating"`
	ExpLevel  int    `json:"expLevel"`
}

// RankingsResponse represents the response from the season rankings endpoint
type RankingsResponse struct {
	Items []RankedPlayer `json:"items"`
}

// APIError represents the error body returned by the API
type APIError struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}
