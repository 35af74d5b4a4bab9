package matchup

import (
	"cr_matchup_stats/internal/domain/match"
)

// Result is a game's outcome from side A's (the player's) point of view
type Result int

const (
	ResultWin Result = iota
	ResultLoss
	ResultDraw
)

func (r Result) String() string {
	switch r {
	case ResultWin:
		return "win"
	case ResultLoss:
		return "loss"
	default:
		return "draw"
	}
}

func resultFor(winner match.Winner) Result {
	switch winner {
	case match.WinnerA:
		return ResultWin
	case match.WinnerB:
		return ResultLoss
	default:
		return ResultDraw
	}
}

// Flag marks a game whose outcome ran against the historical expectation
type Flag int

const (
	FlagNone Flag = iota
	// FlagShouldWinLoss: lost although the player's cards historically win
	FlagShouldWinLoss
	// FlagShouldLoseWin: won although the player's cards historically lose
	FlagShouldLoseWin
	// FlagInsufficient: no pair in the game had enough history to judge
	FlagInsufficient
)

func (f Flag) String() string {
	switch f {
	case FlagShouldWinLoss:
		return "should-win loss"
	case FlagShouldLoseWin:
		return "should-lose win"
	case FlagInsufficient:
		return "insufficient data"
	default:
		return ""
	}
}

// PairResult is the historical record of one card against another.
// Rate and Smoothed are only meaningful when Sufficient is true.
type PairResult struct {
	Card       match.Card
	Opponent   match.Card
	Rate       float64
	Smoothed   float64
	Games      int
	Sufficient bool
}

// QueryPair looks up a single hypothetical matchup. Pairs that are absent,
// unobserved, or observed fewer than opts.MinGames times are insufficient.
func QueryPair(t *Table, card, opponent match.Card, opts Options) PairResult {
	result := PairResult{Card: card, Opponent: opponent}
	if t == nil {
		return result
	}

	view, ok := t.Lookup(card, opponent)
	if !ok {
		return result
	}

	result.Games = view.Games
	if view.Games == 0 || view.Games < opts.MinGames {
		return result
	}

	result.Rate = float64(view.Wins) / float64(view.Games)
	result.Smoothed = smoothedRate(view.Wins, view.Games, opts.Smoothing)
	result.Sufficient = true
	return result
}

// ReportRow is one card pair within one queried game
type ReportRow struct {
	Game   int
	GameID string
	Result Result
	PairResult
}

// GameSummary aggregates the rows of one queried game. ExpectedRate is the
// mean historical rate of the player's cards over the sufficient pairs.
type GameSummary struct {
	Game              int
	GameID            string
	Result            Result
	ExpectedRate      float64
	SufficientPairs   int
	InsufficientPairs int
	Flag              Flag
}

// Report is the outcome of comparing games against a table
type Report struct {
	Rows      []ReportRow
	Games     []GameSummary
	MinGames  int
	Smoothing float64

	// Rejected and Draws describe input games that never reached the report.
	// Query leaves them zero; callers that load the games fill them in.
	Rejected int
	Draws    int

	ShouldWinLosses   int
	ShouldLoseWins    int
	InsufficientGames int
}

// Query compares games against the table. Side A of each record is treated
// as the player. Every cross-deck card pair yields a row; pairs without
// enough history are reported as insufficient, never as a rate.
//
// A flagged game is a signal worth a closer look, not evidence of biased
// matchmaking.
func Query(t *Table, games []match.MatchRecord, opts Options) Report {
	report := Report{MinGames: opts.MinGames, Smoothing: opts.Smoothing}

	for i, game := range games {
		summary := GameSummary{
			Game:   i,
			GameID: game.ID,
			Result: resultFor(game.Winner),
		}

		rateSum := 0.0
		for _, card := range sideCards(game.A, opts.IncludeSupport) {
			for _, opponent := range sideCards(game.B, opts.IncludeSupport) {
				if card == opponent {
					continue
				}

				pair := QueryPair(t, card, opponent, opts)
				report.Rows = append(report.Rows, ReportRow{
					Game:       i,
					GameID:     game.ID,
					Result:     summary.Result,
					PairResult: pair,
				})

				if pair.Sufficient {
					summary.SufficientPairs++
					rateSum += pair.Rate
				} else {
					summary.InsufficientPairs++
				}
			}
		}

		if summary.SufficientPairs > 0 {
			summary.ExpectedRate = rateSum / float64(summary.SufficientPairs)
		}
		summary.Flag = flagFor(summary)

		switch summary.Flag {
		case FlagShouldWinLoss:
			report.ShouldWinLosses++
		case FlagShouldLoseWin:
			report.ShouldLoseWins++
		case FlagInsufficient:
			report.InsufficientGames++
		}

		report.Games = append(report.Games, summary)
	}

	return report
}

func flagFor(summary GameSummary) Flag {
	if summary.SufficientPairs == 0 {
		return FlagInsufficient
	}
	switch {
	case summary.Result == ResultLoss && summary.ExpectedRate > 0.5:
		return FlagShouldWinLoss
	case summary.Result == ResultWin && summary.ExpectedRate < 0.5:
		return FlagShouldLoseWin
	default:
		return FlagNone
	}
}
