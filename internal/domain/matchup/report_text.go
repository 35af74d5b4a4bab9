package matchup

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// InsufficientData is printed in place of a rate that lacks enough samples
const InsufficientData = "insufficient data"

// RateString formats the rate or reports insufficient data
func (r PairResult) RateString() string {
	if !r.Sufficient {
		return InsufficientData
	}
	return fmt.Sprintf("%.3f", r.Rate)
}

// SmoothedString formats the smoothed rate under the same sample rule
func (r PairResult) SmoothedString() string {
	if !r.Sufficient {
		return InsufficientData
	}
	return fmt.Sprintf("%.3f", r.Smoothed)
}

// WriteText writes a human-readable report: one line per game, then one row
// per pair with its observed outcome, historical rates and sample size.
func (r Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "GAME\tID\tRESULT\tEXPECTED\tPAIRS\tFLAG\n")
	for _, game := range r.Games {
		expected := InsufficientData
		if game.SufficientPairs > 0 {
			expected = fmt.Sprintf("%.3f", game.ExpectedRate)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d/%d\t%s\n",
			game.Game+1, game.GameID, game.Result, expected,
			game.SufficientPairs, game.SufficientPairs+game.InsufficientPairs, game.Flag)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "GAME\tCARD\tOPPONENT\tRESULT\tRATE\tSMOOTHED\tGAMES\n")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
			row.Game+1, row.Card, row.Opponent, row.Result, row.RateString(), row.SmoothedString(), row.Games)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "games\t%d\n", len(r.Games))
	fmt.Fprintf(tw, "rejected\t%d\n", r.Rejected)
	fmt.Fprintf(tw, "draws excluded\t%d\n", r.Draws)
	fmt.Fprintf(tw, "should-win losses\t%d\n", r.ShouldWinLosses)
	fmt.Fprintf(tw, "should-lose wins\t%d\n", r.ShouldLoseWins)
	fmt.Fprintf(tw, "insufficient games\t%d\n", r.InsufficientGames)
	fmt.Fprintf(tw, "min sample\t%d\n", r.MinGames)
	fmt.Fprintf(tw, "smoothing\t%g\n", r.Smoothing)

	return tw.Flush()
}
