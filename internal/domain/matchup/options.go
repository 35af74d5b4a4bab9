package matchup

import (
	"cr_matchup_stats/internal/app"
	"cr_matchup_stats/internal/domain/match"
)

// Options configures table construction and queries. It is passed explicitly
// to Build and Query so results depend only on their inputs.
type Options struct {
	// MinGames is the sample size below which a pair reports insufficient data
	MinGames int
	// Draws selects whether drawn games count as observed games
	Draws match.DrawPolicy
	// Smoothing is the prior weight for SmoothedWinRate (wins and losses added)
	Smoothing float64
	// IncludeSupport pairs tower troops alongside the 8 deck cards
	IncludeSupport bool
}

// DefaultOptions returns the defaults used when nothing is configured
func DefaultOptions() Options {
	return Options{
		MinGames:  10,
		Draws:     match.DrawExclude,
		Smoothing: 1.0,
	}
}

// OptionsFromConfig converts application configuration into Options
func OptionsFromConfig(config *app.Config) (Options, error) {
	draws, err := match.ParseDrawPolicy(config.DrawPolicy)
	if err != nil {
		return Options{}, err
	}

	return Options{
		MinGames:       config.MinSampleGames,
		Draws:          draws,
		Smoothing:      config.WinrateSmoothing,
		IncludeSupport: config.IncludeSupportCards,
	}, nil
}

// LoadOptions returns the loader options matching these table options
func (o Options) LoadOptions() match.LoadOptions {
	return match.LoadOptions{Draws: o.Draws}
}
