package matchup

import (
	"testing"

	"cr_matchup_stats/internal/app"
	"cr_matchup_stats/internal/domain/match"
)

func TestOptionsFromConfig(t *testing.T) {
	config := &app.Config{
		MinSampleGames:      25,
		DrawPolicy:          "count",
		WinrateSmoothing:    2,
		IncludeSupportCards: true,
	}

	opts, err := OptionsFromConfig(config)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if opts.MinGames != 25 || opts.Draws != match.DrawCount || opts.Smoothing != 2 || !opts.IncludeSupport {
		t.Errorf("Unexpected options %+v", opts)
	}
	if opts.LoadOptions().Draws != match.DrawCount {
		t.Error("Expected load options to carry the draw policy")
	}

	config.DrawPolicy = "split"
	if _, err := OptionsFromConfig(config); err == nil {
		t.Error("Expected error for unknown draw policy")
	}
}
