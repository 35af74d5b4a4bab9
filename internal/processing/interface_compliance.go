package processing

import (
	"cr_matchup_stats/internal/royale"
)

// Compile-time interface compliance checks
var (
	_ RoyaleClientInterface = (*royale.Client)(nil)
)
