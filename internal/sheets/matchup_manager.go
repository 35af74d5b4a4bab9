package sheets

import (
	"context"
	"fmt"
	"time"

	"cr_matchup_stats/internal/config"
	"cr_matchup_stats/internal/domain/match"
	"cr_matchup_stats/internal/domain/matchup"

	"github.com/rs/zerolog/log"
)

var tableHeaders = []interface{}{"Card A", "Card B", "Wins A", "Wins B", "Games", "Win Rate A", "Smoothed Rate A"}

var reportHeaders = []interface{}{"Game", "Game ID", "Result", "Card", "Opponent", "Win Rate", "Smoothed", "Games", "Expected", "Flag"}

// MatchupManager writes matchup tables and reports to spreadsheet tabs
type MatchupManager struct {
	api       SheetsAPI
	retry     config.RetryConfig
	smoothing float64
}

// NewMatchupManager creates a manager using the default export retry policy
func NewMatchupManager(api SheetsAPI) *MatchupManager {
	return &MatchupManager{
		api:       api,
		retry:     config.DefaultResilienceConfig.Export,
		smoothing: 1,
	}
}

// WithRetry overrides the retry policy
func (m *MatchupManager) WithRetry(retry config.RetryConfig) *MatchupManager {
	m.retry = retry
	return m
}

// WithSmoothing sets the prior weight of the Smoothed Rate A column
func (m *MatchupManager) WithSmoothing(smoothing float64) *MatchupManager {
	m.smoothing = smoothing
	return m
}

// TableSheetName returns the tab name used for a season's table
func (m *MatchupManager) TableSheetName(season string) string {
	return fmt.Sprintf("Matchups - %s", season)
}

// ReportSheetName returns the tab name used for a player's report
func (m *MatchupManager) ReportSheetName(tag string) string {
	return fmt.Sprintf("Report - %s", tag)
}

// ExportTable replaces the contents of sheetName with one row per pair
func (m *MatchupManager) ExportTable(ctx context.Context, spreadsheetID, sheetName string, table *matchup.Table) error {
	rows := make([][]interface{}, 0, table.Len()+1)
	rows = append(rows, tableHeaders)
	for _, p := range table.Pairs() {
		rows = append(rows, m.ConvertPairToRow(table, p))
	}

	if err := m.replaceSheet(ctx, spreadsheetID, sheetName, rows, "G"); err != nil {
		return fmt.Errorf("failed to export table: %w", err)
	}

	log.Info().
		Str("sheet_name", sheetName).
		Int("pairs", table.Len()).
		Msg("Exported matchup table to sheet")

	return nil
}

// ConvertPairToRow converts one pair to a sheet row. The raw rate cell is
// empty for unobserved pairs.
func (m *MatchupManager) ConvertPairToRow(table *matchup.Table, p matchup.Pair) []interface{} {
	tally, _ := table.Tally(p)

	var rate interface{} = ""
	if r, ok := table.WinRate(p.A, p.B); ok {
		rate = r
	}

	smoothed := table.SmoothedWinRate(p.A, p.B, m.smoothing)
	return []interface{}{string(p.A), string(p.B), tally.WinsA, tally.WinsB, tally.Games, rate, smoothed}
}

// ExportReport replaces the contents of sheetName with the report rows
func (m *MatchupManager) ExportReport(ctx context.Context, spreadsheetID, sheetName string, report matchup.Report) error {
	summaries := make(map[int]matchup.GameSummary, len(report.Games))
	for _, game := range report.Games {
		summaries[game.Game] = game
	}

	rows := make([][]interface{}, 0, len(report.Rows)+1)
	rows = append(rows, reportHeaders)
	for _, row := range report.Rows {
		rows = append(rows, m.ConvertReportRow(row, summaries[row.Game]))
	}

	if err := m.replaceSheet(ctx, spreadsheetID, sheetName, rows, "J"); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}

	log.Info().
		Str("sheet_name", sheetName).
		Int("games", len(report.Games)).
		Int("rows", len(report.Rows)).
		Msg("Exported matchup report to sheet")

	return nil
}

// ConvertReportRow converts a report row and its game summary to a sheet row
func (m *MatchupManager) ConvertReportRow(row matchup.ReportRow, summary matchup.GameSummary) []interface{} {
	var rate, smoothed interface{} = matchup.InsufficientData, matchup.InsufficientData
	if row.Sufficient {
		rate, smoothed = row.Rate, row.Smoothed
	}

	var expected interface{} = matchup.InsufficientData
	if summary.SufficientPairs > 0 {
		expected = summary.ExpectedRate
	}

	return []interface{}{
		row.Game + 1,
		row.GameID,
		row.Result.String(),
		string(row.Card),
		string(row.Opponent),
		rate,
		smoothed,
		row.Games,
		expected,
		summary.Flag.String(),
	}
}

// ImportTable rebuilds a table from a tab written by ExportTable
func (m *MatchupManager) ImportTable(ctx context.Context, spreadsheetID, sheetName string) (*matchup.Table, error) {
	var values [][]interface{}
	err := m.withRetry(ctx, "read table", func() error {
		var err error
		values, err = m.api.ReadSheet(ctx, spreadsheetID, fmt.Sprintf("'%s'!A:G", sheetName))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read table sheet: %w", err)
	}

	table := matchup.NewTable()
	for i, row := range values {
		if i == 0 && len(row) > 0 && NewCell(row[0]).String() == tableHeaders[0] {
			continue
		}
		if len(row) == 0 || NewCell(row[0]).IsEmpty() {
			continue
		}

		pair, tally, err := parseTableRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if err := table.Insert(pair, tally); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	log.Info().
		Str("sheet_name", sheetName).
		Int("pairs", table.Len()).
		Msg("Imported matchup table from sheet")

	return table, nil
}

func parseTableRow(row []interface{}) (matchup.Pair, matchup.Tally, error) {
	if len(row) < 5 {
		return matchup.Pair{}, matchup.Tally{}, fmt.Errorf("expected at least 5 columns, got %d", len(row))
	}

	counts := make([]int, 3)
	for i := range counts {
		value, ok := NewCell(row[2+i]).Int()
		if !ok {
			return matchup.Pair{}, matchup.Tally{}, fmt.Errorf("invalid %s value '%s'", tableHeaders[2+i], NewCell(row[2+i]).String())
		}
		counts[i] = value
	}

	// The rate columns are derived, but a filled one must still be a rate
	for i := 5; i < len(row) && i < len(tableHeaders); i++ {
		cell := NewCell(row[i])
		if cell.IsEmpty() {
			continue
		}
		if rate, ok := cell.Float64(); !ok || rate < 0 || rate > 1 {
			return matchup.Pair{}, matchup.Tally{}, fmt.Errorf("invalid %s value '%s'", tableHeaders[i], cell.String())
		}
	}

	pair := matchup.Pair{
		A: match.NormalizeCard(NewCell(row[0]).String()),
		B: match.NormalizeCard(NewCell(row[1]).String()),
	}
	return pair, matchup.Tally{WinsA: counts[0], WinsB: counts[1], Games: counts[2]}, nil
}

// replaceSheet makes sure the tab exists and is large enough, clears it and
// writes rows starting at A1
func (m *MatchupManager) replaceSheet(ctx context.Context, spreadsheetID, sheetName string, rows [][]interface{}, lastCol string) error {
	err := m.withRetry(ctx, "ensure sheet", func() error {
		exists, err := m.api.SheetExists(ctx, spreadsheetID, sheetName)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		log.Info().Str("sheet_name", sheetName).Msg("Creating sheet")
		return m.api.CreateSheet(ctx, spreadsheetID, sheetName)
	})
	if err != nil {
		return err
	}

	err = m.withRetry(ctx, "ensure capacity", func() error {
		return m.api.EnsureSheetCapacity(ctx, spreadsheetID, sheetName, len(rows), len(rows[0]))
	})
	if err != nil {
		return err
	}

	err = m.withRetry(ctx, "clear sheet", func() error {
		return m.api.ClearRange(ctx, spreadsheetID, fmt.Sprintf("'%s'!A:%s", sheetName, lastCol))
	})
	if err != nil {
		return err
	}

	return m.withRetry(ctx, "write sheet", func() error {
		return m.api.UpdateRange(ctx, spreadsheetID, fmt.Sprintf("'%s'!A1:%s%d", sheetName, lastCol, len(rows)), rows)
	})
}

func (m *MatchupManager) withRetry(ctx context.Context, operation string, fn func() error) error {
	attempts := m.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		wait := m.retry.Backoff(attempt)
		log.Warn().
			Err(err).
			Str("operation", operation).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("Sheet operation failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, err)
}
