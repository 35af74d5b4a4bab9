package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"cr_matchup_stats/internal/domain/match"
	"cr_matchup_stats/internal/domain/matchup"

	"github.com/rs/zerolog/log"
)

// Header is the column layout of a saved table
var Header = []string{"card_a", "card_b", "wins_a", "wins_b", "games", "win_rate_a", "smoothed_rate_a"}

// WriteTable writes one row per canonical pair in sorted order.
// win_rate_a is left empty for unobserved pairs; smoothed_rate_a uses the
// given prior weight and is always present.
func WriteTable(w io.Writer, table *matchup.Table, smoothing float64) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, p := range table.Pairs() {
		tally, _ := table.Tally(p)

		rate := ""
		if r, ok := table.WinRate(p.A, p.B); ok {
			rate = strconv.FormatFloat(r, 'f', 6, 64)
		}

		row := []string{
			string(p.A),
			string(p.B),
			strconv.Itoa(tally.WinsA),
			strconv.Itoa(tally.WinsB),
			strconv.Itoa(tally.Games),
			rate,
			strconv.FormatFloat(table.SmoothedWinRate(p.A, p.B, smoothing), 'f', 6, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write pair %s: %w", p, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadTable restores a table written by WriteTable. The rate columns are
// derived data and are ignored.
func ReadTable(r io.Reader) (*matchup.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Header)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty table file: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, column := range Header {
		if header[i] != column {
			return nil, fmt.Errorf("unexpected column %d: got '%s', expected '%s'", i+1, header[i], column)
		}
	}

	table := matchup.NewTable()
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		pair, tally, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := table.Insert(pair, tally); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}

	return table, nil
}

func parseRow(row []string) (matchup.Pair, matchup.Tally, error) {
	counts := make([]int, 3)
	for i := range counts {
		value, err := strconv.Atoi(row[2+i])
		if err != nil {
			return matchup.Pair{}, matchup.Tally{}, fmt.Errorf("invalid %s '%s': %w", Header[2+i], row[2+i], err)
		}
		counts[i] = value
	}

	pair := matchup.Pair{A: match.NormalizeCard(row[0]), B: match.NormalizeCard(row[1])}
	tally := matchup.Tally{WinsA: counts[0], WinsB: counts[1], Games: counts[2]}
	return pair, tally, nil
}

// SaveTableFile writes the table to path, replacing any existing file only
// once the new content is complete.
func SaveTableFile(path string, table *matchup.Table, smoothing float64) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := WriteTable(tmp, table, smoothing); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move table into place: %w", err)
	}

	log.Info().
		Str("path", path).
		Int("pairs", table.Len()).
		Msg("Saved matchup table")

	return nil
}

// LoadTableFile reads a table saved with SaveTableFile
func LoadTableFile(path string) (*matchup.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table file: %w", err)
	}
	defer file.Close()

	table, err := ReadTable(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	log.Info().
		Str("path", path).
		Int("pairs", table.Len()).
		Msg("Loaded matchup table")

	return table, nil
}

// LoadGamesFile reads a JSON lines dataset of raw games
func LoadGamesFile(path string) ([]match.RawGame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open games file: %w", err)
	}
	defer file.Close()

	return match.ReadRawGames(file)
}

// SaveGamesFile writes raw games as JSON lines so a collection run can be rebuilt offline
func SaveGamesFile(path string, games []match.RawGame) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create games file: %w", err)
	}

	if err := match.WriteRawGames(file, games); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
