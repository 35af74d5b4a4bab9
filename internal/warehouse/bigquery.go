// Package warehouse appends matchup tables to a BigQuery table so seasons can
// be compared with SQL.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cr_matchup_stats/internal/domain/matchup"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DefaultBatchSize keeps streaming inserts well under the request size limit
const DefaultBatchSize = 500

// Row is one pair of one exported table
type Row struct {
	CardA         string               `bigquery:"card_a"`
	CardB         string               `bigquery:"card_b"`
	WinsA         int                  `bigquery:"wins_a"`
	WinsB         int                  `bigquery:"wins_b"`
	Games         int                  `bigquery:"games"`
	WinRateA      bigquery.NullFloat64 `bigquery:"win_rate_a"`
	SmoothedRateA float64              `bigquery:"smoothed_rate_a"`
	Season        string               `bigquery:"season"`
	ExportedAt    time.Time            `bigquery:"exported_at"`
}

// RowInserter is the streaming insert surface of *bigquery.Inserter
type RowInserter interface {
	Put(ctx context.Context, src interface{}) error
}

// Exporter streams matchup tables into one BigQuery table
type Exporter struct {
	client    *bigquery.Client
	table     *bigquery.Table
	inserter  RowInserter
	batchSize int
	smoothing float64
}

// NewExporter connects to BigQuery with the given service account credentials
func NewExporter(ctx context.Context, projectID, datasetID, tableID, credentialsFile string) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, projectID, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	table := client.Dataset(datasetID).Table(tableID)
	return &Exporter{
		client:    client,
		table:     table,
		inserter:  table.Inserter(),
		batchSize: DefaultBatchSize,
		smoothing: 1,
	}, nil
}

// NewExporterWithInserter builds an exporter that only streams rows, for
// callers that manage the table themselves
func NewExporterWithInserter(inserter RowInserter, batchSize int) *Exporter {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Exporter{inserter: inserter, batchSize: batchSize, smoothing: 1}
}

// WithSmoothing sets the prior weight used for the smoothed_rate_a column
func (e *Exporter) WithSmoothing(smoothing float64) *Exporter {
	e.smoothing = smoothing
	return e
}

// Close releases the underlying client
func (e *Exporter) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

// EnsureTable creates the destination table from the Row schema if missing
func (e *Exporter) EnsureTable(ctx context.Context) error {
	if e.table == nil {
		return nil
	}

	_, err := e.table.Metadata(ctx)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("failed to read table metadata: %w", err)
	}

	schema, err := bigquery.InferSchema(Row{})
	if err != nil {
		return fmt.Errorf("failed to infer schema: %w", err)
	}

	log.Info().
		Str("dataset", e.table.DatasetID).
		Str("table", e.table.TableID).
		Msg("Creating bigquery table")

	if err := e.table.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

// Rows converts a table to warehouse rows in pair order
func Rows(table *matchup.Table, season string, smoothing float64, exportedAt time.Time) []*Row {
	pairs := table.Pairs()
	rows := make([]*Row, 0, len(pairs))
	for _, p := range pairs {
		tally, _ := table.Tally(p)
		row := &Row{
			CardA:         string(p.A),
			CardB:         string(p.B),
			WinsA:         tally.WinsA,
			WinsB:         tally.WinsB,
			Games:         tally.Games,
			SmoothedRateA: table.SmoothedWinRate(p.A, p.B, smoothing),
			Season:        season,
			ExportedAt:    exportedAt.UTC(),
		}
		if rate, ok := table.WinRate(p.A, p.B); ok {
			row.WinRateA = bigquery.NullFloat64{Float64: rate, Valid: true}
		}
		rows = append(rows, row)
	}
	return rows
}

// ExportTable appends every pair of table, tagged with season, in batches
func (e *Exporter) ExportTable(ctx context.Context, season string, table *matchup.Table) error {
	rows := Rows(table, season, e.smoothing, time.Now())

	for start := 0; start < len(rows); start += e.batchSize {
		end := start + e.batchSize
		if end > len(rows) {
			end = len(rows)
		}

		if err := e.inserter.Put(ctx, rows[start:end]); err != nil {
			return fmt.Errorf("failed to insert rows %d-%d: %w", start, end-1, err)
		}
	}

	log.Info().
		Str("season", season).
		Int("rows", len(rows)).
		Msg("Exported matchup table to bigquery")

	return nil
}
