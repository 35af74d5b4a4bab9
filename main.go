package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"cr_matchup_stats/internal/app"
	"cr_matchup_stats/internal/deployment"
	"cr_matchup_stats/internal/domain/match"
	"cr_matchup_stats/internal/domain/matchup"
	"cr_matchup_stats/internal/processing"
	"cr_matchup_stats/internal/royale"
	"cr_matchup_stats/internal/sheets"
	"cr_matchup_stats/internal/storage"
	"cr_matchup_stats/internal/warehouse"

	"github.com/rs/zerolog/log"
)

func main() {
	app.SetupEnvironment()

	// Parse command line flags
	season := flag.String("season", "", "Ranked season to collect, e.g. 2026-10")
	players := flag.Int("players", 100, "Number of top players whose battle logs are collected")
	workers := flag.Int("workers", processing.DefaultCollectWorkers, "Concurrent battle log fetches")
	out := flag.String("out", "matchups.csv", "Path the built table is saved to")
	load := flag.String("load", "", "Load a previously saved table instead of building one")
	loadSheet := flag.String("load-sheet", "", "Import the table from this spreadsheet tab instead of building one")
	gamesFile := flag.String("games", "", "Build from a JSON lines games dataset instead of collecting")
	saveGames := flag.String("save-games", "", "Save collected games as JSON lines to this path")
	player := flag.String("player", "", "Player tag whose recent ranked games are compared against the table")
	playerGames := flag.String("player-games", "", "JSON lines file of the player's own games to compare instead of fetching")
	minGames := flag.Int("min-games", -1, "Override MIN_SAMPLE_GAMES")
	toSheets := flag.Bool("sheets", false, "Export the table (and report) to Google Sheets")
	toBigQuery := flag.Bool("bigquery", false, "Append the table to BigQuery")
	deploy := flag.Bool("deploy", false, "Publish the saved table over SCP")
	flag.Parse()

	log.Info().
		Str("season", *season).
		Int("players", *players).
		Str("load", *load).
		Str("load_sheet", *loadSheet).
		Str("games", *gamesFile).
		Str("player", *player).
		Msg("Starting card matchup stats")

	// Load configuration
	config, err := app.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *minGames >= 0 {
		config.MinSampleGames = *minGames
	}

	opts, err := matchup.OptionsFromConfig(config)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid analysis options")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	royaleClient := royale.NewClient(config.APIKey, config.APIBaseURL)
	collector := processing.NewCollector(royaleClient, nil).WithWorkers(*workers)
	tracker := collector.Tracker()

	var catalog *match.Catalog
	needsAPI := *load == "" && *loadSheet == "" && *gamesFile == ""
	if needsAPI || (*player != "" && *playerGames == "") {
		catalog, err = collector.FetchCatalog(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load card catalog")
		}
	}

	// Obtain the table: load it, import it, build it from a dataset, or collect and build
	var table *matchup.Table
	save := false
	switch {
	case *load != "":
		table, err = storage.LoadTableFile(*load)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load table")
		}

	case *loadSheet != "":
		manager, spreadsheetID, err := newMatchupManager(ctx, config, opts)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to sheets")
		}
		table, err = manager.ImportTable(ctx, spreadsheetID, *loadSheet)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to import table from sheet")
		}
		save = true

	case *gamesFile != "":
		raw, err := storage.LoadGamesFile(*gamesFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load games dataset")
		}
		table, _ = processing.BuildTable(raw, catalog, opts)
		save = true

	default:
		if *season == "" {
			log.Fatal().Msg("-season is required when collecting")
		}

		collection, err := collector.Collect(ctx, *season, *players)
		if err != nil {
			if collection == nil || !errors.Is(err, context.Canceled) {
				log.Fatal().Err(err).Msg("Failed to collect games")
			}
			log.Warn().Err(err).Msg("Collection interrupted, building from partial data")
		}

		if *saveGames != "" {
			if err := storage.SaveGamesFile(*saveGames, collection.Games); err != nil {
				log.Error().Err(err).Msg("Failed to save collected games")
			}
		}

		table, _ = processing.BuildTable(collection.Games, catalog, opts)
		save = true
	}

	if save {
		if err := storage.SaveTableFile(*out, table, opts.Smoothing); err != nil {
			log.Fatal().Err(err).Msg("Failed to save table")
		}
	}

	// Optional player report
	var analysis *processing.PlayerAnalysis
	if *player != "" || *playerGames != "" {
		analyzer := processing.NewAnalyzer(royaleClient, tracker, catalog, opts)
		analysis, err = analyzePlayer(ctx, analyzer, table, *player, *playerGames)
		if err != nil {
			log.Error().Err(err).Msg("Failed to analyze player")
		} else if err := analysis.Report.WriteText(os.Stdout); err != nil {
			log.Error().Err(err).Msg("Failed to write report")
		}
	}

	// Exports run independently; one failing does not stop the others
	if *toSheets {
		if err := exportToSheets(ctx, config, opts, *season, table, analysis); err != nil {
			log.Error().Err(err).Msg("Failed to export to sheets")
		}
	}

	if *toBigQuery {
		if err := exportToBigQuery(ctx, config, opts, *season, table); err != nil {
			log.Error().Err(err).Msg("Failed to export to bigquery")
		}
	}

	if *deploy {
		published := *out
		if !save {
			published = *load
		}
		if err := publish(ctx, config, published); err != nil {
			log.Error().Err(err).Msg("Failed to publish table")
		}
	}

	tracker.LogSessionSummary()
	log.Info().
		Int64("api_calls", royaleClient.GetAPICallCount()).
		Int("pairs", table.Len()).
		Msg("Completed run")
}

func analyzePlayer(ctx context.Context, analyzer *processing.Analyzer, table *matchup.Table, tag, gamesPath string) (*processing.PlayerAnalysis, error) {
	if gamesPath != "" {
		raw, err := storage.LoadGamesFile(gamesPath)
		if err != nil {
			return nil, err
		}
		return analyzer.AnalyzeGames(table, tag, raw), nil
	}
	return analyzer.AnalyzePlayer(ctx, table, royale.NormalizeTag(tag))
}

func newMatchupManager(ctx context.Context, config *app.Config, opts matchup.Options) (*sheets.MatchupManager, string, error) {
	spreadsheetID := app.GetRequiredEnv("SPREADSHEET_ID")

	sheetsClient, err := sheets.NewClient(ctx, config.CredentialsFile)
	if err != nil {
		return nil, "", err
	}
	return sheets.NewMatchupManager(sheetsClient).WithSmoothing(opts.Smoothing), spreadsheetID, nil
}

func exportToSheets(ctx context.Context, config *app.Config, opts matchup.Options, season string, table *matchup.Table, analysis *processing.PlayerAnalysis) error {
	manager, spreadsheetID, err := newMatchupManager(ctx, config, opts)
	if err != nil {
		return err
	}

	if season == "" {
		season = "latest"
	}
	if err := manager.ExportTable(ctx, spreadsheetID, manager.TableSheetName(season), table); err != nil {
		return err
	}

	if analysis != nil {
		return manager.ExportReport(ctx, spreadsheetID, manager.ReportSheetName(analysis.Tag), analysis.Report)
	}
	return nil
}

func exportToBigQuery(ctx context.Context, config *app.Config, opts matchup.Options, season string, table *matchup.Table) error {
	exporter, err := warehouse.NewExporter(ctx,
		app.GetRequiredEnv("BIGQUERY_PROJECT"),
		app.GetRequiredEnv("BIGQUERY_DATASET"),
		config.BigQueryTable,
		config.CredentialsFile)
	if err != nil {
		return err
	}
	defer exporter.Close()

	if err := exporter.EnsureTable(ctx); err != nil {
		return err
	}
	return exporter.WithSmoothing(opts.Smoothing).ExportTable(ctx, season, table)
}

func publish(ctx context.Context, config *app.Config, path string) error {
	publisher, err := deployment.NewPublisher(app.GetRequiredEnv("DEPLOY_URL"), config.DeployKeyFile)
	if err != nil {
		return err
	}
	defer publisher.Close()

	if config.DeployKnownHosts != "" {
		publisher.WithKnownHosts(config.DeployKnownHosts)
	}

	if _, err := os.Stat(path); err != nil {
		return err
	}
	return publisher.Publish(ctx, path)
}
