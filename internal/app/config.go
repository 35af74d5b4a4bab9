package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultAPIBaseURL is the official Clash Royale API root
const DefaultAPIBaseURL = "https://api.clashroyale.com/v1"

// Config holds application configuration
type Config struct {
	APIKey          string
	APIBaseURL      string
	SpreadsheetID   string
	CredentialsFile string

	BigQueryProject string
	BigQueryDataset string
	BigQueryTable   string

	DeployURL        string
	DeployKeyFile    string
	DeployKnownHosts string

	// Analysis settings, passed explicitly into build and query calls
	MinSampleGames      int
	DrawPolicy          string
	WinrateSmoothing    float64
	IncludeSupportCards bool
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	// Configure logging
	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	switch levelStr {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found; proceeding with existing environment variables.")
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	apiKey := os.Getenv("CR_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("CR_API_KEY environment variable is required")
	}

	config := &Config{
		APIKey:           apiKey,
		APIBaseURL:       envOrDefault("CR_API_BASE_URL", DefaultAPIBaseURL),
		SpreadsheetID:    os.Getenv("SPREADSHEET_ID"),
		CredentialsFile:  envOrDefault("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		BigQueryProject:  os.Getenv("BIGQUERY_PROJECT"),
		BigQueryDataset:  os.Getenv("BIGQUERY_DATASET"),
		BigQueryTable:    envOrDefault("BIGQUERY_TABLE", "card_matchups"),
		DeployURL:        os.Getenv("DEPLOY_URL"),
		DeployKeyFile:    envOrDefault("DEPLOY_KEY_FILE", "deploy.pem"),
		DeployKnownHosts: os.Getenv("DEPLOY_KNOWN_HOSTS"),
		DrawPolicy:       strings.ToLower(envOrDefault("DRAW_POLICY", "exclude")),
	}
	config.APIBaseURL = strings.TrimRight(config.APIBaseURL, "/")

	var err error
	if config.MinSampleGames, err = envInt("MIN_SAMPLE_GAMES", 10); err != nil {
		return nil, err
	}
	if config.MinSampleGames < 0 {
		return nil, fmt.Errorf("MIN_SAMPLE_GAMES must not be negative, got %d", config.MinSampleGames)
	}

	if config.WinrateSmoothing, err = envFloat("WINRATE_SMOOTHING", 1.0); err != nil {
		return nil, err
	}
	if config.WinrateSmoothing < 0 {
		return nil, fmt.Errorf("WINRATE_SMOOTHING must not be negative, got %g", config.WinrateSmoothing)
	}

	if config.IncludeSupportCards, err = envBool("INCLUDE_SUPPORT_CARDS", false); err != nil {
		return nil, err
	}

	switch config.DrawPolicy {
	case "exclude", "count":
	default:
		return nil, fmt.Errorf("DRAW_POLICY must be 'exclude' or 'count', got '%s'", config.DrawPolicy)
	}

	return config, nil
}

// GetRequiredEnv gets an environment variable or exits if not found
func GetRequiredEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatal().Str("key", key).Msg("Required environment variable not set")
	}
	return value
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value '%s': %w", key, raw, err)
	}
	return value, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value '%s': %w", key, raw, err)
	}
	return value, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value '%s': %w", key, raw, err)
	}
	return value, nil
}
