package app

import (
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

var configEnvKeys = []string{
	"CR_API_KEY",
	"CR_API_BASE_URL",
	"SPREADSHEET_ID",
	"GOOGLE_CREDENTIALS_FILE",
	"BIGQUERY_TABLE",
	"MIN_SAMPLE_GAMES",
	"DRAW_POLICY",
	"WINRATE_SMOOTHING",
	"INCLUDE_SUPPORT_CARDS",
}

func TestLoadConfig(t *testing.T) {
	// Save original environment
	original := make(map[string]string)
	for _, key := range configEnvKeys {
		original[key] = os.Getenv(key)
	}

	// Cleanup function
	defer func() {
		for key, value := range original {
			setOrUnset(key, value)
		}
	}()

	reset := func() {
		for _, key := range configEnvKeys {
			os.Unsetenv(key)
		}
	}

	t.Run("ValidConfiguration", func(t *testing.T) {
		reset()
		os.Setenv("CR_API_KEY", "test_api_key")
		os.Setenv("CR_API_BASE_URL", "https://proxy.royaleapi.dev/v1/")
		os.Setenv("SPREADSHEET_ID", "test_spreadsheet_id")
		os.Setenv("MIN_SAMPLE_GAMES", "25")
		os.Setenv("DRAW_POLICY", "COUNT")
		os.Setenv("WINRATE_SMOOTHING", "2.5")
		os.Setenv("INCLUDE_SUPPORT_CARDS", "true")

		config, err := LoadConfig()

		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if config.APIKey != "test_api_key" {
			t.Errorf("Expected APIKey to be 'test_api_key', got '%s'", config.APIKey)
		}

		if config.APIBaseURL != "https://proxy.royaleapi.dev/v1" {
			t.Errorf("Expected trailing slash to be trimmed, got '%s'", config.APIBaseURL)
		}

		if config.SpreadsheetID != "test_spreadsheet_id" {
			t.Errorf("Expected SpreadsheetID to be 'test_spreadsheet_id', got '%s'", config.SpreadsheetID)
		}

		if config.MinSampleGames != 25 {
			t.Errorf("Expected MinSampleGames 25, got %d", config.MinSampleGames)
		}

		if config.DrawPolicy != "count" {
			t.Errorf("Expected DrawPolicy 'count', got '%s'", config.DrawPolicy)
		}

		if config.WinrateSmoothing != 2.5 {
			t.Errorf("Expected WinrateSmoothing 2.5, got %g", config.WinrateSmoothing)
		}

		if !config.IncludeSupportCards {
			t.Error("Expected IncludeSupportCards to be true")
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		reset()
		os.Setenv("CR_API_KEY", "test_api_key")

		config, err := LoadConfig()

		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if config.APIBaseURL != DefaultAPIBaseURL {
			t.Errorf("Expected APIBaseURL to default to '%s', got '%s'", DefaultAPIBaseURL, config.APIBaseURL)
		}

		if config.CredentialsFile != "credentials.json" {
			t.Errorf("Expected CredentialsFile to default to 'credentials.json', got '%s'", config.CredentialsFile)
		}

		if config.BigQueryTable != "card_matchups" {
			t.Errorf("Expected BigQueryTable to default to 'card_matchups', got '%s'", config.BigQueryTable)
		}

		if config.MinSampleGames != 10 {
			t.Errorf("Expected MinSampleGames to default to 10, got %d", config.MinSampleGames)
		}

		if config.DrawPolicy != "exclude" {
			t.Errorf("Expected DrawPolicy to default to 'exclude', got '%s'", config.DrawPolicy)
		}

		if config.WinrateSmoothing != 1.0 {
			t.Errorf("Expected WinrateSmoothing to default to 1, got %g", config.WinrateSmoothing)
		}
	})

	t.Run("MissingAPIKey", func(t *testing.T) {
		reset()

		_, err := LoadConfig()

		if err == nil {
			t.Fatal("Expected error for missing CR_API_KEY, got nil")
		}

		if !strings.Contains(err.Error(), "CR_API_KEY") {
			t.Errorf("Expected error message to contain 'CR_API_KEY', got '%s'", err.Error())
		}
	})

	invalidCases := []struct {
		name  string
		key   string
		value string
	}{
		{"NonNumericMinGames", "MIN_SAMPLE_GAMES", "lots"},
		{"NegativeMinGames", "MIN_SAMPLE_GAMES", "-1"},
		{"NonNumericSmoothing", "WINRATE_SMOOTHING", "abc"},
		{"NegativeSmoothing", "WINRATE_SMOOTHING", "-0.5"},
		{"UnknownDrawPolicy", "DRAW_POLICY", "split"},
		{"InvalidSupportFlag", "INCLUDE_SUPPORT_CARDS", "maybe"},
	}

	for _, tc := range invalidCases {
		t.Run(tc.name, func(t *testing.T) {
			reset()
			os.Setenv("CR_API_KEY", "test_api_key")
			os.Setenv(tc.key, tc.value)

			_, err := LoadConfig()

			if err == nil {
				t.Fatalf("Expected error for %s=%s, got nil", tc.key, tc.value)
			}

			if !strings.Contains(err.Error(), tc.key) {
				t.Errorf("Expected error message to contain '%s', got '%s'", tc.key, err.Error())
			}
		})
	}
}

func TestSetupEnvironment(t *testing.T) {
	// Save original environment
	originalENV := os.Getenv("ENV")
	originalLOGLEVEL := os.Getenv("LOGLEVEL")
	originalLevel := zerolog.GlobalLevel()

	// Cleanup function
	defer func() {
		setOrUnset("ENV", originalENV)
		setOrUnset("LOGLEVEL", originalLOGLEVEL)
		zerolog.SetGlobalLevel(originalLevel)
	}()

	testCases := []struct {
		name          string
		env           string
		logLevel      string
		expectedLevel zerolog.Level
	}{
		{"ProductionDebug", "production", "debug", zerolog.DebugLevel},
		{"ProductionWarning", "production", "warning", zerolog.WarnLevel},
		{"ProductionError", "production", "error", zerolog.ErrorLevel},
		{"ProductionDisabled", "production", "disabled", zerolog.Disabled},
		{"ProductionDefault", "production", "", zerolog.WarnLevel},
		{"ProductionUnknown", "production", "unknown", zerolog.InfoLevel},
		{"DevelopmentDebug", "development", "debug", zerolog.DebugLevel},
		{"DevelopmentDefault", "development", "", zerolog.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setOrUnset("ENV", tc.env)
			setOrUnset("LOGLEVEL", tc.logLevel)

			SetupEnvironment()

			if zerolog.GlobalLevel() != tc.expectedLevel {
				t.Errorf("Expected log level %v, got %v", tc.expectedLevel, zerolog.GlobalLevel())
			}
		})
	}
}

func TestGetRequiredEnv(t *testing.T) {
	originalValue := os.Getenv("TEST_REQUIRED_VAR")
	defer setOrUnset("TEST_REQUIRED_VAR", originalValue)

	os.Setenv("TEST_REQUIRED_VAR", "test_value")

	if value := GetRequiredEnv("TEST_REQUIRED_VAR"); value != "test_value" {
		t.Errorf("Expected 'test_value', got '%s'", value)
	}
}

// Helper function to set environment variable or unset if value is empty
func setOrUnset(key, value string) {
	if value == "" {
		os.Unsetenv(key)
	} else {
		os.Setenv(key, value)
	}
}
