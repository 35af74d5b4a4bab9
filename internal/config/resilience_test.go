package config

import (
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestRetryConfigBackoff(t *testing.T) {
	config := RetryConfig{
		MaxAttempts: 5,
		InitialWait: 1 * time.Second,
		MaxWait:     5 * time.Second,
		Multiplier:  2.0,
	}

	testCases := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second}, // capped
		{10, 5 * time.Second},
	}

	for _, tc := range testCases {
		if got := config.Backoff(tc.attempt); got != tc.expected {
			t.Errorf("Backoff(%d): expected %v, got %v", tc.attempt, tc.expected, got)
		}
	}
}

func TestRetryConfigBackoffWithoutCap(t *testing.T) {
	config := RetryConfig{InitialWait: 100 * time.Millisecond, Multiplier: 3.0}

	if got := config.Backoff(3); got != 900*time.Millisecond {
		t.Errorf("Expected 900ms, got %v", got)
	}
}

func TestRateLimitConfigLimiter(t *testing.T) {
	t.Run("Configured", func(t *testing.T) {
		limiter := RateLimitConfig{RequestsPerSecond: 5, Burst: 2}.Limiter()

		if limiter.Limit() != rate.Limit(5) {
			t.Errorf("Expected limit 5, got %v", limiter.Limit())
		}
		if limiter.Burst() != 2 {
			t.Errorf("Expected burst 2, got %d", limiter.Burst())
		}
	})

	t.Run("Unlimited", func(t *testing.T) {
		limiter := RateLimitConfig{}.Limiter()

		if limiter.Limit() != rate.Inf {
			t.Errorf("Expected infinite limit, got %v", limiter.Limit())
		}
	})

	t.Run("BurstFloor", func(t *testing.T) {
		limiter := RateLimitConfig{RequestsPerSecond: 1}.Limiter()

		if limiter.Burst() != 1 {
			t.Errorf("Expected burst floor of 1, got %d", limiter.Burst())
		}
	})
}

func TestDefaultResilienceConfig(t *testing.T) {
	if DefaultResilienceConfig.APIRequest.MaxAttempts != APIRequestMaxAttempts {
		t.Errorf("Expected APIRequest MaxAttempts %d, got %d", APIRequestMaxAttempts, DefaultResilienceConfig.APIRequest.MaxAttempts)
	}

	if DefaultResilienceConfig.APIRequest.Timeout != APIRequestTimeout {
		t.Errorf("Expected APIRequest Timeout %v, got %v", APIRequestTimeout, DefaultResilienceConfig.APIRequest.Timeout)
	}

	if DefaultResilienceConfig.Export.MaxAttempts != ExportMaxAttempts {
		t.Errorf("Expected Export MaxAttempts %d, got %d", ExportMaxAttempts, DefaultResilienceConfig.Export.MaxAttempts)
	}

	if DefaultResilienceConfig.RateLimit.RequestsPerSecond != APIRequestsPerSecond {
		t.Errorf("Expected RequestsPerSecond %d, got %g", APIRequestsPerSecond, DefaultResilienceConfig.RateLimit.RequestsPerSecond)
	}
}
