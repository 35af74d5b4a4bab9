package config

import (
	"time"

	"golang.org/x/time/rate"
)

// Retry configuration constants
const (
	// API Request retry configuration
	APIRequestMaxAttempts       = 3
	APIRequestInitialWait       = 1 * time.Second
	APIRequestMaxWait           = 10 * time.Second
	APIRequestBackoffMultiplier = 2.0
	APIRequestTimeout           = 30 * time.Second

	// Export (sheets, bigquery, scp) retry configuration
	ExportMaxAttempts       = 3
	ExportInitialWait       = 1 * time.Second
	ExportMaxWait           = 10 * time.Second
	ExportBackoffMultiplier = 2.0
	ExportTimeout           = 60 * time.Second

	// Requests per second allowed against the game API.
	// Developer keys are throttled well above this, but top-N collection
	// issues hundreds of battle log requests back to back.
	APIRequestsPerSecond = 5
	APIRequestBurst      = 5
)

// RetryConfig defines retry behavior for operations
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
	Timeout     time.Duration
}

// Backoff returns the wait before the given retry attempt (1-based),
// growing by Multiplier and capped at MaxWait.
func (r RetryConfig) Backoff(attempt int) time.Duration {
	if attempt <= 1 {
		return r.InitialWait
	}

	wait := float64(r.InitialWait)
	for i := 1; i < attempt; i++ {
		wait *= r.Multiplier
		if r.MaxWait > 0 && time.Duration(wait) >= r.MaxWait {
			return r.MaxWait
		}
	}
	return time.Duration(wait)
}

// RateLimitConfig defines the outbound request budget
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Limiter builds a token bucket limiter for the configured budget
func (r RateLimitConfig) Limiter() *rate.Limiter {
	if r.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := r.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(r.RequestsPerSecond), burst)
}

// ResilienceConfig contains all retry configurations
type ResilienceConfig struct {
	APIRequest RetryConfig
	Export     RetryConfig
	RateLimit  RateLimitConfig
}

// DefaultResilienceConfig provides sensible defaults
var DefaultResilienceConfig = ResilienceConfig{
	APIRequest: RetryConfig{
		MaxAttempts: APIRequestMaxAttempts,
		InitialWait: APIRequestInitialWait,
		MaxWait:     APIRequestMaxWait,
		Multiplier:  APIRequestBackoffMultiplier,
		Timeout:     APIRequestTimeout,
	},
	Export: RetryConfig{
		MaxAttempts: ExportMaxAttempts,
		InitialWait: ExportInitialWait,
		MaxWait:     ExportMaxWait,
		Multiplier:  ExportBackoffMultiplier,
		Timeout:     ExportTimeout,
	},
	RateLimit: RateLimitConfig{
		RequestsPerSecond: APIRequestsPerSecond,
		Burst:             APIRequestBurst,
	},
}
