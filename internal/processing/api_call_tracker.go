package processing

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Endpoint names recorded by the tracker
const (
	EndpointCards     = "cards"
	EndpointRankings  = "rankings"
	EndpointBattleLog = "battlelog"
)

// APICallTracker counts game API calls per endpoint for a run
type APICallTracker struct {
	sessionStart    time.Time
	sessionCalls    int64
	failedCalls     int64
	callsByEndpoint map[string]int64
	mutex           sync.RWMutex
}

// NewAPICallTracker creates a new API call tracker
func NewAPICallTracker() *APICallTracker {
	return &APICallTracker{
		sessionStart:    time.Now(),
		callsByEndpoint: make(map[string]int64),
	}
}

// RecordCall records an API call and whether it failed
func (t *APICallTracker) RecordCall(endpoint string, failed bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.sessionCalls++
	t.callsByEndpoint[endpoint]++
	if failed {
		t.failedCalls++
	}
}

// GetSessionStats returns API call statistics for the current session
func (t *APICallTracker) GetSessionStats() APICallStats {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	duration := time.Since(t.sessionStart)

	endpointCopy := make(map[string]int64, len(t.callsByEndpoint))
	for k, v := range t.callsByEndpoint {
		endpointCopy[k] = v
	}

	stats := APICallStats{
		SessionCalls:    t.sessionCalls,
		FailedCalls:     t.failedCalls,
		SessionDuration: duration,
		CallsByEndpoint: endpointCopy,
	}
	if minutes := duration.Minutes(); minutes > 0 {
		stats.CallsPerMinute = float64(t.sessionCalls) / minutes
	}
	return stats
}

// ResetSession clears all counters and restarts the session clock
func (t *APICallTracker) ResetSession() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.sessionStart = time.Now()
	t.sessionCalls = 0
	t.failedCalls = 0
	t.callsByEndpoint = make(map[string]int64)
}

// LogSessionSummary logs a summary of API usage for the session
func (t *APICallTracker) LogSessionSummary() {
	stats := t.GetSessionStats()

	logEvent := log.Info().
		Int64("session_calls", stats.SessionCalls).
		Int64("failed_calls", stats.FailedCalls).
		Float64("calls_per_minute", stats.CallsPerMinute).
		Dur("session_duration", stats.SessionDuration)

	for endpoint, count := range stats.CallsByEndpoint {
		logEvent = logEvent.Int64(endpoint+"_calls", count)
	}

	logEvent.Msg("API call session summary")
}

// APICallStats represents API call statistics
type APICallStats struct {
	SessionCalls    int64
	FailedCalls     int64
	SessionDuration time.Duration
	CallsByEndpoint map[string]int64
	CallsPerMinute  float64
}

// PredictCallsForCollection estimates the calls a top-N collection needs:
// the card list, the ranking page and one battle log per player.
func PredictCallsForCollection(players int) int64 {
	if players < 0 {
		players = 0
	}
	return 2 + int64(players)
}
