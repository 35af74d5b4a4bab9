package mocks

import (
	"context"
	"sync"

	"cr_matchup_stats/internal/app"
)

// MockRoyaleClient is a test double for royale.Client. It is safe for use by
// concurrent collectors.
type MockRoyaleClient struct {
	// Responses to return
	CardsResponse      *app.CardsResponse
	TopPlayersResponse []app.RankedPlayer
	BattleLogs         map[string][]app.Battle

	// Errors to return
	CardsError      error
	TopPlayersError error
	BattleLogErrors map[string]error

	// Call tracking
	GetCardsCalled       bool
	GetTopPlayersCalled  bool
	TopPlayersCalledWith struct {
		Season string
		Limit  int
	}
	battleLogCalls []string

	mu sync.Mutex
}

// NewMockRoyaleClient creates a new mock game API client
func NewMockRoyaleClient() *MockRoyaleClient {
	return &MockRoyaleClient{
		BattleLogs:      make(map[string][]app.Battle),
		BattleLogErrors: make(map[string]error),
	}
}

func (m *MockRoyaleClient) GetCards(ctx context.Context) (*app.CardsResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCardsCalled = true
	return m.CardsResponse, m.CardsError
}

func (m *MockRoyaleClient) GetTopPlayers(ctx context.Context, season string, limit int) ([]app.RankedPlayer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetTopPlayersCalled = true
	m.TopPlayersCalledWith.Season = season
	m.TopPlayersCalledWith.Limit = limit

	players := m.TopPlayersResponse
	if limit > 0 && len(players) > limit {
		players = players[:limit]
	}
	return players, m.TopPlayersError
}

func (m *MockRoyaleClient) GetBattleLog(ctx context.Context, tag string) ([]app.Battle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.battleLogCalls = append(m.battleLogCalls, tag)
	if err := m.BattleLogErrors[tag]; err != nil {
		return nil, err
	}
	return m.BattleLogs[tag], nil
}

// BattleLogCalls returns the tags whose battle logs were requested
func (m *MockRoyaleClient) BattleLogCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]string, len(m.battleLogCalls))
	copy(calls, m.battleLogCalls)
	return calls
}

// Reset clears all call tracking and responses
func (m *MockRoyaleClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CardsResponse = nil
	m.TopPlayersResponse = nil
	m.BattleLogs = make(map[string][]app.Battle)

	m.CardsError = nil
	m.TopPlayersError = nil
	m.BattleLogErrors = make(map[string]error)

	m.GetCardsCalled = false
	m.GetTopPlayersCalled = false
	m.TopPlayersCalledWith.Season = ""
	m.TopPlayersCalledWith.Limit = 0
	m.battleLogCalls = nil
}
