package api

import (
	"context"
	"errors"
	"sync"

	"github.com/Athena-GenAI/api-testing/models"
)

// PositionFetcher is the surface the orchestrator needs from a source client.
// This interface enables dependency injection for testing.
type PositionFetcher interface {
	FetchPositions(ctx context.Context, wallet, protocol string) ([]models.Position, error)
}

// Ensure Client implements PositionFetcher
var _ PositionFetcher = (*Client)(nil)

// Ensure MockClient implements PositionFetcher
var _ PositionFetcher = (*MockClient)(nil)

// MockClient is a canned-response source client for tests.
type MockClient struct {
	mu sync.Mutex

	// Positions keyed by "wallet|protocol". Pairs without an entry fall back
	// to Default.
	Positions map[string][]models.Position
	Default   []models.Position

	// FailPairs simulates source failure for specific pairs.
	FailPairs map[string]bool

	// Hang, when set, blocks a pair's call until the channel closes, for
	// exercising per-call timeouts.
	Hang map[string]chan struct{}

	Calls []string
}

// NewMockClient creates an empty mock source client.
func NewMockClient() *MockClient {
	return &MockClient{
		Positions: make(map[string][]models.Position),
		FailPairs: make(map[string]bool),
		Hang:      make(map[string]chan struct{}),
	}
}

// PairKey builds the lookup key used by the mock's maps.
func PairKey(wallet, protocol string) string {
	return wallet + "|" + protocol
}

// ErrMockFailure is returned for pairs registered in FailPairs.
var ErrMockFailure = errors.New("mock source failure")

// FetchPositions returns the canned positions for the pair.
func (m *MockClient) FetchPositions(ctx context.Context, wallet, protocol string) ([]models.Position, error) {
	key := PairKey(wallet, protocol)

	m.mu.Lock()
	m.Calls = append(m.Calls, key)
	hang := m.Hang[key]
	fail := m.FailPairs[key]
	positions, hasPair := m.Positions[key]
	def := m.Default
	m.mu.Unlock()

	if hang != nil {
		select {
		case <-hang:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, ErrMockFailure
	}
	if hasPair {
		return positions, nil
	}
	return def, nil
}

// CallCount returns how many fetches the mock has served.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
