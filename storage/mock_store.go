package storage

import (
	"context"
	"sync"
	"time"

	"github.com/Athena-GenAI/api-testing/models"
)

// MockCache is an in-memory Cache for tests. It honors TTL against an
// injectable clock so staleness tests don't need to sleep.
type MockCache struct {
	mu      sync.Mutex
	entries map[string]mockCacheEntry

	// Now is consulted for expiry checks; defaults to time.Now.
	Now func() time.Time

	// Errors to inject per operation.
	ReadErr  error
	WriteErr error

	Writes int
	Clears int
}

type mockCacheEntry struct {
	entry   models.CacheEntry
	expires time.Time
}

// NewMockCache creates an empty in-memory cache.
func NewMockCache() *MockCache {
	return &MockCache{
		entries: make(map[string]mockCacheEntry),
		Now:     time.Now,
	}
}

// Read returns the stored entry unless it is absent or expired.
func (c *MockCache) Read(ctx context.Context, key string) (*models.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ReadErr != nil {
		return nil, c.ReadErr
	}
	stored, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if !stored.expires.IsZero() && c.Now().After(stored.expires) {
		delete(c.entries, key)
		return nil, nil
	}
	entry := stored.entry
	return &entry, nil
}

// Write replaces the entry at key.
func (c *MockCache) Write(ctx context.Context, key string, entry models.CacheEntry, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.Writes++
	var expires time.Time
	if ttl > 0 {
		expires = c.Now().Add(ttl)
	}
	c.entries[key] = mockCacheEntry{entry: entry, expires: expires}
	return nil
}

// Clear removes the entry at key.
func (c *MockCache) Clear(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Clears++
	delete(c.entries, key)
	return nil
}

// MockStore is an in-memory ArchiveStore for tests.
type MockStore struct {
	mu         sync.Mutex
	raw        []models.RawSnapshot
	aggregates map[string][]models.TokenAggregate

	SaveRawErr error
	SaveAggErr error
}

// NewMockStore creates an empty in-memory archive.
func NewMockStore() *MockStore {
	return &MockStore{aggregates: make(map[string][]models.TokenAggregate)}
}

// SaveRawSnapshot appends a raw snapshot.
func (s *MockStore) SaveRawSnapshot(ctx context.Context, snapshot models.RawSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveRawErr != nil {
		return s.SaveRawErr
	}
	s.raw = append(s.raw, snapshot)
	return nil
}

// SaveAggregates records an analyzed snapshot under its archive key.
func (s *MockStore) SaveAggregates(ctx context.Context, ts time.Time, aggregates []models.TokenAggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveAggErr != nil {
		return s.SaveAggErr
	}
	s.aggregates[AggregatesKey(ts)] = aggregates
	return nil
}

// LatestRawSnapshot returns the last appended raw snapshot.
func (s *MockStore) LatestRawSnapshot(ctx context.Context) (*models.RawSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.raw) == 0 {
		return nil, nil
	}
	snapshot := s.raw[len(s.raw)-1]
	return &snapshot, nil
}

// Close is a no-op.
func (s *MockStore) Close() error { return nil }

// RawCount reports how many raw snapshots were archived.
func (s *MockStore) RawCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.raw)
}

// AggregateCount reports how many analyzed snapshots were archived.
func (s *MockStore) AggregateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.aggregates)
}
