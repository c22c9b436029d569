package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Athena-GenAI/api-testing/analyzer"
	"github.com/Athena-GenAI/api-testing/config"
	"github.com/Athena-GenAI/api-testing/models"
	"github.com/Athena-GenAI/api-testing/storage"
)

// PositionSource is the orchestrated fetch surface the service depends on,
// satisfied by syncer.Fetcher and by test doubles.
type PositionSource interface {
	FetchAll(ctx context.Context, wallets, protocols []string) ([]models.Position, error)
}

// TokenStats is the envelope served by GET /token-stats.
type TokenStats struct {
	Data        []models.TokenAggregate `json:"data"`
	FromCache   bool                    `json:"from_cache"`
	LastUpdated time.Time               `json:"last_updated"`
}

// Service coordinates the fetch, aggregation, cache, and archive layers.
type Service struct {
	cfg        *config.Config
	source     PositionSource
	cache      storage.Cache
	archive    storage.ArchiveStore
	aggregator *analyzer.Aggregator

	listenerMu sync.Mutex
	listeners  []func(TokenStats)
}

// New creates the service. The aggregator is built from config here so every
// caller computes with the same selection parameters.
func New(cfg *config.Config, source PositionSource, cache storage.Cache, archive storage.ArchiveStore) *Service {
	return &Service{
		cfg:        cfg,
		source:     source,
		cache:      cache,
		archive:    archive,
		aggregator: analyzer.NewAggregator(cfg.Aggregation, nil),
	}
}

// AddRefreshListener registers a callback invoked after every successful
// recompute (scheduled, manual, or read-miss triggered).
func (s *Service) AddRefreshListener(fn func(TokenStats)) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) ttl() time.Duration {
	return time.Duration(s.cfg.Cache.TTLMins) * time.Minute
}

// GetTokenStats serves the bounded aggregate list. Read path: a cache entry
// younger than the TTL is served as-is; a stale or missing entry (or the
// development bypass flag) triggers a synchronous recompute. If recompute
// fails and a stale entry exists, the stale data is served rather than an
// error — the source being down should not blank the API.
func (s *Service) GetTokenStats(ctx context.Context) (*TokenStats, error) {
	var stale *models.CacheEntry

	if !s.cfg.Cache.Bypass {
		entry, err := s.cache.Read(ctx, s.cfg.Cache.Key)
		if err != nil {
			// Cache trouble is a miss, never a failure of the read path.
			log.Printf("[service] cache read failed, recomputing: %v", err)
		} else if entry != nil {
			if time.Since(entry.Timestamp) <= s.ttl() {
				return &TokenStats{Data: entry.Data, FromCache: true, LastUpdated: entry.Timestamp}, nil
			}
			stale = entry
		}
	}

	stats, err := s.recomputeAndStore(ctx, false)
	if err != nil {
		if stale != nil {
			log.Printf("[service] recompute failed, serving stale cache from %s: %v", stale.Timestamp, err)
			return &TokenStats{Data: stale.Data, FromCache: true, LastUpdated: stale.Timestamp}, nil
		}
		return nil, err
	}
	return stats, nil
}

// Refresh runs the recompute-and-store cycle unconditionally. Persistence
// failures propagate so a scheduled run is observably failed.
func (s *Service) Refresh(ctx context.Context) error {
	_, err := s.recomputeAndStore(ctx, true)
	return err
}

// recomputeAndStore fetches, aggregates, caches, and archives one cycle.
// When strictPersist is false (the HTTP read path) persistence errors are
// logged but fresh data is still returned; writes there are a side effect,
// not the point.
func (s *Service) recomputeAndStore(ctx context.Context, strictPersist bool) (*TokenStats, error) {
	positions, err := s.source.FetchAll(ctx, s.cfg.Tracking.Wallets, s.cfg.Tracking.Protocols)
	if err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}

	aggregates := s.aggregator.Aggregate(positions)
	now := time.Now().UTC()
	entry := models.CacheEntry{Timestamp: now, Data: aggregates}

	var persistErr error
	// No physical expiry: staleness is judged against the entry's timestamp on
	// read. An entry that outlives the TTL is what the stale fallback serves
	// when recompute fails, so the store must not evict it.
	if err := s.cache.Write(ctx, s.cfg.Cache.Key, entry, 0); err != nil {
		persistErr = fmt.Errorf("cache write: %w", err)
	}
	if err := s.archive.SaveRawSnapshot(ctx, models.RawSnapshot{Timestamp: now, Positions: positions}); err != nil && persistErr == nil {
		persistErr = fmt.Errorf("archive raw snapshot: %w", err)
	}
	if err := s.archive.SaveAggregates(ctx, now, aggregates); err != nil && persistErr == nil {
		persistErr = fmt.Errorf("archive aggregates: %w", err)
	}

	if persistErr != nil {
		if strictPersist {
			return nil, persistErr
		}
		log.Printf("[service] persist failed (serving fresh data anyway): %v", persistErr)
	}

	stats := TokenStats{Data: aggregates, FromCache: false, LastUpdated: now}
	s.notify(stats)
	return &stats, nil
}

func (s *Service) notify(stats TokenStats) {
	s.listenerMu.Lock()
	listeners := make([]func(TokenStats), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(stats)
	}
}

// ClearCache drops the fast cache entry. The handler decides whether the
// environment allows clearing at all.
func (s *Service) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx, s.cfg.Cache.Key)
}

// LatestPositions returns the most recent archived raw snapshot, or nil when
// nothing has been archived yet.
func (s *Service) LatestPositions(ctx context.Context) (*models.RawSnapshot, error) {
	return s.archive.LatestRawSnapshot(ctx)
}
