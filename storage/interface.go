package storage

import (
	"context"
	"time"

	"github.com/Athena-GenAI/api-testing/models"
)

// Cache is the fast key-value store fronting the aggregation pipeline.
// Read returns (nil, nil) on a miss; a corrupt or unreadable entry is treated
// as a miss by implementations, never as a hard failure of the read path.
type Cache interface {
	Read(ctx context.Context, key string) (*models.CacheEntry, error)
	Write(ctx context.Context, key string, entry models.CacheEntry, ttl time.Duration) error
	Clear(ctx context.Context, key string) error
}

// ArchiveStore receives append-only snapshot copies for audit and replay.
// Only LatestRawSnapshot is ever read back, and only by GET /positions —
// the serving path for aggregates never touches the archive.
type ArchiveStore interface {
	SaveRawSnapshot(ctx context.Context, snapshot models.RawSnapshot) error
	SaveAggregates(ctx context.Context, ts time.Time, aggregates []models.TokenAggregate) error
	LatestRawSnapshot(ctx context.Context) (*models.RawSnapshot, error)
	Close() error
}

// Ensure implementations satisfy the interfaces
var (
	_ Cache        = (*RedisCache)(nil)
	_ Cache        = (*MockCache)(nil)
	_ ArchiveStore = (*PostgresStore)(nil)
	_ ArchiveStore = (*Store)(nil)
	_ ArchiveStore = (*MockStore)(nil)
)

// RawSnapshotKey builds the archive key for a raw positions snapshot,
// e.g. positions/20250114/20250114_153000.json.
func RawSnapshotKey(ts time.Time) string {
	return "positions/" + ts.UTC().Format("20060102") + "/" + ts.UTC().Format("20060102_150405") + ".json"
}

// AggregatesKey builds the archive key for an analyzed snapshot.
func AggregatesKey(ts time.Time) string {
	return "analyzed/" + ts.UTC().Format("20060102") + "/" + ts.UTC().Format("20060102_150405") + ".json"
}
