package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Athena-GenAI/api-testing/models"
)

func TestArchiveKeys(t *testing.T) {
	ts := time.Date(2025, 1, 14, 15, 30, 0, 0, time.UTC)

	if got, want := RawSnapshotKey(ts), "positions/20250114/20250114_153000.json"; got != want {
		t.Errorf("RawSnapshotKey = %q, want %q", got, want)
	}
	if got, want := AggregatesKey(ts), "analyzed/20250114/20250114_153000.json"; got != want {
		t.Errorf("AggregatesKey = %q, want %q", got, want)
	}

	// Non-UTC timestamps must still produce UTC keys.
	est := time.FixedZone("EST", -5*3600)
	if got := RawSnapshotKey(ts.In(est)); got != RawSnapshotKey(ts) {
		t.Errorf("key differs by timezone: %q", got)
	}
}

func TestMockCacheTTLExpiry(t *testing.T) {
	cache := NewMockCache()
	now := time.Date(2025, 1, 14, 12, 0, 0, 0, time.UTC)
	cache.Now = func() time.Time { return now }

	entry := models.CacheEntry{Timestamp: now, Data: []models.TokenAggregate{{Token: "BTC"}}}
	if err := cache.Write(context.Background(), "k", entry, time.Hour); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := cache.Read(context.Background(), "k")
	if err != nil || got == nil {
		t.Fatalf("read before expiry: %v, %v", got, err)
	}

	now = now.Add(2 * time.Hour)
	got, err = cache.Read(context.Background(), "k")
	if err != nil {
		t.Fatalf("read after expiry: %v", err)
	}
	if got != nil {
		t.Error("expired entry must read as a miss")
	}
}

func TestSQLiteArchiveRoundTrip(t *testing.T) {
	store, err := NewSQLite(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	// Empty archive reads as (nil, nil), not an error.
	snap, err := store.LatestRawSnapshot(ctx)
	if err != nil {
		t.Fatalf("empty latest: %v", err)
	}
	if snap != nil {
		t.Fatalf("empty archive returned %+v", snap)
	}

	first := models.RawSnapshot{
		Timestamp: time.Date(2025, 1, 14, 10, 0, 0, 0, time.UTC),
		Positions: []models.Position{{Account: "0xabc", Protocol: "GMX", IndexToken: "BTC", IsLong: true, Status: "OPEN"}},
	}
	second := models.RawSnapshot{
		Timestamp: time.Date(2025, 1, 14, 11, 0, 0, 0, time.UTC),
		Positions: []models.Position{{Account: "0xdef", Protocol: "KWENTA", IndexToken: "ETH", IsLong: false, Status: "OPEN"}},
	}

	if err := store.SaveRawSnapshot(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := store.SaveRawSnapshot(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}
	// Re-archiving the same timestamp is a silent no-op.
	if err := store.SaveRawSnapshot(ctx, second); err != nil {
		t.Fatalf("duplicate save: %v", err)
	}

	latest, err := store.LatestRawSnapshot(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || len(latest.Positions) != 1 || latest.Positions[0].IndexToken != "ETH" {
		t.Errorf("latest snapshot wrong: %+v", latest)
	}

	if err := store.SaveAggregates(ctx, second.Timestamp, []models.TokenAggregate{{Token: "ETH", TotalCount: 1}}); err != nil {
		t.Fatalf("save aggregates: %v", err)
	}
}
