package models

import "time"

// Side is the resolved direction of a position or token aggregate.
type Side string

const (
	SideLong    Side = "LONG"
	SideShort   Side = "SHORT"
	SideNeutral Side = "NEUTRAL"
)

// Position is one open trade, normalized from the Copin API. Direction is
// resolved exactly once at the API boundary; the raw type/side/isLong fields
// never travel past it.
type Position struct {
	Account       string  `json:"account"`
	Protocol      string  `json:"protocol"`
	IndexToken    string  `json:"indexToken"`
	Size          float64 `json:"size"`
	Leverage      float64 `json:"leverage"`
	PnL           float64 `json:"pnl"`
	IsLong        bool    `json:"isLong"`
	OpenBlockTime string  `json:"openBlockTime"`
	Status        string  `json:"status"`
}

// TokenAggregate is the per-token rollup of long/short counts produced by one
// aggregation cycle.
type TokenAggregate struct {
	Token              string   `json:"token"`
	LongCount          int      `json:"long_count"`
	ShortCount         int      `json:"short_count"`
	TotalCount         int      `json:"total_positions"`
	DominantSide       Side     `json:"position"`
	DominantPercentage float64  `json:"percentage"`
	UniqueTraders      int      `json:"unique_traders"`
	Protocols          []string `json:"protocols"`
}

// CacheEntry is the full cached payload; it is always written and replaced as
// one JSON blob, never updated in place.
type CacheEntry struct {
	Timestamp time.Time        `json:"timestamp"`
	Data      []TokenAggregate `json:"data"`
}

// RawSnapshot is an archived copy of the positions backing one aggregation
// cycle. The serving path never reads these; they exist for audit and replay.
type RawSnapshot struct {
	Timestamp time.Time  `json:"timestamp"`
	Positions []Position `json:"positions"`
}
