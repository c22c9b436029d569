package analyzer

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/Athena-GenAI/api-testing/config"
	"github.com/Athena-GenAI/api-testing/models"
)

func testAggregator() *Aggregator {
	return NewAggregator(config.AggregationConfig{
		MinSampleSize:  5,
		MaxResults:     6,
		PriorityTokens: []string{"BTC", "ETH", "SOL"},
	}, nil)
}

// makePositions builds long+short positions for a token, each from a
// distinct account.
func makePositions(token string, long, short int) []models.Position {
	var out []models.Position
	for i := 0; i < long; i++ {
		out = append(out, models.Position{
			Account:    fmt.Sprintf("0xlong%s%d", token, i),
			Protocol:   "GMX",
			IndexToken: token,
			IsLong:     true,
		})
	}
	for i := 0; i < short; i++ {
		out = append(out, models.Position{
			Account:    fmt.Sprintf("0xshort%s%d", token, i),
			Protocol:   "HYPERLIQUID",
			IndexToken: token,
			IsLong:     false,
		})
	}
	return out
}

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"BTC", "BTC"},
		{"btc", "BTC"},
		{"WBTC", "BTC"},
		{"HYPERLIQUID-BTC", "BTC"},
		{"WETH", "ETH"},
		{"GNS-ETH", "ETH"},
		{"WSOL", "SOL"},
		{"DOGE", "DOGE"},
		{"PEPE", "PEPE"},
		{"0x2f2a2543B76A4166549F7aaB2e75Bef0aefC5B0f", "BTC"},  // WBTC contract
		{"0x912CE59144191C1204E64559FE8253a0e49E6548", "ARB"},  // known contract
		{"0x000000000000000000000000000000000000dead", "0X000000000000000000000000000000000000DEAD"}, // unknown contract passes through
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := NormalizeToken(tt.raw, DefaultSymbolLookup)
			if got != tt.want {
				t.Errorf("NormalizeToken(%q) = %q, want %q", tt.raw, got, tt.want)
			}
			// Idempotence: normalizing a normalized token is a no-op.
			if again := NormalizeToken(got, DefaultSymbolLookup); again != got {
				t.Errorf("not idempotent: NormalizeToken(%q) = %q", got, again)
			}
		})
	}
}

func TestAggregateMinimumSampleSize(t *testing.T) {
	agg := testAggregator()

	out := agg.Aggregate(makePositions("DOGE", 2, 2)) // 4 total
	if len(out) != 0 {
		t.Errorf("token with 4 positions must be dropped, got %+v", out)
	}

	out = agg.Aggregate(makePositions("DOGE", 3, 2)) // 5 total
	if len(out) != 1 || out[0].Token != "DOGE" {
		t.Errorf("token with 5 positions must appear, got %+v", out)
	}
}

func TestAggregatePercentagesAndDominantSide(t *testing.T) {
	agg := testAggregator()

	tests := []struct {
		name     string
		long     int
		short    int
		wantSide models.Side
		wantPct  float64
	}{
		{"7 long 3 short", 7, 3, models.SideLong, 70},
		{"5 long 5 short", 5, 5, models.SideNeutral, 50},
		{"3 long 7 short", 3, 7, models.SideShort, 70},
		{"2 long 4 short", 2, 4, models.SideShort, 66.67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := agg.Aggregate(makePositions("BTC", tt.long, tt.short))
			if len(out) != 1 {
				t.Fatalf("want 1 aggregate, got %d", len(out))
			}
			got := out[0]
			if got.DominantSide != tt.wantSide {
				t.Errorf("dominant side = %s, want %s", got.DominantSide, tt.wantSide)
			}
			if got.DominantPercentage != tt.wantPct {
				t.Errorf("dominant percentage = %v, want %v", got.DominantPercentage, tt.wantPct)
			}
			if got.TotalCount != tt.long+tt.short {
				t.Errorf("total = %d, want %d", got.TotalCount, tt.long+tt.short)
			}
		})
	}
}

func TestAggregatePriorityOrdering(t *testing.T) {
	agg := testAggregator()

	var positions []models.Position
	positions = append(positions, makePositions("SOL", 15, 5)...)  // 20 total
	positions = append(positions, makePositions("BTC", 3, 2)...)   // 5 total
	positions = append(positions, makePositions("ETH", 4, 1)...)   // 5 total
	positions = append(positions, makePositions("DOGE", 60, 40)...) // 100 total

	out := agg.Aggregate(positions)

	var order []string
	for _, a := range out {
		order = append(order, a.Token)
	}
	want := []string{"BTC", "ETH", "SOL", "DOGE"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestAggregateOutputBound(t *testing.T) {
	agg := testAggregator()

	var positions []models.Position
	positions = append(positions, makePositions("BTC", 5, 1)...)
	positions = append(positions, makePositions("ETH", 5, 1)...)
	positions = append(positions, makePositions("SOL", 5, 1)...)
	for i := 0; i < 10; i++ {
		// Ten qualifying non-priority tokens with distinct volumes.
		positions = append(positions, makePositions(fmt.Sprintf("ALT%d", i), 5+i, 1)...)
	}

	out := agg.Aggregate(positions)
	if len(out) != 6 {
		t.Fatalf("output length = %d, want 6", len(out))
	}
	// Three priority slots plus the three highest-volume alts.
	if out[0].Token != "BTC" || out[1].Token != "ETH" || out[2].Token != "SOL" {
		t.Errorf("priority slots wrong: %v %v %v", out[0].Token, out[1].Token, out[2].Token)
	}
	wantAlts := []string{"ALT9", "ALT8", "ALT7"}
	for i, want := range wantAlts {
		if out[3+i].Token != want {
			t.Errorf("slot %d = %s, want %s", 3+i, out[3+i].Token, want)
		}
	}
}

func TestAggregateCollapsesAliasesIntoOneBucket(t *testing.T) {
	agg := testAggregator()

	var positions []models.Position
	positions = append(positions, makePositions("WBTC", 2, 0)...)
	positions = append(positions, makePositions("HYPERLIQUID-BTC", 2, 0)...)
	positions = append(positions, makePositions("BTC", 1, 0)...)

	out := agg.Aggregate(positions)
	if len(out) != 1 {
		t.Fatalf("want one merged BTC bucket, got %+v", out)
	}
	if out[0].Token != "BTC" || out[0].TotalCount != 5 || out[0].LongCount != 5 {
		t.Errorf("merged bucket wrong: %+v", out[0])
	}
}

func TestAggregateTracksTradersAndProtocols(t *testing.T) {
	agg := testAggregator()

	positions := []models.Position{
		{Account: "0xAAA", Protocol: "GMX", IndexToken: "BTC", IsLong: true},
		{Account: "0xaaa", Protocol: "GMX", IndexToken: "BTC", IsLong: true}, // same trader, different case
		{Account: "0xBBB", Protocol: "KWENTA", IndexToken: "BTC", IsLong: true},
		{Account: "0xCCC", Protocol: "GMX", IndexToken: "BTC", IsLong: false},
		{Account: "0xDDD", Protocol: "DYDX", IndexToken: "BTC", IsLong: false},
	}

	out := agg.Aggregate(positions)
	if len(out) != 1 {
		t.Fatalf("want 1 aggregate, got %d", len(out))
	}
	if out[0].UniqueTraders != 4 {
		t.Errorf("unique traders = %d, want 4 (case-insensitive)", out[0].UniqueTraders)
	}
	want := []string{"DYDX", "GMX", "KWENTA"}
	if !reflect.DeepEqual(out[0].Protocols, want) {
		t.Errorf("protocols = %v, want %v", out[0].Protocols, want)
	}
}
