package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Athena-GenAI/api-testing/config"
)

func boolPtr(b bool) *bool { return &b }

func TestResolveDirectionPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		raw      rawPosition
		wantLong bool
	}{
		// type wins over everything
		{"type long beats side short and isLong false", rawPosition{Type: "LONG", Side: "SHORT", IsLong: boolPtr(false)}, true},
		{"type short beats side long and isLong true", rawPosition{Type: "SHORT", Side: "LONG", IsLong: boolPtr(true)}, false},
		{"type long, side absent, isLong false", rawPosition{Type: "LONG", IsLong: boolPtr(false)}, true},
		{"type short, side long, isLong absent", rawPosition{Type: "SHORT", Side: "LONG"}, false},
		{"type long alone", rawPosition{Type: "LONG"}, true},
		{"type short alone", rawPosition{Type: "SHORT"}, false},
		// side wins when type is absent
		{"side long beats isLong false", rawPosition{Side: "LONG", IsLong: boolPtr(false)}, true},
		{"side short beats isLong true", rawPosition{Side: "SHORT", IsLong: boolPtr(true)}, false},
		{"side long alone", rawPosition{Side: "LONG"}, true},
		// isLong used when type and side are absent
		{"isLong true alone", rawPosition{IsLong: boolPtr(true)}, true},
		{"isLong false alone", rawPosition{IsLong: boolPtr(false)}, false},
		// explicit default when every field is absent
		{"all absent defaults to short", rawPosition{}, false},
		// unrecognized values fall through to the next field
		{"garbage type falls through to side", rawPosition{Type: "FLAT", Side: "LONG"}, true},
		{"lowercase type still counts", rawPosition{Type: "long", Side: "SHORT"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveDirection(tt.raw); got != tt.wantLong {
				t.Errorf("resolveDirection() = %v, want %v", got, tt.wantLong)
			}
		})
	}
}

func TestFlexFloat(t *testing.T) {
	tests := []struct {
		name string
		json string
		want float64
	}{
		{"number", `{"size": 1250.5}`, 1250.5},
		{"numeric string", `{"size": "1250.5"}`, 1250.5},
		{"garbage string defaults to zero", `{"size": "n/a"}`, 0},
		{"null defaults to zero", `{"size": null}`, 0},
		{"absent defaults to zero", `{}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw rawPosition
			if err := json.Unmarshal([]byte(tt.json), &raw); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if float64(raw.Size) != tt.want {
				t.Errorf("size = %v, want %v", raw.Size, tt.want)
			}
		})
	}
}

func TestEndpointForProtocol(t *testing.T) {
	tests := []struct {
		protocol string
		want     string
	}{
		{"GMX", "gmx-arbitrum"},
		{"GMX_V2", "gmx-v2"},
		{"DYDX", "dydx"},
		{"HYPERLIQUID", "hyperliquid"}, // lowercase fallback
		{"Kwenta", "kwenta"},
	}

	for _, tt := range tests {
		if got := EndpointForProtocol(tt.protocol); got != tt.want {
			t.Errorf("EndpointForProtocol(%q) = %q, want %q", tt.protocol, got, tt.want)
		}
	}
}

func TestWalletMatchesProtocol(t *testing.T) {
	evmWallet := "0x0171d947ee6ce0f487490bD4f8D89878FF2d88BA"
	dydxWallet := "dydx1z7lqhru3k0ne6e6gzrc6a2m6cury2gdnms9rdn"

	tests := []struct {
		name     string
		wallet   string
		protocol string
		want     bool
	}{
		{"evm wallet on evm protocol", evmWallet, "GMX", true},
		{"evm wallet on dydx protocol", evmWallet, "DYDX", false},
		{"dydx wallet on dydx protocol", dydxWallet, "DYDX", true},
		{"dydx wallet on evm protocol", dydxWallet, "GMX", false},
		{"garbage wallet on evm protocol", "not-an-address", "GMX", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WalletMatchesProtocol(tt.wallet, tt.protocol); got != tt.want {
				t.Errorf("WalletMatchesProtocol(%q, %q) = %v, want %v", tt.wallet, tt.protocol, got, tt.want)
			}
		})
	}
}

func TestFetchPositionsPaginates(t *testing.T) {
	const total = 250
	wallet := "0x0171d947ee6ce0f487490bD4f8D89878FF2d88BA"
	requests := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/gmx-arbitrum/position/filter" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req filterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Queries[0].FieldName != "status" || req.Queries[0].Value != "OPEN" {
			t.Errorf("missing status=OPEN query: %+v", req.Queries)
		}
		if req.Queries[1].Value != wallet {
			t.Errorf("missing account query: %+v", req.Queries)
		}

		count := req.Pagination.Limit
		if req.Pagination.Offset+count > total {
			count = total - req.Pagination.Offset
		}
		page := filterResponse{Meta: pageMeta{Limit: req.Pagination.Limit, Offset: req.Pagination.Offset, Total: total}}
		for i := 0; i < count; i++ {
			long := true
			page.Data = append(page.Data, rawPosition{
				Account:    wallet,
				IndexToken: "BTC",
				Status:     "OPEN",
				IsLong:     &long,
			})
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	client := NewClient(config.SourceConfig{
		BaseURL:        srv.URL,
		PageLimit:      100,
		PageDelayMS:    1,
		RetryAttempts:  1,
		RetryBaseMS:    1,
		RetryFactor:    2,
		RequestTimeout: 2000,
	})

	positions, err := client.FetchPositions(context.Background(), wallet, "GMX")
	if err != nil {
		t.Fatalf("FetchPositions: %v", err)
	}
	if len(positions) != total {
		t.Errorf("got %d positions, want %d", len(positions), total)
	}
	if requests != 3 {
		t.Errorf("got %d requests, want 3", requests)
	}
	for _, pos := range positions {
		if pos.Protocol != "GMX" {
			t.Fatalf("protocol not attached: %+v", pos)
		}
	}
}

func TestFetchPositionsDropsClosedAndTokenless(t *testing.T) {
	wallet := "0x0171d947ee6ce0f487490bD4f8D89878FF2d88BA"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		long := true
		page := filterResponse{
			Meta: pageMeta{Limit: 100, Offset: 0, Total: 3},
			Data: []rawPosition{
				{Account: wallet, IndexToken: "BTC", Status: "OPEN", IsLong: &long},
				{Account: wallet, IndexToken: "ETH", Status: "CLOSE", IsLong: &long},
				{Account: wallet, IndexToken: "", Status: "OPEN", IsLong: &long},
			},
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	client := NewClient(config.SourceConfig{
		BaseURL: srv.URL, PageLimit: 100, PageDelayMS: 1,
		RetryAttempts: 1, RetryBaseMS: 1, RetryFactor: 2, RequestTimeout: 2000,
	})

	positions, err := client.FetchPositions(context.Background(), wallet, "GMX")
	if err != nil {
		t.Fatalf("FetchPositions: %v", err)
	}
	if len(positions) != 1 || positions[0].IndexToken != "BTC" {
		t.Errorf("want only the OPEN BTC position, got %+v", positions)
	}
}

func TestFetchPositionsAbsorbsServerError(t *testing.T) {
	wallet := "0x0171d947ee6ce0f487490bD4f8D89878FF2d88BA"
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(config.SourceConfig{
		BaseURL: srv.URL, PageLimit: 100, PageDelayMS: 1,
		RetryAttempts: 3, RetryBaseMS: 1, RetryFactor: 2, RequestTimeout: 2000,
	})

	positions, err := client.FetchPositions(context.Background(), wallet, "GMX")
	if err == nil {
		t.Fatal("want error after exhausted retries")
	}
	if len(positions) != 0 {
		t.Errorf("want no positions, got %d", len(positions))
	}
	if attempts != 3 {
		t.Errorf("want 3 attempts (retry policy), got %d", attempts)
	}
}

func TestFetchPositionsSkipsMismatchedAddressFamily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be issued for a mismatched pair")
	}))
	defer srv.Close()

	client := NewClient(config.SourceConfig{
		BaseURL: srv.URL, PageLimit: 100, PageDelayMS: 1,
		RetryAttempts: 1, RetryBaseMS: 1, RetryFactor: 2, RequestTimeout: 2000,
	})

	positions, err := client.FetchPositions(context.Background(), "dydx1z7lqhru3k0ne6e6gzrc6a2m6cury2gdnms9rdn", "GMX")
	if err != nil {
		t.Fatalf("skip should not error: %v", err)
	}
	if len(positions) != 0 {
		t.Errorf("want empty result, got %d", len(positions))
	}
}
