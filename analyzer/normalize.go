package analyzer

import "strings"

// SymbolLookup resolves a contract address (or other long identifier) to a
// token symbol. Injected so the table can grow without touching aggregation.
type SymbolLookup func(identifier string) (string, bool)

// defaultContractSymbols covers the contract addresses the tracked venues
// commonly report as indexToken instead of a symbol.
var defaultContractSymbols = map[string]string{
	"0x47904963fc8b2340414262125af798b9655e58cd": "BTC",
	"0x2f2a2543b76a4166549f7aab2e75bef0aefc5b0f": "WBTC",
	"0x82af49447d8a07e3bd95bd0d56f35241523fbab1": "WETH",
	"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2": "WETH",
	"0x2260fac5e5542a773aa44fbcfedf7c193bc2c599": "WBTC",
	"0xf97f4df75117a78c1a5a0dbb814af92458539fb4": "LINK",
	"0xfc5a1a6eb076a2c7ad06ed22c90d7e710e35ad0a": "GMX",
	"0x912ce59144191c1204e64559fe8253a0e49e6548": "ARB",
	"0x4200000000000000000000000000000000000006": "WETH",
	"0x68f180fcce6836688e9084f035309e29bf0a2095": "WBTC",
}

// DefaultSymbolLookup consults the built-in contract address table,
// case-insensitively.
func DefaultSymbolLookup(identifier string) (string, bool) {
	symbol, ok := defaultContractSymbols[strings.ToLower(identifier)]
	return symbol, ok
}

// NormalizeToken collapses the many shapes indexToken arrives in — bare
// symbols, protocol-prefixed symbols ("HYPERLIQUID-BTC"), wrapped-asset
// variants, contract addresses — into one canonical uppercase symbol.
// Unknown identifiers pass through unchanged rather than failing, and the
// whole function is idempotent.
func NormalizeToken(raw string, lookup SymbolLookup) string {
	token := strings.ToUpper(strings.TrimSpace(raw))
	if token == "" {
		return ""
	}

	// "PROTOCOL-BTC" -> "BTC"
	if idx := strings.Index(token, "-"); idx >= 0 && idx+1 < len(token) {
		token = token[idx+1:]
	}

	// Wrapped and staked variants collapse to the base asset.
	switch {
	case strings.Contains(token, "BTC"):
		return "BTC"
	case strings.Contains(token, "ETH"):
		return "ETH"
	case strings.Contains(token, "SOL"):
		return "SOL"
	}

	// Short identifiers are already symbols.
	if len(token) <= 5 {
		return token
	}

	if lookup != nil {
		if symbol, ok := lookup(token); ok {
			return NormalizeToken(symbol, nil)
		}
	}

	return token
}
