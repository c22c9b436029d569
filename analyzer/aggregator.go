package analyzer

import (
	"math"
	"sort"
	"strings"

	"github.com/Athena-GenAI/api-testing/config"
	"github.com/Athena-GenAI/api-testing/models"
)

// Aggregator rolls normalized positions up into per-token long/short stats.
// Aggregate is a pure function of its input slice; the aggregator holds only
// configuration.
type Aggregator struct {
	minSampleSize  int
	maxResults     int
	priorityTokens []string
	lookup         SymbolLookup
}

// NewAggregator creates an aggregator with configured selection parameters.
// A nil lookup falls back to the built-in contract table.
func NewAggregator(cfg config.AggregationConfig, lookup SymbolLookup) *Aggregator {
	if lookup == nil {
		lookup = DefaultSymbolLookup
	}
	return &Aggregator{
		minSampleSize:  cfg.MinSampleSize,
		maxResults:     cfg.MaxResults,
		priorityTokens: cfg.PriorityTokens,
		lookup:         lookup,
	}
}

type tokenBucket struct {
	long      int
	short     int
	traders   map[string]struct{}
	protocols map[string]struct{}
}

// Aggregate groups positions by canonical token, counts sides using the
// already-resolved IsLong, and selects the bounded output list: priority
// tokens first in their configured order, then the remaining tokens by total
// position count, truncated to maxResults.
func (a *Aggregator) Aggregate(positions []models.Position) []models.TokenAggregate {
	buckets := make(map[string]*tokenBucket)

	for _, pos := range positions {
		token := NormalizeToken(pos.IndexToken, a.lookup)
		if token == "" {
			continue
		}

		bucket, ok := buckets[token]
		if !ok {
			bucket = &tokenBucket{
				traders:   make(map[string]struct{}),
				protocols: make(map[string]struct{}),
			}
			buckets[token] = bucket
		}

		if pos.IsLong {
			bucket.long++
		} else {
			bucket.short++
		}
		if pos.Account != "" {
			bucket.traders[strings.ToLower(pos.Account)] = struct{}{}
		}
		if pos.Protocol != "" {
			bucket.protocols[pos.Protocol] = struct{}{}
		}
	}

	var aggregates []models.TokenAggregate
	for token, bucket := range buckets {
		total := bucket.long + bucket.short
		if total < a.minSampleSize {
			continue
		}
		aggregates = append(aggregates, a.classify(token, bucket, total))
	}

	return a.selectOutput(aggregates)
}

func (a *Aggregator) classify(token string, bucket *tokenBucket, total int) models.TokenAggregate {
	agg := models.TokenAggregate{
		Token:         token,
		LongCount:     bucket.long,
		ShortCount:    bucket.short,
		TotalCount:    total,
		UniqueTraders: len(bucket.traders),
		Protocols:     sortedKeys(bucket.protocols),
	}

	longPct := float64(bucket.long) / float64(total) * 100

	switch {
	case bucket.long*2 == total:
		agg.DominantSide = models.SideNeutral
		agg.DominantPercentage = 50
	case longPct > 50:
		agg.DominantSide = models.SideLong
		agg.DominantPercentage = round2(longPct)
	default:
		agg.DominantSide = models.SideShort
		agg.DominantPercentage = round2(100 - longPct)
	}

	return agg
}

func (a *Aggregator) selectOutput(aggregates []models.TokenAggregate) []models.TokenAggregate {
	byToken := make(map[string]models.TokenAggregate, len(aggregates))
	for _, agg := range aggregates {
		byToken[agg.Token] = agg
	}

	var out []models.TokenAggregate
	taken := make(map[string]bool)

	for _, token := range a.priorityTokens {
		if agg, ok := byToken[token]; ok {
			out = append(out, agg)
			taken[token] = true
		}
	}

	var rest []models.TokenAggregate
	for _, agg := range aggregates {
		if !taken[agg.Token] {
			rest = append(rest, agg)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		if rest[i].TotalCount != rest[j].TotalCount {
			return rest[i].TotalCount > rest[j].TotalCount
		}
		return rest[i].Token < rest[j].Token
	})

	out = append(out, rest...)
	if a.maxResults > 0 && len(out) > a.maxResults {
		out = out[:a.maxResults]
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
