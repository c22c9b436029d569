package syncer

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Athena-GenAI/api-testing/api"
	"github.com/Athena-GenAI/api-testing/config"
	"github.com/Athena-GenAI/api-testing/models"
)

// ErrNoPositions is returned when every (wallet, protocol) pair failed and
// nothing was collected. It lets callers tell "fetch infrastructure is broken"
// apart from "the tracked wallets simply have no open positions".
var ErrNoPositions = errors.New("syncer: all position fetches failed")

// Fetcher fans position fetches out over the full wallet x protocol
// cross-product in bounded batches. The batch size caps concurrent outbound
// calls and the inter-batch delay keeps us under the source's rate limits —
// a deliberate throughput/latency trade-off, not an incidental sleep.
type Fetcher struct {
	client      api.PositionFetcher
	batchSize   int
	batchDelay  time.Duration
	callTimeout time.Duration
}

// NewFetcher builds a batch fetcher around any position source.
func NewFetcher(client api.PositionFetcher, cfg config.FetchConfig) *Fetcher {
	return &Fetcher{
		client:      client,
		batchSize:   cfg.BatchSize,
		batchDelay:  time.Duration(cfg.BatchDelayMS) * time.Millisecond,
		callTimeout: time.Duration(cfg.CallTimeoutMS) * time.Millisecond,
	}
}

type pair struct {
	wallet   string
	protocol string
}

type pairResult struct {
	positions []models.Position
	err       error
}

// FetchAll collects open positions across every (wallet, protocol) pair.
// Individual pair failures degrade to zero positions for that pair and are
// only counted; the accumulated result is returned regardless. ErrNoPositions
// is returned only when errors occurred and nothing at all was collected.
func (f *Fetcher) FetchAll(ctx context.Context, wallets, protocols []string) ([]models.Position, error) {
	pairs := make([]pair, 0, len(wallets)*len(protocols))
	for _, wallet := range wallets {
		for _, protocol := range protocols {
			pairs = append(pairs, pair{wallet: wallet, protocol: protocol})
		}
	}

	var all []models.Position
	failed := 0
	start := time.Now()

	for batchStart := 0; batchStart < len(pairs); batchStart += f.batchSize {
		batchEnd := batchStart + f.batchSize
		if batchEnd > len(pairs) {
			batchEnd = len(pairs)
		}
		batch := pairs[batchStart:batchEnd]

		results := make([]pairResult, len(batch))
		done := make(chan int, len(batch))

		for i, p := range batch {
			go func(i int, p pair) {
				results[i] = f.fetchPair(ctx, p)
				done <- i
			}(i, p)
		}
		for range batch {
			<-done
		}

		for i, res := range results {
			if res.err != nil {
				failed++
				log.Printf("[fetch] %s/%s: %v", batch[i].protocol, batch[i].wallet, res.err)
				continue
			}
			all = append(all, res.positions...)
		}

		if batchEnd < len(pairs) {
			select {
			case <-time.After(f.batchDelay):
			case <-ctx.Done():
				return all, ctx.Err()
			}
		}
	}

	log.Printf("[fetch] collected %d positions from %d pairs (%d failed) in %s",
		len(all), len(pairs), failed, time.Since(start))

	if len(all) == 0 && failed > 0 {
		return nil, ErrNoPositions
	}
	return all, nil
}

// fetchPair wraps one source call with a timeout race. On timeout the result
// is discarded rather than the transport aborted — best effort, since the
// in-flight call may not support cancellation.
func (f *Fetcher) fetchPair(ctx context.Context, p pair) pairResult {
	callCtx, cancel := context.WithTimeout(ctx, f.callTimeout)
	defer cancel()

	resCh := make(chan pairResult, 1)
	go func() {
		positions, err := f.client.FetchPositions(callCtx, p.wallet, p.protocol)
		resCh <- pairResult{positions: positions, err: err}
	}()

	select {
	case res := <-resCh:
		return res
	case <-callCtx.Done():
		return pairResult{err: callCtx.Err()}
	}
}
