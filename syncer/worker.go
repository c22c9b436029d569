package syncer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Athena-GenAI/api-testing/config"
)

// Refresher runs one recompute-and-store cycle. Satisfied by the service
// layer; the worker only needs this one method.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Worker is the scheduled trigger: it runs the same recompute-and-store
// pipeline as POST /update on a fixed interval, independent of any HTTP
// request.
type Worker struct {
	svc Refresher
	cfg *config.Config

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewWorker builds the scheduled refresh worker.
func NewWorker(svc Refresher, cfg *config.Config) *Worker {
	return &Worker{
		svc:  svc,
		cfg:  cfg,
		stop: make(chan struct{}),
	}
}

// Start launches the background refresh loop.
func (w *Worker) Start() {
	interval := time.Duration(w.cfg.Sync.RefreshMins) * time.Minute

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Warm the cache immediately at startup.
		w.runOnce(interval)

		for {
			select {
			case <-w.stop:
				return
			case <-ticker.C:
				w.runOnce(interval)
			}
		}
	}()

	log.Printf("[sync] scheduled refresh started (every %s)", interval)
}

// Stop waits for the refresh loop to exit.
func (w *Worker) Stop() {
	close(w.stop)
	w.wg.Wait()
}

func (w *Worker) runOnce(interval time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), interval/2)
	defer cancel()

	start := time.Now()
	if err := w.svc.Refresh(ctx); err != nil {
		// Propagated so the run is observably failed; the serving path keeps
		// whatever cache entry it has.
		log.Printf("[sync] scheduled refresh failed: %v", err)
		return
	}
	log.Printf("[sync] scheduled refresh completed in %s", time.Since(start))
}
