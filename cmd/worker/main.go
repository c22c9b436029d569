package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Athena-GenAI/api-testing/api"
	"github.com/Athena-GenAI/api-testing/config"
	"github.com/Athena-GenAI/api-testing/service"
	"github.com/Athena-GenAI/api-testing/storage"
	"github.com/Athena-GenAI/api-testing/syncer"

	"github.com/joho/godotenv"
)

// Headless refresher: runs the scheduled recompute-and-store loop without the
// HTTP server. Useful when the API is deployed read-only against a shared
// cache and a single instance owns the refresh cadence.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(os.Getenv("SMARTMONEY_CONFIG"))
	if err != nil {
		log.Fatalf("[worker] failed to load config: %v", err)
	}

	if baseURL := os.Getenv("COPIN_API_URL"); baseURL != "" {
		cfg.Source.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Data.DatabaseURL = dbURL
	}

	archive, err := newArchive(cfg)
	if err != nil {
		log.Fatalf("[worker] failed to init archive store: %v", err)
	}
	defer archive.Close()

	cache, err := storage.NewRedisCache()
	if err != nil {
		log.Fatalf("[worker] failed to init cache: %v", err)
	}
	defer cache.Close()

	client := api.NewClient(cfg.Source)
	fetcher := syncer.NewFetcher(client, cfg.Fetch)
	svc := service.New(cfg, fetcher, cache, archive)

	worker := syncer.NewWorker(svc, cfg)
	worker.Start()
	defer worker.Stop()

	log.Printf("[worker] refreshing %d wallets across %d protocols every %d minutes",
		len(cfg.Tracking.Wallets), len(cfg.Tracking.Protocols), cfg.Sync.RefreshMins)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[worker] received shutdown signal, stopping gracefully...")
}

func newArchive(cfg *config.Config) (storage.ArchiveStore, error) {
	if cfg.Data.DatabaseURL != "" {
		log.Println("[worker] using postgres archive store")
		return storage.NewPostgres(cfg.Data.DatabaseURL)
	}
	log.Printf("[worker] using sqlite archive store at %s", cfg.Data.DBPath)
	return storage.NewSQLite(cfg.Data.DBPath)
}
