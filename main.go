package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/Athena-GenAI/api-testing/api"
	"github.com/Athena-GenAI/api-testing/config"
	"github.com/Athena-GenAI/api-testing/handlers"
	"github.com/Athena-GenAI/api-testing/middleware"
	"github.com/Athena-GenAI/api-testing/service"
	"github.com/Athena-GenAI/api-testing/storage"
	"github.com/Athena-GenAI/api-testing/syncer"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("SMARTMONEY_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if baseURL := os.Getenv("COPIN_API_URL"); baseURL != "" {
		cfg.Source.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Data.DatabaseURL = dbURL
	}

	archive, err := newArchive(cfg)
	if err != nil {
		log.Fatalf("failed to init archive store: %v", err)
	}
	defer archive.Close()

	cache, err := storage.NewRedisCache()
	if err != nil {
		log.Fatalf("failed to init cache: %v", err)
	}
	defer cache.Close()

	client := api.NewClient(cfg.Source)
	fetcher := syncer.NewFetcher(client, cfg.Fetch)
	svc := service.New(cfg, fetcher, cache, archive)

	// Scheduled refresh runs the same pipeline as POST /update.
	worker := syncer.NewWorker(svc, cfg)
	worker.Start()
	defer worker.Stop()

	// Set up router
	r := gin.Default()
	r.Use(middleware.CORS())

	h := handlers.NewHandler(cfg, svc)

	// Routes
	r.GET("/positions", h.GetPositions)
	r.GET("/positions/:wallet", middleware.ValidateWallet(), h.GetWalletPositions)
	r.GET("/token-stats", h.GetTokenStats)
	r.POST("/update", h.ForceUpdate)
	r.DELETE("/cache", h.ClearCache)
	r.GET("/ws", h.StreamUpdates)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = strconv.Itoa(cfg.Server.Port)
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s", port)
		if err := r.Run(":" + port); err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[main] shutting down")
}

// newArchive picks the archive backend: Postgres when DATABASE_URL is set,
// SQLite otherwise.
func newArchive(cfg *config.Config) (storage.ArchiveStore, error) {
	if cfg.Data.DatabaseURL != "" {
		log.Println("[main] using postgres archive store")
		return storage.NewPostgres(cfg.Data.DatabaseURL)
	}
	log.Printf("[main] using sqlite archive store at %s", cfg.Data.DBPath)
	return storage.NewSQLite(cfg.Data.DBPath)
}
