package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/Athena-GenAI/api-testing/config"
	"github.com/Athena-GenAI/api-testing/models"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// Inspects the local snapshot archive: counts per kind, the most recent keys,
// and a summary of the latest raw snapshot. Read-only; points at the same
// SQLite file the server writes.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(os.Getenv("SMARTMONEY_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("sqlite", cfg.Data.DBPath)
	if err != nil {
		log.Fatalf("Failed to open archive at %s: %v", cfg.Data.DBPath, err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping archive: %v", err)
	}

	fmt.Printf("Inspecting archive at %s\n", cfg.Data.DBPath)

	// 1. Snapshot counts per kind
	fmt.Println("\n--- Snapshot counts ---")
	rows, err := db.Query(`
		SELECT kind, COUNT(*), MIN(created_at), MAX(created_at)
		FROM snapshots
		GROUP BY kind
	`)
	if err != nil {
		log.Printf("Error counting snapshots: %v", err)
	} else {
		defer rows.Close()
		found := false
		for rows.Next() {
			found = true
			var kind, oldest, newest string
			var count int
			if err := rows.Scan(&kind, &count, &oldest, &newest); err != nil {
				log.Printf("Error scanning row: %v", err)
				continue
			}
			fmt.Printf("Kind: %s, Count: %d, Oldest: %s, Newest: %s\n", kind, count, oldest, newest)
		}
		if !found {
			fmt.Println("Archive is empty.")
		}
	}

	// 2. Most recent keys
	fmt.Println("\n--- Last 10 archive keys ---")
	rows2, err := db.Query(`
		SELECT key, kind, created_at
		FROM snapshots
		ORDER BY created_at DESC
		LIMIT 10
	`)
	if err != nil {
		log.Printf("Error listing keys: %v", err)
	} else {
		defer rows2.Close()
		for rows2.Next() {
			var key, kind, createdAt string
			if err := rows2.Scan(&key, &kind, &createdAt); err != nil {
				log.Printf("Error scanning row: %v", err)
				continue
			}
			fmt.Printf("%s  %s  %s\n", createdAt, kind, key)
		}
	}

	// 3. Latest raw snapshot summary: positions per protocol and token
	fmt.Println("\n--- Latest raw snapshot ---")
	var payload string
	err = db.QueryRow(`
		SELECT payload FROM snapshots
		WHERE kind = 'positions'
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&payload)
	if err == sql.ErrNoRows {
		fmt.Println("No raw snapshot archived yet.")
		return
	}
	if err != nil {
		log.Fatalf("Error reading latest snapshot: %v", err)
	}

	var snapshot models.RawSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		log.Fatalf("Error decoding latest snapshot: %v", err)
	}

	byProtocol := make(map[string]int)
	byToken := make(map[string]int)
	longs := 0
	for _, pos := range snapshot.Positions {
		byProtocol[pos.Protocol]++
		byToken[pos.IndexToken]++
		if pos.IsLong {
			longs++
		}
	}

	fmt.Printf("Timestamp: %s, Positions: %d (%d long / %d short)\n",
		snapshot.Timestamp, len(snapshot.Positions), longs, len(snapshot.Positions)-longs)
	fmt.Println("Per protocol:")
	for protocol, count := range byProtocol {
		fmt.Printf("  %s: %d\n", protocol, count)
	}
	fmt.Println("Per raw token:")
	for token, count := range byToken {
		fmt.Printf("  %s: %d\n", token, count)
	}

	// 4. Latest analyzed snapshot
	fmt.Println("\n--- Latest analyzed snapshot ---")
	err = db.QueryRow(`
		SELECT payload FROM snapshots
		WHERE kind = 'analyzed'
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&payload)
	if err == sql.ErrNoRows {
		fmt.Println("No analyzed snapshot archived yet.")
		return
	}
	if err != nil {
		log.Fatalf("Error reading latest analyzed snapshot: %v", err)
	}

	var aggregates []models.TokenAggregate
	if err := json.Unmarshal([]byte(payload), &aggregates); err != nil {
		log.Fatalf("Error decoding analyzed snapshot: %v", err)
	}
	for _, agg := range aggregates {
		fmt.Printf("%s: %s %.2f%% (%d positions, %d traders)\n",
			agg.Token, agg.DominantSide, agg.DominantPercentage, agg.TotalCount, agg.UniqueTraders)
	}
}
