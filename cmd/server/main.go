// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/astro-datacenter/rundb/api"
	"github.com/astro-datacenter/rundb/config"
	"github.com/astro-datacenter/rundb/internal/catalog"
	"github.com/astro-datacenter/rundb/internal/logger"
	"github.com/astro-datacenter/rundb/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

func main() {
	customLog.Println("Starting data center query server...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		customLog.Fatalf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// 2. Check the page declarations before serving them
	if err := catalog.Validate(); err != nil {
		customLog.Fatalf("Invalid page catalog: %v", err)
	}

	// 3. Initialize Database Connection
	db, err := storage.Connect(cfg)
	if err != nil {
		customLog.Fatalf("Failed to initialize database: %v", err)
		os.Exit(1)
	}
	defer func() {
		customLog.Println("Closing database connection...")
		if err := db.Close(); err != nil {
			customLog.Printf("Error closing database: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = storage.EnsureSchema(ctx, db, cfg.DBDriver)
	cancel()
	if err != nil {
		customLog.Fatalf("Failed to prepare schema: %v", err)
	}

	// 4. Setup Router (passing dependencies)
	router := api.SetupRouter(db, cfg)

	// 5. Start Server
	customLog.Printf("Server listening on port %s", cfg.ServerPort)
	if err := router.Run(fmt.Sprintf(":%s", cfg.ServerPort)); err != nil {
		customLog.Fatalf("Failed to start server: %v", err)
	}
}
