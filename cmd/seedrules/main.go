package main

// Seed the default policy checklist:
//   go run ./cmd/seedrules

import (
	"context"
	"log"
	"os"

	"contractreview-backend/internal/rules"
	"contractreview-backend/internal/shared/config"
	"contractreview-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	created, err := rules.Seed(ctx, &rules.PGRepo{DB: sqlDB})
	if err != nil {
		log.Printf("failed to seed rules: %v", err)
		os.Exit(1)
	}
	log.Printf("seeded %d policy rules", created)
}
