package main

import (
	"log"

	"ai-ideation-be/internal/config"
	"ai-ideation-be/internal/model"
	"ai-ideation-be/pkg/database"

	"github.com/fatih/color"
)

// Schema bootstrap tool: ensures the pgvector extension exists and runs
// GORM AutoMigrate over the three core tables.
func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	color.Cyan("Ensuring pgvector extension...")
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		color.Red("Failed to create vector extension: %v", err)
		log.Fatal(err)
	}

	color.Cyan("Running AutoMigrate...")
	err = db.AutoMigrate(
		&model.IdeationSession{},
		&model.Idea{},
		&model.IdeaCluster{},
	)
	if err != nil {
		color.Red("Migration failed: %v", err)
		log.Fatal(err)
	}

	color.Green("Migration complete.")
}
