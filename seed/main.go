package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/maahtami/study-planner-ece1778/model"
	"github.com/maahtami/study-planner-ece1778/seed/seeders"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, sessions, gamification")
		dbPath   = flag.String("db", "", "Database path (overrides DB_DATABASE env var)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	databasePath := *dbPath
	if databasePath == "" {
		databasePath = os.Getenv("DB_DATABASE")
		if databasePath == "" {
			databasePath = "study_planner.db"
		}
	}

	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&model.StudySession{}, &model.GamificationState{}, &model.AppSettings{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Printf("Connected to database: %s", databasePath)

	mainSeeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		log.Println("Running complete database seeding...")
		if err := mainSeeder.SeedAll(); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	case "sessions":
		log.Println("Seeding sessions only...")
		if err := mainSeeder.SeedSessionsOnly(); err != nil {
			log.Fatalf("Failed to seed sessions: %v", err)
		}
	case "gamification":
		log.Println("Seeding gamification only...")
		if err := mainSeeder.SeedGamificationOnly(); err != nil {
			log.Fatalf("Failed to seed gamification: %v", err)
		}
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'sessions', or 'gamification'", *seedType)
	}

	log.Println("Seeding operation completed successfully!")
}

func showHelp() {
	log.Println(`
Database Seeding Tool for the Study Planner

Usage: go run seed/main.go [flags]

Flags:
  -type string
        Type of seeding to perform (default "all")
        Options: all, sessions, gamification
  -db string
        Database path (overrides DB_DATABASE environment variable)
  -help
        Show this help message

Examples:
  # Seed everything
  go run seed/main.go

  # Seed only demo sessions
  go run seed/main.go -type=sessions

  # Seed with custom database path
  go run seed/main.go -db=./custom.db

Environment Variables:
  DB_DATABASE - Default database path (default: study_planner.db)
`)
}
