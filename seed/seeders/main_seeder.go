package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	sessionSeeder := NewSessionSeeder(s.db)
	if err := sessionSeeder.SeedSessions(); err != nil {
		log.Printf("Session seeding failed: %v", err)
		return err
	}

	gamificationSeeder := NewGamificationSeeder(s.db)
	if err := gamificationSeeder.SeedGamification(); err != nil {
		log.Printf("Gamification seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedSessionsOnly seeds only demo study sessions
func (s *MainSeeder) SeedSessionsOnly() error {
	sessionSeeder := NewSessionSeeder(s.db)
	return sessionSeeder.SeedSessions()
}

// SeedGamificationOnly seeds only the gamification snapshot
func (s *MainSeeder) SeedGamificationOnly() error {
	gamificationSeeder := NewGamificationSeeder(s.db)
	return gamificationSeeder.SeedGamification()
}
