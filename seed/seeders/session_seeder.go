package seeders

import (
	"log"
	"time"

	"github.com/maahtami/study-planner-ece1778/model"
	"gorm.io/gorm"
)

// SessionSeeder handles seeding demo study sessions
type SessionSeeder struct {
	db *gorm.DB
}

// NewSessionSeeder creates a new session seeder
func NewSessionSeeder(db *gorm.DB) *SessionSeeder {
	return &SessionSeeder{db: db}
}

// SeedSessions seeds the database with a small set of demo study sessions
func (s *SessionSeeder) SeedSessions() error {
	sessions := s.getDemoSessions()

	for _, session := range sessions {
		var existing model.StudySession
		if err := s.db.Where("id = ?", session.ID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := s.db.Create(&session).Error; err != nil {
					log.Printf("Error creating session %s: %v", session.Subject, err)
					return err
				}
				log.Printf("Created session: %s", session.Subject)
			} else {
				log.Printf("Error checking session %s: %v", session.Subject, err)
				return err
			}
		} else {
			log.Printf("Session %s already exists, skipping", session.Subject)
		}
	}

	log.Println("Session seeding completed successfully")
	return nil
}

func (s *SessionSeeder) getDemoSessions() []model.StudySession {
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)
	nextWeek := now.Add(7 * 24 * time.Hour)

	return []model.StudySession{
		{
			ID:              "seed_session_calculus",
			Subject:         "Calculus II - Integration by Parts",
			DurationMinutes: 60,
			Notes:           "Work through chapter 7 problem set",
			ScheduledAt:     &yesterday,
			Completed:       true,
			CompletedAt:     &yesterday,
			Rating:          4,
		},
		{
			ID:              "seed_session_physics",
			Subject:         "Physics - Electromagnetism Review",
			DurationMinutes: 45,
			Notes:           "Focus on Faraday's law before the quiz",
			ScheduledAt:     &tomorrow,
			Rating:          model.RatingUnrated,
		},
		{
			ID:              "seed_session_spanish",
			Subject:         "Spanish Vocabulary",
			DurationMinutes: 25,
			RepeatWeekly:    true,
			ScheduledAt:     &nextWeek,
			Rating:          model.RatingUnrated,
		},
		{
			ID:              "seed_session_reading",
			Subject:         "Course Reading - Distributed Systems",
			DurationMinutes: 90,
			Notes:           "Chapters 3 and 4",
			Rating:          model.RatingUnrated,
		},
	}
}
