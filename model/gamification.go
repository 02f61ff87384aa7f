package model

import "time"

// GamificationState is the single derived-statistics snapshot per user.
// OwnerID is empty for the anonymous instance. Badges only ever grow; the
// explicit Reset operation is the one way to shrink the set.
type GamificationState struct {
	OwnerID         string     `json:"owner_id" gorm:"primaryKey"`
	DayStreak       int        `json:"day_streak" gorm:"default:0"`
	SessionStreak   int        `json:"session_streak" gorm:"default:0"`
	Badges          []string   `json:"badges" gorm:"serializer:json;type:text"`
	TotalCompleted  int        `json:"total_completed" gorm:"default:0"`
	CompletedToday  int        `json:"completed_today" gorm:"default:0"`
	LastCompletedAt *time.Time `json:"last_completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// HasBadge reports set membership.
func (g GamificationState) HasBadge(badge string) bool {
	for _, b := range g.Badges {
		if b == badge {
			return true
		}
	}
	return false
}
