package shared

import "time"

const (
	UserID = "user_id"

	// Badge7DayStreak is awarded the moment the day streak reaches exactly 7.
	Badge7DayStreak = "7-day-streak"

	DayStreakBadgeThreshold = 7

	// SessionStreakWindow is the rolling window two completions must fall
	// within to extend the session streak.
	SessionStreakWindow = 24 * time.Hour
)
