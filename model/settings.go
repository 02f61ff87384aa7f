package model

import "time"

const SettingsID = "default"

// AppSettings is the singleton local settings row. ReminderHandle tracks the
// outstanding daily study reminder so rescheduling can invalidate it first.
type AppSettings struct {
	ID                   string    `json:"id" gorm:"primaryKey"`
	NotificationsEnabled bool      `json:"notifications_enabled" gorm:"default:false"`
	ReminderTime         string    `json:"reminder_time" gorm:"default:'09:00'"`
	ReminderHandle       string    `json:"reminder_handle,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DefaultSettings mirrors the defaults applied when no row exists yet.
func DefaultSettings() *AppSettings {
	return &AppSettings{
		ID:                   SettingsID,
		NotificationsEnabled: false,
		ReminderTime:         "09:00",
	}
}
