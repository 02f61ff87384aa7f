package dto

import (
	"time"

	"github.com/maahtami/study-planner-ece1778/model"
)

type CreateSessionRequest struct {
	Subject         string     `json:"subject" validate:"required,min=1,max=200"`
	DurationMinutes int        `json:"duration_minutes" validate:"required,gt=0"`
	Notes           string     `json:"notes" validate:"max=2000"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	RepeatWeekly    bool       `json:"repeat_weekly"`
}

func (r CreateSessionRequest) Validate() error {
	return GetValidator().Struct(r)
}

// UpdateSessionRequest is a partial edit; nil fields are left untouched.
// Setting clear_scheduled_at removes the schedule (and its reminder).
type UpdateSessionRequest struct {
	Subject          *string    `json:"subject" validate:"omitempty,min=1,max=200"`
	DurationMinutes  *int       `json:"duration_minutes" validate:"omitempty,gt=0"`
	Notes            *string    `json:"notes" validate:"omitempty,max=2000"`
	ScheduledAt      *time.Time `json:"scheduled_at"`
	ClearScheduledAt bool       `json:"clear_scheduled_at"`
	RepeatWeekly     *bool      `json:"repeat_weekly"`
}

func (r UpdateSessionRequest) Validate() error {
	return GetValidator().Struct(r)
}

// Patch converts the request into the repository's patch type.
func (r UpdateSessionRequest) Patch() model.SessionPatch {
	return model.SessionPatch{
		Subject:          r.Subject,
		DurationMinutes:  r.DurationMinutes,
		Notes:            r.Notes,
		ScheduledAt:      r.ScheduledAt,
		ClearScheduledAt: r.ClearScheduledAt,
		RepeatWeekly:     r.RepeatWeekly,
	}
}

type RateSessionRequest struct {
	Rating int `json:"rating" validate:"session_rating"`
}

func (r RateSessionRequest) Validate() error {
	return GetValidator().Struct(r)
}

type SessionListResponse struct {
	Sessions  []model.StudySession `json:"sessions"`
	SyncError string               `json:"sync_error,omitempty"`
}

type CompleteSessionResponse struct {
	Session      *model.StudySession      `json:"session"`
	Gamification *model.GamificationState `json:"gamification"`
}

type StatsResponse struct {
	TotalSessions       int                      `json:"total_sessions"`
	CompletedSessions   int                      `json:"completed_sessions"`
	HistoricalDayStreak int                      `json:"historical_day_streak"`
	Gamification        *model.GamificationState `json:"gamification"`
}

type ExportResponse struct {
	Object      string `json:"object"`
	DownloadURL string `json:"download_url"`
}
