package model

import "time"

// Rating sentinel: a session that has not been rated yet carries -1.
// 0 is reserved and never written; user ratings are 1-5.
const RatingUnrated = -1

// StudySession is one user-defined study task with schedule, duration and
// completion metadata. OwnerID is empty for local-only (anonymous) records;
// such records are adopted into the remote mirror once a user signs in.
type StudySession struct {
	ID              string     `json:"id" gorm:"primaryKey"`
	OwnerID         string     `json:"owner_id,omitempty" gorm:"index"`
	Subject         string     `json:"subject" gorm:"not null"`
	DurationMinutes int        `json:"duration_minutes" gorm:"not null"`
	Notes           string     `json:"notes,omitempty"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	RepeatWeekly    bool       `json:"repeat_weekly" gorm:"default:false"`
	Completed       bool       `json:"completed" gorm:"default:false"`
	CompletedAt     *time.Time `json:"completed_at"`
	Rating          int        `json:"rating" gorm:"default:-1"`
	ReminderHandle  string     `json:"reminder_handle,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// RatingValid reports whether r is the unrated sentinel or a 1-5 user rating.
func RatingValid(r int) bool {
	return r == RatingUnrated || (r >= 1 && r <= 5)
}

// SessionPatch carries a partial update. Nil pointer fields are untouched.
// Nullable fields need an explicit Clear flag because a nil pointer cannot
// distinguish "leave alone" from "set to null"; the remote mirror translates
// a Clear into writing null so the field is cleared there too.
type SessionPatch struct {
	OwnerID             *string
	Subject             *string
	DurationMinutes     *int
	Notes               *string
	ScheduledAt         *time.Time
	ClearScheduledAt    bool
	RepeatWeekly        *bool
	Completed           *bool
	CompletedAt         *time.Time
	ClearCompletedAt    bool
	Rating              *int
	ReminderHandle      *string
	ClearReminderHandle bool
}

// Apply merges the patch into s in place.
func (p SessionPatch) Apply(s *StudySession) {
	if p.OwnerID != nil {
		s.OwnerID = *p.OwnerID
	}
	if p.Subject != nil {
		s.Subject = *p.Subject
	}
	if p.DurationMinutes != nil {
		s.DurationMinutes = *p.DurationMinutes
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
	if p.ScheduledAt != nil {
		s.ScheduledAt = p.ScheduledAt
	} else if p.ClearScheduledAt {
		s.ScheduledAt = nil
	}
	if p.RepeatWeekly != nil {
		s.RepeatWeekly = *p.RepeatWeekly
	}
	if p.Completed != nil {
		s.Completed = *p.Completed
	}
	if p.CompletedAt != nil {
		s.CompletedAt = p.CompletedAt
	} else if p.ClearCompletedAt {
		s.CompletedAt = nil
	}
	if p.Rating != nil {
		s.Rating = *p.Rating
	}
	if p.ReminderHandle != nil {
		s.ReminderHandle = *p.ReminderHandle
	} else if p.ClearReminderHandle {
		s.ReminderHandle = ""
	}
}
