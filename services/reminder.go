package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/maahtami/study-planner-ece1778/model"
	"github.com/maahtami/study-planner-ece1778/shared"
)

// ReminderScheduler hands out opaque handles for scheduled notifications.
// Schedule returns an empty handle when there is nothing to schedule (no
// future time). Cancel is idempotent and safe with stale or absent handles.
type ReminderScheduler interface {
	Schedule(ctx context.Context, session *model.StudySession) (string, error)
	ScheduleDaily(ctx context.Context, timeOfDay, existingHandle string) (string, error)
	Cancel(ctx context.Context, handle string) error
}

const (
	reminderKeyPrefix = "reminder:"
	reminderDueSet    = "reminders:due"
	reminderChannel   = "reminders:fire"

	// sessionReminderLead fires the notification this long before the
	// session starts.
	sessionReminderLead = 5 * time.Minute
)

type reminderDoc struct {
	Handle    string    `json:"handle"`
	SessionID string    `json:"session_id,omitempty"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	FireAt    time.Time `json:"fire_at"`
	Weekly    bool      `json:"weekly,omitempty"`
	Daily     bool      `json:"daily,omitempty"`
}

// ReminderService is the redis-backed reminder scheduler. Reminders live as
// expiring docs indexed by due time in a sorted set; the drain loop publishes
// due reminders on a channel for the delivery process and reschedules the
// recurring ones.
type ReminderService struct {
	appContext.DefaultService

	redisSvc *RedisService
	closed   chan struct{}
}

const REMINDER_SVC = "reminder_svc"

func (svc ReminderService) Id() string {
	return REMINDER_SVC
}

func (svc *ReminderService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *ReminderService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.closed = make(chan struct{})

	go svc.drainLoop()
	return nil
}

func (svc *ReminderService) Shutdown() {
	close(svc.closed)
}

// Schedule registers a one-off (or weekly) reminder for a session with a
// future scheduled time, firing shortly before the session starts.
func (svc *ReminderService) Schedule(ctx context.Context, session *model.StudySession) (string, error) {
	if session.ScheduledAt == nil {
		return "", nil
	}

	now := time.Now()
	sessionTime := *session.ScheduledAt
	if !sessionTime.After(now) {
		return "", nil
	}

	fireAt := sessionTime.Add(-sessionReminderLead)
	if fireAt.Before(now) {
		// Less than the lead time remaining: fire almost immediately,
		// unless even that would land after the session start.
		fireAt = now.Add(10 * time.Second)
		if fireAt.After(sessionTime) {
			return "", nil
		}
	}

	handle := uuid.New().String()
	doc := reminderDoc{
		Handle:    handle,
		SessionID: session.ID,
		Subject:   session.Subject,
		Body:      "Your study session for \"" + session.Subject + "\" is starting soon.",
		FireAt:    fireAt,
		Weekly:    session.RepeatWeekly,
	}

	if err := svc.store(ctx, doc); err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"handle":  handle,
		"subject": session.Subject,
		"fire_at": fireAt,
	}).Debug("Session reminder scheduled")
	return handle, nil
}

// ScheduleDaily registers the recurring daily study reminder at the given
// HH:MM local time, replacing any existing one first.
func (svc *ReminderService) ScheduleDaily(ctx context.Context, timeOfDay, existingHandle string) (string, error) {
	if err := svc.Cancel(ctx, existingHandle); err != nil {
		log.WithError(err).Warn("Failed to cancel existing daily reminder")
	}

	fireAt, err := nextDailyOccurrence(timeOfDay, time.Now())
	if err != nil {
		return "", err
	}

	handle := uuid.New().String()
	doc := reminderDoc{
		Handle: handle,
		Body:   "Time to review your study plan and stay on track.",
		FireAt: fireAt,
		Daily:  true,
	}

	if err := svc.store(ctx, doc); err != nil {
		return "", err
	}
	return handle, nil
}

// Cancel drops a reminder. Unknown and empty handles are no-ops.
func (svc *ReminderService) Cancel(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}

	client := svc.redisSvc.Client()
	pipe := client.TxPipeline()
	pipe.Del(ctx, reminderKeyPrefix+handle)
	pipe.ZRem(ctx, reminderDueSet, handle)
	_, err := pipe.Exec(ctx)
	return err
}

func (svc *ReminderService) store(ctx context.Context, doc reminderDoc) error {
	payload, err := shared.JSONEncoder(doc)
	if err != nil {
		return err
	}

	client := svc.redisSvc.Client()
	expiry := time.Until(doc.FireAt) + 24*time.Hour

	pipe := client.TxPipeline()
	pipe.Set(ctx, reminderKeyPrefix+doc.Handle, payload, expiry)
	pipe.ZAdd(ctx, reminderDueSet, redis.Z{Score: float64(doc.FireAt.Unix()), Member: doc.Handle})
	_, err = pipe.Exec(ctx)
	return err
}

func (svc *ReminderService) drainLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-svc.closed:
			return
		case <-ticker.C:
			if err := svc.fireDue(context.Background()); err != nil {
				log.WithError(err).Warn("Reminder drain pass failed")
			}
		}
	}
}

func (svc *ReminderService) fireDue(ctx context.Context) error {
	client := svc.redisSvc.Client()
	now := time.Now()

	handles, err := client.ZRangeByScore(ctx, reminderDueSet, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		return err
	}

	for _, handle := range handles {
		raw, err := client.Get(ctx, reminderKeyPrefix+handle).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				_ = client.ZRem(ctx, reminderDueSet, handle).Err()
				continue
			}
			return err
		}

		var doc reminderDoc
		if err := shared.JSONDecoder([]byte(raw), &doc); err != nil {
			log.WithError(err).WithField("handle", handle).Error("Corrupt reminder doc, dropping")
			_ = svc.Cancel(ctx, handle)
			continue
		}

		if err := client.Publish(ctx, reminderChannel, raw).Err(); err != nil {
			return err
		}

		switch {
		case doc.Daily:
			doc.FireAt = doc.FireAt.AddDate(0, 0, 1)
			if err := svc.store(ctx, doc); err != nil {
				return err
			}
		case doc.Weekly:
			doc.FireAt = doc.FireAt.AddDate(0, 0, 7)
			if err := svc.store(ctx, doc); err != nil {
				return err
			}
		default:
			if err := svc.Cancel(ctx, handle); err != nil {
				return err
			}
		}
	}
	return nil
}

func nextDailyOccurrence(timeOfDay string, now time.Time) (time.Time, error) {
	parsed, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return time.Time{}, err
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}
