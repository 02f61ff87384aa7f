package services

import (
	"context"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/maahtami/study-planner-ece1778/dto"
	"github.com/maahtami/study-planner-ece1778/model"
	"github.com/maahtami/study-planner-ece1778/shared"
)

// PlannerService coordinates repository writes, gamification transitions and
// reminder side effects as one logical operation per user action. It owns the
// only caller-visible in-memory projection of the session list; a single
// mutex serializes all mutations because the underlying stores are not safe
// against interleaved writers.
//
// Mutations are optimistic: the projection changes first, persistence
// follows. A local persistence failure discards the projection and reloads
// from the repository; there is no fine-grained rollback.
type PlannerService struct {
	appContext.DefaultService

	sqlSvc          *SqliteService
	sessionSvc      *SessionService
	gamificationSvc *GamificationService
	reminders       ReminderScheduler

	mu       sync.Mutex
	sessions map[string][]model.StudySession
}

const PLANNER_SVC = "planner_svc"

func (svc PlannerService) Id() string {
	return PLANNER_SVC
}

func (svc *PlannerService) Configure(ctx *appContext.Context) error {
	svc.sessions = make(map[string][]model.StudySession)
	return svc.DefaultService.Configure(ctx)
}

func (svc *PlannerService) Start() error {
	svc.sqlSvc = svc.Service(SQLITE_SVC).(*SqliteService)
	svc.sessionSvc = svc.Service(SESSION_SVC).(*SessionService)
	svc.gamificationSvc = svc.Service(GAMIFICATION_SVC).(*GamificationService)
	svc.reminders = svc.Service(REMINDER_SVC).(*ReminderService)
	return nil
}

// List refreshes the projection from the repository and returns it together
// with any pending remote sync failure.
func (svc *PlannerService) List(ctx context.Context, ownerID string) *dto.SessionListResponse {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.reload(ctx, ownerID)

	resp := &dto.SessionListResponse{Sessions: svc.sessions[ownerID]}
	if err := svc.sessionSvc.LastSyncError(); err != nil {
		resp.SyncError = err.Error()
	}
	return resp
}

func (svc *PlannerService) Get(id string) (*model.StudySession, error) {
	session, err := svc.sessionSvc.Get(id)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Session not found")
	}
	return session, nil
}

// Create adds a session and, for a future scheduled time, requests a
// reminder and stores its handle on the record.
func (svc *PlannerService) Create(ctx context.Context, ownerID string, req dto.CreateSessionRequest) (*model.StudySession, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	id, _ := uuid.NewV7()
	session := &model.StudySession{
		ID:              id.String(),
		Subject:         req.Subject,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		ScheduledAt:     req.ScheduledAt,
		RepeatWeekly:    req.RepeatWeekly,
		Rating:          model.RatingUnrated,
	}

	svc.sessions[ownerID] = append(svc.sessions[ownerID], *session)

	created, err := svc.sessionSvc.Create(ctx, ownerID, session)
	if err != nil {
		svc.reload(ctx, ownerID)
		return nil, shared.NewInternalError(err, "Failed to save the new study session")
	}

	if handle := svc.scheduleReminder(ctx, created); handle != "" {
		created, err = svc.sessionSvc.Update(ctx, created.ID, model.SessionPatch{ReminderHandle: &handle})
		if err != nil {
			svc.reload(ctx, ownerID)
			return nil, shared.NewInternalError(err, "Failed to store reminder handle")
		}
	}

	recordSessionCreated()
	svc.reload(ctx, ownerID)
	return created, nil
}

// Edit cancels any outstanding reminder, applies the patch and schedules a
// fresh reminder when the (possibly new) scheduled time is in the future.
func (svc *PlannerService) Edit(ctx context.Context, ownerID, id string, req dto.UpdateSessionRequest) (*model.StudySession, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	session, err := svc.sessionSvc.Get(id)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Session not found")
	}

	svc.cancelReminder(ctx, session.ReminderHandle)

	patch := req.Patch()
	patch.ClearReminderHandle = true

	svc.patchProjection(ownerID, id, patch)

	updated, err := svc.sessionSvc.Update(ctx, id, patch)
	if err != nil {
		svc.reload(ctx, ownerID)
		return nil, shared.NewInternalError(err, "Failed to update the study session")
	}

	if handle := svc.scheduleReminder(ctx, updated); handle != "" {
		updated, err = svc.sessionSvc.Update(ctx, id, model.SessionPatch{ReminderHandle: &handle})
		if err != nil {
			svc.reload(ctx, ownerID)
			return nil, shared.NewInternalError(err, "Failed to store reminder handle")
		}
	}

	svc.reload(ctx, ownerID)
	return updated, nil
}

// Complete marks the session done at now, advances the gamification snapshot
// and reconciles by re-reading the record.
func (svc *PlannerService) Complete(ctx context.Context, ownerID, id string) (*dto.CompleteSessionResponse, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	session, err := svc.sessionSvc.Get(id)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Session not found")
	}
	if session.Completed {
		return nil, shared.NewConflictError(nil, "Session is already completed")
	}

	now := time.Now()
	completed := true
	patch := model.SessionPatch{Completed: &completed, CompletedAt: &now}

	svc.patchProjection(ownerID, id, patch)

	updated, err := svc.sessionSvc.Update(ctx, id, patch)
	if err != nil {
		log.WithError(err).Error("Failed to persist session completion")
		svc.reload(ctx, ownerID)
		return nil, shared.NewInternalError(err, "Failed to persist session completion")
	}

	state, err := svc.gamificationSvc.RecordCompletion(ctx, ownerID, now)
	if err != nil {
		log.WithError(err).Error("Failed to record completion in gamification state")
		svc.reload(ctx, ownerID)
		return nil, shared.NewInternalError(err, "Failed to update gamification state")
	}

	// Reconcile with ground truth; the optimistic copy stands if this fails.
	if fresh, err := svc.sessionSvc.Get(id); err == nil {
		updated = fresh
	}

	recordSessionCompleted()
	svc.reload(ctx, ownerID)
	return &dto.CompleteSessionResponse{Session: updated, Gamification: state}, nil
}

// Restart un-completes a finished session: gamification counters come back
// down, the reminder is cancelled and the completion fields are cleared.
func (svc *PlannerService) Restart(ctx context.Context, ownerID, id string) (*dto.CompleteSessionResponse, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	session, err := svc.sessionSvc.Get(id)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Session not found")
	}
	if !session.Completed {
		return nil, shared.NewConflictError(nil, "Session is not completed")
	}

	now := time.Now()
	state, err := svc.gamificationSvc.RecordUncompletion(ctx, ownerID, now)
	if err != nil {
		log.WithError(err).Error("Failed to record un-completion in gamification state")
		svc.reload(ctx, ownerID)
		return nil, shared.NewInternalError(err, "Failed to update gamification state")
	}

	svc.cancelReminder(ctx, session.ReminderHandle)

	notCompleted := false
	rating := model.RatingUnrated
	patch := model.SessionPatch{
		Completed:           &notCompleted,
		ClearCompletedAt:    true,
		Rating:              &rating,
		ClearReminderHandle: true,
	}

	svc.patchProjection(ownerID, id, patch)

	updated, err := svc.sessionSvc.Update(ctx, id, patch)
	if err != nil {
		log.WithError(err).Error("Failed to persist session restart")
		svc.reload(ctx, ownerID)
		return nil, shared.NewInternalError(err, "Failed to persist session restart")
	}

	svc.reload(ctx, ownerID)
	return &dto.CompleteSessionResponse{Session: updated, Gamification: state}, nil
}

// Rate stores a user rating. No gamification effect.
func (svc *PlannerService) Rate(ctx context.Context, ownerID, id string, rating int) (*model.StudySession, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if !model.RatingValid(rating) {
		return nil, shared.NewBadRequestError(nil, "Rating must be -1 (unrated) or between 1 and 5")
	}

	if _, err := svc.sessionSvc.Get(id); err != nil {
		return nil, shared.NewNotFoundError(err, "Session not found")
	}

	patch := model.SessionPatch{Rating: &rating}
	svc.patchProjection(ownerID, id, patch)

	updated, err := svc.sessionSvc.Update(ctx, id, patch)
	if err != nil {
		svc.reload(ctx, ownerID)
		return nil, shared.NewInternalError(err, "Failed to rate the study session")
	}

	svc.reload(ctx, ownerID)
	return updated, nil
}

// Delete cancels any outstanding reminder and removes the session.
func (svc *PlannerService) Delete(ctx context.Context, ownerID, id string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	session, err := svc.sessionSvc.Get(id)
	if err != nil {
		return shared.NewNotFoundError(err, "Session not found")
	}

	svc.cancelReminder(ctx, session.ReminderHandle)

	svc.dropFromProjection(ownerID, id)

	if err := svc.sessionSvc.Delete(ctx, id); err != nil {
		svc.reload(ctx, ownerID)
		return shared.NewInternalError(err, "Failed to delete the study session")
	}

	svc.reload(ctx, ownerID)
	return nil
}

func (svc *PlannerService) Gamification(ownerID string) (*model.GamificationState, error) {
	return svc.gamificationSvc.Load(ownerID)
}

func (svc *PlannerService) ResetGamification(ownerID string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.gamificationSvc.Reset(ownerID)
}

// Stats combines the live snapshot with statistics derived from the full
// session list.
func (svc *PlannerService) Stats(ctx context.Context, ownerID string) (*dto.StatsResponse, error) {
	sessions := svc.sessionSvc.List(ctx, ownerID)

	state, err := svc.gamificationSvc.Load(ownerID)
	if err != nil {
		return nil, err
	}

	completed := 0
	for _, s := range sessions {
		if s.Completed {
			completed++
		}
	}

	return &dto.StatsResponse{
		TotalSessions:       len(sessions),
		CompletedSessions:   completed,
		HistoricalDayStreak: ComputeHistoricalStreak(sessions, time.Now()),
		Gamification:        state,
	}, nil
}

// OnSignIn adopts local-only sessions into the remote mirror and refreshes
// both the session list and the gamification snapshot from remote.
func (svc *PlannerService) OnSignIn(ctx context.Context, ownerID string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.sessionSvc.AdoptLocalSessions(ctx, ownerID); err != nil {
		log.WithError(err).Warn("Failed to adopt local sessions")
	}

	if _, err := svc.gamificationSvc.SyncFromRemote(ctx, ownerID); err != nil {
		return err
	}

	svc.reload(ctx, ownerID)
	return nil
}

// OnSignOut resets the owner's local gamification snapshot. Session records
// stay: they remain readable offline and the remote copy is untouched.
func (svc *PlannerService) OnSignOut(ctx context.Context, ownerID string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	delete(svc.sessions, ownerID)
	return svc.gamificationSvc.Reset(ownerID)
}

// ─────────────────────────────────────────
// Settings / daily reminder
// ─────────────────────────────────────────

func (svc *PlannerService) GetSettings() (*model.AppSettings, error) {
	settings, err := svc.sqlSvc.Settings().Get()
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	return settings, nil
}

// UpdateSettings persists the settings and keeps the daily study reminder in
// sync: enabling (or moving) it replaces the outstanding reminder, disabling
// cancels it.
func (svc *PlannerService) UpdateSettings(ctx context.Context, req dto.UpdateSettingsRequest) (*model.AppSettings, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	settings, err := svc.sqlSvc.Settings().Get()
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	if req.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *req.NotificationsEnabled
	}
	if req.ReminderTime != nil {
		settings.ReminderTime = *req.ReminderTime
	}

	if settings.NotificationsEnabled {
		handle, err := svc.reminders.ScheduleDaily(ctx, settings.ReminderTime, settings.ReminderHandle)
		if err != nil {
			log.WithError(err).Warn("Failed to schedule daily reminder")
		} else {
			settings.ReminderHandle = handle
			recordReminderScheduled()
		}
	} else {
		svc.cancelReminder(ctx, settings.ReminderHandle)
		settings.ReminderHandle = ""
	}

	if err := svc.sqlSvc.Settings().Put(settings); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	return settings, nil
}

// ─────────────────────────────────────────
// Internals
// ─────────────────────────────────────────

// scheduleReminder requests a reminder for a future scheduled time. Reminder
// failures never block the user action: the session stands without one.
func (svc *PlannerService) scheduleReminder(ctx context.Context, session *model.StudySession) string {
	handle, err := svc.reminders.Schedule(ctx, session)
	if err != nil {
		log.WithError(err).WithField("session_id", session.ID).Warn("Failed to schedule session reminder")
		return ""
	}
	if handle != "" {
		recordReminderScheduled()
	}
	return handle
}

func (svc *PlannerService) cancelReminder(ctx context.Context, handle string) {
	if handle == "" {
		return
	}
	if err := svc.reminders.Cancel(ctx, handle); err != nil {
		log.WithError(err).WithField("handle", handle).Warn("Failed to cancel reminder")
	}
}

func (svc *PlannerService) reload(ctx context.Context, ownerID string) {
	svc.sessions[ownerID] = svc.sessionSvc.List(ctx, ownerID)
}

func (svc *PlannerService) patchProjection(ownerID, id string, patch model.SessionPatch) {
	cached := svc.sessions[ownerID]
	for i := range cached {
		if cached[i].ID == id {
			patch.Apply(&cached[i])
			return
		}
	}
}

func (svc *PlannerService) dropFromProjection(ownerID, id string) {
	cached := svc.sessions[ownerID]
	for i := range cached {
		if cached[i].ID == id {
			svc.sessions[ownerID] = append(cached[:i], cached[i+1:]...)
			return
		}
	}
}
