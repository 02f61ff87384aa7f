package services

import (
	"context"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/maahtami/study-planner-ece1778/model"
	"github.com/maahtami/study-planner-ece1778/shared"
)

// ─────────────────────────────────────────
// Pure transitions
// ─────────────────────────────────────────

func NewGamificationState(ownerID string) model.GamificationState {
	return model.GamificationState{
		OwnerID: ownerID,
		Badges:  []string{},
	}
}

// ApplyCompletion advances the snapshot for one completion at instant now.
//
// Day streak compares calendar days (midnight to midnight): a gap of exactly
// one day extends the streak, a larger gap restarts it at 1, same-day
// completions leave it alone. Session streak compares raw instants against a
// 24h rolling window. The 7-day badge is awarded the moment the day streak
// reaches exactly 7, once ever.
func ApplyCompletion(state model.GamificationState, now time.Time) model.GamificationState {
	state.Badges = append([]string(nil), state.Badges...)

	if state.LastCompletedAt != nil && !sameCalendarDay(*state.LastCompletedAt, now) {
		state.CompletedToday = 0
	}
	state.CompletedToday++

	if state.LastCompletedAt == nil {
		state.DayStreak = 1
	} else {
		gapDays := int(midnight(now).Sub(midnight(*state.LastCompletedAt)).Hours() / 24)
		switch {
		case gapDays == 1:
			state.DayStreak++
		case gapDays > 1:
			state.DayStreak = 1
		}
	}

	if state.LastCompletedAt == nil {
		state.SessionStreak = 1
	} else if now.Sub(*state.LastCompletedAt) <= shared.SessionStreakWindow {
		state.SessionStreak++
	} else {
		state.SessionStreak = 1
	}

	completedAt := now
	state.LastCompletedAt = &completedAt
	state.TotalCompleted++

	if state.DayStreak == shared.DayStreakBadgeThreshold && !state.HasBadge(shared.Badge7DayStreak) {
		state.Badges = append(state.Badges, shared.Badge7DayStreak)
	}

	return state
}

// ApplyUncompletion reverses the counters for one completion undone at
// instant now. Streaks are not reversed: the snapshot does not carry the
// completion history a faithful rewind would need, so only the totals and
// the same-day counter come back down, floored at zero.
func ApplyUncompletion(state model.GamificationState, now time.Time) model.GamificationState {
	state.Badges = append([]string(nil), state.Badges...)

	if state.TotalCompleted > 0 {
		state.TotalCompleted--
	}

	if state.LastCompletedAt != nil && sameCalendarDay(*state.LastCompletedAt, now) {
		if state.CompletedToday > 0 {
			state.CompletedToday--
		}
	}

	return state
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ComputeHistoricalStreak counts consecutive calendar days ending today with
// at least one scheduled session, walking back day by day from today.
func ComputeHistoricalStreak(sessions []model.StudySession, today time.Time) int {
	days := make(map[string]bool)
	for _, s := range sessions {
		if s.ScheduledAt != nil {
			days[s.ScheduledAt.Format("2006-01-02")] = true
		}
	}
	if len(days) == 0 {
		return 0
	}

	streak := 0
	cursor := midnight(today)
	for days[cursor.Format("2006-01-02")] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// ─────────────────────────────────────────
// Persistence
// ─────────────────────────────────────────

// GamificationService runs snapshot transitions through the dual-write path:
// local snapshot write first (its failure is the caller's failure), then a
// best-effort remote merge-write with the same swallow-and-log policy the
// session mirror uses.
type GamificationService struct {
	appContext.DefaultService

	sqlSvc *SqliteService
	remote RemoteMirror
}

const GAMIFICATION_SVC = "gamification_svc"

func (svc GamificationService) Id() string {
	return GAMIFICATION_SVC
}

func (svc *GamificationService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *GamificationService) Start() error {
	svc.sqlSvc = svc.Service(SQLITE_SVC).(*SqliteService)
	svc.remote = svc.Service(FIRESTORE_SVC).(*FirestoreService)
	return nil
}

// Load returns the owner's snapshot, a fresh zero state when none exists.
func (svc *GamificationService) Load(ownerID string) (*model.GamificationState, error) {
	state, err := svc.sqlSvc.Snapshots().Get(ownerID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	if state == nil {
		fresh := NewGamificationState(ownerID)
		return &fresh, nil
	}
	return state, nil
}

// RecordCompletion applies the completion transition and persists the result.
func (svc *GamificationService) RecordCompletion(ctx context.Context, ownerID string, now time.Time) (*model.GamificationState, error) {
	state, err := svc.Load(ownerID)
	if err != nil {
		return nil, err
	}
	next := ApplyCompletion(*state, now)
	if err := svc.persist(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// RecordUncompletion applies the un-completion transition and persists it.
func (svc *GamificationService) RecordUncompletion(ctx context.Context, ownerID string, now time.Time) (*model.GamificationState, error) {
	state, err := svc.Load(ownerID)
	if err != nil {
		return nil, err
	}
	next := ApplyUncompletion(*state, now)
	if err := svc.persist(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// Reset drops the local snapshot. The remote copy is left alone: reset is an
// explicit local operation (sign-out), not an un-completion side effect.
func (svc *GamificationService) Reset(ownerID string) error {
	if err := svc.sqlSvc.Snapshots().Delete(ownerID); err != nil {
		return svc.sqlSvc.HandleError(err)
	}
	return nil
}

// SyncFromRemote refreshes the local snapshot from the mirror after sign-in.
// With nothing mirrored yet the local snapshot stands.
func (svc *GamificationService) SyncFromRemote(ctx context.Context, ownerID string) (*model.GamificationState, error) {
	if ownerID == "" || !svc.remote.Enabled() {
		return svc.Load(ownerID)
	}

	remote, err := svc.remote.FetchGamification(ctx, ownerID)
	if err != nil {
		log.WithError(err).Warn("Remote gamification unavailable, keeping local snapshot")
		return svc.Load(ownerID)
	}
	if remote == nil {
		return svc.Load(ownerID)
	}

	if err := svc.sqlSvc.Snapshots().Put(remote); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	return remote, nil
}

func (svc *GamificationService) persist(ctx context.Context, state *model.GamificationState) error {
	state.UpdatedAt = time.Now()

	if err := svc.sqlSvc.Snapshots().Put(state); err != nil {
		return svc.sqlSvc.HandleError(err)
	}

	if state.OwnerID != "" && svc.remote.Enabled() {
		if err := svc.remote.MergeGamification(context.Background(), state.OwnerID, mergePayload(state)); err != nil {
			log.WithError(err).Warn("Remote gamification write failed, local snapshot retained")
		}
	}
	return nil
}

func mergePayload(state *model.GamificationState) map[string]interface{} {
	return map[string]interface{}{
		"day_streak":        state.DayStreak,
		"session_streak":    state.SessionStreak,
		"badges":            state.Badges,
		"total_completed":   state.TotalCompleted,
		"completed_today":   state.CompletedToday,
		"last_completed_at": timeOrNil(state.LastCompletedAt),
		"updated_at":        state.UpdatedAt,
	}
}
