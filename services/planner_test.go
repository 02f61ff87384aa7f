package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/maahtami/study-planner-ece1778/dto"
	"github.com/maahtami/study-planner-ece1778/model"
)

// fakeScheduler records reminder traffic without touching redis.
type fakeScheduler struct {
	next      int
	scheduled []string
	daily     []string
	cancelled []string
}

func (f *fakeScheduler) Schedule(ctx context.Context, session *model.StudySession) (string, error) {
	if session.ScheduledAt == nil || !session.ScheduledAt.After(time.Now()) {
		return "", nil
	}
	f.next++
	handle := fmt.Sprintf("rem-%d", f.next)
	f.scheduled = append(f.scheduled, handle)
	return handle, nil
}

func (f *fakeScheduler) ScheduleDaily(ctx context.Context, timeOfDay, existingHandle string) (string, error) {
	if existingHandle != "" {
		f.cancelled = append(f.cancelled, existingHandle)
	}
	f.next++
	handle := fmt.Sprintf("daily-%d", f.next)
	f.daily = append(f.daily, handle)
	return handle, nil
}

func (f *fakeScheduler) Cancel(ctx context.Context, handle string) error {
	if handle != "" {
		f.cancelled = append(f.cancelled, handle)
	}
	return nil
}

func (f *fakeScheduler) wasCancelled(handle string) bool {
	for _, h := range f.cancelled {
		if h == handle {
			return true
		}
	}
	return false
}

func newTestPlanner(t *testing.T) (*PlannerService, *fakeScheduler, *fakeMirror) {
	t.Helper()

	sql := newTestSqlite(t)
	mirror := newFakeMirror(false)
	sched := &fakeScheduler{}

	planner := &PlannerService{
		sqlSvc:          sql,
		sessionSvc:      &SessionService{sqlSvc: sql, remote: mirror},
		gamificationSvc: &GamificationService{sqlSvc: sql, remote: mirror},
		reminders:       sched,
		sessions:        map[string][]model.StudySession{},
	}
	return planner, sched, mirror
}

func TestCreateSchedulesReminderForFutureSession(t *testing.T) {
	planner, sched, _ := newTestPlanner(t)

	future := time.Now().Add(3 * time.Hour)
	created, err := planner.Create(context.Background(), "", dto.CreateSessionRequest{
		Subject:         "Biology",
		DurationMinutes: 40,
		ScheduledAt:     &future,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(sched.scheduled) != 1 {
		t.Fatalf("expected 1 reminder scheduled, got %d", len(sched.scheduled))
	}
	if created.ReminderHandle != sched.scheduled[0] {
		t.Errorf("reminder handle not stored on the session: %q", created.ReminderHandle)
	}
}

func TestCreateWithoutScheduleSkipsReminder(t *testing.T) {
	planner, sched, _ := newTestPlanner(t)

	created, err := planner.Create(context.Background(), "", dto.CreateSessionRequest{
		Subject:         "Reading",
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(sched.scheduled) != 0 {
		t.Errorf("unscheduled session must not request a reminder, got %d", len(sched.scheduled))
	}
	if created.ReminderHandle != "" {
		t.Errorf("expected empty reminder handle, got %q", created.ReminderHandle)
	}
	if created.Rating != model.RatingUnrated {
		t.Errorf("new sessions start unrated, got %d", created.Rating)
	}
}

func TestCompleteThenRestart(t *testing.T) {
	planner, _, _ := newTestPlanner(t)
	ctx := context.Background()

	created, err := planner.Create(ctx, "", dto.CreateSessionRequest{
		Subject:         "Statistics",
		DurationMinutes: 50,
	})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := planner.Complete(ctx, "", created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Session.Completed || resp.Session.CompletedAt == nil {
		t.Fatalf("completion not recorded: %+v", resp.Session)
	}
	if resp.Gamification.TotalCompleted != 1 || resp.Gamification.CompletedToday != 1 {
		t.Errorf("gamification not advanced: %+v", resp.Gamification)
	}
	if resp.Gamification.DayStreak != 1 || resp.Gamification.SessionStreak != 1 {
		t.Errorf("streaks should start at 1: %+v", resp.Gamification)
	}

	// Completing twice is a precondition failure.
	if _, err := planner.Complete(ctx, "", created.ID); err == nil {
		t.Error("expected error completing an already-completed session")
	}

	restarted, err := planner.Restart(ctx, "", created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if restarted.Session.Completed || restarted.Session.CompletedAt != nil {
		t.Errorf("restart should clear completion fields: %+v", restarted.Session)
	}
	if restarted.Session.Rating != model.RatingUnrated {
		t.Errorf("restart should reset the rating, got %d", restarted.Session.Rating)
	}
	if restarted.Gamification.TotalCompleted != 0 || restarted.Gamification.CompletedToday != 0 {
		t.Errorf("counters should come back down: %+v", restarted.Gamification)
	}

	// Restarting a non-completed session is a precondition failure too.
	if _, err := planner.Restart(ctx, "", created.ID); err == nil {
		t.Error("expected error restarting a session that is not completed")
	}
}

func TestRate(t *testing.T) {
	planner, _, _ := newTestPlanner(t)
	ctx := context.Background()

	created, err := planner.Create(ctx, "", dto.CreateSessionRequest{
		Subject:         "History",
		DurationMinutes: 30,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := planner.Rate(ctx, "", created.ID, 7); err == nil {
		t.Error("expected out-of-range rating to be rejected")
	}
	if _, err := planner.Rate(ctx, "", created.ID, 0); err == nil {
		t.Error("rating 0 is reserved and must be rejected")
	}

	rated, err := planner.Rate(ctx, "", created.ID, 4)
	if err != nil {
		t.Fatal(err)
	}
	if rated.Rating != 4 {
		t.Errorf("expected rating 4, got %d", rated.Rating)
	}

	cleared, err := planner.Rate(ctx, "", created.ID, model.RatingUnrated)
	if err != nil {
		t.Fatal(err)
	}
	if cleared.Rating != model.RatingUnrated {
		t.Errorf("expected rating cleared to -1, got %d", cleared.Rating)
	}
}

func TestEditReschedulesReminder(t *testing.T) {
	planner, sched, _ := newTestPlanner(t)
	ctx := context.Background()

	future := time.Now().Add(2 * time.Hour)
	created, err := planner.Create(ctx, "", dto.CreateSessionRequest{
		Subject:         "French",
		DurationMinutes: 30,
		ScheduledAt:     &future,
	})
	if err != nil {
		t.Fatal(err)
	}
	oldHandle := created.ReminderHandle

	later := time.Now().Add(6 * time.Hour)
	updated, err := planner.Edit(ctx, "", created.ID, dto.UpdateSessionRequest{ScheduledAt: &later})
	if err != nil {
		t.Fatal(err)
	}

	if !sched.wasCancelled(oldHandle) {
		t.Errorf("old reminder %q should be cancelled on edit", oldHandle)
	}
	if updated.ReminderHandle == "" || updated.ReminderHandle == oldHandle {
		t.Errorf("expected a fresh reminder handle, got %q", updated.ReminderHandle)
	}

	// Clearing the schedule drops the reminder entirely.
	cleared, err := planner.Edit(ctx, "", created.ID, dto.UpdateSessionRequest{ClearScheduledAt: true})
	if err != nil {
		t.Fatal(err)
	}
	if cleared.ScheduledAt != nil || cleared.ReminderHandle != "" {
		t.Errorf("expected schedule and reminder cleared: %+v", cleared)
	}
}

func TestDeleteCancelsReminder(t *testing.T) {
	planner, sched, _ := newTestPlanner(t)
	ctx := context.Background()

	future := time.Now().Add(1 * time.Hour)
	created, err := planner.Create(ctx, "", dto.CreateSessionRequest{
		Subject:         "Music theory",
		DurationMinutes: 20,
		ScheduledAt:     &future,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := planner.Delete(ctx, "", created.ID); err != nil {
		t.Fatal(err)
	}

	if !sched.wasCancelled(created.ReminderHandle) {
		t.Errorf("deleting a session must cancel its reminder %q", created.ReminderHandle)
	}
	if _, err := planner.Get(created.ID); err == nil {
		t.Error("expected the session gone after delete")
	}
}

func TestStats(t *testing.T) {
	planner, _, _ := newTestPlanner(t)
	ctx := context.Background()

	now := time.Now()
	for i, subject := range []string{"A", "B", "C"} {
		scheduled := now.Add(time.Duration(-i) * 24 * time.Hour)
		if _, err := planner.Create(ctx, "", dto.CreateSessionRequest{
			Subject:         subject,
			DurationMinutes: 30,
			ScheduledAt:     &scheduled,
		}); err != nil {
			t.Fatal(err)
		}
	}

	list := planner.List(ctx, "")
	if _, err := planner.Complete(ctx, "", list.Sessions[0].ID); err != nil {
		t.Fatal(err)
	}

	stats, err := planner.Stats(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalSessions != 3 || stats.CompletedSessions != 1 {
		t.Errorf("wrong totals: %+v", stats)
	}
	if stats.HistoricalDayStreak != 3 {
		t.Errorf("expected 3 consecutive scheduled days, got %d", stats.HistoricalDayStreak)
	}
	if stats.Gamification == nil || stats.Gamification.TotalCompleted != 1 {
		t.Errorf("expected live gamification snapshot in stats: %+v", stats.Gamification)
	}
}

func TestUpdateSettingsManagesDailyReminder(t *testing.T) {
	planner, sched, _ := newTestPlanner(t)
	ctx := context.Background()

	enabled := true
	timeOfDay := "08:30"
	settings, err := planner.UpdateSettings(ctx, dto.UpdateSettingsRequest{
		NotificationsEnabled: &enabled,
		ReminderTime:         &timeOfDay,
	})
	if err != nil {
		t.Fatal(err)
	}
	if settings.ReminderHandle == "" {
		t.Fatal("enabling notifications should schedule the daily reminder")
	}
	if settings.ReminderTime != "08:30" {
		t.Errorf("expected reminder time stored, got %q", settings.ReminderTime)
	}
	handle := settings.ReminderHandle

	disabled := false
	settings, err = planner.UpdateSettings(ctx, dto.UpdateSettingsRequest{NotificationsEnabled: &disabled})
	if err != nil {
		t.Fatal(err)
	}
	if settings.ReminderHandle != "" {
		t.Errorf("disabling notifications should drop the handle, got %q", settings.ReminderHandle)
	}
	if !sched.wasCancelled(handle) {
		t.Errorf("outstanding daily reminder %q should be cancelled", handle)
	}
}

func TestSignInAdoptsAndSyncs(t *testing.T) {
	planner, _, mirror := newTestPlanner(t)
	mirror.enabled = true
	ctx := context.Background()

	if _, err := planner.Create(ctx, "", dto.CreateSessionRequest{
		Subject:         "Offline work",
		DurationMinutes: 30,
	}); err != nil {
		t.Fatal(err)
	}

	// The mirror already holds a snapshot for this user from another device.
	remoteLast := time.Now().Add(-2 * time.Hour)
	mirror.states["u1"] = &model.GamificationState{
		OwnerID:         "u1",
		DayStreak:       4,
		SessionStreak:   2,
		Badges:          []string{},
		TotalCompleted:  9,
		LastCompletedAt: &remoteLast,
	}

	if err := planner.OnSignIn(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	if len(mirror.sessions["u1"]) != 1 {
		t.Errorf("expected the offline session adopted into the mirror, got %d", len(mirror.sessions["u1"]))
	}

	state, err := planner.Gamification("u1")
	if err != nil {
		t.Fatal(err)
	}
	if state.DayStreak != 4 || state.TotalCompleted != 9 {
		t.Errorf("expected remote snapshot synced locally: %+v", state)
	}

	// Sign-out resets the local snapshot; the remote copy is untouched.
	if err := planner.OnSignOut(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	state, err = planner.Gamification("u1")
	if err != nil {
		t.Fatal(err)
	}
	if state.DayStreak != 0 || state.TotalCompleted != 0 {
		t.Errorf("expected a fresh local snapshot after sign-out: %+v", state)
	}
	if mirror.states["u1"].DayStreak != 4 {
		t.Error("sign-out must not touch the remote snapshot")
	}
}
