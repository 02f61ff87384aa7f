package services

import (
	"testing"
	"time"

	"github.com/maahtami/study-planner-ece1778/model"
	"github.com/maahtami/study-planner-ece1778/shared"
)

func at(day int, hour int) time.Time {
	return time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC)
}

func completedState(last time.Time, dayStreak, sessionStreak, total, today int) model.GamificationState {
	return model.GamificationState{
		DayStreak:       dayStreak,
		SessionStreak:   sessionStreak,
		Badges:          []string{},
		TotalCompleted:  total,
		CompletedToday:  today,
		LastCompletedAt: &last,
	}
}

func TestApplyCompletionFirstEver(t *testing.T) {
	state := NewGamificationState("")

	next := ApplyCompletion(state, at(10, 15))

	if next.DayStreak != 1 || next.SessionStreak != 1 {
		t.Errorf("first completion should start both streaks at 1, got day=%d session=%d", next.DayStreak, next.SessionStreak)
	}
	if next.TotalCompleted != 1 || next.CompletedToday != 1 {
		t.Errorf("counters wrong: total=%d today=%d", next.TotalCompleted, next.CompletedToday)
	}
	if next.LastCompletedAt == nil || !next.LastCompletedAt.Equal(at(10, 15)) {
		t.Errorf("LastCompletedAt not stamped: %v", next.LastCompletedAt)
	}
}

func TestApplyCompletionSameDayKeepsDayStreak(t *testing.T) {
	state := completedState(at(10, 9), 3, 1, 5, 1)

	next := ApplyCompletion(state, at(10, 11))

	if next.DayStreak != 3 {
		t.Errorf("same-day completion must not change day streak, got %d", next.DayStreak)
	}
	if next.CompletedToday != 2 {
		t.Errorf("expected CompletedToday 2, got %d", next.CompletedToday)
	}
	if next.SessionStreak != 2 {
		t.Errorf("2h gap is inside the session window, expected 2, got %d", next.SessionStreak)
	}
}

func TestApplyCompletionNextDayExtendsDayStreak(t *testing.T) {
	state := completedState(at(9, 22), 3, 4, 5, 2)

	next := ApplyCompletion(state, at(10, 8))

	if next.DayStreak != 4 {
		t.Errorf("next-calendar-day completion should extend streak to 4, got %d", next.DayStreak)
	}
	if next.CompletedToday != 1 {
		t.Errorf("new day should reset CompletedToday to 1, got %d", next.CompletedToday)
	}
	// 10 hours apart: session streak extends even across midnight.
	if next.SessionStreak != 5 {
		t.Errorf("expected session streak 5, got %d", next.SessionStreak)
	}
}

func TestApplyCompletionAfterGapRestartsDayStreak(t *testing.T) {
	state := completedState(at(7, 12), 6, 3, 9, 1)

	next := ApplyCompletion(state, at(10, 12))

	if next.DayStreak != 1 {
		t.Errorf("3-day gap should restart day streak at 1, got %d", next.DayStreak)
	}
	if next.SessionStreak != 1 {
		t.Errorf("72h gap should restart session streak at 1, got %d", next.SessionStreak)
	}
}

func TestSessionStreakUsesRollingWindow(t *testing.T) {
	within := completedState(at(9, 14), 1, 3, 3, 0)
	next := ApplyCompletion(within, at(10, 13))
	if next.SessionStreak != 4 {
		t.Errorf("23h gap should extend session streak, got %d", next.SessionStreak)
	}

	outside := completedState(at(9, 12), 1, 3, 3, 0)
	next = ApplyCompletion(outside, at(10, 13))
	if next.SessionStreak != 1 {
		t.Errorf("25h gap should restart session streak, got %d", next.SessionStreak)
	}
}

func TestBadgeAwardedExactlyOnceAtSeven(t *testing.T) {
	state := completedState(at(9, 10), 6, 1, 10, 1)

	next := ApplyCompletion(state, at(10, 10))
	if next.DayStreak != 7 {
		t.Fatalf("expected day streak 7, got %d", next.DayStreak)
	}
	if !next.HasBadge(shared.Badge7DayStreak) {
		t.Fatal("badge should be awarded at day streak 7")
	}

	// Un-complete and re-complete on the same day: streak stays 7, no
	// second badge.
	undone := ApplyUncompletion(next, at(10, 11))
	redone := ApplyCompletion(undone, at(10, 12))

	count := 0
	for _, b := range redone.Badges {
		if b == shared.Badge7DayStreak {
			count++
		}
	}
	if count != 1 {
		t.Errorf("badge must be awarded exactly once, found %d", count)
	}

	// Day 8 does not re-award either.
	day8 := ApplyCompletion(redone, at(11, 10))
	count = 0
	for _, b := range day8.Badges {
		if b == shared.Badge7DayStreak {
			count++
		}
	}
	if day8.DayStreak != 8 || count != 1 {
		t.Errorf("day 8: streak=%d badges=%d, want 8 and 1", day8.DayStreak, count)
	}
}

func TestApplyUncompletionFloorsAtZero(t *testing.T) {
	state := NewGamificationState("")

	next := ApplyUncompletion(state, at(10, 10))

	if next.TotalCompleted != 0 || next.CompletedToday != 0 {
		t.Errorf("counters must not go negative: total=%d today=%d", next.TotalCompleted, next.CompletedToday)
	}
}

func TestApplyUncompletionSameDayDecrements(t *testing.T) {
	state := completedState(at(10, 9), 2, 2, 4, 2)

	next := ApplyUncompletion(state, at(10, 15))

	if next.TotalCompleted != 3 {
		t.Errorf("expected total 3, got %d", next.TotalCompleted)
	}
	if next.CompletedToday != 1 {
		t.Errorf("same-day un-completion should decrement CompletedToday, got %d", next.CompletedToday)
	}
	if next.DayStreak != 2 || next.SessionStreak != 2 {
		t.Errorf("streaks must be untouched by un-completion, got day=%d session=%d", next.DayStreak, next.SessionStreak)
	}
}

func TestApplyUncompletionOtherDayKeepsToday(t *testing.T) {
	state := completedState(at(9, 9), 2, 2, 4, 1)

	next := ApplyUncompletion(state, at(10, 9))

	if next.CompletedToday != 1 {
		t.Errorf("un-completing a prior-day session must not touch CompletedToday, got %d", next.CompletedToday)
	}
	if next.TotalCompleted != 3 {
		t.Errorf("expected total 3, got %d", next.TotalCompleted)
	}
}

func TestApplyCompletionDoesNotShareBadgeSlice(t *testing.T) {
	state := completedState(at(9, 10), 6, 1, 10, 1)
	state.Badges = append(state.Badges, "pioneer")

	next := ApplyCompletion(state, at(10, 10))
	next.Badges[0] = "mutated"

	if state.Badges[0] != "pioneer" {
		t.Error("transition must copy the badge slice, not alias it")
	}
}

func TestComputeHistoricalStreak(t *testing.T) {
	today := at(10, 12)
	yesterday := at(9, 18)
	threeDaysAgo := at(7, 9)

	sessions := []model.StudySession{
		{ID: "a", ScheduledAt: &today},
		{ID: "b", ScheduledAt: &yesterday},
		{ID: "c", ScheduledAt: &threeDaysAgo},
		{ID: "d"}, // unscheduled, never counts
	}

	if got := ComputeHistoricalStreak(sessions, today); got != 2 {
		t.Errorf("expected streak 2 (today + yesterday), got %d", got)
	}

	// Without a session today the streak is 0 regardless of history.
	if got := ComputeHistoricalStreak(sessions[1:], today); got != 0 {
		t.Errorf("expected streak 0 without a session today, got %d", got)
	}

	if got := ComputeHistoricalStreak(nil, today); got != 0 {
		t.Errorf("expected streak 0 for empty list, got %d", got)
	}
}
