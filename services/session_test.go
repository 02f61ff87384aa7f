package services

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/maahtami/study-planner-ece1778/model"
)

func newTestSqlite(t *testing.T) *SqliteService {
	t.Helper()
	svc := &SqliteService{database: ":memory:"}
	if err := svc.Start(); err != nil {
		t.Fatalf("failed to start sqlite service: %v", err)
	}
	return svc
}

// fakeMirror is an in-memory RemoteMirror. Setting err makes every remote
// call fail with it.
type fakeMirror struct {
	enabled bool
	err     error

	sessions map[string]map[string]model.StudySession
	states   map[string]*model.GamificationState

	puts    int
	patches int
	deletes int
	merges  int
}

func newFakeMirror(enabled bool) *fakeMirror {
	return &fakeMirror{
		enabled:  enabled,
		sessions: map[string]map[string]model.StudySession{},
		states:   map[string]*model.GamificationState{},
	}
}

func (f *fakeMirror) Enabled() bool { return f.enabled }

func (f *fakeMirror) FetchSessions(ctx context.Context, ownerID string) ([]model.StudySession, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.StudySession
	for _, s := range f.sessions[ownerID] {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeMirror) PutSession(ctx context.Context, ownerID string, session *model.StudySession) error {
	if f.err != nil {
		return f.err
	}
	if f.sessions[ownerID] == nil {
		f.sessions[ownerID] = map[string]model.StudySession{}
	}
	f.sessions[ownerID][session.ID] = *session
	f.puts++
	return nil
}

func (f *fakeMirror) PatchSession(ctx context.Context, ownerID, id string, patch model.SessionPatch) error {
	if f.err != nil {
		return f.err
	}
	if s, ok := f.sessions[ownerID][id]; ok {
		patch.Apply(&s)
		f.sessions[ownerID][id] = s
	}
	f.patches++
	return nil
}

func (f *fakeMirror) DeleteSession(ctx context.Context, ownerID, id string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.sessions[ownerID], id)
	f.deletes++
	return nil
}

func (f *fakeMirror) FetchGamification(ctx context.Context, ownerID string) (*model.GamificationState, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.states[ownerID], nil
}

func (f *fakeMirror) PutGamification(ctx context.Context, ownerID string, state *model.GamificationState) error {
	if f.err != nil {
		return f.err
	}
	copied := *state
	f.states[ownerID] = &copied
	return nil
}

func (f *fakeMirror) MergeGamification(ctx context.Context, ownerID string, fields map[string]interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.merges++
	return nil
}

func newTestSessionService(t *testing.T, mirror *fakeMirror) *SessionService {
	t.Helper()
	return &SessionService{sqlSvc: newTestSqlite(t), remote: mirror}
}

func TestCreateSurvivesMirrorOutage(t *testing.T) {
	mirror := newFakeMirror(true)
	mirror.err = status.Error(codes.Unavailable, "mirror down")
	svc := newTestSessionService(t, mirror)

	created, err := svc.Create(context.Background(), "u1", &model.StudySession{
		Subject:         "Linear Algebra",
		DurationMinutes: 30,
	})
	if err != nil {
		t.Fatalf("local create must succeed despite mirror outage: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a generated session id")
	}

	// The record is durable locally and served from the local list.
	list := svc.List(context.Background(), "u1")
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("expected the created session in the list, got %+v", list)
	}
	if svc.LastSyncError() == nil {
		t.Error("expected the remote failure parked on the sync error channel")
	}

	// Mirror recovers: the next read clears the sync error.
	mirror.err = nil
	svc.List(context.Background(), "u1")
	if svc.LastSyncError() != nil {
		t.Error("sync error should clear after a successful remote read")
	}
}

func TestListMergesRemoteWins(t *testing.T) {
	mirror := newFakeMirror(true)
	svc := newTestSessionService(t, mirror)

	local, err := svc.Create(context.Background(), "u1", &model.StudySession{
		Subject:         "Old title",
		DurationMinutes: 30,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Remote carries a newer copy of the same record plus one extra.
	remoteCopy := *local
	remoteCopy.Subject = "New title"
	mirror.sessions["u1"][local.ID] = remoteCopy
	mirror.sessions["u1"]["other"] = model.StudySession{ID: "other", OwnerID: "u1", Subject: "Remote only", DurationMinutes: 15}

	list := svc.List(context.Background(), "u1")
	if len(list) != 2 {
		t.Fatalf("expected 2 merged sessions, got %d", len(list))
	}
	for _, s := range list {
		if s.ID == local.ID && s.Subject != "New title" {
			t.Errorf("remote copy should win the merge, got subject %q", s.Subject)
		}
	}
}

func TestAnonymousWritesSkipMirror(t *testing.T) {
	mirror := newFakeMirror(true)
	svc := newTestSessionService(t, mirror)

	if _, err := svc.Create(context.Background(), "", &model.StudySession{
		Subject:         "Private notes",
		DurationMinutes: 20,
	}); err != nil {
		t.Fatal(err)
	}

	if mirror.puts != 0 {
		t.Errorf("anonymous create must not reach the mirror, got %d puts", mirror.puts)
	}

	list := svc.List(context.Background(), "")
	if len(list) != 1 {
		t.Fatalf("anonymous list should serve local records, got %d", len(list))
	}
}

func TestUpdateClearsNullableFields(t *testing.T) {
	mirror := newFakeMirror(false)
	svc := newTestSessionService(t, mirror)

	scheduled := time.Now().Add(2 * time.Hour)
	created, err := svc.Create(context.Background(), "", &model.StudySession{
		Subject:         "Chemistry",
		DurationMinutes: 45,
		ScheduledAt:     &scheduled,
	})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Update(context.Background(), created.ID, model.SessionPatch{ClearScheduledAt: true})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ScheduledAt != nil {
		t.Error("ClearScheduledAt should null out the schedule")
	}

	// Unrelated fields are untouched by a partial patch.
	if updated.Subject != "Chemistry" || updated.DurationMinutes != 45 {
		t.Errorf("partial patch touched unrelated fields: %+v", updated)
	}
}

func TestAdoptLocalSessions(t *testing.T) {
	mirror := newFakeMirror(true)
	svc := newTestSessionService(t, mirror)

	for _, subject := range []string{"One", "Two"} {
		if _, err := svc.Create(context.Background(), "", &model.StudySession{
			Subject:         subject,
			DurationMinutes: 25,
		}); err != nil {
			t.Fatal(err)
		}
	}

	if err := svc.AdoptLocalSessions(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}

	unowned, err := svc.sqlSvc.Sessions().ListUnowned()
	if err != nil {
		t.Fatal(err)
	}
	if len(unowned) != 0 {
		t.Errorf("expected no unowned sessions after adoption, got %d", len(unowned))
	}
	if mirror.puts != 2 {
		t.Errorf("expected both adopted sessions mirrored, got %d puts", mirror.puts)
	}
	if len(mirror.sessions["u1"]) != 2 {
		t.Errorf("expected 2 remote copies under the owner, got %d", len(mirror.sessions["u1"]))
	}
}

func TestDeleteMirrors(t *testing.T) {
	mirror := newFakeMirror(true)
	svc := newTestSessionService(t, mirror)

	created, err := svc.Create(context.Background(), "u1", &model.StudySession{
		Subject:         "To delete",
		DurationMinutes: 10,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Get(created.ID); err == nil {
		t.Error("expected the local record gone")
	}
	if mirror.deletes != 1 {
		t.Errorf("expected 1 mirrored delete, got %d", mirror.deletes)
	}
}

func TestListOrdersScheduledFirst(t *testing.T) {
	mirror := newFakeMirror(false)
	svc := newTestSessionService(t, mirror)

	early := time.Now().Add(1 * time.Hour)
	late := time.Now().Add(5 * time.Hour)

	if _, err := svc.Create(context.Background(), "", &model.StudySession{Subject: "Unscheduled", DurationMinutes: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(context.Background(), "", &model.StudySession{Subject: "Early", DurationMinutes: 10, ScheduledAt: &early}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(context.Background(), "", &model.StudySession{Subject: "Late", DurationMinutes: 10, ScheduledAt: &late}); err != nil {
		t.Fatal(err)
	}

	list := svc.List(context.Background(), "")
	if len(list) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(list))
	}
	if list[0].Subject != "Late" || list[1].Subject != "Early" || list[2].Subject != "Unscheduled" {
		t.Errorf("wrong order: %s, %s, %s", list[0].Subject, list[1].Subject, list[2].Subject)
	}
}
