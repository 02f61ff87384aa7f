package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/maahtami/study-planner-ece1778/model"
	"github.com/maahtami/study-planner-ece1778/shared"
)

// FirestoreService is the remote mirror client. It is never the sole source
// of truth: every call here is advisory, wrapped in the shared retry policy,
// and the local store stays authoritative whatever happens on the wire.
//
// Remote layout, namespaced per owner:
//
//	users/{owner}/sessions/{id}      one document per session
//	users/{owner}/meta/gamification  the singleton snapshot
type FirestoreService struct {
	appContext.DefaultService

	client    *firestore.Client
	retry     shared.RetryPolicy
	projectID string
}

const FIRESTORE_SVC = "firestore_svc"

func (svc FirestoreService) Id() string {
	return FIRESTORE_SVC
}

func (svc *FirestoreService) Configure(ctx *appContext.Context) error {
	svc.projectID = os.Getenv("FIRESTORE_PROJECT")
	svc.retry = shared.DefaultRetryPolicy()

	return svc.DefaultService.Configure(ctx)
}

// Start opens the Firestore client. Without a configured project the mirror
// stays disabled and the app runs purely against the local store.
func (svc *FirestoreService) Start() error {
	if svc.projectID == "" {
		log.Warn("FIRESTORE_PROJECT not set, remote mirror disabled")
		return nil
	}

	client, err := firestore.NewClient(context.Background(), svc.projectID)
	if err != nil {
		return fmt.Errorf("creating firestore client: %w", err)
	}

	svc.client = client
	log.WithField("project", svc.projectID).Info("Remote mirror connected")
	return nil
}

func (svc *FirestoreService) Shutdown() {
	if svc.client != nil {
		_ = svc.client.Close()
	}
}

func (svc *FirestoreService) Enabled() bool {
	return svc.client != nil
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (svc *FirestoreService) sessionsCol(ownerID string) *firestore.CollectionRef {
	return svc.client.Collection("users").Doc(ownerID).Collection("sessions")
}

func (svc *FirestoreService) sessionDocRef(ownerID, id string) *firestore.DocumentRef {
	return svc.sessionsCol(ownerID).Doc(id)
}

func (svc *FirestoreService) gamificationDocRef(ownerID string) *firestore.DocumentRef {
	return svc.client.Collection("users").Doc(ownerID).Collection("meta").Doc("gamification")
}

func ensureOwner(ownerID string) error {
	if ownerID == "" {
		return shared.ErrUnauthenticated
	}
	return nil
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type sessionDoc struct {
	OwnerID         string     `firestore:"owner_id"`
	Subject         string     `firestore:"subject"`
	DurationMinutes int        `firestore:"duration_minutes"`
	Notes           string     `firestore:"notes"`
	ScheduledAt     *time.Time `firestore:"scheduled_at"`
	RepeatWeekly    bool       `firestore:"repeat_weekly"`
	Completed       bool       `firestore:"completed"`
	CompletedAt     *time.Time `firestore:"completed_at"`
	Rating          int        `firestore:"rating"`
	ReminderHandle  string     `firestore:"reminder_handle"`
	CreatedAt       time.Time  `firestore:"created_at"`
	UpdatedAt       time.Time  `firestore:"updated_at"`
}

type gamificationDoc struct {
	DayStreak       int        `firestore:"day_streak"`
	SessionStreak   int        `firestore:"session_streak"`
	Badges          []string   `firestore:"badges"`
	TotalCompleted  int        `firestore:"total_completed"`
	CompletedToday  int        `firestore:"completed_today"`
	LastCompletedAt *time.Time `firestore:"last_completed_at"`
	UpdatedAt       time.Time  `firestore:"updated_at"`
}

// sessionPayload builds the wire map. Absent optional fields are omitted
// (the remote rejects undefined values); nullable instants are written as
// null so descending order-by keeps them last.
func sessionPayload(s *model.StudySession) map[string]interface{} {
	doc := map[string]interface{}{
		"owner_id":         s.OwnerID,
		"subject":          s.Subject,
		"duration_minutes": s.DurationMinutes,
		"repeat_weekly":    s.RepeatWeekly,
		"completed":        s.Completed,
		"rating":           s.Rating,
		"scheduled_at":     timeOrNil(s.ScheduledAt),
		"completed_at":     timeOrNil(s.CompletedAt),
		"created_at":       s.CreatedAt,
		"updated_at":       s.UpdatedAt,
	}
	if s.Notes != "" {
		doc["notes"] = s.Notes
	}
	if s.ReminderHandle != "" {
		doc["reminder_handle"] = s.ReminderHandle
	}
	return doc
}

// patchPayload maps a partial update onto merge-set fields. Explicit clears
// are written as null, which is how a merge clears a remote field.
func patchPayload(p model.SessionPatch) map[string]interface{} {
	doc := map[string]interface{}{}
	if p.OwnerID != nil {
		doc["owner_id"] = *p.OwnerID
	}
	if p.Subject != nil {
		doc["subject"] = *p.Subject
	}
	if p.DurationMinutes != nil {
		doc["duration_minutes"] = *p.DurationMinutes
	}
	if p.Notes != nil {
		doc["notes"] = *p.Notes
	}
	if p.ScheduledAt != nil {
		doc["scheduled_at"] = *p.ScheduledAt
	} else if p.ClearScheduledAt {
		doc["scheduled_at"] = nil
	}
	if p.RepeatWeekly != nil {
		doc["repeat_weekly"] = *p.RepeatWeekly
	}
	if p.Completed != nil {
		doc["completed"] = *p.Completed
	}
	if p.CompletedAt != nil {
		doc["completed_at"] = *p.CompletedAt
	} else if p.ClearCompletedAt {
		doc["completed_at"] = nil
	}
	if p.Rating != nil {
		doc["rating"] = *p.Rating
	}
	if p.ReminderHandle != nil {
		doc["reminder_handle"] = *p.ReminderHandle
	} else if p.ClearReminderHandle {
		doc["reminder_handle"] = nil
	}
	return doc
}

func timeOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// ─────────────────────────────────────────
// Session mirror
// ─────────────────────────────────────────

// FetchSessions returns the owner's remote sessions ordered by scheduled_at
// descending, unscheduled ones last.
func (svc *FirestoreService) FetchSessions(ctx context.Context, ownerID string) ([]model.StudySession, error) {
	if err := ensureOwner(ownerID); err != nil {
		return nil, err
	}

	var out []model.StudySession
	err := svc.retry.Do(ctx, "firestore.FetchSessions", func(ctx context.Context) error {
		out = out[:0]

		iter := svc.sessionsCol(ownerID).OrderBy("scheduled_at", firestore.Desc).Documents(ctx)
		defer iter.Stop()

		for {
			snap, err := iter.Next()
			if err != nil {
				if err == iterator.Done {
					return nil
				}
				return fmt.Errorf("firestore FetchSessions: %w", err)
			}

			var doc sessionDoc
			if err := snap.DataTo(&doc); err != nil {
				return fmt.Errorf("decode sessionDoc: %w", err)
			}

			out = append(out, model.StudySession{
				ID:              snap.Ref.ID,
				OwnerID:         doc.OwnerID,
				Subject:         doc.Subject,
				DurationMinutes: doc.DurationMinutes,
				Notes:           doc.Notes,
				ScheduledAt:     doc.ScheduledAt,
				RepeatWeekly:    doc.RepeatWeekly,
				Completed:       doc.Completed,
				CompletedAt:     doc.CompletedAt,
				Rating:          doc.Rating,
				ReminderHandle:  doc.ReminderHandle,
				CreatedAt:       doc.CreatedAt,
				UpdatedAt:       doc.UpdatedAt,
			})
		}
	})
	recordMirrorCall("fetch_sessions", err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PutSession is a full upsert keyed by the session id.
func (svc *FirestoreService) PutSession(ctx context.Context, ownerID string, session *model.StudySession) error {
	if err := ensureOwner(ownerID); err != nil {
		return err
	}

	err := svc.retry.Do(ctx, "firestore.PutSession", func(ctx context.Context) error {
		_, err := svc.sessionDocRef(ownerID, session.ID).Set(ctx, sessionPayload(session))
		if err != nil {
			return fmt.Errorf("firestore PutSession: %w", err)
		}
		return nil
	})
	recordMirrorCall("put_session", err)
	return err
}

// PatchSession merges the given fields; untouched fields stay as they are.
func (svc *FirestoreService) PatchSession(ctx context.Context, ownerID, id string, patch model.SessionPatch) error {
	if err := ensureOwner(ownerID); err != nil {
		return err
	}

	payload := patchPayload(patch)
	if len(payload) == 0 {
		return nil
	}

	err := svc.retry.Do(ctx, "firestore.PatchSession", func(ctx context.Context) error {
		_, err := svc.sessionDocRef(ownerID, id).Set(ctx, payload, firestore.MergeAll)
		if err != nil {
			return fmt.Errorf("firestore PatchSession: %w", err)
		}
		return nil
	})
	recordMirrorCall("patch_session", err)
	return err
}

func (svc *FirestoreService) DeleteSession(ctx context.Context, ownerID, id string) error {
	if err := ensureOwner(ownerID); err != nil {
		return err
	}

	err := svc.retry.Do(ctx, "firestore.DeleteSession", func(ctx context.Context) error {
		_, err := svc.sessionDocRef(ownerID, id).Delete(ctx)
		if err != nil {
			return fmt.Errorf("firestore DeleteSession: %w", err)
		}
		return nil
	})
	recordMirrorCall("delete_session", err)
	return err
}

// ─────────────────────────────────────────
// Gamification mirror
// ─────────────────────────────────────────

// FetchGamification returns the owner's snapshot, or nil when none has been
// mirrored yet.
func (svc *FirestoreService) FetchGamification(ctx context.Context, ownerID string) (*model.GamificationState, error) {
	if err := ensureOwner(ownerID); err != nil {
		return nil, err
	}

	var out *model.GamificationState
	err := svc.retry.Do(ctx, "firestore.FetchGamification", func(ctx context.Context) error {
		snap, err := svc.gamificationDocRef(ownerID).Get(ctx)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				out = nil
				return nil
			}
			return fmt.Errorf("firestore FetchGamification: %w", err)
		}

		var doc gamificationDoc
		if err := snap.DataTo(&doc); err != nil {
			return fmt.Errorf("decode gamificationDoc: %w", err)
		}

		out = &model.GamificationState{
			OwnerID:         ownerID,
			DayStreak:       doc.DayStreak,
			SessionStreak:   doc.SessionStreak,
			Badges:          doc.Badges,
			TotalCompleted:  doc.TotalCompleted,
			CompletedToday:  doc.CompletedToday,
			LastCompletedAt: doc.LastCompletedAt,
			UpdatedAt:       doc.UpdatedAt,
		}
		return nil
	})
	recordMirrorCall("fetch_gamification", err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (svc *FirestoreService) PutGamification(ctx context.Context, ownerID string, state *model.GamificationState) error {
	if err := ensureOwner(ownerID); err != nil {
		return err
	}

	err := svc.retry.Do(ctx, "firestore.PutGamification", func(ctx context.Context) error {
		_, err := svc.gamificationDocRef(ownerID).Set(ctx, gamificationDoc{
			DayStreak:       state.DayStreak,
			SessionStreak:   state.SessionStreak,
			Badges:          state.Badges,
			TotalCompleted:  state.TotalCompleted,
			CompletedToday:  state.CompletedToday,
			LastCompletedAt: state.LastCompletedAt,
			UpdatedAt:       state.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("firestore PutGamification: %w", err)
		}
		return nil
	})
	recordMirrorCall("put_gamification", err)
	return err
}

// MergeGamification writes only the given fields, leaving the rest of the
// remote snapshot untouched.
func (svc *FirestoreService) MergeGamification(ctx context.Context, ownerID string, fields map[string]interface{}) error {
	if err := ensureOwner(ownerID); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	err := svc.retry.Do(ctx, "firestore.MergeGamification", func(ctx context.Context) error {
		_, err := svc.gamificationDocRef(ownerID).Set(ctx, fields, firestore.MergeAll)
		if err != nil {
			return fmt.Errorf("firestore MergeGamification: %w", err)
		}
		return nil
	})
	recordMirrorCall("merge_gamification", err)
	return err
}
