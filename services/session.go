package services

import (
	"context"
	"sort"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/maahtami/study-planner-ece1778/model"
)

// RemoteMirror is the remote side of the dual-write path, implemented by
// FirestoreService. Fakes implement it in tests.
type RemoteMirror interface {
	Enabled() bool
	FetchSessions(ctx context.Context, ownerID string) ([]model.StudySession, error)
	PutSession(ctx context.Context, ownerID string, session *model.StudySession) error
	PatchSession(ctx context.Context, ownerID, id string, patch model.SessionPatch) error
	DeleteSession(ctx context.Context, ownerID, id string) error
	FetchGamification(ctx context.Context, ownerID string) (*model.GamificationState, error)
	PutGamification(ctx context.Context, ownerID string, state *model.GamificationState) error
	MergeGamification(ctx context.Context, ownerID string, fields map[string]interface{}) error
}

// SessionService merges local and remote session storage. Writes are
// optimistic-local, eventual-remote: the local write is the durability
// guarantee and returns its error; the remote mirror write is best-effort and
// its failure is swallowed after logging.
type SessionService struct {
	appContext.DefaultService

	sqlSvc *SqliteService
	remote RemoteMirror

	syncMu      sync.Mutex
	lastSyncErr error
}

const SESSION_SVC = "session_svc"

func (svc SessionService) Id() string {
	return SESSION_SVC
}

func (svc *SessionService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *SessionService) Start() error {
	svc.sqlSvc = svc.Service(SQLITE_SVC).(*SqliteService)
	svc.remote = svc.Service(FIRESTORE_SVC).(*FirestoreService)
	return nil
}

// List returns the merged session list. A remote failure never fails the
// read: the local list is served and the failure parked on the side channel.
// Records present on both sides are de-duplicated by id, remote copy winning.
func (svc *SessionService) List(ctx context.Context, ownerID string) []model.StudySession {
	local := svc.sqlSvc.Sessions().List()

	if ownerID == "" || !svc.remote.Enabled() {
		return local
	}

	remote, err := svc.remote.FetchSessions(ctx, ownerID)
	if err != nil {
		svc.setSyncError(err)
		log.WithError(err).Warn("Remote session list unavailable, serving local only")
		return local
	}
	svc.setSyncError(nil)

	seen := make(map[string]bool, len(remote))
	merged := make([]model.StudySession, 0, len(remote)+len(local))
	for _, s := range remote {
		seen[s.ID] = true
		merged = append(merged, s)
	}
	for _, s := range local {
		if !seen[s.ID] {
			merged = append(merged, s)
		}
	}
	sortSessions(merged)
	return merged
}

// LastSyncError reports the most recent remote read failure, nil once a read
// has succeeded again.
func (svc *SessionService) LastSyncError() error {
	svc.syncMu.Lock()
	defer svc.syncMu.Unlock()
	return svc.lastSyncErr
}

func (svc *SessionService) setSyncError(err error) {
	svc.syncMu.Lock()
	svc.lastSyncErr = err
	svc.syncMu.Unlock()
}

func (svc *SessionService) Get(id string) (*model.StudySession, error) {
	session, err := svc.sqlSvc.Sessions().Get(id)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	return session, nil
}

// Create writes through to the local store and mirrors remote best-effort.
func (svc *SessionService) Create(ctx context.Context, ownerID string, session *model.StudySession) (*model.StudySession, error) {
	now := time.Now()
	session.OwnerID = ownerID
	session.CreatedAt = now
	session.UpdatedAt = now

	if _, err := svc.sqlSvc.Sessions().Create(session); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	if ownerID != "" && svc.remote.Enabled() {
		svc.mirror("create", func(ctx context.Context) error {
			return svc.remote.PutSession(ctx, ownerID, session)
		})
	}
	return session, nil
}

// Update patches the local record and mirrors the same patch remote.
func (svc *SessionService) Update(ctx context.Context, id string, patch model.SessionPatch) (*model.StudySession, error) {
	session, err := svc.sqlSvc.Sessions().Patch(id, patch)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	if session.OwnerID != "" && svc.remote.Enabled() {
		svc.mirror("update", func(ctx context.Context) error {
			return svc.remote.PatchSession(ctx, session.OwnerID, id, patch)
		})
	}
	return session, nil
}

func (svc *SessionService) Delete(ctx context.Context, id string) error {
	session, err := svc.sqlSvc.Sessions().Get(id)
	if err != nil {
		return svc.sqlSvc.HandleError(err)
	}

	if err := svc.sqlSvc.Sessions().Delete(id); err != nil {
		return svc.sqlSvc.HandleError(err)
	}

	if session.OwnerID != "" && svc.remote.Enabled() {
		svc.mirror("delete", func(ctx context.Context) error {
			return svc.remote.DeleteSession(ctx, session.OwnerID, id)
		})
	}
	return nil
}

// AdoptLocalSessions stamps the owner onto records created while signed out
// and mirrors them. A failed mirror leaves the record owned locally; the next
// adoption pass picks it up again through the regular write path.
func (svc *SessionService) AdoptLocalSessions(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return nil
	}

	unowned, err := svc.sqlSvc.Sessions().ListUnowned()
	if err != nil {
		return svc.sqlSvc.HandleError(err)
	}

	for i := range unowned {
		session := &unowned[i]
		session.OwnerID = ownerID
		if err := svc.sqlSvc.Sessions().Update(session); err != nil {
			return svc.sqlSvc.HandleError(err)
		}

		if svc.remote.Enabled() {
			svc.mirror("adopt", func(ctx context.Context) error {
				return svc.remote.PutSession(ctx, ownerID, session)
			})
		}
	}

	if len(unowned) > 0 {
		log.WithFields(log.Fields{"owner_id": ownerID, "count": len(unowned)}).
			Info("Adopted local sessions into remote mirror")
	}
	return nil
}

// ClearLocal removes all locally stored sessions.
func (svc *SessionService) ClearLocal() error {
	if err := svc.sqlSvc.Sessions().Clear(); err != nil {
		return svc.sqlSvc.HandleError(err)
	}
	return nil
}

// mirror runs a best-effort remote write. The error is logged and swallowed:
// the local store already holds the record, the mirror may lag. A fresh
// background context is used so an abandoned caller cannot cancel an
// in-flight mirror write.
func (svc *SessionService) mirror(op string, fn func(ctx context.Context) error) {
	if err := fn(context.Background()); err != nil {
		log.WithError(err).WithField("op", op).Warn("Remote mirror write failed, local copy retained")
	}
}

func sortSessions(sessions []model.StudySession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i].ScheduledAt, sessions[j].ScheduledAt
		switch {
		case a == nil && b == nil:
			return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
