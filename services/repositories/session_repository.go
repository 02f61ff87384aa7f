package repositories

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/maahtami/study-planner-ece1778/model"
)

// StudySessionRepository handles study-session database operations. The table
// is keyed by session id so single-record updates are real partial updates
// rather than rewrites of the whole collection.
type StudySessionRepository struct {
	BaseRepository
}

func NewStudySessionRepository(db *gorm.DB) *StudySessionRepository {
	return &StudySessionRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// List returns every locally stored session, scheduled ones first (newest
// schedule on top), unscheduled ones last. It never fails the caller: a read
// error is logged and an empty list returned.
func (ds *StudySessionRepository) List() []model.StudySession {
	var sessions []model.StudySession
	if err := ds.db.Order("scheduled_at IS NULL, scheduled_at DESC").Find(&sessions).Error; err != nil {
		log.WithError(err).Error("Failed to list local sessions")
		return []model.StudySession{}
	}
	return sessions
}

// ListUnowned returns sessions created while signed out, candidates for
// adoption into the remote mirror once an owner id is available.
func (ds *StudySessionRepository) ListUnowned() ([]model.StudySession, error) {
	var sessions []model.StudySession
	if err := ds.db.Where("owner_id = ?", "").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (ds *StudySessionRepository) Get(id string) (*model.StudySession, error) {
	var session model.StudySession
	if err := ds.db.Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (ds *StudySessionRepository) Create(session *model.StudySession) (*model.StudySession, error) {
	if session.ID == "" {
		id, _ := uuid.NewV7()
		session.ID = id.String()
	}
	if err := ds.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (ds *StudySessionRepository) Update(session *model.StudySession) error {
	return ds.db.Save(session).Error
}

// Patch applies a partial update to the stored record and returns the result.
func (ds *StudySessionRepository) Patch(id string, patch model.SessionPatch) (*model.StudySession, error) {
	session, err := ds.Get(id)
	if err != nil {
		return nil, err
	}
	patch.Apply(session)
	if err := ds.db.Save(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (ds *StudySessionRepository) Delete(id string) error {
	return ds.db.Where("id = ?", id).Delete(&model.StudySession{}).Error
}

// Clear removes every locally stored session.
func (ds *StudySessionRepository) Clear() error {
	return ds.db.Where("1 = 1").Delete(&model.StudySession{}).Error
}
