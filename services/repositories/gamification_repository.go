package repositories

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/maahtami/study-planner-ece1778/model"
)

// GamificationRepository persists the singleton gamification snapshot per
// owner (empty owner id is the anonymous instance).
type GamificationRepository struct {
	BaseRepository
}

func NewGamificationRepository(db *gorm.DB) *GamificationRepository {
	return &GamificationRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Get returns the stored snapshot, or nil when none exists yet.
func (ds *GamificationRepository) Get(ownerID string) (*model.GamificationState, error) {
	var state model.GamificationState
	if err := ds.db.Where("owner_id = ?", ownerID).First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (ds *GamificationRepository) Put(state *model.GamificationState) error {
	return ds.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(state).Error
}

func (ds *GamificationRepository) Delete(ownerID string) error {
	return ds.db.Where("owner_id = ?", ownerID).Delete(&model.GamificationState{}).Error
}
