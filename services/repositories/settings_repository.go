package repositories

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/maahtami/study-planner-ece1778/model"
)

// SettingsRepository persists the single local settings row.
type SettingsRepository struct {
	BaseRepository
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Get returns the stored settings, falling back to defaults when the row has
// never been written.
func (ds *SettingsRepository) Get() (*model.AppSettings, error) {
	var settings model.AppSettings
	if err := ds.db.Where("id = ?", model.SettingsID).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.DefaultSettings(), nil
		}
		return nil, err
	}
	return &settings, nil
}

func (ds *SettingsRepository) Put(settings *model.AppSettings) error {
	settings.ID = model.SettingsID
	return ds.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(settings).Error
}
