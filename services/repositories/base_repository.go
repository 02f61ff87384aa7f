// Package repositories holds the data-access layer over the local sqlite
// store. The local store is the durability contract: every repository write
// here succeeds or fails synchronously, with no remote involvement.
package repositories

import (
	"gorm.io/gorm"
)

// BaseRepository provides the shared database handle
type BaseRepository struct {
	db *gorm.DB
}

func NewBaseRepository(db *gorm.DB) BaseRepository {
	return BaseRepository{db: db}
}

// DB returns the underlying database connection
func (r *BaseRepository) DB() *gorm.DB {
	return r.db
}
