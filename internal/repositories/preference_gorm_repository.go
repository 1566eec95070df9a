package repositories

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"storefront/internal/models"
)

// OpenPreferenceDB opens the durable storage and migrates its schema.
// driver is "sqlite" or "postgres".
func OpenPreferenceDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported session storage driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}
	if err := db.AutoMigrate(&models.Preference{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session storage: %w", err)
	}
	return db, nil
}

// GORMPreferenceRepository is a GORM implementation of PreferenceRepository.
type GORMPreferenceRepository struct {
	db *gorm.DB
}

// NewGORMPreferenceRepository creates a new instance of GORMPreferenceRepository.
func NewGORMPreferenceRepository(db *gorm.DB) *GORMPreferenceRepository {
	return &GORMPreferenceRepository{
		db: db,
	}
}

// Get returns the value stored under key.
func (r *GORMPreferenceRepository) Get(key string) (string, bool, error) {
	var pref models.Preference
	if err := r.db.First(&pref, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return pref.Value, true, nil
}

// Set stores value under key, replacing any previous value.
func (r *GORMPreferenceRepository) Set(key, value string) error {
	pref := models.Preference{Key: key, Value: value}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&pref).Error
	if err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}

// Delete removes keys. Missing keys are ignored.
func (r *GORMPreferenceRepository) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.db.Where("key IN ?", keys).Delete(&models.Preference{}).Error; err != nil {
		return fmt.Errorf("failed to delete preferences: %w", err)
	}
	return nil
}
