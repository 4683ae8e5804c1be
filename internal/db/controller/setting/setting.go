// Package setting implements the option store: named, serialized values kept in the settings table.
package setting

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jdeb-project/jdeb/internal/db/models"
)

const (
	nameQueryPattern = "name = ?"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when attempting to access a setting with an empty name.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrSettingAlreadyExists is returned when attempting to add a setting that already exists.
	ErrSettingAlreadyExists = errors.New("setting already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

func check(db *gorm.DB, name string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	return nil
}

// Get retrieves a setting by its name.
func Get(ctx context.Context, db *gorm.DB, name string) (*models.Setting, error) {
	if err := check(db, name); err != nil {
		return nil, err
	}

	var setting models.Setting

	result := db.WithContext(ctx).Where(nameQueryPattern, name).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}

		return nil, result.Error
	}

	return &setting, nil
}

// Exists reports whether a setting with the given name is stored.
func Exists(ctx context.Context, db *gorm.DB, name string) (bool, error) {
	if err := check(db, name); err != nil {
		return false, err
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.Setting{}).Where(nameQueryPattern, name).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// Names returns the names of all stored settings in alphabetical order.
func Names(ctx context.Context, db *gorm.DB) ([]string, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var names []string
	if err := db.WithContext(ctx).Model(&models.Setting{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, err
	}

	return names, nil
}

// Add stores a new setting. It fails with ErrSettingAlreadyExists when the name is taken.
func Add(ctx context.Context, db *gorm.DB, name string, value []byte) error {
	if err := check(db, name); err != nil {
		return err
	}

	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Setting{Name: name, Value: value})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSettingAlreadyExists
	}

	return nil
}

// Set stores the value under name, replacing a previous value (single statement upsert).
func Set(ctx context.Context, db *gorm.DB, name string, value []byte) error {
	if err := check(db, name); err != nil {
		return err
	}

	setting := &models.Setting{Name: name, Value: value, UpdatedAt: time.Now()}

	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(setting).Error
}

// Delete deletes a setting by name.
func Delete(ctx context.Context, db *gorm.DB, name string) error {
	if err := check(db, name); err != nil {
		return err
	}

	result := db.WithContext(ctx).Where(nameQueryPattern, name).Delete(&models.Setting{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}
