package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/todus/internal/models"
)

// PrefStore is the durable key/value store for user preferences
type PrefStore struct {
	db *gorm.DB
}

// NewPrefStore wraps an open database
func NewPrefStore(db *gorm.DB) *PrefStore {
	return &PrefStore{db: db}
}

// GetString returns the value stored at key. ok is false when the key is unset.
func (s *PrefStore) GetString(key string) (value string, ok bool, err error) {
	var pref models.Preference
	err = s.db.Where("pref_key = ?", key).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference %q: %w", key, err)
	}
	return pref.Value, true, nil
}

// SetString stores value at key, replacing any previous value
func (s *PrefStore) SetString(key, value string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("preference key is empty")
	}
	pref := models.Preference{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pref_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&pref).Error
	if err != nil {
		return fmt.Errorf("failed to write preference %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *PrefStore) Delete(key string) error {
	if err := s.db.Where("pref_key = ?", key).Delete(&models.Preference{}).Error; err != nil {
		return fmt.Errorf("failed to delete preference %q: %w", key, err)
	}
	return nil
}

// Keys returns every stored key with the given prefix, sorted
func (s *PrefStore) Keys(prefix string) ([]string, error) {
	var all []string
	err := s.db.Model(&models.Preference{}).
		Order("pref_key ASC").
		Pluck("pref_key", &all).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
