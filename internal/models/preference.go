package models

import (
	"time"
)

// Preference is a single key/value pair of the local preference store
type Preference struct {
	Key       string    `gorm:"column:pref_key;primaryKey"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time
}
