// Package models contains database model definitions.
package models

import "time"

// Setting is one named option of the option store. Value holds the serialized option.
type Setting struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;size:191;not null"`
	Value     []byte
	UpdatedAt time.Time
}
