// internal/models/activity.go
package models

import (
	"time"
)

// Favorite is written by the collections feature; the catalog only reads it
// for the favorites-only filter.
type Favorite struct {
	UserID      uint      `json:"user_id" gorm:"primaryKey"`
	FurnitureID uint      `json:"furniture_id" gorm:"primaryKey;index"`
	CreatedAt   time.Time `json:"created_at"`
}

// SearchLog records one executed search for analytics.
type SearchLog struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Query       string    `json:"query" gorm:"size:255;not null;index"`
	ResultCount int64     `json:"result_count" gorm:"not null;default:0"`
	UserID      *uint     `json:"user_id" gorm:"index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
