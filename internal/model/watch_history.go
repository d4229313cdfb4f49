package model

import "time"

// WatchHistoryEntry records that a user watched a video. The auto-increment
// ID doubles as insertion order, so history reads ordered by ID reproduce
// the chronological sequence.
type WatchHistoryEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	VideoID   uint      `gorm:"not null;index" json:"video_id"`
	CreatedAt time.Time `json:"created_at"`
}
