package model

import "time"

// Video is an owned content record. VideoObjectID/ThumbnailObjectID are the
// remote storage keys needed for cleanup on delete; Duration is derived from
// the uploaded media at publish time.
type Video struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Title             string    `gorm:"size:256;not null;index" json:"title"`
	Description       string    `gorm:"type:text;not null" json:"description"`
	VideoURL          string    `gorm:"size:512;not null" json:"video_url"`
	VideoObjectID     string    `gorm:"size:256;not null" json:"-"`
	ThumbnailURL      string    `gorm:"size:512;not null" json:"thumbnail_url"`
	ThumbnailObjectID string    `gorm:"size:256;not null" json:"-"`
	Duration          float64   `json:"duration"`
	IsPublished       bool      `gorm:"not null;default:true;index" json:"is_published"`
	OwnerID           uint      `gorm:"not null;index" json:"owner_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// VideoOwner is the flattened owner projection attached by the listing and
// watch-history aggregations.
type VideoOwner struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
}

// VideoWithOwner pairs a video with its projected owner, the shape returned
// by the listing pipeline and each watch-history entry.
type VideoWithOwner struct {
	Video
	Owner VideoOwner `json:"owner"`
}
