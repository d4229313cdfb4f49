package model

import "time"

// User is the identity record. PasswordHash and RefreshToken never leave the
// service layer: both carry `json:"-"` and aggregation projections exclude
// them. RefreshToken is a pointer so that "unset" (NULL) is distinguishable
// from an empty string; logout unsets the column entirely.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	FullName     string    `gorm:"size:128;not null;index" json:"full_name"`
	Avatar       string    `gorm:"size:512;not null" json:"avatar"`
	CoverImage   string    `gorm:"size:512" json:"cover_image"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	RefreshToken *string   `gorm:"size:512" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ChannelProfile is the denormalized channel view produced by the profile
// aggregation: a fixed projection of User plus subscription counts and the
// requester-relative isSubscribed flag.
type ChannelProfile struct {
	ID                   uint   `json:"id"`
	Username             string `json:"username"`
	FullName             string `json:"full_name"`
	Email                string `json:"email"`
	Avatar               string `json:"avatar"`
	CoverImage           string `json:"cover_image"`
	SubscribersCount     int64  `json:"subscribers_count"`
	ChannelsSubscribedTo int64  `json:"channels_subscribed_to"`
	IsSubscribed         bool   `json:"is_subscribed"`
}
