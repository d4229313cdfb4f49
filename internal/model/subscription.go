package model

import "time"

// Subscription links a subscriber to a channel, both users. The core only
// reads it in aggregate (counts and membership checks); there are no
// management endpoints.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"not null;index:idx_sub_pair,unique" json:"subscriber_id"`
	ChannelID    uint      `gorm:"not null;index:idx_sub_pair,unique;index" json:"channel_id"`
	CreatedAt    time.Time `json:"created_at"`
}
