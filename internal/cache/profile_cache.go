package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"vidtube/internal/model"
)

// ProfileCache keeps channel-profile views in redis for a short TTL. Keys
// include the requester id because isSubscribed is requester-relative; the
// anonymous view is cached under requester 0.
type ProfileCache struct {
	client     *redisv9.Client
	profileTTL time.Duration
}

func NewProfileCache(client *redisv9.Client, profileTTL time.Duration) *ProfileCache {
	if profileTTL <= 0 {
		profileTTL = 30 * time.Second
	}
	return &ProfileCache{
		client:     client,
		profileTTL: profileTTL,
	}
}

func (c *ProfileCache) GetProfile(ctx context.Context, username string, requesterID uint) (*model.ChannelProfile, bool, error) {
	key := c.profileKey(username, requesterID)
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get profile failed: %w", err)
	}

	var profile model.ChannelProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached profile failed: %w", err)
	}
	return &profile, true, nil
}

func (c *ProfileCache) SetProfile(ctx context.Context, username string, requesterID uint, profile *model.ChannelProfile) error {
	key := c.profileKey(username, requesterID)
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile cache failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.profileTTL).Err(); err != nil {
		return fmt.Errorf("redis set profile failed: %w", err)
	}
	return nil
}

// InvalidateProfile drops every cached view of a channel, all requesters
// included. Called after the channel user edits profile fields.
func (c *ProfileCache) InvalidateProfile(ctx context.Context, username string) error {
	pattern := fmt.Sprintf("channel:profile:%s:*", username)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis delete profile failed: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan profiles failed: %w", err)
	}
	return nil
}

func (c *ProfileCache) profileKey(username string, requesterID uint) string {
	return fmt.Sprintf("channel:profile:%s:%d", username, requesterID)
}
