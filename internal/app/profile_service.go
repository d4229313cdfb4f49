package app

import (
	"context"
	"errors"
	"log"
	"strings"

	"vidtube/internal/model"
	"vidtube/internal/pipeline"
)

var ErrChannelNotFound = errors.New("channel does not exist")

// ProfileStore executes the read-only aggregations.
type ProfileStore interface {
	ChannelProfile(stages []pipeline.Stage) (*model.ChannelProfile, error)
	WatchHistory(userID uint) ([]model.VideoWithOwner, error)
}

// ProfileCache holds short-lived channel-profile views keyed by channel and
// requester. A nil cache disables caching.
type ProfileCache interface {
	GetProfile(ctx context.Context, username string, requesterID uint) (*model.ChannelProfile, bool, error)
	SetProfile(ctx context.Context, username string, requesterID uint, profile *model.ChannelProfile) error
}

type ProfileService struct {
	users ProfileStore
	cache ProfileCache
}

func NewProfileService(users ProfileStore, cache ProfileCache) *ProfileService {
	return &ProfileService{users: users, cache: cache}
}

// ChannelProfile builds the profile view for a channel username. requesterID
// is zero for anonymous callers; the isSubscribed stage is appended only
// when an identity is present, so the anonymous pipeline is one stage
// shorter and the flag stays false.
func (s *ProfileService) ChannelProfile(ctx context.Context, username string, requesterID uint) (*model.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, ErrInvalidInput
	}

	if s.cache != nil {
		cached, hit, err := s.cache.GetProfile(ctx, username, requesterID)
		if err != nil {
			log.Printf("profile cache read for %s failed: %v", username, err)
		} else if hit {
			return cached, nil
		}
	}

	b := pipeline.New().
		MatchLower("username", username).
		CountRelated("subscriptions", "channel_id", "subscribers_count").
		CountRelated("subscriptions", "subscriber_id", "channels_subscribed_to")
	if requesterID != 0 {
		b.ExistsRelated("subscriptions", "channel_id", "subscriber_id", requesterID, "is_subscribed")
	}
	b.Project("id", "username", "full_name", "email", "avatar", "cover_image")

	profile, err := s.users.ChannelProfile(b.Stages())
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrChannelNotFound
	}

	if s.cache != nil {
		if err := s.cache.SetProfile(ctx, username, requesterID, profile); err != nil {
			log.Printf("profile cache write for %s failed: %v", username, err)
		}
	}
	return profile, nil
}

// WatchHistory returns the requester's watched videos in insertion order,
// each carrying a flattened owner projection.
func (s *ProfileService) WatchHistory(userID uint) ([]model.VideoWithOwner, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	return s.users.WatchHistory(userID)
}
