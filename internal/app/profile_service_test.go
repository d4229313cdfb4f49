package app

import (
	"context"
	"errors"
	"testing"

	"vidtube/internal/model"
)

// cacheSpy records profile cache traffic and can serve a canned hit.
type cacheSpy struct {
	hit    *model.ChannelProfile
	reads  int
	writes int
}

func (c *cacheSpy) GetProfile(ctx context.Context, username string, requesterID uint) (*model.ChannelProfile, bool, error) {
	c.reads++
	if c.hit != nil {
		return c.hit, true, nil
	}
	return nil, false, nil
}

func (c *cacheSpy) SetProfile(ctx context.Context, username string, requesterID uint, profile *model.ChannelProfile) error {
	c.writes++
	return nil
}

func seedChannelWithSubscribers(t *testing.T, store *memStore) (channel *model.User, subscribers []*model.User) {
	t.Helper()
	channel = seedUser(t, store, "chaiaurcode", "channel@example.com", "secret123")
	for _, name := range []string{"alice", "bob", "carol"} {
		sub := seedUser(t, store, name, name+"@example.com", "secret123")
		subscribers = append(subscribers, sub)
		store.subscriptions = append(store.subscriptions, model.Subscription{
			SubscriberID: sub.ID,
			ChannelID:    channel.ID,
		})
	}
	// The channel follows two of its own subscribers back.
	store.subscriptions = append(store.subscriptions,
		model.Subscription{SubscriberID: channel.ID, ChannelID: subscribers[0].ID},
		model.Subscription{SubscriberID: channel.ID, ChannelID: subscribers[1].ID},
	)
	return channel, subscribers
}

func TestChannelProfileCounts(t *testing.T) {
	store := newMemStore()
	channel, subscribers := seedChannelWithSubscribers(t, store)
	svc := NewProfileService(store, nil)

	profile, err := svc.ChannelProfile(context.Background(), "ChaiAurCode", subscribers[0].ID)
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if profile.ID != channel.ID || profile.Username != "chaiaurcode" {
		t.Fatalf("wrong channel resolved: %+v", profile)
	}
	if profile.SubscribersCount != 3 {
		t.Fatalf("subscribers count = %d, want 3", profile.SubscribersCount)
	}
	if profile.ChannelsSubscribedTo != 2 {
		t.Fatalf("channels subscribed to = %d, want 2", profile.ChannelsSubscribedTo)
	}
	if !profile.IsSubscribed {
		t.Fatal("requester is a subscriber, is_subscribed must be true")
	}
}

func TestChannelProfileIsSubscribedReflectsRequester(t *testing.T) {
	store := newMemStore()
	_, subscribers := seedChannelWithSubscribers(t, store)
	outsider := seedUser(t, store, "dave", "dave@example.com", "secret123")
	svc := NewProfileService(store, nil)

	profile, err := svc.ChannelProfile(context.Background(), "chaiaurcode", outsider.ID)
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if profile.IsSubscribed {
		t.Fatal("non-subscriber requester must see is_subscribed false")
	}

	profile, err = svc.ChannelProfile(context.Background(), "chaiaurcode", subscribers[2].ID)
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if !profile.IsSubscribed {
		t.Fatal("subscriber requester must see is_subscribed true")
	}
}

func TestChannelProfileAnonymousRequester(t *testing.T) {
	store := newMemStore()
	seedChannelWithSubscribers(t, store)
	svc := NewProfileService(store, nil)

	profile, err := svc.ChannelProfile(context.Background(), "chaiaurcode", 0)
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if profile.IsSubscribed {
		t.Fatal("anonymous requester must see is_subscribed false")
	}
	if profile.SubscribersCount != 3 {
		t.Fatalf("subscribers count = %d, want 3", profile.SubscribersCount)
	}
}

func TestChannelProfileNotFoundAndInvalidInput(t *testing.T) {
	store := newMemStore()
	svc := NewProfileService(store, nil)

	if _, err := svc.ChannelProfile(context.Background(), "  ", 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank username: got %v, want ErrInvalidInput", err)
	}
	if _, err := svc.ChannelProfile(context.Background(), "ghost", 0); !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("unknown channel: got %v, want ErrChannelNotFound", err)
	}
}

func TestChannelProfileUsesCache(t *testing.T) {
	store := newMemStore()
	seedChannelWithSubscribers(t, store)

	cache := &cacheSpy{}
	svc := NewProfileService(store, cache)

	if _, err := svc.ChannelProfile(context.Background(), "chaiaurcode", 0); err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if cache.reads != 1 || cache.writes != 1 {
		t.Fatalf("cache miss path: reads=%d writes=%d, want 1/1", cache.reads, cache.writes)
	}

	cache.hit = &model.ChannelProfile{Username: "chaiaurcode", SubscribersCount: 99}
	profile, err := svc.ChannelProfile(context.Background(), "chaiaurcode", 0)
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if profile.SubscribersCount != 99 {
		t.Fatal("cache hit must short-circuit the store")
	}
	if cache.writes != 1 {
		t.Fatal("cache hit must not rewrite the entry")
	}
}

func TestWatchHistoryOrderAndOwnerProjection(t *testing.T) {
	store := newMemStore()
	owner := seedUser(t, store, "creator", "creator@example.com", "secret123")
	viewer := seedUser(t, store, "viewer", "viewer@example.com", "secret123")

	var videoIDs []uint
	for _, title := range []string{"first", "second", "third"} {
		video := &model.Video{Title: title, IsPublished: true, OwnerID: owner.ID}
		if err := store.CreateVideo(video); err != nil {
			t.Fatalf("seed video: %v", err)
		}
		videoIDs = append(videoIDs, video.ID)
	}

	// Watched out of creation order; history must preserve watch order.
	for _, id := range []uint{videoIDs[1], videoIDs[2], videoIDs[0]} {
		if err := store.AddWatchEntry(viewer.ID, id); err != nil {
			t.Fatalf("seed watch entry: %v", err)
		}
	}

	svc := NewProfileService(store, nil)
	history, err := svc.WatchHistory(viewer.ID)
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	wantTitles := []string{"second", "third", "first"}
	for i, item := range history {
		if item.Title != wantTitles[i] {
			t.Fatalf("history[%d] = %q, want %q", i, item.Title, wantTitles[i])
		}
		if item.Owner.Username != "creator" || item.Owner.FullName == "" || item.Owner.Avatar == "" {
			t.Fatalf("history[%d] owner projection incomplete: %+v", i, item.Owner)
		}
	}
}

func TestWatchHistoryRequiresIdentity(t *testing.T) {
	svc := NewProfileService(newMemStore(), nil)
	if _, err := svc.WatchHistory(0); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("anonymous history: got %v, want ErrUnauthorized", err)
	}
}
