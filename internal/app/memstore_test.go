package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vidtube/internal/model"
	"vidtube/internal/pipeline"
	"vidtube/internal/storage"
)

// memStore is an in-memory stand-in for the repositories. The aggregation
// methods interpret the same stage variants the SQL executor compiles, so
// service-level tests exercise the assembled pipelines end to end.
type memStore struct {
	users         map[uint]*model.User
	videos        map[uint]*model.Video
	subscriptions []model.Subscription
	watchEntries  []model.WatchHistoryEntry
	nextUserID    uint
	nextVideoID   uint
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[uint]*model.User{},
		videos: map[uint]*model.Video{},
	}
}

func copyUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	cp := *u
	if u.RefreshToken != nil {
		token := *u.RefreshToken
		cp.RefreshToken = &token
	}
	return &cp
}

func (m *memStore) Create(user *model.User) error {
	m.nextUserID++
	user.ID = m.nextUserID
	m.users[user.ID] = copyUser(user)
	return nil
}

func (m *memStore) GetByID(id uint) (*model.User, error) {
	return copyUser(m.users[id]), nil
}

func (m *memStore) GetByUsername(username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (m *memStore) GetByEmail(email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (m *memStore) GetByUsernameOrEmail(username, email string) (*model.User, error) {
	for _, u := range m.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdateRefreshToken(userID uint, token *string) error {
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	if token == nil {
		u.RefreshToken = nil
		return nil
	}
	value := *token
	u.RefreshToken = &value
	return nil
}

func (m *memStore) SwapRefreshToken(userID uint, current, next string) (bool, error) {
	u, ok := m.users[userID]
	if !ok || u.RefreshToken == nil || *u.RefreshToken != current {
		return false, nil
	}
	value := next
	u.RefreshToken = &value
	return true, nil
}

func (m *memStore) UpdatePasswordHash(userID uint, hash string) error {
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	u.PasswordHash = hash
	return nil
}

func (m *memStore) UpdateAccount(userID uint, fullName, email string) error {
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	u.FullName = fullName
	u.Email = email
	return nil
}

func (m *memStore) UpdateAvatar(userID uint, url string) error {
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	u.Avatar = url
	return nil
}

func (m *memStore) UpdateCoverImage(userID uint, url string) error {
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	u.CoverImage = url
	return nil
}

func (m *memStore) ChannelProfile(stages []pipeline.Stage) (*model.ChannelProfile, error) {
	var target *model.User
	for _, s := range stages {
		if match, ok := s.(pipeline.MatchLower); ok && match.Column == "username" {
			for _, u := range m.users {
				if strings.ToLower(u.Username) == match.Value {
					target = u
				}
			}
		}
	}
	if target == nil {
		return nil, nil
	}

	profile := &model.ChannelProfile{
		ID:         target.ID,
		Username:   target.Username,
		FullName:   target.FullName,
		Email:      target.Email,
		Avatar:     target.Avatar,
		CoverImage: target.CoverImage,
	}
	for _, s := range stages {
		switch st := s.(type) {
		case pipeline.CountRelated:
			var count int64
			for _, sub := range m.subscriptions {
				if st.ForeignColumn == "channel_id" && sub.ChannelID == target.ID {
					count++
				}
				if st.ForeignColumn == "subscriber_id" && sub.SubscriberID == target.ID {
					count++
				}
			}
			if st.As == "subscribers_count" {
				profile.SubscribersCount = count
			} else {
				profile.ChannelsSubscribedTo = count
			}
		case pipeline.ExistsRelated:
			requester, _ := st.Value.(uint)
			for _, sub := range m.subscriptions {
				if sub.ChannelID == target.ID && sub.SubscriberID == requester {
					profile.IsSubscribed = true
				}
			}
		}
	}
	return profile, nil
}

func (m *memStore) WatchHistory(userID uint) ([]model.VideoWithOwner, error) {
	var history []model.VideoWithOwner
	for _, entry := range m.watchEntries {
		if entry.UserID != userID {
			continue
		}
		video, ok := m.videos[entry.VideoID]
		if !ok {
			continue
		}
		owner, ok := m.users[video.OwnerID]
		if !ok {
			continue
		}
		history = append(history, model.VideoWithOwner{
			Video: *video,
			Owner: model.VideoOwner{
				Username: owner.Username,
				FullName: owner.FullName,
				Avatar:   owner.Avatar,
			},
		})
	}
	return history, nil
}

func (m *memStore) AddWatchEntry(userID, videoID uint) error {
	m.watchEntries = append(m.watchEntries, model.WatchHistoryEntry{
		ID:      uint(len(m.watchEntries) + 1),
		UserID:  userID,
		VideoID: videoID,
	})
	return nil
}

func (m *memStore) CreateVideo(video *model.Video) error {
	m.nextVideoID++
	video.ID = m.nextVideoID
	cp := *video
	m.videos[video.ID] = &cp
	return nil
}

func (m *memStore) GetVideoByID(id uint) (*model.Video, error) {
	v, ok := m.videos[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (m *memStore) UpdateVideoFields(id uint, fields map[string]any) error {
	v, ok := m.videos[id]
	if !ok {
		return fmt.Errorf("video %d not found", id)
	}
	for column, value := range fields {
		switch column {
		case "title":
			v.Title = value.(string)
		case "description":
			v.Description = value.(string)
		case "thumbnail_url":
			v.ThumbnailURL = value.(string)
		case "thumbnail_object_id":
			v.ThumbnailObjectID = value.(string)
		}
	}
	return nil
}

func (m *memStore) DeleteVideo(id uint) error {
	delete(m.videos, id)
	return nil
}

func (m *memStore) AggregateVideos(stages []pipeline.Stage) ([]model.VideoWithOwner, error) {
	ids := make([]uint, 0, len(m.videos))
	for id := range m.videos {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var rows []*model.Video
	for _, id := range ids {
		rows = append(rows, m.videos[id])
	}

	skip, limit := 0, len(rows)
	for _, s := range stages {
		switch st := s.(type) {
		case pipeline.Match:
			var kept []*model.Video
			for _, v := range rows {
				switch st.Column {
				case "is_published":
					if v.IsPublished == st.Value.(bool) {
						kept = append(kept, v)
					}
				case "owner_id":
					if v.OwnerID == st.Value.(uint) {
						kept = append(kept, v)
					}
				}
			}
			rows = kept
		case pipeline.Search:
			var kept []*model.Video
			for _, v := range rows {
				if strings.Contains(v.Title, st.Term) || strings.Contains(v.Description, st.Term) {
					kept = append(kept, v)
				}
			}
			rows = kept
		case pipeline.Sort:
			if st.Column == "created_at" && st.Desc {
				for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
					rows[i], rows[j] = rows[j], rows[i]
				}
			}
		case pipeline.Skip:
			skip = st.N
		case pipeline.Limit:
			limit = st.N
		}
	}

	if skip > len(rows) {
		skip = len(rows)
	}
	rows = rows[skip:]
	if limit < len(rows) {
		rows = rows[:limit]
	}

	var result []model.VideoWithOwner
	for _, v := range rows {
		owner := m.users[v.OwnerID]
		item := model.VideoWithOwner{Video: *v}
		if owner != nil {
			item.Owner = model.VideoOwner{
				Username: owner.Username,
				FullName: owner.FullName,
				Avatar:   owner.Avatar,
			}
		}
		result = append(result, item)
	}
	return result, nil
}

func (m *memStore) CountPublished() (int64, error) {
	var count int64
	for _, v := range m.videos {
		if v.IsPublished {
			count++
		}
	}
	return count, nil
}

// memVideoStore narrows memStore to the VideoStore method names.
type memVideoStore struct {
	*memStore
}

func (m memVideoStore) Create(video *model.Video) error { return m.CreateVideo(video) }
func (m memVideoStore) GetByID(id uint) (*model.Video, error) {
	return m.GetVideoByID(id)
}
func (m memVideoStore) UpdateFields(id uint, fields map[string]any) error {
	return m.UpdateVideoFields(id, fields)
}
func (m memVideoStore) Delete(id uint) error { return m.DeleteVideo(id) }
func (m memVideoStore) AggregateWithOwner(stages []pipeline.Stage) ([]model.VideoWithOwner, error) {
	return m.AggregateVideos(stages)
}

type deleteCall struct {
	ObjectID string
	Kind     storage.ResourceKind
}

// memStorage implements storage.Client. It honors the contract that the
// staged local file is removed on every upload path, success or failure.
type memStorage struct {
	failPaths map[string]bool
	deleteErr map[string]bool
	deletes   chan deleteCall
}

func newMemStorage() *memStorage {
	return &memStorage{
		failPaths: map[string]bool{},
		deleteErr: map[string]bool{},
		deletes:   make(chan deleteCall, 16),
	}
}

func (s *memStorage) Upload(ctx context.Context, localPath string, kind storage.ResourceKind) (*storage.UploadResult, error) {
	os.Remove(localPath)
	if s.failPaths[localPath] {
		return nil, fmt.Errorf("upload %s failed", localPath)
	}
	base := filepath.Base(localPath)
	result := &storage.UploadResult{
		URL:      "https://cdn.test/" + base,
		ObjectID: string(kind) + "/" + base,
	}
	if kind == storage.KindVideo {
		result.Duration = 42.5
	}
	return result, nil
}

func (s *memStorage) Delete(ctx context.Context, objectID string, kind storage.ResourceKind) error {
	s.deletes <- deleteCall{ObjectID: objectID, Kind: kind}
	if s.deleteErr[objectID] {
		return fmt.Errorf("delete %s failed", objectID)
	}
	return nil
}
