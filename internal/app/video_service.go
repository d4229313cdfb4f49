package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"vidtube/internal/model"
	"vidtube/internal/pipeline"
	"vidtube/internal/storage"
)

var (
	ErrVideoNotFound = errors.New("video not found")
	ErrNotOwner      = errors.New("only the owner can modify this video")
)

// VideoStore is the slice of the video repository the video flows need.
type VideoStore interface {
	Create(video *model.Video) error
	GetByID(id uint) (*model.Video, error)
	UpdateFields(id uint, fields map[string]any) error
	Delete(id uint) error
	AggregateWithOwner(stages []pipeline.Stage) ([]model.VideoWithOwner, error)
	CountPublished() (int64, error)
}

// WatchRecorder appends a video to a viewer's watch history.
type WatchRecorder interface {
	AddWatchEntry(userID, videoID uint) error
}

type VideoService struct {
	videos  VideoStore
	watches WatchRecorder
	store   storage.Client
}

type PublishInput struct {
	OwnerID       uint
	Title         string
	Description   string
	VideoPath     string
	ThumbnailPath string
	IsPublished   bool
}

type UpdateVideoInput struct {
	Title         string
	Description   string
	ThumbnailPath string
}

type ListVideosInput struct {
	Query    string
	OwnerID  uint
	SortBy   string
	SortDesc bool
	Page     int
	Limit    int
}

type VideoListing struct {
	Videos      []model.VideoWithOwner `json:"videos"`
	TotalVideos int64                  `json:"total_videos"`
	TotalPages  int64                  `json:"total_pages"`
	CurrentPage int                    `json:"current_page"`
	Limit       int                    `json:"limit"`
}

func NewVideoService(videos VideoStore, watches WatchRecorder, store storage.Client) *VideoService {
	return &VideoService{videos: videos, watches: watches, store: store}
}

// Publish stores the media and thumbnail remotely, then creates the record.
// Either storage failure means no record is created; staged temp files are
// always gone afterwards (the storage client removes what it touched, the
// early validation paths remove the rest).
func (s *VideoService) Publish(ctx context.Context, input PublishInput) (*model.Video, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" || input.VideoPath == "" || input.ThumbnailPath == "" {
		removeStaged(input.VideoPath, input.ThumbnailPath)
		return nil, ErrInvalidInput
	}

	media, err := s.store.Upload(ctx, input.VideoPath, storage.KindVideo)
	if err != nil {
		removeStaged(input.ThumbnailPath)
		return nil, fmt.Errorf("upload video failed: %w", err)
	}

	thumbnail, err := s.store.Upload(ctx, input.ThumbnailPath, storage.KindImage)
	if err != nil {
		return nil, fmt.Errorf("upload thumbnail failed: %w", err)
	}

	video := &model.Video{
		Title:             title,
		Description:       description,
		VideoURL:          media.URL,
		VideoObjectID:     media.ObjectID,
		ThumbnailURL:      thumbnail.URL,
		ThumbnailObjectID: thumbnail.ObjectID,
		Duration:          media.Duration,
		IsPublished:       input.IsPublished,
		OwnerID:           input.OwnerID,
	}
	if err := s.videos.Create(video); err != nil {
		return nil, err
	}
	return video, nil
}

// Get returns a video. Unpublished videos are visible to their owner only;
// everyone else sees not-found. An authenticated view lands in the viewer's
// watch history.
func (s *VideoService) Get(videoID, requesterID uint) (*model.Video, error) {
	video, err := s.videos.GetByID(videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, ErrVideoNotFound
	}
	if !video.IsPublished && video.OwnerID != requesterID {
		return nil, ErrVideoNotFound
	}

	if requesterID != 0 {
		if err := s.watches.AddWatchEntry(requesterID, video.ID); err != nil {
			log.Printf("record watch history for user %d failed: %v", requesterID, err)
		}
	}
	return video, nil
}

// List assembles the listing pipeline stage by stage from whichever optional
// parameters were supplied and executes it once.
func (s *VideoService) List(input ListVideosInput) (*VideoListing, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = 10
	}

	b := pipeline.New()
	if input.Query != "" {
		b.Search(input.Query, "title", "description")
	}
	if input.OwnerID != 0 {
		b.Match("owner_id", input.OwnerID)
	}
	b.Match("is_published", true)
	if input.SortBy != "" {
		b.Sort(input.SortBy, input.SortDesc)
	} else {
		b.Sort("created_at", true)
	}
	b.Skip((page - 1) * limit).Limit(limit)

	videos, err := s.videos.AggregateWithOwner(b.Stages())
	if err != nil {
		return nil, err
	}

	total, err := s.videos.CountPublished()
	if err != nil {
		return nil, err
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return &VideoListing{
		Videos:      videos,
		TotalVideos: total,
		TotalPages:  totalPages,
		CurrentPage: page,
		Limit:       limit,
	}, nil
}

// Update patches title/description/thumbnail, owner only. A replaced
// thumbnail's old object is deleted best-effort.
func (s *VideoService) Update(ctx context.Context, videoID, requesterID uint, input UpdateVideoInput) (*model.Video, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" && description == "" && input.ThumbnailPath == "" {
		return nil, ErrInvalidInput
	}

	video, err := s.videos.GetByID(videoID)
	if err != nil {
		removeStaged(input.ThumbnailPath)
		return nil, err
	}
	if video == nil {
		removeStaged(input.ThumbnailPath)
		return nil, ErrVideoNotFound
	}
	if video.OwnerID != requesterID {
		removeStaged(input.ThumbnailPath)
		return nil, ErrNotOwner
	}

	fields := map[string]any{}
	if title != "" {
		fields["title"] = title
	}
	if description != "" {
		fields["description"] = description
	}

	oldThumbnail := ""
	if input.ThumbnailPath != "" {
		uploaded, err := s.store.Upload(ctx, input.ThumbnailPath, storage.KindImage)
		if err != nil {
			return nil, fmt.Errorf("upload thumbnail failed: %w", err)
		}
		fields["thumbnail_url"] = uploaded.URL
		fields["thumbnail_object_id"] = uploaded.ObjectID
		oldThumbnail = video.ThumbnailObjectID
	}

	if err := s.videos.UpdateFields(video.ID, fields); err != nil {
		return nil, err
	}

	if oldThumbnail != "" {
		s.deleteRemote(oldThumbnail, storage.KindImage)
	}

	return s.videos.GetByID(video.ID)
}

// Delete removes the metadata record, owner only. Remote object cleanup is
// fire-and-forget: failures are logged and never surface to the caller.
func (s *VideoService) Delete(videoID, requesterID uint) error {
	video, err := s.videos.GetByID(videoID)
	if err != nil {
		return err
	}
	if video == nil {
		return ErrVideoNotFound
	}
	if video.OwnerID != requesterID {
		return ErrNotOwner
	}

	if err := s.videos.Delete(video.ID); err != nil {
		return err
	}

	s.deleteRemote(video.ThumbnailObjectID, storage.KindImage)
	s.deleteRemote(video.VideoObjectID, storage.KindVideo)
	return nil
}

// deleteRemote kicks off a best-effort storage delete without holding up
// the request. The background context outlives the request on purpose.
func (s *VideoService) deleteRemote(objectID string, kind storage.ResourceKind) {
	if objectID == "" {
		return
	}
	go func() {
		if err := s.store.Delete(context.Background(), objectID, kind); err != nil {
			log.Printf("delete storage object %s failed: %v", objectID, err)
		}
	}()
}
