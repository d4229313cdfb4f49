package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"vidtube/internal/model"
	"vidtube/internal/pipeline"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Create(video *model.Video) error {
	if err := r.db.Create(video).Error; err != nil {
		return fmt.Errorf("create video failed: %w", err)
	}
	return nil
}

func (r *VideoRepository) GetByID(id uint) (*model.Video, error) {
	var video model.Video
	if err := r.db.First(&video, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query video by id failed: %w", err)
	}
	return &video, nil
}

// UpdateFields applies a partial update built by the service from whichever
// optional fields the caller supplied.
func (r *VideoRepository) UpdateFields(id uint, fields map[string]any) error {
	if err := r.db.Model(&model.Video{}).Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return fmt.Errorf("update video failed: %w", err)
	}
	return nil
}

func (r *VideoRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Video{}, id).Error; err != nil {
		return fmt.Errorf("delete video failed: %w", err)
	}
	return nil
}

type videoOwnerRow struct {
	model.Video
	OwnerUsername string
	OwnerFullName string
	OwnerAvatar   string
}

// AggregateWithOwner executes an assembled listing pipeline as one query,
// joining each video's owner and flattening the projection into the result.
func (r *VideoRepository) AggregateWithOwner(stages []pipeline.Stage) ([]model.VideoWithOwner, error) {
	base := r.db.Model(&model.Video{}).
		Joins("JOIN users AS owners ON owners.id = videos.owner_id")

	query := compilePipeline(base, "videos", stages,
		"owners.username AS owner_username",
		"owners.full_name AS owner_full_name",
		"owners.avatar AS owner_avatar",
	)

	var rows []videoOwnerRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("video listing query failed: %w", err)
	}

	videos := make([]model.VideoWithOwner, 0, len(rows))
	for _, row := range rows {
		videos = append(videos, model.VideoWithOwner{
			Video: row.Video,
			Owner: model.VideoOwner{
				Username: row.OwnerUsername,
				FullName: row.OwnerFullName,
				Avatar:   row.OwnerAvatar,
			},
		})
	}
	return videos, nil
}

func (r *VideoRepository) CountPublished() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Video{}).Where("is_published = ?", true).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count published videos failed: %w", err)
	}
	return count, nil
}
