package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"vidtube/internal/model"
	"vidtube/internal/pipeline"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by username failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by email failed: %w", err)
	}
	return &user, nil
}

// GetByUsernameOrEmail resolves the login identifier; either argument may be
// empty, matching happens on the stored lowercase value.
func (r *UserRepository) GetByUsernameOrEmail(username, email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ? OR email = ?", username, email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by username or email failed: %w", err)
	}
	return &user, nil
}

// UpdateRefreshToken writes exactly the refresh_token column; nil unsets it.
// A single-column update keeps the save from touching any other field.
func (r *UserRepository) UpdateRefreshToken(userID uint, token *string) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", userID).
		Update("refresh_token", token).Error; err != nil {
		return fmt.Errorf("update refresh token failed: %w", err)
	}
	return nil
}

// SwapRefreshToken replaces the stored refresh token only if it still equals
// current. The compare-and-swap closes the rotation race: of two concurrent
// rotations with the same token, exactly one observes a row change.
func (r *UserRepository) SwapRefreshToken(userID uint, current, next string) (bool, error) {
	result := r.db.Model(&model.User{}).
		Where("id = ? AND refresh_token = ?", userID, current).
		Update("refresh_token", next)
	if result.Error != nil {
		return false, fmt.Errorf("swap refresh token failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *UserRepository) UpdatePasswordHash(userID uint, hash string) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", userID).
		Update("password_hash", hash).Error; err != nil {
		return fmt.Errorf("update password hash failed: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateAccount(userID uint, fullName, email string) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", userID).
		Updates(map[string]any{"full_name": fullName, "email": email}).Error; err != nil {
		return fmt.Errorf("update account failed: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateAvatar(userID uint, url string) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", userID).
		Update("avatar", url).Error; err != nil {
		return fmt.Errorf("update avatar failed: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateCoverImage(userID uint, url string) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", userID).
		Update("cover_image", url).Error; err != nil {
		return fmt.Errorf("update cover image failed: %w", err)
	}
	return nil
}

// ChannelProfile executes an assembled profile pipeline as one query.
// Returns (nil, nil) when no user matches.
func (r *UserRepository) ChannelProfile(stages []pipeline.Stage) (*model.ChannelProfile, error) {
	var profile model.ChannelProfile
	result := compilePipeline(r.db.Model(&model.User{}), "users", stages).
		Limit(1).Scan(&profile)
	if result.Error != nil {
		return nil, fmt.Errorf("channel profile query failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &profile, nil
}

type watchHistoryRow struct {
	model.Video
	OwnerUsername string
	OwnerFullName string
	OwnerAvatar   string
}

// WatchHistory joins the user's ordered history entries against videos and
// each video's owner in a single query. Entry insertion order (entry id) is
// the chronological order; the owner join is flattened to one object.
func (r *UserRepository) WatchHistory(userID uint) ([]model.VideoWithOwner, error) {
	var rows []watchHistoryRow
	err := r.db.Model(&model.WatchHistoryEntry{}).
		Select("videos.*, owners.username AS owner_username, owners.full_name AS owner_full_name, owners.avatar AS owner_avatar").
		Joins("JOIN videos ON videos.id = watch_history_entries.video_id").
		Joins("JOIN users AS owners ON owners.id = videos.owner_id").
		Where("watch_history_entries.user_id = ?", userID).
		Order("watch_history_entries.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("watch history query failed: %w", err)
	}

	history := make([]model.VideoWithOwner, 0, len(rows))
	for _, row := range rows {
		history = append(history, model.VideoWithOwner{
			Video: row.Video,
			Owner: model.VideoOwner{
				Username: row.OwnerUsername,
				FullName: row.OwnerFullName,
				Avatar:   row.OwnerAvatar,
			},
		})
	}
	return history, nil
}

func (r *UserRepository) AddWatchEntry(userID, videoID uint) error {
	entry := model.WatchHistoryEntry{UserID: userID, VideoID: videoID}
	if err := r.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("add watch history entry failed: %w", err)
	}
	return nil
}
