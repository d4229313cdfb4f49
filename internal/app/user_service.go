package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"vidtube/internal/model"
	"vidtube/internal/storage"
)

// UserStore is the slice of the user repository the account flows need.
type UserStore interface {
	Create(user *model.User) error
	GetByID(id uint) (*model.User, error)
	GetByUsername(username string) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	UpdateAccount(userID uint, fullName, email string) error
	UpdateAvatar(userID uint, url string) error
	UpdateCoverImage(userID uint, url string) error
}

// ProfileInvalidator drops cached channel-profile views after the channel
// user edits profile fields.
type ProfileInvalidator interface {
	InvalidateProfile(ctx context.Context, username string) error
}

type UserService struct {
	users   UserStore
	store   storage.Client
	profile ProfileInvalidator
}

type RegisterInput struct {
	FullName  string
	Email     string
	Username  string
	Password  string
	AvatarPath     string
	CoverImagePath string
}

type UpdateAccountInput struct {
	FullName string
	Email    string
}

func NewUserService(users UserStore, store storage.Client, profile ProfileInvalidator) *UserService {
	return &UserService{users: users, store: store, profile: profile}
}

// Register creates an account. The avatar is required and both images are
// pushed to object storage before the record is written; staged files that
// never reach the storage client are removed here so nothing lingers on
// local disk.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.ToLower(strings.TrimSpace(input.Username))
	password := input.Password

	if fullName == "" || email == "" || username == "" || password == "" || input.AvatarPath == "" {
		removeStaged(input.AvatarPath, input.CoverImagePath)
		return nil, ErrInvalidInput
	}

	existingByName, err := s.users.GetByUsername(username)
	if err != nil {
		removeStaged(input.AvatarPath, input.CoverImagePath)
		return nil, err
	}
	existingByEmail, err := s.users.GetByEmail(email)
	if err != nil {
		removeStaged(input.AvatarPath, input.CoverImagePath)
		return nil, err
	}
	if existingByName != nil || existingByEmail != nil {
		removeStaged(input.AvatarPath, input.CoverImagePath)
		return nil, ErrUserExists
	}

	avatar, err := s.store.Upload(ctx, input.AvatarPath, storage.KindImage)
	if err != nil {
		removeStaged(input.CoverImagePath)
		return nil, fmt.Errorf("upload avatar failed: %w", err)
	}

	coverURL := ""
	if input.CoverImagePath != "" {
		cover, err := s.store.Upload(ctx, input.CoverImagePath, storage.KindImage)
		if err != nil {
			return nil, fmt.Errorf("upload cover image failed: %w", err)
		}
		coverURL = cover.URL
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		FullName:     fullName,
		Email:        email,
		Username:     username,
		Avatar:       avatar.URL,
		CoverImage:   coverURL,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	Sanitize(user)
	return user, nil
}

func (s *UserService) UpdateAccount(ctx context.Context, userID uint, input UpdateAccountInput) (*model.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if fullName == "" || email == "" {
		return nil, ErrInvalidInput
	}

	if err := s.users.UpdateAccount(userID, fullName, email); err != nil {
		return nil, err
	}
	return s.reloadInvalidated(ctx, userID)
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, localPath string) (*model.User, error) {
	if localPath == "" {
		return nil, ErrInvalidInput
	}

	uploaded, err := s.store.Upload(ctx, localPath, storage.KindImage)
	if err != nil {
		return nil, fmt.Errorf("upload avatar failed: %w", err)
	}
	if err := s.users.UpdateAvatar(userID, uploaded.URL); err != nil {
		return nil, err
	}
	return s.reloadInvalidated(ctx, userID)
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID uint, localPath string) (*model.User, error) {
	if localPath == "" {
		return nil, ErrInvalidInput
	}

	uploaded, err := s.store.Upload(ctx, localPath, storage.KindImage)
	if err != nil {
		return nil, fmt.Errorf("upload cover image failed: %w", err)
	}
	if err := s.users.UpdateCoverImage(userID, uploaded.URL); err != nil {
		return nil, err
	}
	return s.reloadInvalidated(ctx, userID)
}

// reloadInvalidated returns the updated sanitized record and drops any
// cached profile views. Cache failures only get logged; the update already
// happened.
func (s *UserService) reloadInvalidated(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if s.profile != nil {
		if err := s.profile.InvalidateProfile(ctx, user.Username); err != nil {
			log.Printf("invalidate profile cache for %s failed: %v", user.Username, err)
		}
	}

	Sanitize(user)
	return user, nil
}

// removeStaged deletes temp upload files that will never be handed to the
// storage client. Paths may be empty.
func removeStaged(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove staged file %s failed: %v", path, err)
		}
	}
}
