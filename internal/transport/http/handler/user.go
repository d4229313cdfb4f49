package handler

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vidtube/internal/app"
	"vidtube/internal/model"
	"vidtube/internal/transport/http/middleware"
	"vidtube/internal/transport/http/response"
)

type UserHandler struct {
	userService    *app.UserService
	profileService *app.ProfileService
	tempDir        string
}

type UpdateAccountRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

func NewUserHandler(userService *app.UserService, profileService *app.ProfileService, tempDir string) *UserHandler {
	return &UserHandler{
		userService:    userService,
		profileService: profileService,
		tempDir:        tempDir,
	}
}

// Register accepts a multipart form: fullName, email, username, password,
// an avatar file (required) and a coverImage file (optional). Files are
// staged locally and handed to the service, which owns their cleanup.
func (h *UserHandler) Register(c *gin.Context) {
	avatarPath, err := h.stageFormFile(c, "avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "avatar file is required")
		return
	}
	coverPath, _ := h.stageFormFile(c, "coverImage")

	user, err := h.userService.Register(c.Request.Context(), app.RegisterInput{
		FullName:       c.PostForm("fullName"),
		Email:          c.PostForm("email"),
		Username:       c.PostForm("username"),
		Password:       c.PostForm("password"),
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "all fields are required")
		case errors.Is(err, app.ErrUserExists):
			response.Error(c, http.StatusConflict, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "register failed")
		}
		return
	}

	response.Created(c, user, "user registered successfully")
}

func (h *UserHandler) CurrentUser(c *gin.Context) {
	user := middleware.SessionUser(c)
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized request")
		return
	}
	response.OK(c, user, "current user fetched successfully")
}

func (h *UserHandler) UpdateAccount(c *gin.Context) {
	user := middleware.SessionUser(c)
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "full name and email are required")
		return
	}

	updated, err := h.userService.UpdateAccount(c.Request.Context(), user.ID, app.UpdateAccountInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "update account failed")
		}
		return
	}

	response.OK(c, updated, "account details updated successfully")
}

func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.userService.UpdateAvatar, "avatar updated successfully")
}

func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage", h.userService.UpdateCoverImage, "cover image updated successfully")
}

// ChannelProfile serves the public channel view. The route uses the
// optional session middleware: an authenticated requester additionally gets
// the isSubscribed flag relative to their own identity.
func (h *UserHandler) ChannelProfile(c *gin.Context) {
	username := c.Param("username")

	var requesterID uint
	if user := middleware.SessionUser(c); user != nil {
		requesterID = user.ID
	}

	profile, err := h.profileService.ChannelProfile(c.Request.Context(), username, requesterID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "username is missing")
		case errors.Is(err, app.ErrChannelNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "fetch channel profile failed")
		}
		return
	}

	response.OK(c, profile, "user channel fetched successfully")
}

func (h *UserHandler) WatchHistory(c *gin.Context) {
	user := middleware.SessionUser(c)
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	history, err := h.profileService.WatchHistory(user.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "fetch watch history failed")
		return
	}

	response.OK(c, history, "watch history fetched successfully")
}

func (h *UserHandler) updateImage(c *gin.Context, field string, update func(ctx context.Context, userID uint, localPath string) (*model.User, error), message string) {
	user := middleware.SessionUser(c)
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	localPath, err := h.stageFormFile(c, field)
	if err != nil {
		response.Error(c, http.StatusBadRequest, fmt.Sprintf("%s file is missing", field))
		return
	}

	updated, err := update(c.Request.Context(), user.ID, localPath)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, fmt.Sprintf("update %s failed", field))
		}
		return
	}

	response.OK(c, updated, message)
}

// stageFormFile writes an uploaded form file into the temp dir under a
// unique name and returns its local path.
func (h *UserHandler) stageFormFile(c *gin.Context, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", err
	}
	return stageUpload(c, file, h.tempDir)
}

func stageUpload(c *gin.Context, file *multipart.FileHeader, tempDir string) (string, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(tempDir, uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", err
	}
	return path, nil
}
