package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vidtube/internal/app"
	"vidtube/internal/transport/http/middleware"
	"vidtube/internal/transport/http/response"
)

type VideoHandler struct {
	videoService *app.VideoService
	tempDir      string
}

func NewVideoHandler(videoService *app.VideoService, tempDir string) *VideoHandler {
	return &VideoHandler{videoService: videoService, tempDir: tempDir}
}

// List serves the published-video listing. All parameters are optional:
// query (text search), user_id (owner filter), sort_by/sort_type, page and
// limit.
func (h *VideoHandler) List(c *gin.Context) {
	var ownerID uint
	if raw := c.Query("user_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid user_id")
			return
		}
		ownerID = uint(parsed)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	listing, err := h.videoService.List(app.ListVideosInput{
		Query:    c.Query("query"),
		OwnerID:  ownerID,
		SortBy:   c.Query("sort_by"),
		SortDesc: c.Query("sort_type") == "desc",
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "fetch videos failed")
		return
	}

	response.OK(c, listing, "videos fetched successfully")
}

// Publish accepts a multipart form with title, description, an optional
// is_published flag, and videoFile + thumbnail files.
func (h *VideoHandler) Publish(c *gin.Context) {
	user := middleware.SessionUser(c)
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	videoFile, err := c.FormFile("videoFile")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "videoFile is missing")
		return
	}
	thumbnailFile, err := c.FormFile("thumbnail")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "thumbnail is missing")
		return
	}

	videoPath, err := stageUpload(c, videoFile, h.tempDir)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "stage video file failed")
		return
	}
	thumbnailPath, err := stageUpload(c, thumbnailFile, h.tempDir)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "stage thumbnail failed")
		return
	}

	video, err := h.videoService.Publish(c.Request.Context(), app.PublishInput{
		OwnerID:       user.ID,
		Title:         c.PostForm("title"),
		Description:   c.PostForm("description"),
		VideoPath:     videoPath,
		ThumbnailPath: thumbnailPath,
		IsPublished:   c.DefaultPostForm("is_published", "true") != "false",
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "title and description are required")
		default:
			response.Error(c, http.StatusInternalServerError, "publish video failed")
		}
		return
	}

	response.Created(c, video, "video published successfully")
}

func (h *VideoHandler) Get(c *gin.Context) {
	videoID, ok := h.videoIDParam(c)
	if !ok {
		return
	}

	var requesterID uint
	if user := middleware.SessionUser(c); user != nil {
		requesterID = user.ID
	}

	video, err := h.videoService.Get(videoID, requesterID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrVideoNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "fetch video failed")
		}
		return
	}

	response.OK(c, video, "video fetched successfully")
}

// Update patches title/description via the form plus an optional thumbnail
// file replacing the stored one.
func (h *VideoHandler) Update(c *gin.Context) {
	user := middleware.SessionUser(c)
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	videoID, ok := h.videoIDParam(c)
	if !ok {
		return
	}

	thumbnailPath := ""
	if file, err := c.FormFile("thumbnail"); err == nil {
		staged, err := stageUpload(c, file, h.tempDir)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "stage thumbnail failed")
			return
		}
		thumbnailPath = staged
	}

	video, err := h.videoService.Update(c.Request.Context(), videoID, user.ID, app.UpdateVideoInput{
		Title:         c.PostForm("title"),
		Description:   c.PostForm("description"),
		ThumbnailPath: thumbnailPath,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "send an updated title, description or thumbnail")
		case errors.Is(err, app.ErrVideoNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		case errors.Is(err, app.ErrNotOwner):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "update video failed")
		}
		return
	}

	response.OK(c, video, "video updated successfully")
}

func (h *VideoHandler) Delete(c *gin.Context) {
	user := middleware.SessionUser(c)
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	videoID, ok := h.videoIDParam(c)
	if !ok {
		return
	}

	if err := h.videoService.Delete(videoID, user.ID); err != nil {
		switch {
		case errors.Is(err, app.ErrVideoNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		case errors.Is(err, app.ErrNotOwner):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "delete video failed")
		}
		return
	}

	response.OK(c, gin.H{}, "video deleted successfully")
}

func (h *VideoHandler) videoIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("videoId")
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		response.Error(c, http.StatusBadRequest, "invalid videoId")
		return 0, false
	}
	return uint(parsed), true
}
