package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vidtube/internal/app"
	"vidtube/internal/transport/http/middleware"
	"vidtube/internal/transport/http/response"
)

// CookieConfig controls how the token cookies are written. Both cookies are
// http-only; Secure is relaxed only in dev configs.
type CookieConfig struct {
	Secure        bool
	Domain        string
	AccessMaxAge  int
	RefreshMaxAge int
}

type AuthHandler struct {
	authService *app.AuthService
	cookies     CookieConfig
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func NewAuthHandler(authService *app.AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "username or email and password are required")
		return
	}

	result, err := h.authService.Login(app.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "username or email is required")
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidCredential):
			response.Error(c, http.StatusUnauthorized, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "login failed")
		}
		return
	}

	h.setTokenCookies(c, result.Tokens)
	response.OK(c, gin.H{
		"user":          result.User,
		"access_token":  result.Tokens.AccessToken,
		"refresh_token": result.Tokens.RefreshToken,
	}, "user logged in successfully")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	user := middleware.SessionUser(c)
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := h.authService.Logout(user.ID); err != nil {
		response.Error(c, http.StatusInternalServerError, "logout failed")
		return
	}

	h.clearTokenCookies(c)
	response.OK(c, gin.H{}, "user logged out")
}

// RefreshToken rotates the refresh token carried in the cookie or, as a
// fallback, the request body.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	incoming, _ := c.Cookie(middleware.RefreshTokenCookie)
	if incoming == "" {
		var req RefreshTokenRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			incoming = req.RefreshToken
		}
	}
	if incoming == "" {
		response.Error(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	pair, err := h.authService.RotateRefreshToken(incoming)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrTokenExpiredOrUsed):
			response.Error(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, app.ErrUnauthorized):
			response.Error(c, http.StatusUnauthorized, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "refresh token rotation failed")
		}
		return
	}

	h.setTokenCookies(c, *pair)
	response.OK(c, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "access token refreshed")
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user := middleware.SessionUser(c)
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "old and new password are required")
		return
	}

	if err := h.authService.ChangePassword(user.ID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrWrongOldPassword):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "change password failed")
		}
		return
	}

	response.OK(c, gin.H{}, "password changed successfully")
}

func (h *AuthHandler) setTokenCookies(c *gin.Context, tokens app.TokenPair) {
	c.SetCookie(middleware.AccessTokenCookie, tokens.AccessToken,
		h.cookies.AccessMaxAge, "/", h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, tokens.RefreshToken,
		h.cookies.RefreshMaxAge, "/", h.cookies.Domain, h.cookies.Secure, true)
}

func (h *AuthHandler) clearTokenCookies(c *gin.Context) {
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
}
