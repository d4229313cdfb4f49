package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vidtube/internal/model"
	"vidtube/internal/pkg/jwtutil"
	"vidtube/internal/transport/http/response"
)

const (
	ContextUserKey = "session_user"

	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// SessionResolver verifies an access token and maps it to a stored user.
type SessionResolver interface {
	ParseAccessToken(token string) (*jwtutil.AccessClaims, error)
	ResolveSessionUser(userID uint) (*model.User, error)
}

// AuthRequired rejects requests without a valid access token. The token is
// read from the accessToken cookie first, the Authorization bearer header
// second.
func AuthRequired(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "unauthorized request")
			c.Abort()
			return
		}

		user, ok := resolve(resolver, token)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Invalid Access Token")
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// AuthOptional resolves an identity when a valid token is present and lets
// the request through anonymously otherwise. Whether a route tolerates
// anonymous callers is decided here, in route configuration, not by a
// request parameter.
func AuthOptional(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if user, ok := resolve(resolver, token); ok {
				c.Set(ContextUserKey, user)
			}
		}
		c.Next()
	}
}

// SessionUser returns the identity attached by AuthRequired/AuthOptional,
// or nil for an anonymous request.
func SessionUser(c *gin.Context) *model.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*model.User)
	if !ok {
		return nil
	}
	return user
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}

	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	const prefix = "Bearer "
	if strings.HasPrefix(authHeader, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
	}
	return ""
}

func resolve(resolver SessionResolver, token string) (*model.User, bool) {
	claims, err := resolver.ParseAccessToken(token)
	if err != nil {
		return nil, false
	}
	user, err := resolver.ResolveSessionUser(claims.UserID)
	if err != nil {
		return nil, false
	}
	return user, true
}
