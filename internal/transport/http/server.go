package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "vidtube/internal/app"
	"vidtube/internal/bootstrap"
	"vidtube/internal/cache"
	"vidtube/internal/repository"
	"vidtube/internal/transport/http/handler"
	"vidtube/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/api/v1/healthcheck", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	videoRepo := repository.NewVideoRepository(app.MySQL)

	tokenCfg := appsvc.TokenConfig{
		AccessSecret:  app.Config.Auth.AccessTokenSecret,
		AccessExpiry:  time.Duration(app.Config.Auth.AccessExpireMinute) * time.Minute,
		RefreshSecret: app.Config.Auth.RefreshTokenSecret,
		RefreshExpiry: time.Duration(app.Config.Auth.RefreshExpireHour) * time.Hour,
	}

	profileCache := cache.NewProfileCache(app.Redis,
		time.Duration(app.Config.Auth.ProfileCacheSeconds)*time.Second)

	authService := appsvc.NewAuthService(userRepo, tokenCfg)
	userService := appsvc.NewUserService(userRepo, app.Storage, profileCache)
	profileService := appsvc.NewProfileService(userRepo, profileCache)
	videoService := appsvc.NewVideoService(videoRepo, userRepo, app.Storage)

	cookieCfg := handler.CookieConfig{
		Secure:        app.Config.Auth.SecureCookies,
		Domain:        app.Config.Auth.CookieDomain,
		AccessMaxAge:  app.Config.Auth.AccessExpireMinute * 60,
		RefreshMaxAge: app.Config.Auth.RefreshExpireHour * 3600,
	}

	authHandler := handler.NewAuthHandler(authService, cookieCfg)
	userHandler := handler.NewUserHandler(userService, profileService, app.Config.Upload.TempDir)
	videoHandler := handler.NewVideoHandler(videoService, app.Config.Upload.TempDir)

	authRequired := middleware.AuthRequired(authService)
	authOptional := middleware.AuthOptional(authService)

	v1 := router.Group("/api/v1")

	users := v1.Group("/users")
	users.POST("/register", userHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/refresh-token", authHandler.RefreshToken)
	users.POST("/logout", authRequired, authHandler.Logout)
	users.POST("/change-password", authRequired, authHandler.ChangePassword)
	users.GET("/current-user", authRequired, userHandler.CurrentUser)
	users.PATCH("/update-account", authRequired, userHandler.UpdateAccount)
	users.PATCH("/avatar", authRequired, userHandler.UpdateAvatar)
	users.PATCH("/cover-image", authRequired, userHandler.UpdateCoverImage)
	users.GET("/c/:username", authOptional, userHandler.ChannelProfile)
	users.GET("/history", authRequired, userHandler.WatchHistory)

	videos := v1.Group("/videos")
	videos.GET("", authOptional, videoHandler.List)
	videos.POST("", authRequired, videoHandler.Publish)
	videos.GET("/:videoId", authOptional, videoHandler.Get)
	videos.PATCH("/:videoId", authRequired, videoHandler.Update)
	videos.DELETE("/:videoId", authRequired, videoHandler.Delete)

	return router
}
