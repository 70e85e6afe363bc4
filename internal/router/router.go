package router

import (
	"meetmap/config"
	"meetmap/internal/auth"
	"meetmap/internal/handler"
	"meetmap/internal/metrics"
	"meetmap/internal/middleware"
	"meetmap/internal/repository"
	"meetmap/internal/service"
	"meetmap/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the adapters chosen at startup from configuration.
type Deps struct {
	DB        *gorm.DB
	Photos    service.PhotoUploader
	Revoker   auth.Revoker
	Publisher service.LocationPublisher
	Geocoder  service.Geocoder
	Notifier  service.Notifier // nil disables push
	MapHub    *ws.MapHub
	Limiter   *middleware.InMemoryRateLimiter
}

func Setup(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.AccessLog("/health", "/ready", "/metrics"))
	r.Use(metrics.Middleware())
	if d.Limiter != nil {
		r.Use(middleware.RateLimit(d.Limiter))
	}

	// Repositories
	userRepo := repository.NewUserRepository(d.DB)
	locRepo := repository.NewLocationRepository(d.DB)
	favRepo := repository.NewFavoriteRepository(d.DB)

	// Services
	locationSvc := service.NewLocationService(locRepo, d.Publisher, d.Geocoder)
	authSvc := service.NewAuthService(cfg, userRepo, locationSvc, d.Photos, d.Revoker)
	userSvc := service.NewUserService(cfg, userRepo, d.Photos)
	nearbySvc := service.NewNearbyService(userRepo, locationSvc)
	favoriteSvc := service.NewFavoriteService(favRepo, userRepo, d.Notifier)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, cfg, d.Revoker)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	meHandler := handler.NewMeHandler(userSvc)
	locationHandler := handler.NewLocationHandler(locationSvc)
	nearbyHandler := handler.NewNearbyHandler(nearbySvc)
	favoriteHandler := handler.NewFavoriteHandler(favoriteSvc)
	var healthHandler *handler.HealthHandler
	if sqlDB, err := d.DB.DB(); err == nil {
		healthHandler = handler.NewHealthHandler(sqlDB)
	} else {
		healthHandler = handler.NewHealthHandler(nil)
	}

	authMw := middleware.AuthRequired(&cfg.JWT, d.Revoker)

	r.GET("/health", healthHandler.Live)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", metrics.Handler())
	r.GET("/ws/map", ws.UpgradeMapWS(&cfg.JWT, d.Revoker, d.MapHub))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authMw, authHandler.Logout)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/session", authHandler.Session)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", meHandler.Profile)
			me.PATCH("/profile", meHandler.UpdateProfile)
			me.POST("/photo", meHandler.UploadPhoto)
			me.PUT("/fcm-token", meHandler.RegisterFCMToken)
			me.PATCH("/location", locationHandler.UpdateLocation)
			me.GET("/location", locationHandler.GetMyLocation)
			me.GET("/location/place", locationHandler.GetMyPlace)
			me.GET("/favorites", favoriteHandler.List)
		}

		api.GET("/users", authMw, nearbyHandler.Users)
		api.GET("/nearby", authMw, nearbyHandler.Nearby)

		fav := api.Group("/favorites")
		fav.Use(authMw)
		{
			fav.GET("/:user_id", favoriteHandler.Status)
			fav.POST("/:user_id", favoriteHandler.Add)
			fav.DELETE("/:user_id", favoriteHandler.Remove)
		}
	}

	return r
}
