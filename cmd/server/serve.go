package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"meetmap/config"
	"meetmap/internal/auth"
	"meetmap/internal/cache"
	"meetmap/internal/database"
	"meetmap/internal/events"
	"meetmap/internal/logging"
	"meetmap/internal/middleware"
	"meetmap/internal/repository"
	"meetmap/internal/router"
	"meetmap/internal/service"
	"meetmap/internal/ws"
	"meetmap/pkg/cloudinary"
	"meetmap/pkg/geocode"
	"meetmap/pkg/objectstore"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.NewDB(&cfg.Database)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer database.Close(db)
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		slog.Info("schema up to date")
		return nil
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	photos, err := newPhotoUploader(ctx, cfg)
	if err != nil {
		return err
	}

	revoker, closeRevoker, err := newRevoker(cfg)
	if err != nil {
		return err
	}
	defer closeRevoker()

	mapHub := ws.NewMapHub()
	publisher, closeEvents, err := newPublisher(ctx, cfg, mapHub)
	if err != nil {
		return err
	}
	defer closeEvents()
	seedMap(ctx, db, mapHub)

	limiter := middleware.NewInMemoryRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	go limiter.Run(ctx)

	deps := router.Deps{
		DB:        db,
		Photos:    photos,
		Revoker:   revoker,
		Publisher: publisher,
		Geocoder:  geocode.NewClient(cfg.Geocode.BaseURL, cfg.Geocode.Language, cfg.Geocode.Timeout),
		MapHub:    mapHub,
		Limiter:   limiter,
	}
	// a nil *FCMService must not become a non-nil Notifier
	if fcm := service.NewFCMService(ctx, cfg.Firebase.ServiceAccountPath); fcm != nil {
		deps.Notifier = fcm
		slog.Info("push notifications enabled", "component", "fcm")
	} else {
		slog.Info("push notifications disabled", "component", "fcm", "configured", cfg.Firebase.ServiceAccountPath != "")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(cfg, deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func newPhotoUploader(ctx context.Context, cfg *config.Config) (service.PhotoUploader, error) {
	switch cfg.Media.Driver {
	case "s3":
		s3, err := objectstore.NewS3Service(ctx, objectstore.Config{
			Endpoint:      cfg.S3.Endpoint,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			Bucket:        cfg.S3.Bucket,
			Region:        cfg.S3.Region,
			UseSSL:        cfg.S3.UseSSL,
			PublicBaseURL: cfg.S3.PublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("object storage: %w", err)
		}
		return s3, nil
	default:
		cloud, err := cloudinary.NewClient(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			return nil, fmt.Errorf("cloudinary: %w", err)
		}
		return cloud, nil
	}
}

func newRevoker(cfg *config.Config) (auth.Revoker, func(), error) {
	if cfg.Valkey.Addr == "" {
		slog.Warn("token revocation is per-instance; set valkey.addr to share it", "component", "auth")
		return auth.NewMemoryRevoker(), func() {}, nil
	}
	r, err := cache.NewTokenRevoker(cfg.Valkey.Addr)
	if err != nil {
		return nil, nil, err
	}
	return r, r.Close, nil
}

// newPublisher routes location events through NATS when configured so every
// instance's map hub sees them; otherwise straight into the local hub.
func newPublisher(ctx context.Context, cfg *config.Config, hub *ws.MapHub) (service.LocationPublisher, func(), error) {
	if cfg.NATS.URL == "" {
		return events.NewLocal(hub), func() {}, nil
	}
	bus, err := events.NewNATS(cfg.NATS.URL, cfg.NATS.Subject)
	if err != nil {
		return nil, nil, err
	}
	if err := bus.Subscribe(ctx, hub); err != nil {
		bus.Close()
		return nil, nil, err
	}
	slog.Info("location events via nats", "component", "events", "subject", cfg.NATS.Subject)
	return bus, bus.Close, nil
}

func seedMap(ctx context.Context, db *gorm.DB, hub *ws.MapHub) {
	locations := service.NewLocationService(repository.NewLocationRepository(db), nil, nil)
	markers, err := locations.Markers(ctx)
	if err != nil {
		slog.Warn("live map starts empty", "component", "ws", "err", err)
		return
	}
	hub.Seed(markers)
	slog.Info("live map seeded", "component", "ws", "markers", len(markers))
}
