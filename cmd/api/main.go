package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-network-backend/config"
	v1 "go-network-backend/internal/delivery/http/v1"
	"go-network-backend/internal/domain"
	"go-network-backend/internal/repository/postgres"
	"go-network-backend/internal/usecase"
	"go-network-backend/pkg/blob"
	"go-network-backend/pkg/cache"
	"go-network-backend/pkg/database"
	"go-network-backend/pkg/logger"
	"go-network-backend/pkg/media"
	"go-network-backend/pkg/redis"
	"go-network-backend/pkg/validation"

	"go.uber.org/zap"
)

// @title           Network Profile API
// @version         1.0
// @description     Profiles, skills, experience, education and profile images.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.Env)
	defer logger.Sync()
	logger.Log.Info("Starting network backend", zap.String("port", cfg.Port))

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl, cfg.DBTimeout)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()

	if err := database.EnsureSchema(ctx, dbPool); err != nil {
		logger.Log.Fatal("Failed to apply schema", zap.Error(err))
	}

	// 4. Setup Storage
	images, err := blob.NewLocalStore(cfg.UploadFolder)
	if err != nil {
		logger.Log.Fatal("Failed to open upload folder", zap.Error(err))
	}

	// 5. Setup Cache (Redis when configured, in-process otherwise)
	healthDeps := map[string]usecase.Pinger{"database": dbPool}
	var skillCache cache.Cache[[]domain.SkillCount] = cache.NewTTL[[]domain.SkillCount]("popular_skills", cfg.CacheTTL, nil)
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
		if err != nil {
			logger.Log.Warn("Redis unavailable, using in-process cache", zap.Error(err))
		} else {
			defer client.Close()
			skillCache = cache.NewRedis[[]domain.SkillCount]("popular_skills", client, cfg.CacheTTL)
			healthDeps["redis"] = usecase.PingFunc(func(ctx context.Context) error {
				return redis.HealthCheck(ctx, client)
			})
		}
	}

	// 6. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	profileRepo := postgres.NewProfileRepository(dbPool)
	assetRepo := postgres.NewMediaAssetRepository(dbPool, cfg.PublicMediaPrefix)

	// 7. Setup UseCases
	validate := validation.New()
	authUC := usecase.NewAuthUsecase(userRepo)
	profileUC := usecase.NewProfileUsecase(profileRepo, validate)
	mediaUC := usecase.NewMediaUsecase(profileRepo, assetRepo, images, media.NewImageValidator(cfg.MaxUploadBytes), cfg.PublicMediaPrefix)
	skillUC := usecase.NewSkillUsecase(profileRepo, skillCache)
	healthUC := usecase.NewHealthUsecase(healthDeps)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:         authUC,
		ProfileUC:      profileUC,
		MediaUC:        mediaUC,
		SkillUC:        skillUC,
		HealthUC:       healthUC,
		Images:         images,
		MediaPrefix:    cfg.PublicMediaPrefix,
		MaxUploadBytes: cfg.MaxUploadBytes,
		JWTSecret:      cfg.JWTSecret,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Listen failed", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exiting")
}
