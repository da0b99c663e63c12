// Command mediasweep removes derived profile images that no profile points at
// any more. It runs once and exits; schedule it externally.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-network-backend/config"
	"go-network-backend/internal/repository/postgres"
	"go-network-backend/internal/usecase"
	"go-network-backend/pkg/blob"
	"go-network-backend/pkg/database"
	"go-network-backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	grace := flag.Duration("grace", cfg.OrphanGrace, "only sweep files older than this")
	flag.Parse()

	logger.Init(cfg.Env)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl, cfg.DBTimeout)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()

	images, err := blob.NewLocalStore(cfg.UploadFolder)
	if err != nil {
		logger.Log.Fatal("Failed to open upload folder", zap.Error(err))
	}

	mediaUC := usecase.NewMediaUsecase(
		postgres.NewProfileRepository(dbPool),
		postgres.NewMediaAssetRepository(dbPool, cfg.PublicMediaPrefix),
		images,
		nil,
		cfg.PublicMediaPrefix,
	)

	n, err := mediaUC.SweepOrphans(ctx, *grace)
	if err != nil {
		logger.Log.Fatal("Sweep failed", zap.Error(err))
	}
	logger.Log.Info("Sweep finished", zap.Int("removed", n), zap.Duration("grace", *grace))
}
