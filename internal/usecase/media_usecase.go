package usecase

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"go-network-backend/internal/domain"
	"go-network-backend/pkg/apperror"
	"go-network-backend/pkg/blob"
	"go-network-backend/pkg/logger"
	"go-network-backend/pkg/media"
	"go-network-backend/pkg/metrics"

	"go.uber.org/zap"
)

type mediaUsecase struct {
	profiles     domain.ProfileRepository
	assets       domain.MediaAssetRepository
	store        *blob.Store
	validator    *media.Validator
	pipeline     *media.Pipeline
	publicPrefix string
	now          func() time.Time
}

// NewMediaUsecase wires upload handling. publicPrefix is prepended to a derived
// filename to form the path stored on the profile, e.g. "/api/profile_images/".
func NewMediaUsecase(
	profiles domain.ProfileRepository,
	assets domain.MediaAssetRepository,
	store *blob.Store,
	validator *media.Validator,
	publicPrefix string,
) domain.MediaUsecase {
	if validator == nil {
		validator = media.NewImageValidator(media.DefaultMaxBytes)
	}
	return &mediaUsecase{
		profiles:     profiles,
		assets:       assets,
		store:        store,
		validator:    validator,
		pipeline:     media.NewPipeline(store),
		publicPrefix: publicPrefix,
		now:          time.Now,
	}
}

func (u *mediaUsecase) UploadAvatar(ctx context.Context, userID, filename string, file io.ReadSeeker) (string, error) {
	return u.upload(ctx, domain.MediaKindAvatar, userID, filename, file)
}

func (u *mediaUsecase) UploadCover(ctx context.Context, userID, filename string, file io.ReadSeeker) (string, error) {
	return u.upload(ctx, domain.MediaKindCover, userID, filename, file)
}

func (u *mediaUsecase) RemoveCover(ctx context.Context, userID string) error {
	if err := ownerOnly(ctx, userID); err != nil {
		return err
	}
	return u.profiles.ClearCover(ctx, userID)
}

func (u *mediaUsecase) upload(ctx context.Context, kind domain.MediaKind, userID, filename string, file io.ReadSeeker) (string, error) {
	if err := ownerOnly(ctx, userID); err != nil {
		return "", err
	}

	outcome := "ok"
	defer func() {
		metrics.MediaUploads.WithLabelValues(string(kind), outcome).Inc()
	}()

	accepted, err := u.validator.Validate(filename, file)
	if err != nil {
		outcome = "rejected"
		if errors.Is(err, media.ErrRejected) {
			return "", apperror.BadRequest(err.Error())
		}
		return "", apperror.Internal(err)
	}

	prefix, spec := "", media.AvatarVariants
	if kind == domain.MediaKindCover {
		prefix, spec = "cover_", media.CoverVariants
	}

	original := media.NewFilename(prefix, accepted.Extension, u.now())
	if err := u.store.Save(original, file); err != nil {
		outcome = "error"
		_ = u.store.Remove(original)
		return "", apperror.Internal(err)
	}

	derived, err := u.pipeline.Derive(original, spec)
	if rmErr := u.store.Remove(original); rmErr != nil {
		logger.Log.Warn("failed to remove upload original", zap.String("file", original), zap.Error(rmErr))
	}
	if err != nil {
		outcome = "failed"
		if errors.Is(err, media.ErrProcessing) {
			return "", apperror.New(http.StatusBadRequest, err.Error(), err)
		}
		return "", apperror.Internal(err)
	}

	groupKey := media.BaseName(original)
	assets := make([]domain.MediaAsset, 0, len(spec))
	for _, v := range spec {
		d := derived[v.Name]
		assets = append(assets, domain.MediaAsset{
			UserID:   userID,
			Kind:     kind,
			Role:     v.Name,
			GroupKey: groupKey,
			Filename: d.Filename,
			Width:    d.Width,
			Height:   d.Height,
		})
	}

	publicPath := u.publicPrefix + derived["main"].Filename
	if kind == domain.MediaKindCover {
		err = u.profiles.SwapCover(ctx, userID, publicPath, assets)
	} else {
		err = u.profiles.SwapAvatar(ctx, userID, publicPath, assets)
	}
	if err != nil {
		outcome = "error"
		for _, a := range assets {
			if rmErr := u.store.Remove(a.Filename); rmErr != nil {
				logger.Log.Warn("failed to remove derived file", zap.String("file", a.Filename), zap.Error(rmErr))
			}
		}
		return "", err
	}

	logger.Log.Info("profile image replaced",
		zap.String("user_id", userID),
		zap.String("kind", string(kind)),
		zap.String("path", publicPath),
	)
	return publicPath, nil
}

// SweepOrphans deletes derived files of uploads no profile points at any more,
// once they are older than grace. A ledger row is kept when its file could not
// be removed so the next run retries it.
func (u *mediaUsecase) SweepOrphans(ctx context.Context, grace time.Duration) (int, error) {
	orphans, err := u.assets.ListOrphans(ctx, u.now().Add(-grace))
	if err != nil {
		return 0, err
	}

	ids := make([]int64, 0, len(orphans))
	for _, a := range orphans {
		if err := u.store.Remove(a.Filename); err != nil {
			logger.Log.Warn("orphan sweep: remove failed", zap.String("file", a.Filename), zap.Error(err))
			continue
		}
		ids = append(ids, a.ID)
	}

	if err := u.assets.DeleteByIDs(ctx, ids); err != nil {
		return 0, err
	}
	metrics.MediaOrphansSwept.Add(float64(len(ids)))
	return len(ids), nil
}
