package domain

import (
	"context"
	"io"
	"time"
)

// MediaKind selects the variant spec and the profile pointer an upload targets.
type MediaKind string

const (
	MediaKindAvatar MediaKind = "avatar"
	MediaKindCover  MediaKind = "cover"
)

// MediaAsset is one derived file recorded in the asset ledger. Role is the variant
// name ("main" or "thumb"); GroupKey ties the variants of a single upload together.
type MediaAsset struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      MediaKind `json:"kind"`
	Role      string    `json:"role"`
	GroupKey  string    `json:"group_key"`
	Filename  string    `json:"filename"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"created_at"`
}

type MediaAssetRepository interface {
	// ListOrphans returns ledger rows created before cutoff whose upload is no
	// longer referenced by any profile pointer.
	ListOrphans(ctx context.Context, cutoff time.Time) ([]MediaAsset, error)
	DeleteByIDs(ctx context.Context, ids []int64) error
}

type MediaUsecase interface {
	UploadAvatar(ctx context.Context, userID, filename string, file io.ReadSeeker) (string, error)
	UploadCover(ctx context.Context, userID, filename string, file io.ReadSeeker) (string, error)
	RemoveCover(ctx context.Context, userID string) error
	SweepOrphans(ctx context.Context, grace time.Duration) (int, error)
}
