package postgres

import (
	"context"
	"time"

	"go-network-backend/internal/domain"
	"go-network-backend/pkg/apperror"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type mediaAssetRepo struct {
	db           *pgxpool.Pool
	publicPrefix string
}

// NewMediaAssetRepository needs the public prefix profiles store in front of a
// filename, so ledger rows can be matched against avatar_url and cover_url.
func NewMediaAssetRepository(db *pgxpool.Pool, publicPrefix string) domain.MediaAssetRepository {
	return &mediaAssetRepo{db: db, publicPrefix: publicPrefix}
}

func (r *mediaAssetRepo) ListOrphans(ctx context.Context, cutoff time.Time) ([]domain.MediaAsset, error) {
	// An upload group is live while any profile points at its main file.
	query := `
		SELECT a.id, a.user_id, a.kind, a.role, a.group_key, a.filename, a.width, a.height, a.created_at
		FROM media_assets a
		WHERE a.created_at < $1
		  AND NOT EXISTS (
		      SELECT 1
		      FROM media_assets m
		      JOIN profiles p ON p.avatar_url = $2 || m.filename OR p.cover_url = $2 || m.filename
		      WHERE m.group_key = a.group_key AND m.role = 'main'
		  )
		ORDER BY a.id`

	rows, err := r.db.Query(ctx, query, cutoff, r.publicPrefix)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	out := []domain.MediaAsset{}
	for rows.Next() {
		var a domain.MediaAsset
		var kind string
		if err := rows.Scan(&a.ID, &a.UserID, &kind, &a.Role, &a.GroupKey, &a.Filename, &a.Width, &a.Height, &a.CreatedAt); err != nil {
			return nil, apperror.Internal(err)
		}
		a.Kind = domain.MediaKind(kind)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

func (r *mediaAssetRepo) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM media_assets WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return apperror.Internal(err)
	}
	return nil
}
