package usecase

import (
	"context"
	"strconv"

	"go-network-backend/internal/domain"
	"go-network-backend/pkg/cache"
)

const (
	defaultPopularLimit = 10
	maxPopularLimit     = 50
)

type skillUsecase struct {
	repo  domain.ProfileRepository
	cache cache.Cache[[]domain.SkillCount]
}

// NewSkillUsecase serves the popular skills listing through c. Results may be
// up to one cache TTL stale.
func NewSkillUsecase(repo domain.ProfileRepository, c cache.Cache[[]domain.SkillCount]) domain.SkillUsecase {
	return &skillUsecase{repo: repo, cache: c}
}

func (u *skillUsecase) Popular(ctx context.Context, limit int) ([]domain.SkillCount, error) {
	if limit <= 0 {
		limit = defaultPopularLimit
	}
	if limit > maxPopularLimit {
		limit = maxPopularLimit
	}

	return u.cache.GetOrCompute(ctx, "popular:"+strconv.Itoa(limit), func(ctx context.Context) ([]domain.SkillCount, error) {
		return u.repo.PopularSkills(ctx, limit)
	})
}
