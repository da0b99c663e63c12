package usecase_test

import (
	"context"
	"time"

	"go-network-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) CreateProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) GetPublicProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) LoadAggregate(ctx context.Context, userID string) (*domain.ProfileAggregate, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfileAggregate), args.Error(1)
}

func (m *MockProfileRepo) ReplaceAggregate(ctx context.Context, userID string, update domain.ProfileUpdate, skills []domain.SkillInput, experience []domain.ExperienceInput, education []domain.EducationInput) error {
	return m.Called(ctx, userID, update, skills, experience, education).Error(0)
}

func (m *MockProfileRepo) SwapAvatar(ctx context.Context, userID, publicPath string, assets []domain.MediaAsset) error {
	return m.Called(ctx, userID, publicPath, assets).Error(0)
}

func (m *MockProfileRepo) SwapCover(ctx context.Context, userID, publicPath string, assets []domain.MediaAsset) error {
	return m.Called(ctx, userID, publicPath, assets).Error(0)
}

func (m *MockProfileRepo) ClearCover(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockProfileRepo) PopularSkills(ctx context.Context, limit int) ([]domain.SkillCount, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SkillCount), args.Error(1)
}

type MockMediaAssetRepo struct {
	mock.Mock
}

func (m *MockMediaAssetRepo) ListOrphans(ctx context.Context, cutoff time.Time) ([]domain.MediaAsset, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MediaAsset), args.Error(1)
}

func (m *MockMediaAssetRepo) DeleteByIDs(ctx context.Context, ids []int64) error {
	return m.Called(ctx, ids).Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func userCtx(id string) context.Context {
	return context.WithValue(context.Background(), domain.KeyUserID, id)
}
