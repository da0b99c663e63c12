package usecase

import (
	"context"

	"go-network-backend/internal/domain"
	"go-network-backend/pkg/apperror"
)

type authUsecase struct {
	userRepo domain.UserRepository
}

func NewAuthUsecase(userRepo domain.UserRepository) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo}
}

// GetCurrentUser resolves a token subject to a local account.
func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unauthorized("User not found")
	}
	return user, nil
}
