package usecase

import (
	"context"

	"go-network-backend/internal/domain"
	"go-network-backend/pkg/apperror"
	"go-network-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// profileRules mirrors ProfileUpdateRequest with the field rules attached.
// Pointers are nil when the key was absent or null.
type profileRules struct {
	Bio       *string `json:"bio" validate:"omitnil,max=1000"`
	Location  *string `json:"location" validate:"omitnil,max=100"`
	Title     *string `json:"title" validate:"omitnil,max=100"`
	Phone     *string `json:"phone" validate:"omitnil,max=20"`
	AvatarURL *string `json:"avatar_url" validate:"omitnil,url_or_path"`
	CoverURL  *string `json:"cover_url" validate:"omitnil,url_or_path"`
	Website   *string `json:"website" validate:"omitnil,url_or_path"`
	Linkedin  *string `json:"linkedin" validate:"omitnil,url_or_path"`
	Github    *string `json:"github" validate:"omitnil,url_or_path"`
	Twitter   *string `json:"twitter" validate:"omitnil,url_or_path"`
	Name      *string `json:"name" validate:"omitnil,not_blank"`
	Username  *string `json:"username" validate:"omitnil,not_blank"`
	Email     *string `json:"email" validate:"omitnil,not_blank"`

	Skills     *[]domain.SkillEntry      `json:"skills" validate:"required"`
	Experience *[]domain.ExperienceEntry `json:"experience" validate:"required"`
	Education  *[]domain.EducationEntry  `json:"education" validate:"required"`
}

func rulesFor(req *domain.ProfileUpdateRequest) profileRules {
	return profileRules{
		Bio:        req.Bio.Ptr(),
		Location:   req.Location.Ptr(),
		Title:      req.Title.Ptr(),
		Phone:      req.Phone.Ptr(),
		AvatarURL:  req.AvatarURL.Ptr(),
		CoverURL:   req.CoverURL.Ptr(),
		Website:    req.Website.Ptr(),
		Linkedin:   req.Linkedin.Ptr(),
		Github:     req.Github.Ptr(),
		Twitter:    req.Twitter.Ptr(),
		Name:       req.Name.Ptr(),
		Username:   req.Username.Ptr(),
		Email:      req.Email.Ptr(),
		Skills:     req.Skills,
		Experience: req.Experience,
		Education:  req.Education,
	}
}

type profileUsecase struct {
	repo     domain.ProfileRepository
	validate *validator.Validate
}

func NewProfileUsecase(repo domain.ProfileRepository, validate *validator.Validate) domain.ProfileUsecase {
	if validate == nil {
		validate = validation.New()
	}
	return &profileUsecase{
		repo:     repo,
		validate: validate,
	}
}

// ownerOnly enforces that the authenticated caller acts on their own profile.
func ownerOnly(ctx context.Context, userID string) error {
	ctxUserID, ok := ctx.Value(domain.KeyUserID).(string)
	if !ok || ctxUserID == "" {
		return apperror.Unauthorized("User not authenticated")
	}
	if ctxUserID != userID {
		return apperror.Forbidden("You can only access your own profile")
	}
	return nil
}

func (u *profileUsecase) GetProfile(ctx context.Context, userID string) (*domain.ProfileAggregate, error) {
	if err := ownerOnly(ctx, userID); err != nil {
		return nil, err
	}

	agg, err := u.repo.LoadAggregate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return nil, apperror.NotFound("Profile not found")
	}
	return agg, nil
}

func (u *profileUsecase) GetPublicProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := u.repo.GetPublicProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperror.NotFound("Profile not found")
	}
	return profile, nil
}

func (u *profileUsecase) CreateProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if err := ownerOnly(ctx, userID); err != nil {
		return nil, err
	}
	return u.repo.CreateProfile(ctx, userID)
}

// UpdateProfile validates the whole request, replaces the aggregate and returns
// it as stored. Nothing is written when any field fails.
func (u *profileUsecase) UpdateProfile(ctx context.Context, userID string, req *domain.ProfileUpdateRequest) (*domain.ProfileAggregate, error) {
	if err := ownerOnly(ctx, userID); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperror.BadRequest("Request body is required")
	}

	fields := req.MalformedFields()
	if err := u.validate.Struct(rulesFor(req)); err != nil {
		for key, msg := range validation.FieldErrors(err) {
			if _, seen := fields[key]; !seen {
				fields[key] = msg
			}
		}
	}
	if len(fields) > 0 {
		return nil, apperror.Validation(fields)
	}

	update, skills, experience, education := req.Normalize()
	if err := u.repo.ReplaceAggregate(ctx, userID, update, skills, experience, education); err != nil {
		return nil, err
	}

	agg, err := u.repo.LoadAggregate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return nil, apperror.NotFound("Profile not found")
	}
	return agg, nil
}
