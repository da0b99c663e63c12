package usecase_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"go-network-backend/internal/domain"
	"go-network-backend/internal/usecase"
	"go-network-backend/pkg/apperror"
	"go-network-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decodeRequest(t *testing.T, body string) *domain.ProfileUpdateRequest {
	t.Helper()
	var req domain.ProfileUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func requestWith(t *testing.T, extra map[string]any) *domain.ProfileUpdateRequest {
	t.Helper()
	body := map[string]any{
		"skills":     []any{},
		"experience": []any{},
		"education":  []any{},
	}
	for k, v := range extra {
		body[k] = v
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return decodeRequest(t, string(raw))
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	return appErr.Fields
}

func TestProfileIDOR(t *testing.T) {
	repo := new(MockProfileRepo)
	uc := usecase.NewProfileUsecase(repo, validation.New())

	t.Run("Should fail when Context UserID does not match Argument UserID", func(t *testing.T) {
		_, err := uc.GetProfile(userCtx("user1"), "user2")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "only access your own profile")
	})

	t.Run("Should fail safely when Context UserID is nil", func(t *testing.T) {
		_, err := uc.UpdateProfile(userCtx(""), "user1", requestWith(t, nil))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "User not authenticated")
	})

	repo.AssertNotCalled(t, "LoadAggregate", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "ReplaceAggregate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetProfile(t *testing.T) {
	t.Run("Should return 404 when the user has no profile", func(t *testing.T) {
		repo := new(MockProfileRepo)
		repo.On("LoadAggregate", mock.Anything, "u1").Return(nil, nil)
		uc := usecase.NewProfileUsecase(repo, nil)

		_, err := uc.GetProfile(userCtx("u1"), "u1")
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusNotFound, appErr.Code)
		assert.Equal(t, "Profile not found", appErr.Message)
	})

	t.Run("Should serve public profiles without authentication", func(t *testing.T) {
		repo := new(MockProfileRepo)
		bio := "hello"
		repo.On("GetPublicProfile", mock.Anything, "u9").Return(&domain.Profile{UserID: "u9", Bio: &bio}, nil)
		uc := usecase.NewProfileUsecase(repo, nil)

		p, err := uc.GetPublicProfile(userCtx(""), "u9")
		require.NoError(t, err)
		assert.Equal(t, "hello", *p.Bio)
	})
}

func TestUpdateProfileValidation(t *testing.T) {
	stored := &domain.ProfileAggregate{Profile: domain.Profile{UserID: "u1"}}

	newUsecase := func() (*MockProfileRepo, domain.ProfileUsecase) {
		repo := new(MockProfileRepo)
		repo.On("ReplaceAggregate", mock.Anything, "u1", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		repo.On("LoadAggregate", mock.Anything, "u1").Return(stored, nil)
		return repo, usecase.NewProfileUsecase(repo, validation.New())
	}

	t.Run("Should accept a bio of exactly 1000 characters", func(t *testing.T) {
		repo, uc := newUsecase()
		_, err := uc.UpdateProfile(userCtx("u1"), "u1", requestWith(t, map[string]any{"bio": strings.Repeat("é", 1000)}))
		require.NoError(t, err)
		repo.AssertNumberOfCalls(t, "ReplaceAggregate", 1)
	})

	t.Run("Should reject a bio of 1001 characters and write nothing", func(t *testing.T) {
		repo, uc := newUsecase()
		_, err := uc.UpdateProfile(userCtx("u1"), "u1", requestWith(t, map[string]any{"bio": strings.Repeat("a", 1001)}))
		fields := fieldErrors(t, err)
		assert.Equal(t, "Bio must be at most 1000 characters.", fields["bio"])
		repo.AssertNotCalled(t, "ReplaceAggregate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should check avatar_url scheme", func(t *testing.T) {
		repo, uc := newUsecase()
		_, err := uc.UpdateProfile(userCtx("u1"), "u1", requestWith(t, map[string]any{"avatar_url": "ftp://x"}))
		fields := fieldErrors(t, err)
		assert.Equal(t, "Avatar url must be a valid URL.", fields["avatar_url"])

		for _, ok := range []string{"https://x", "/x", ""} {
			_, err := uc.UpdateProfile(userCtx("u1"), "u1", requestWith(t, map[string]any{"avatar_url": ok}))
			assert.NoError(t, err, ok)
		}
		repo.AssertNumberOfCalls(t, "ReplaceAggregate", 3)
	})

	t.Run("Should collect every failing field at once", func(t *testing.T) {
		_, uc := newUsecase()
		_, err := uc.UpdateProfile(userCtx("u1"), "u1", requestWith(t, map[string]any{
			"location": strings.Repeat("x", 101),
			"phone":    strings.Repeat("1", 21),
			"github":   "github.com/me",
			"name":     "   ",
		}))
		fields := fieldErrors(t, err)
		assert.Len(t, fields, 4)
		assert.Equal(t, "Location must be at most 100 characters.", fields["location"])
		assert.Equal(t, "Phone must be at most 20 characters.", fields["phone"])
		assert.Equal(t, "Github must be a valid URL.", fields["github"])
		assert.Equal(t, "Name cannot be empty.", fields["name"])
	})

	t.Run("Should require all three collections", func(t *testing.T) {
		repo, uc := newUsecase()
		_, err := uc.UpdateProfile(userCtx("u1"), "u1", decodeRequest(t, `{"bio":"x","skills":null}`))
		fields := fieldErrors(t, err)
		assert.Equal(t, "Skills is required.", fields["skills"])
		assert.Equal(t, "Experience is required.", fields["experience"])
		assert.Equal(t, "Education is required.", fields["education"])
		repo.AssertNotCalled(t, "ReplaceAggregate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should report a non-string scalar under its own key", func(t *testing.T) {
		repo, uc := newUsecase()
		_, err := uc.UpdateProfile(userCtx("u1"), "u1", decodeRequest(t,
			`{"bio":5,"phone":"`+strings.Repeat("1", 21)+`","skills":[],"experience":[],"education":[]}`))
		fields := fieldErrors(t, err)
		assert.Len(t, fields, 2)
		assert.Equal(t, "Must be a string.", fields["bio"])
		assert.Equal(t, "Phone must be at most 20 characters.", fields["phone"])
		repo.AssertNotCalled(t, "ReplaceAggregate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should reject NUL bytes in entries before touching the store", func(t *testing.T) {
		repo, uc := newUsecase()
		_, err := uc.UpdateProfile(userCtx("u1"), "u1", decodeRequest(t, `{
			"bio": "a\u0000b",
			"skills": ["Go", "Ru\u0000st"],
			"experience": [{"title": "Dev", "company": "Ac\u0000me"}],
			"education": [{"school": "MIT", "degree": "BSc", "field": "\u0000"}]
		}`))
		fields := fieldErrors(t, err)
		assert.Equal(t, map[string]string{
			"bio":                  "Contains an invalid character.",
			"skills.1.name":        "Contains an invalid character.",
			"experience.0.company": "Contains an invalid character.",
			"education.0.field":    "Contains an invalid character.",
		}, fields)
		repo.AssertNotCalled(t, "ReplaceAggregate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should treat null optional fields as absent for validation", func(t *testing.T) {
		_, uc := newUsecase()
		_, err := uc.UpdateProfile(userCtx("u1"), "u1", decodeRequest(t,
			`{"bio":null,"name":null,"website":null,"skills":[],"experience":[],"education":[]}`))
		assert.NoError(t, err)
	})
}

func TestUpdateProfileNormalizesAndReloads(t *testing.T) {
	repo := new(MockProfileRepo)
	stored := &domain.ProfileAggregate{
		Profile: domain.Profile{UserID: "u1"},
		Skills:  []domain.Skill{{ID: 7, Name: "Go"}},
	}

	var gotUpdate domain.ProfileUpdate
	var gotSkills []domain.SkillInput
	var gotExp []domain.ExperienceInput
	repo.On("ReplaceAggregate", mock.Anything, "u1", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotUpdate = args.Get(2).(domain.ProfileUpdate)
			gotSkills = args.Get(3).([]domain.SkillInput)
			gotExp = args.Get(4).([]domain.ExperienceInput)
		}).Return(nil)
	repo.On("LoadAggregate", mock.Anything, "u1").Return(stored, nil)

	uc := usecase.NewProfileUsecase(repo, validation.New())
	agg, err := uc.UpdateProfile(userCtx("u1"), "u1", decodeRequest(t, `{
		"avatar_url": "/api/profile_images/x.jpg",
		"title": null,
		"skills": ["Go", {"name": "SQL"}, "", "  "],
		"experience": [{"title": "Dev", "company": "Acme", "start_date": "2020-13-01", "end_date": "2021-02-03", "current": "yes"}],
		"education": []
	}`))
	require.NoError(t, err)

	assert.Same(t, stored, agg)
	assert.Equal(t, []domain.SkillInput{{Name: "Go"}, {Name: "SQL"}}, gotSkills)
	require.Len(t, gotExp, 1)
	assert.Nil(t, gotExp[0].StartDate)
	require.NotNil(t, gotExp[0].EndDate)
	assert.Equal(t, "2021-02-03", *gotExp[0].EndDate)
	assert.True(t, gotExp[0].Current)

	assert.True(t, gotUpdate.Title.Set)
	assert.False(t, gotUpdate.Title.Valid)
	assert.False(t, gotUpdate.Bio.Set)
}

func TestUpdateProfilePropagatesStoreErrors(t *testing.T) {
	repo := new(MockProfileRepo)
	repo.On("ReplaceAggregate", mock.Anything, "u1", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(apperror.Validation(map[string]string{"experience.1.title": "Title is required."}))

	uc := usecase.NewProfileUsecase(repo, validation.New())
	_, err := uc.UpdateProfile(userCtx("u1"), "u1", requestWith(t, nil))
	fields := fieldErrors(t, err)
	assert.Equal(t, "Title is required.", fields["experience.1.title"])
	repo.AssertNotCalled(t, "LoadAggregate", mock.Anything, mock.Anything)
}
