package domain

import (
	"context"
	"time"
)

// Profile is the 1:1 companion row of a user. Pointer fields are nullable columns.
type Profile struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Bio       *string   `json:"bio"`
	Location  *string   `json:"location"`
	Title     *string   `json:"title"`
	AvatarURL *string   `json:"avatar_url"`
	CoverURL  *string   `json:"cover_url"`
	Website   *string   `json:"website"`
	Linkedin  *string   `json:"linkedin"`
	Github    *string   `json:"github"`
	Twitter   *string   `json:"twitter"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

type Skill struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Experience dates are formatted YYYY-MM-DD. EndDate is kept even when Current is set.
type Experience struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Description string  `json:"description"`
	Current     bool    `json:"current"`
}

type Education struct {
	ID        int64   `json:"id"`
	School    string  `json:"school"`
	Degree    string  `json:"degree"`
	Field     string  `json:"field"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Current   bool    `json:"current"`
}

// ProfileAggregate is a profile together with the owning user's scalar fields and
// the three child collections. It is the unit of consistency for updates.
type ProfileAggregate struct {
	Profile
	Name       string       `json:"name"`
	Username   string       `json:"username"`
	Email      string       `json:"email"`
	Skills     []Skill      `json:"skills"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
}

// ProfileUpdate carries the scalar changes of an aggregate update. Only fields with
// Set == true are written; a set-but-null field clears the column.
type ProfileUpdate struct {
	Bio      OptionalString
	Location OptionalString
	Title    OptionalString
	CoverURL OptionalString
	Website  OptionalString
	Linkedin OptionalString
	Github   OptionalString
	Twitter  OptionalString
	Phone    OptionalString

	Name     OptionalString
	Username OptionalString
	Email    OptionalString
}

type SkillInput struct {
	Name string
}

type ExperienceInput struct {
	Title       string
	Company     string
	StartDate   *string
	EndDate     *string
	Description string
	Current     bool
}

type EducationInput struct {
	School    string
	Degree    string
	Field     string
	StartDate *string
	EndDate   *string
	Current   bool
}

// SkillCount is one row of the popular skills listing.
type SkillCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type ProfileRepository interface {
	CreateProfile(ctx context.Context, userID string) (*Profile, error)
	GetPublicProfile(ctx context.Context, userID string) (*Profile, error)
	LoadAggregate(ctx context.Context, userID string) (*ProfileAggregate, error)
	ReplaceAggregate(ctx context.Context, userID string, update ProfileUpdate, skills []SkillInput, experience []ExperienceInput, education []EducationInput) error
	SwapAvatar(ctx context.Context, userID, publicPath string, assets []MediaAsset) error
	SwapCover(ctx context.Context, userID, publicPath string, assets []MediaAsset) error
	ClearCover(ctx context.Context, userID string) error
	PopularSkills(ctx context.Context, limit int) ([]SkillCount, error)
}

type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID string) (*ProfileAggregate, error)
	GetPublicProfile(ctx context.Context, userID string) (*Profile, error)
	CreateProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, userID string, req *ProfileUpdateRequest) (*ProfileAggregate, error)
}

type SkillUsecase interface {
	Popular(ctx context.Context, limit int) ([]SkillCount, error)
}
