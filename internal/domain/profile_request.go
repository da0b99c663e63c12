package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// OptionalString records whether a JSON key was present and whether it was null.
// A present value that is not a string sets Invalid instead of failing the
// whole body, so it can be reported next to the other field errors.
type OptionalString struct {
	Set     bool
	Valid   bool
	Invalid bool
	Value   string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Valid = false
	o.Invalid = false
	o.Value = ""
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		o.Invalid = true
		return nil
	}
	o.Value = v
	o.Valid = true
	return nil
}

// Ptr returns nil for absent, null or invalid values.
func (o OptionalString) Ptr() *string {
	if !o.Set || !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// Some builds a present, non-null OptionalString.
func Some(v string) OptionalString {
	return OptionalString{Set: true, Valid: true, Value: v}
}

// LooseString accepts strings and numbers; anything else decodes to "".
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	*s = LooseString(coerceString(data))
	return nil
}

// LooseBool follows truthiness: true, non-zero numbers and non-empty strings are true.
type LooseBool bool

func (b *LooseBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		*b = false
		return nil
	}
	switch t := v.(type) {
	case bool:
		*b = LooseBool(t)
	case float64:
		*b = t != 0
	case string:
		*b = t != ""
	default:
		*b = false
	}
	return nil
}

// SkillEntry is either a bare string or an object with a name key.
type SkillEntry struct {
	Name string
}

func (e *SkillEntry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Name LooseString `json:"name"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		e.Name = string(obj.Name)
		return nil
	}
	e.Name = coerceString(trimmed)
	return nil
}

type ExperienceEntry struct {
	Title       LooseString `json:"title"`
	Company     LooseString `json:"company"`
	StartDate   LooseString `json:"start_date"`
	EndDate     LooseString `json:"end_date"`
	Description LooseString `json:"description"`
	Current     LooseBool   `json:"current"`
}

type EducationEntry struct {
	School    LooseString `json:"school"`
	Degree    LooseString `json:"degree"`
	Field     LooseString `json:"field"`
	StartDate LooseString `json:"start_date"`
	EndDate   LooseString `json:"end_date"`
	Current   LooseBool   `json:"current"`
}

// ProfileUpdateRequest is the decoded body of PUT /profile.
type ProfileUpdateRequest struct {
	Bio       OptionalString `json:"bio"`
	Location  OptionalString `json:"location"`
	Title     OptionalString `json:"title"`
	AvatarURL OptionalString `json:"avatar_url"`
	CoverURL  OptionalString `json:"cover_url"`
	Website   OptionalString `json:"website"`
	Linkedin  OptionalString `json:"linkedin"`
	Github    OptionalString `json:"github"`
	Twitter   OptionalString `json:"twitter"`
	Phone     OptionalString `json:"phone"`
	Name      OptionalString `json:"name"`
	Username  OptionalString `json:"username"`
	Email     OptionalString `json:"email"`

	Skills     *[]SkillEntry      `json:"skills"`
	Experience *[]ExperienceEntry `json:"experience"`
	Education  *[]EducationEntry  `json:"education"`
}

// Normalize converts the wire request into store inputs. Empty skills are dropped,
// missing strings stay empty and unparseable dates become nil. avatar_url is not
// carried over: the avatar pointer is only moved by an upload.
func (r *ProfileUpdateRequest) Normalize() (ProfileUpdate, []SkillInput, []ExperienceInput, []EducationInput) {
	update := ProfileUpdate{
		Bio:      r.Bio,
		Location: r.Location,
		Title:    r.Title,
		CoverURL: r.CoverURL,
		Website:  r.Website,
		Linkedin: r.Linkedin,
		Github:   r.Github,
		Twitter:  r.Twitter,
		Phone:    r.Phone,
		Name:     r.Name,
		Username: r.Username,
		Email:    r.Email,
	}

	skills := []SkillInput{}
	if r.Skills != nil {
		for _, s := range *r.Skills {
			name := strings.TrimSpace(s.Name)
			if name == "" {
				continue
			}
			skills = append(skills, SkillInput{Name: name})
		}
	}

	experience := []ExperienceInput{}
	if r.Experience != nil {
		for _, e := range *r.Experience {
			experience = append(experience, ExperienceInput{
				Title:       string(e.Title),
				Company:     string(e.Company),
				StartDate:   ParseDate(string(e.StartDate)),
				EndDate:     ParseDate(string(e.EndDate)),
				Description: string(e.Description),
				Current:     bool(e.Current),
			})
		}
	}

	education := []EducationInput{}
	if r.Education != nil {
		for _, e := range *r.Education {
			education = append(education, EducationInput{
				School:    string(e.School),
				Degree:    string(e.Degree),
				Field:     string(e.Field),
				StartDate: ParseDate(string(e.StartDate)),
				EndDate:   ParseDate(string(e.EndDate)),
				Current:   bool(e.Current),
			})
		}
	}

	return update, skills, experience, education
}

// MalformedFields reports values that decoded but can never be stored: non-string
// scalars and text carrying NUL bytes. Keys follow the store's field-error keys.
func (r *ProfileUpdateRequest) MalformedFields() map[string]string {
	fields := map[string]string{}
	hasNUL := func(s string) bool { return strings.ContainsRune(s, 0) }

	scalars := map[string]OptionalString{
		"bio": r.Bio, "location": r.Location, "title": r.Title, "avatar_url": r.AvatarURL,
		"cover_url": r.CoverURL, "website": r.Website, "linkedin": r.Linkedin, "github": r.Github,
		"twitter": r.Twitter, "phone": r.Phone, "name": r.Name, "username": r.Username, "email": r.Email,
	}
	for key, v := range scalars {
		switch {
		case v.Invalid:
			fields[key] = "Must be a string."
		case hasNUL(v.Value):
			fields[key] = "Contains an invalid character."
		}
	}

	text := func(key string, values map[string]LooseString) {
		for name, v := range values {
			if hasNUL(string(v)) {
				fields[key+"."+name] = "Contains an invalid character."
			}
		}
	}
	if r.Skills != nil {
		for i, s := range *r.Skills {
			if hasNUL(s.Name) {
				fields["skills."+strconv.Itoa(i)+".name"] = "Contains an invalid character."
			}
		}
	}
	if r.Experience != nil {
		for i, e := range *r.Experience {
			text("experience."+strconv.Itoa(i), map[string]LooseString{
				"title": e.Title, "company": e.Company, "start_date": e.StartDate,
				"end_date": e.EndDate, "description": e.Description,
			})
		}
	}
	if r.Education != nil {
		for i, e := range *r.Education {
			text("education."+strconv.Itoa(i), map[string]LooseString{
				"school": e.School, "degree": e.Degree, "field": e.Field,
				"start_date": e.StartDate, "end_date": e.EndDate,
			})
		}
	}
	return fields
}

// ParseDate accepts YYYY-MM-DD only. Anything else means "no date".
func ParseDate(s string) *string {
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	out := t.Format(DateLayout)
	return &out
}

func coerceString(data []byte) string {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
