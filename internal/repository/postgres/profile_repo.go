package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-network-backend/internal/domain"
	"go-network-backend/pkg/apperror"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var profileColumns = []string{
	"p.id", "p.user_id", "p.bio", "p.location", "p.title", "p.avatar_url", "p.cover_url",
	"p.website", "p.linkedin", "p.github", "p.twitter", "p.phone", "p.created_at",
}

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

// queryer is satisfied by both the pool and a transaction.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanProfile(row pgx.Row, p *domain.Profile, extra ...any) error {
	dest := []any{
		&p.ID, &p.UserID, &p.Bio, &p.Location, &p.Title, &p.AvatarURL, &p.CoverURL,
		&p.Website, &p.Linkedin, &p.Github, &p.Twitter, &p.Phone, &p.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func (r *profileRepo) CreateProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `INSERT INTO profiles (user_id) VALUES ($1)
	          RETURNING id, user_id, bio, location, title, avatar_url, cover_url,
	                    website, linkedin, github, twitter, phone, created_at`
	var p domain.Profile
	if err := scanProfile(r.db.QueryRow(ctx, query, userID), &p); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return nil, apperror.Conflict("Profile already exists")
			case pgForeignKeyViolation:
				return nil, apperror.NotFound("User not found")
			}
		}
		return nil, apperror.Internal(err)
	}
	return &p, nil
}

func (r *profileRepo) GetPublicProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	query, args, err := psql.Select(profileColumns...).
		From("profiles p").
		Where(sq.Eq{"p.user_id": userID}).
		ToSql()
	if err != nil {
		return nil, apperror.Internal(err)
	}

	var p domain.Profile
	if err := scanProfile(r.db.QueryRow(ctx, query, args...), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Internal(err)
	}
	return &p, nil
}

// LoadAggregate reads the profile, the owner's scalar fields and the three
// collections from one snapshot so a concurrent replace is never seen half applied.
func (r *profileRepo) LoadAggregate(ctx context.Context, userID string) (*domain.ProfileAggregate, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer tx.Rollback(ctx)

	agg, err := loadAggregate(ctx, tx, userID)
	if err != nil || agg == nil {
		return agg, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.Internal(err)
	}
	return agg, nil
}

func loadAggregate(ctx context.Context, q queryer, userID string) (*domain.ProfileAggregate, error) {
	query, args, err := psql.Select(profileColumns...).
		Columns("u.name", "u.username", "u.email").
		From("profiles p").
		Join("users u ON u.id = p.user_id").
		Where(sq.Eq{"p.user_id": userID}).
		ToSql()
	if err != nil {
		return nil, apperror.Internal(err)
	}

	agg := &domain.ProfileAggregate{
		Skills:     []domain.Skill{},
		Experience: []domain.Experience{},
		Education:  []domain.Education{},
	}
	err = scanProfile(q.QueryRow(ctx, query, args...), &agg.Profile, &agg.Name, &agg.Username, &agg.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Internal(fmt.Errorf("failed to fetch profile: %w", err))
	}

	// Skills
	query, args, _ = psql.Select("id", "name").From("skills").
		Where(sq.Eq{"user_id": userID}).OrderBy("id").ToSql()
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to fetch skills: %w", err))
	}
	for rows.Next() {
		var s domain.Skill
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			rows.Close()
			return nil, apperror.Internal(err)
		}
		agg.Skills = append(agg.Skills, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}

	// Experience
	query, args, _ = psql.Select("id", "title", "company", "start_date", "end_date", "description", "current").
		From("experiences").Where(sq.Eq{"user_id": userID}).OrderBy("id").ToSql()
	rows, err = q.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to fetch experience: %w", err))
	}
	for rows.Next() {
		var e domain.Experience
		var start, end *time.Time
		if err := rows.Scan(&e.ID, &e.Title, &e.Company, &start, &end, &e.Description, &e.Current); err != nil {
			rows.Close()
			return nil, apperror.Internal(err)
		}
		e.StartDate, e.EndDate = formatDate(start), formatDate(end)
		agg.Experience = append(agg.Experience, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}

	// Education
	query, args, _ = psql.Select("id", "school", "degree", "field", "start_date", "end_date", "current").
		From("education").Where(sq.Eq{"user_id": userID}).OrderBy("id").ToSql()
	rows, err = q.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to fetch education: %w", err))
	}
	for rows.Next() {
		var e domain.Education
		var start, end *time.Time
		if err := rows.Scan(&e.ID, &e.School, &e.Degree, &e.Field, &start, &end, &e.Current); err != nil {
			rows.Close()
			return nil, apperror.Internal(err)
		}
		e.StartDate, e.EndDate = formatDate(start), formatDate(end)
		agg.Education = append(agg.Education, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}

	return agg, nil
}

// ReplaceAggregate writes the scalar changes and replaces all three collections in
// one transaction. The profile row is locked first, so concurrent replaces for the
// same user run one after another and the last committer's sets win whole.
//
// Entries with a blank title, company, school or degree are refused here even
// though request decoding fills them in as "". That trades the lenient PUT that
// tolerated half-filled drafts for rows that always carry their required text;
// a caller that wants the old leniency has to drop or complete such entries first.
// Any failure after the collections are cleared rolls the whole replace back.
func (r *profileRepo) ReplaceAggregate(
	ctx context.Context,
	userID string,
	update domain.ProfileUpdate,
	skills []domain.SkillInput,
	experience []domain.ExperienceInput,
	education []domain.EducationInput,
) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperror.Internal(err)
	}
	defer tx.Rollback(ctx)

	if err := lockProfile(ctx, tx, userID); err != nil {
		return err
	}

	if fields := missingRequired(skills, experience, education); len(fields) > 0 {
		return apperror.Validation(fields)
	}

	// 1. Owner scalar fields. A null here leaves the column alone: these are NOT NULL.
	userSet := map[string]any{}
	for col, v := range map[string]domain.OptionalString{
		"name": update.Name, "username": update.Username, "email": update.Email,
	} {
		if v.Set && v.Valid {
			userSet[col] = strings.TrimSpace(v.Value)
		}
	}
	if len(userSet) > 0 {
		query, args, err := psql.Update("users").SetMap(userSet).Where(sq.Eq{"id": userID}).ToSql()
		if err != nil {
			return apperror.Internal(err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return mapWriteError(err)
		}
	}

	// 2. Profile scalar fields. Set-but-null clears the column.
	profileSet := map[string]any{}
	for col, v := range map[string]domain.OptionalString{
		"bio": update.Bio, "location": update.Location, "title": update.Title,
		"cover_url": update.CoverURL, "website": update.Website, "linkedin": update.Linkedin,
		"github": update.Github, "twitter": update.Twitter, "phone": update.Phone,
	} {
		if v.Set {
			profileSet[col] = v.Ptr()
		}
	}
	if len(profileSet) > 0 {
		query, args, err := psql.Update("profiles").SetMap(profileSet).Where(sq.Eq{"user_id": userID}).ToSql()
		if err != nil {
			return apperror.Internal(err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return mapWriteError(err)
		}
	}

	// 3. Collections: delete then insert
	for _, table := range []string{"skills", "experiences", "education"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, userID); err != nil {
			return apperror.Internal(fmt.Errorf("failed to clear %s: %w", table, err))
		}
	}

	for _, s := range skills {
		if _, err := tx.Exec(ctx, `INSERT INTO skills (user_id, name) VALUES ($1, $2)`, userID, s.Name); err != nil {
			return mapWriteError(err)
		}
	}

	expQuery := `INSERT INTO experiences (user_id, title, company, start_date, end_date, description, current)
	             VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, e := range experience {
		_, err := tx.Exec(ctx, expQuery, userID, e.Title, e.Company, e.StartDate, e.EndDate, e.Description, e.Current)
		if err != nil {
			return mapWriteError(err)
		}
	}

	eduQuery := `INSERT INTO education (user_id, school, degree, field, start_date, end_date, current)
	             VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, e := range education {
		_, err := tx.Exec(ctx, eduQuery, userID, e.School, e.Degree, e.Field, e.StartDate, e.EndDate, e.Current)
		if err != nil {
			return mapWriteError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *profileRepo) SwapAvatar(ctx context.Context, userID, publicPath string, assets []domain.MediaAsset) error {
	return r.swap(ctx, userID, "avatar_url", &publicPath, assets)
}

func (r *profileRepo) SwapCover(ctx context.Context, userID, publicPath string, assets []domain.MediaAsset) error {
	return r.swap(ctx, userID, "cover_url", &publicPath, assets)
}

func (r *profileRepo) ClearCover(ctx context.Context, userID string) error {
	return r.swap(ctx, userID, "cover_url", nil, nil)
}

// swap moves one image pointer and ledgers the files behind the new value.
// Superseded files stay on disk until the orphan sweep picks them up.
func (r *profileRepo) swap(ctx context.Context, userID, column string, value *string, assets []domain.MediaAsset) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperror.Internal(err)
	}
	defer tx.Rollback(ctx)

	if err := lockProfile(ctx, tx, userID); err != nil {
		return err
	}

	query, args, err := psql.Update("profiles").Set(column, value).Where(sq.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return apperror.Internal(err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return apperror.Internal(fmt.Errorf("failed to update %s: %w", column, err))
	}

	for _, a := range assets {
		_, err := tx.Exec(ctx,
			`INSERT INTO media_assets (user_id, kind, role, group_key, filename, width, height)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			userID, string(a.Kind), a.Role, a.GroupKey, a.Filename, a.Width, a.Height,
		)
		if err != nil {
			return apperror.Internal(fmt.Errorf("failed to record asset %s: %w", a.Filename, err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *profileRepo) PopularSkills(ctx context.Context, limit int) ([]domain.SkillCount, error) {
	if limit <= 0 {
		limit = 10
	}
	query, args, err := psql.Select("name", "COUNT(DISTINCT user_id) AS users").
		From("skills").
		GroupBy("name").
		OrderBy("users DESC", "name ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, apperror.Internal(err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	out := []domain.SkillCount{}
	for rows.Next() {
		var s domain.SkillCount
		if err := rows.Scan(&s.Name, &s.Count); err != nil {
			return nil, apperror.Internal(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

func lockProfile(ctx context.Context, tx pgx.Tx, userID string) error {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM profiles WHERE user_id = $1 FOR UPDATE`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NotFound("Profile not found")
		}
		return apperror.Internal(err)
	}
	return nil
}

// missingRequired reports entries whose required text is blank, keyed by
// collection, index and field.
func missingRequired(skills []domain.SkillInput, experience []domain.ExperienceInput, education []domain.EducationInput) map[string]string {
	fields := map[string]string{}
	for i, s := range skills {
		if strings.TrimSpace(s.Name) == "" {
			fields[fmt.Sprintf("skills.%d.name", i)] = "Name is required."
		}
	}
	for i, e := range experience {
		if strings.TrimSpace(e.Title) == "" {
			fields[fmt.Sprintf("experience.%d.title", i)] = "Title is required."
		}
		if strings.TrimSpace(e.Company) == "" {
			fields[fmt.Sprintf("experience.%d.company", i)] = "Company is required."
		}
	}
	for i, e := range education {
		if strings.TrimSpace(e.School) == "" {
			fields[fmt.Sprintf("education.%d.school", i)] = "School is required."
		}
		if strings.TrimSpace(e.Degree) == "" {
			fields[fmt.Sprintf("education.%d.degree", i)] = "Degree is required."
		}
	}
	return fields
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUniqueViolation {
			return apperror.Conflict("Username or email already taken")
		}
	}
	return apperror.Internal(err)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(domain.DateLayout)
	return &s
}
