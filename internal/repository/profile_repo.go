package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const profileColumns = `id, email, display_name, is_admin, created_at, last_sign_in_at`

var profileSorts = map[string]string{
	"email":           "email",
	"display_name":    "display_name",
	"created_at":      "created_at",
	"last_sign_in_at": "last_sign_in_at",
}

type postgresProfileRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPostgresProfileRepository(db *sqlx.DB, logger *logrus.Logger) domain.ProfileRepository {
	return &postgresProfileRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresProfileRepository) CreateProfile(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	query := `
        INSERT INTO profiles (id, email, display_name, is_admin)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, profile.ID, profile.Email, profile.DisplayName, profile.IsAdmin).
		Scan(&profile.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.log.Warnf("Repository: Profile for %s already exists", profile.Email)
			return nil, domain.Conflict("profile for %s", profile.Email)
		}
		if isForeignKeyViolation(err) {
			return nil, domain.NotFound("user", profile.ID)
		}
		r.log.Errorf("Repository: Error creating profile for %s: %v", profile.Email, err)
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	r.log.Infof("Repository: Profile created for user %s", profile.ID)
	return profile, nil
}

func (r *postgresProfileRepository) GetProfileByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	profile := &domain.Profile{}
	err := r.db.GetContext(ctx, profile, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Profile %s not found", id)
			return nil, domain.NotFound("profile", id)
		}
		r.log.Errorf("Repository: Error fetching profile %s: %v", id, err)
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (r *postgresProfileRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.Profile, error) {
	setClauses := []string{}
	args := []interface{}{}
	if update.DisplayName != nil {
		args = append(args, *update.DisplayName)
		setClauses = append(setClauses, fmt.Sprintf("display_name = $%d", len(args)))
	}
	if update.IsAdmin != nil {
		args = append(args, *update.IsAdmin)
		setClauses = append(setClauses, fmt.Sprintf("is_admin = $%d", len(args)))
	}
	if len(setClauses) == 0 {
		return r.GetProfileByID(ctx, id)
	}

	args = append(args, id)
	query := "UPDATE profiles SET " + strings.Join(setClauses, ", ") +
		fmt.Sprintf(" WHERE id = $%d RETURNING ", len(args)) + profileColumns

	profile := &domain.Profile{}
	if err := r.db.GetContext(ctx, profile, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("profile", id)
		}
		r.log.Errorf("Repository: Error updating profile %s: %v", id, err)
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	r.log.Infof("Repository: Profile %s updated", id)
	return profile, nil
}

func (r *postgresProfileRepository) ListProfiles(ctx context.Context, params domain.ListParams) ([]domain.Profile, int, error) {
	q := newListQuery("profiles", profileColumns).
		Search(params.Search, "email", "display_name")
	if params.Admin != nil {
		q.Where("is_admin = ?", *params.Admin)
	}
	q.Sort(params.Sort, params.Desc, profileSorts, "created_at", "id").
		Page(params.PageSize, params.Offset())

	var total int
	countSQL, countArgs := q.CountSQL(r.db)
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		r.log.Errorf("Repository: Error counting profiles: %v", err)
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	profiles := []domain.Profile{}
	selectSQL, selectArgs := q.SelectSQL(r.db)
	if err := r.db.SelectContext(ctx, &profiles, selectSQL, selectArgs...); err != nil {
		r.log.Errorf("Repository: Error listing profiles: %v", err)
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, total, nil
}

func (r *postgresProfileRepository) TouchLastSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE profiles SET last_sign_in_at = $1 WHERE id = $2`, at, id); err != nil {
		r.log.Errorf("Repository: Error touching last sign-in of profile %s: %v", id, err)
		return fmt.Errorf("failed to update last sign-in: %w", err)
	}
	return nil
}
